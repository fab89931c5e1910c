package netbox

import "encoding/json"

const redacted = "[REDACTED]"

// Secret is a string that never prints its value.
// Use Reveal to obtain the raw value when building requests.
type Secret string

// Reveal returns the raw secret.
func (s Secret) Reveal() string {
	return string(s)
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

// GoString implements fmt.GoStringer so %#v is redacted too.
func (s Secret) GoString() string {
	return s.String()
}

// MarshalJSON implements json.Marshaler.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalText implements encoding.TextMarshaler (used by yaml and zap encoders).
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
