package reconcile

import (
	"encoding/json"
	"fmt"
	"strings"

	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/utils"
)

// Normalize validates raw desired state against the kind's schema and returns
// a canonical copy. Null values are dropped ("leave unspecified"), unknown fields
// and type mismatches are rejected.
func (k *Kind) Normalize(raw map[string]any) (DesiredState, error) {
	if raw == nil {
		return nil, &ConfigurationError{Field: "data", Reason: "desired state is required"}
	}

	desired := make(DesiredState, len(raw))
	for field, value := range raw {
		if value == nil {
			continue
		}
		t, ok := k.Fields[field]
		if !ok {
			return nil, &ConfigurationError{Field: field, Reason: fmt.Sprintf("unknown field for %s", k.Name)}
		}
		v, err := canonical(value)
		if err != nil {
			return nil, &ConfigurationError{Field: field, Reason: err.Error()}
		}
		if err := checkType(t, v); err != nil {
			return nil, &ConfigurationError{Field: field, Reason: err.Error()}
		}
		if t == FieldInt {
			v, _ = utils.AsInt(v)
		}
		desired[field] = v
	}

	key, _ := desired[k.NaturalKey].(string)
	if strings.TrimSpace(key) == "" {
		return nil, &ConfigurationError{Field: k.NaturalKey, Reason: "is required"}
	}
	return desired, nil
}

// fillSlug derives the slug from the natural key when the kind has a slug field
// and desired does not set it. Only objects about to be created get a derived
// slug, so an existing object's slug is never rewritten implicitly.
func (k *Kind) fillSlug(desired DesiredState) {
	if k.SlugField == "" {
		return
	}
	if _, ok := desired[k.SlugField]; ok {
		return
	}
	if key, ok := desired[k.NaturalKey].(string); ok {
		desired[k.SlugField] = utils.Slugify(key)
	}
}

// RemoteFromObject converts an API object into a RemoteObject.
// Nested reference objects are flattened to their ID and choice objects
// ({"value": ..., "label": ...}) to their value so both compare against desired state.
func (k *Kind) RemoteFromObject(obj netbox.Object) (*RemoteObject, error) {
	id, ok := obj.ID()
	if !ok {
		return nil, fmt.Errorf("%s object has no id", k.Name)
	}

	attrs := make(map[string]any, len(obj))
	for field, value := range obj {
		v, err := canonical(value)
		if err != nil {
			return nil, fmt.Errorf("%s object field %s: %w", k.Name, field, err)
		}
		attrs[field] = v
	}

	for field, t := range k.Fields {
		nested, isMap := attrs[field].(map[string]any)
		if !isMap {
			continue
		}
		switch t {
		case FieldReference:
			if ref, ok := nested["id"]; ok {
				attrs[field] = utils.ToInt(ref)
			}
		case FieldString:
			if v, ok := nested["value"]; ok {
				if _, hasLabel := nested["label"]; hasLabel {
					attrs[field] = v
				}
			}
		}
	}

	return &RemoteObject{ID: id, Attributes: attrs}, nil
}

// canonical converts a value into its JSON form (maps as map[string]any,
// numbers as float64) so values of different Go origin compare equal.
func canonical(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON serializable: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func checkType(t FieldType, v any) error {
	switch t {
	case FieldString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case FieldInt:
		if _, ok := utils.AsInt(v); !ok {
			return fmt.Errorf("expected integer, got %T", v)
		}
	case FieldBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
	case FieldMap:
		if _, ok := v.(map[string]any); !ok {
			return fmt.Errorf("expected mapping, got %T", v)
		}
	case FieldList:
		if _, ok := v.([]any); !ok {
			return fmt.Errorf("expected list, got %T", v)
		}
	case FieldReference:
		switch ref := v.(type) {
		case string:
			if strings.TrimSpace(ref) == "" {
				return fmt.Errorf("reference must not be empty")
			}
		default:
			if _, ok := utils.AsInt(v); !ok {
				return fmt.Errorf("expected name or id, got %T", v)
			}
		}
	}
	return nil
}
