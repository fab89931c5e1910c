package netbox

// Config holds the connection settings for the NetBox API.
type Config struct {
	// URL is the base URL of the NetBox instance (e.g. https://netbox.local).
	URL string `mapstructure:"url" default:""`
	// Token is the API token sent as "Authorization: Token <token>".
	Token Secret `mapstructure:"token" default:""`
	// ValidateCerts toggles TLS certificate verification.
	ValidateCerts bool `mapstructure:"validate_certs" default:"true"`
	// TimeoutSeconds bounds every HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RateLimit is the maximum number of requests per second. Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" default:"0"`
	// MaxRetries is the number of retries for list (read) requests.
	MaxRetries int `mapstructure:"max_retries" default:"3"`
}
