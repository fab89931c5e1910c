package journal

// Config holds configuration for the run journal.
type Config struct {
	// Enabled records every reconciliation in the database.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// ListLimit is the default number of runs returned by journal listings.
	ListLimit int `mapstructure:"list_limit" default:"20"`
}
