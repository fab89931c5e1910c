package config

import (
	"fmt"
	"reflect"
	"strings"

	"netbox-reconciler/core/database"
	"netbox-reconciler/core/journal"
	"netbox-reconciler/core/logger"
	"netbox-reconciler/core/netbox"
	"netbox-reconciler/core/server"
	"netbox-reconciler/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// NetBox holds the API endpoint and credentials.
	NetBox netbox.Config `mapstructure:"netbox"`
	// Server holds configuration for the HTTP front end.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the report archive (S3, MinIO).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the journal database connection.
	Database database.Config `mapstructure:"database"`
	// Journal holds configuration for the run journal.
	Journal journal.Config `mapstructure:"journal"`
}

// LoadConfig loads configuration from environment variables and the .env file in path.
// Environment variables take precedence over the .env file.
func LoadConfig(path string) (*Config, error) {
	return LoadConfigFrom(path, "")
}

// LoadConfigFrom loads configuration like LoadConfig, additionally merging a
// YAML or JSON config file over the defaults when file is set. Environment
// variables still win over the file.
func LoadConfigFrom(path, file string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// a missing .env is fine (e.g. production)
	_ = godotenv.Load(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	if file != "" {
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	// Map environment variables to nested keys (e.g. NETBOX_URL -> netbox.url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
