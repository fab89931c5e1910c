// Package config loads the reconciler configuration.
//
// It uses Viper over environment variables, an optional .env file (godotenv)
// and an optional YAML/JSON config file. Defaults come from the `default`
// struct tags of each section and are registered by reflection, which also
// makes every key reachable through AutomaticEnv.
//
// # Sections
//
//   - NetBox: API URL, token (redacted on output), TLS verification, timeouts, retries
//   - Server: HTTP front end port, API key and limits
//   - Database: journal database driver and connection details
//   - Journal: run journal switches
//   - Storage: S3/MinIO report archive
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.NetBox.URL)
package config
