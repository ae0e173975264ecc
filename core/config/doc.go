// Package config provides configuration management for catalog-manager.
//
// It utilizes Viper for loading configuration from environment variables
// and a local .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all settings, divided
// into subsections:
//   - Catalog: locations of GAMES.DAT and LBMAP.DAT, backup behavior
//   - Import: fuzzy matching threshold and ambiguity margin
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Catalog.Path)
package config
