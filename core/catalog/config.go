package catalog

// Config holds configuration for the catalog files.
type Config struct {
	// Path is the location of the game record file.
	Path string `mapstructure:"path" default:"GAMES.DAT"`
	// MapPath is the location of the LaunchBox identity map file.
	MapPath string `mapstructure:"map_path" default:"LBMAP.DAT"`
	// Backup controls whether a .bak copy is written before a mutating import.
	Backup bool `mapstructure:"backup" default:"true"`
}
