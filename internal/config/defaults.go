package config

import "customlogger/internal/logging"

const (
	defaultConfigPath    = "~/.config/customlogger/config.toml"
	projectConfigName    = "customlogger.toml"
	defaultEnvFile       = ".env"
	defaultLevel         = "info"
	defaultTimeFormat    = "2006-01-02 15:04:05"
	defaultOverwrite     = true
	defaultExceptions    = true
	defaultColor         = logging.ColorAuto
	defaultWidth         = logging.DefaultWidth
	defaultMessageColumn = logging.DefaultMessageColumn
)

// Default returns a Config populated with the stock settings: console only,
// INFO, overwrite on, width 220, crash hooks installed.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:         defaultLevel,
			Overwrite:     defaultOverwrite,
			Width:         defaultWidth,
			MessageColumn: defaultMessageColumn,
			TimeFormat:    defaultTimeFormat,
			Exceptions:    defaultExceptions,
			Color:         defaultColor,
		},
	}
}
