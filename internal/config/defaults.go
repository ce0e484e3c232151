package config

const (
	defaultStateDir        = "~/.local/share/otterpack"
	defaultLogDir          = "~/.local/share/otterpack/logs"
	defaultDevFolder       = "_otterpack"
	defaultSearchWindowMiB = 10
	defaultFormat          = "flac"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	devModeEnv             = "OTTERPACK_DEV"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Resources: Resources{
			DevFolder:       defaultDevFolder,
			Binary:          DefaultBinary(),
			SearchWindowMiB: defaultSearchWindowMiB,
		},
		Conversion: Conversion{
			Format: defaultFormat,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
