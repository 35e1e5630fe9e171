package config

const (
	defaultConfigPath       = "~/.config/sumofix/config.toml"
	defaultStateDir         = "~/.local/share/sumofix"
	defaultArchiveExtension = ".sumo"
	defaultOutputSuffix     = "_fixed"
	defaultBatchOutputDir   = "fixed"
	defaultDefunctEndpoint  = "sumo.app/api/auth/check"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"

	// WorkspaceMemory stages archive entries in memory.
	WorkspaceMemory = "memory"
	// WorkspaceDisk stages archive entries in a temporary directory.
	WorkspaceDisk = "disk"
)

func defaultProtectedKeys() []string {
	return []string{"materials", "textures", "images"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Repair: Repair{
			ArchiveExtension: defaultArchiveExtension,
			OutputSuffix:     defaultOutputSuffix,
			BatchOutputDir:   defaultBatchOutputDir,
			DefunctEndpoint:  defaultDefunctEndpoint,
			ProtectedKeys:    defaultProtectedKeys(),
		},
		Workspace: Workspace{
			Backend: WorkspaceMemory,
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
