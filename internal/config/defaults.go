package config

const (
	defaultConfigPath          = "~/.config/specfetch/config.toml"
	defaultArchiveBaseURL      = "http://archive.stsci.edu/missions/iue/previews/mx"
	defaultArchiveTimeout      = 60
	defaultUserAgent           = "specfetch/dev"
	defaultMASTBaseURL         = "https://archive.stsci.edu"
	defaultMASTTimeout         = 30
	defaultMASTMaxRecords      = 100
	defaultSIMBADBaseURL       = "http://simbad.u-strasbg.fr/simbad"
	defaultSIMBADTimeout       = 30
	defaultDataDir             = "~/.local/share/specfetch"
	defaultOutputDir           = "~/spectra"
	defaultPipelineParallelism = 4
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Archive: Archive{
			BaseURL:        defaultArchiveBaseURL,
			TimeoutSeconds: defaultArchiveTimeout,
			UserAgent:      defaultUserAgent,
		},
		MAST: MAST{
			BaseURL:        defaultMASTBaseURL,
			TimeoutSeconds: defaultMASTTimeout,
			MaxRecords:     defaultMASTMaxRecords,
		},
		SIMBAD: SIMBAD{
			BaseURL:        defaultSIMBADBaseURL,
			TimeoutSeconds: defaultSIMBADTimeout,
		},
		Paths: Paths{
			DataDir:   defaultDataDir,
			OutputDir: defaultOutputDir,
		},
		Pipeline: Pipeline{
			Parallelism: defaultPipelineParallelism,
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
