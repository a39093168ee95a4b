package config

const (
	defaultScratchDir           = "~/tmp"
	defaultOutputDir            = "."
	defaultLogDir               = "~/.local/share/vodmux/logs"
	defaultMaxActive            = 6
	defaultLaunchStaggerSeconds = 2
	defaultSubtitleLanguage     = "pl"
	defaultSubtitleTimeout      = 30
	defaultSampleSeconds        = 30
	defaultDecodeTimeoutSeconds = 120
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Downloads: Downloads{
			MaxActive:            defaultMaxActive,
			LaunchStaggerSeconds: defaultLaunchStaggerSeconds,
		},
		Subtitles: Subtitles{
			Language:       defaultSubtitleLanguage,
			RequestTimeout: defaultSubtitleTimeout,
		},
		Verification: Verification{
			SampleSeconds:        defaultSampleSeconds,
			DecodeTimeoutSeconds: defaultDecodeTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			RunSummary:     true,
			JobFailures:    true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
