package config

const (
	defaultConfigPath        = "~/.config/tracer/config.toml"
	projectConfigName        = "tracer.toml"
	defaultSeparator         = ","
	defaultEncoding          = "auto"
	defaultProvider          = ProviderGemini
	defaultChatModel         = "gemini-2.5-flash"
	defaultAnalysisModel     = "gemini-2.5-pro"
	defaultTranscribeModel   = "gemini-2.5-flash"
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	defaultOpenRouterPrefix  = "google/"
	defaultReferer           = "https://github.com/tracer-dashboard/tracer"
	defaultTitle             = "Tracer Intelligence Dashboard"
	defaultTimeoutSeconds    = 120
	defaultChatContextRows   = 50
	defaultArchivePath       = "~/.local/share/tracer/history.db"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
)

// Supported AI providers.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Dataset: Dataset{
			Separator: defaultSeparator,
			Encoding:  defaultEncoding,
		},
		AI: AI{
			Provider:        defaultProvider,
			ChatModel:       defaultChatModel,
			AnalysisModel:   defaultAnalysisModel,
			TranscribeModel: defaultTranscribeModel,
			Referer:         defaultReferer,
			Title:           defaultTitle,
			TimeoutSeconds:  defaultTimeoutSeconds,
			ChatContextRows: defaultChatContextRows,
		},
		Archive: Archive{
			Enabled: true,
			Path:    defaultArchivePath,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
