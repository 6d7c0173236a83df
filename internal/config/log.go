package config

// LogConfig selects level, format and optional rotating file output.
type LogConfig struct {
	Level      string // logrus level name
	Format     string // "json" or "text"
	File       string // empty means stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:      envStr("LOG_LEVEL", "info"),
		Format:     envStr("LOG_FORMAT", "json"),
		File:       envStr("LOG_FILE", ""),
		MaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 50),
		MaxBackups: envInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 28),
	}
}
