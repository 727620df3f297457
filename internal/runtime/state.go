package runtime

import "github.com/livp123/mcapstat/internal/config"

// ConfigPath stores the path to the configuration file provided via CLI flags.
// ConfigPath 存储通过 CLI 标志提供的配置文件路径。
var ConfigPath string

// LogLevel overrides logging.level when non-empty.
// LogLevel 非空时覆盖 logging.level。
var LogLevel string

// OutputDir overrides output_dir when non-empty.
var OutputDir string

// Workers overrides workers when positive.
var Workers int

// ResolveConfigPath returns the flag value or the default path.
// ResolveConfigPath 返回命令行指定的路径或默认路径。
func ResolveConfigPath() string {
	if ConfigPath == "" {
		return config.DefaultConfigPath
	}
	return ConfigPath
}

// Apply copies the command line overrides onto cfg.
// Apply 将命令行覆盖项写入配置。
func Apply(cfg *config.Config) {
	if LogLevel != "" {
		cfg.Logging.Level = LogLevel
	}
	if OutputDir != "" {
		cfg.OutputDir = OutputDir
	}
	if Workers > 0 {
		cfg.Workers = Workers
	}
}

// Reset clears every override.
func Reset() {
	ConfigPath = ""
	LogLevel = ""
	OutputDir = ""
	Workers = 0
}
