package logger

// LoggingConfig defines the configuration for logging.
// LoggingConfig 定义日志配置。
type LoggingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Enabled: write to Path instead of stderr
	// Enabled: 是否写入日志文件
	Level string `yaml:"level"`
	// Level: debug, info, warn, error
	// Level: 日志级别
	Path string `yaml:"path"`
	// Path: log file path
	// Path: 日志文件路径
	MaxSize int `yaml:"max_size"`
	// MaxSize: megabytes before rotation
	// MaxSize: 轮转前的最大大小（MB）
	MaxBackups int `yaml:"max_backups"`
	// MaxBackups: rotated files to keep
	// MaxBackups: 保留的旧文件最大数量
	MaxAge int `yaml:"max_age"`
	// MaxAge: days to keep rotated files
	// MaxAge: 保留旧文件的最大天数
	Compress bool `yaml:"compress"`
	// Compress: gzip rotated files
	// Compress: 是否压缩旧文件
}
