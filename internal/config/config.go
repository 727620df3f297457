// Package config loads the mcapstat run configuration: logging, output
// options and the list of analysis tasks.
//
// config 包加载 mcapstat 运行配置：日志、输出选项与分析任务列表。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/utils/logger"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

const (
	// DefaultConfigPath is used when no -c flag is given.
	// DefaultConfigPath 是未指定 -c 参数时使用的配置文件。
	DefaultConfigPath = "config.yaml"

	// DefaultOutputDir is the base directory for per-run result folders.
	DefaultOutputDir = "results"

	// DefaultFilePattern selects input files inside a source directory.
	DefaultFilePattern = "*.jsonl"
)

// Config is the top-level YAML document.
// Config 是顶层 YAML 配置。
type Config struct {
	Logging     logger.LoggingConfig `yaml:"logging"`
	OutputDir   string               `yaml:"output_dir"`
	Workers     int                  `yaml:"workers"`
	SaveCSV     bool                 `yaml:"save_csv"`
	MetricsFile string               `yaml:"metrics_file"`
	FilePattern string               `yaml:"file_pattern"`
	Analyses    []model.AnalysisTask `yaml:"analyses"`
}

// Default returns a configuration with every default filled in.
// Default 返回填充了默认值的配置。
func Default() *Config {
	return &Config{
		Logging: logger.LoggingConfig{
			Enabled:    false,
			Level:      "info",
			Path:       "logs/mcapstat.log",
			MaxSize:    10, // 10MB
			MaxBackups: 3,
			MaxAge:     30, // 30 days
			Compress:   true,
		},
		OutputDir:   DefaultOutputDir,
		Workers:     1,
		SaveCSV:     true,
		FilePattern: DefaultFilePattern,
	}
}

// Load reads and validates the configuration at path.
// Load 读取并验证指定路径的配置。
func Load(path string) (*Config, error) {
	safePath := filepath.Clean(path)   // Sanitize path to prevent directory traversal
	data, err := os.ReadFile(safePath) // #nosec G304 // path is sanitized with filepath.Clean
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", mcaperrors.ErrConfigNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", mcaperrors.ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks file-level settings. Problems inside a single task's
// parse string are not checked here; they only disable that task.
// Validate 检查文件级别的配置项，单个任务的解析错误不在此检查。
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Workers < 0 {
		result = multierror.Append(result, mcaperrors.NewConfigError("workers", c.Workers))
	}
	if c.FilePattern != "" && !doublestar.ValidatePattern(c.FilePattern) {
		result = multierror.Append(result, mcaperrors.NewConfigError("file_pattern", c.FilePattern))
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			result = multierror.Append(result, mcaperrors.NewConfigError("logging.level", c.Logging.Level))
		}
	}
	if len(c.Analyses) == 0 {
		result = multierror.Append(result, mcaperrors.NewConfigError("analyses", "empty"))
	}

	seen := make(map[string]bool, len(c.Analyses))
	for i, task := range c.Analyses {
		switch {
		case task.ID == "":
			result = multierror.Append(result, mcaperrors.NewConfigError(fmt.Sprintf("analyses[%d].id", i), "empty"))
		case seen[task.ID]:
			result = multierror.Append(result, mcaperrors.NewConfigError(fmt.Sprintf("analyses[%d].id", i), task.ID+" (duplicate)"))
		}
		seen[task.ID] = true
	}

	return result.ErrorOrNil()
}

// ApplyDefaults fills zero values left by callers that build a Config in code.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.FilePattern == "" {
		c.FilePattern = DefaultFilePattern
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}
