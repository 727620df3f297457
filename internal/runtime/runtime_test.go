package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/livp123/mcapstat/internal/config"
)

// TestResolveConfigPath tests the default and explicit config path
// TestResolveConfigPath 测试默认与显式配置路径
func TestResolveConfigPath(t *testing.T) {
	defer Reset()

	assert.Equal(t, config.DefaultConfigPath, ResolveConfigPath())

	ConfigPath = "/etc/mcapstat/config.yaml"
	assert.Equal(t, "/etc/mcapstat/config.yaml", ResolveConfigPath())
}

// TestApply tests that flag overrides replace config values
// TestApply 测试命令行覆盖配置值
func TestApply(t *testing.T) {
	defer Reset()

	cfg := config.Default()
	Apply(cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, 1, cfg.Workers)

	LogLevel = "debug"
	OutputDir = "/tmp/out"
	Workers = 4
	Apply(cfg)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
}
