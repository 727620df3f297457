package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInit tests logger initialization
// TestInit 测试日志初始化
func TestInit(t *testing.T) {
	Init(LoggingConfig{Enabled: false, Level: "info"})

	log := Get(nil)
	assert.NotNil(t, log)

	// Sync may return error on stderr, which is expected
	// Sync 在 stderr 上可能返回错误，这是预期的
	_ = Sync()
}

// TestNew_FileOutput tests rotation-backed file output
// TestNew_FileOutput 测试文件输出
func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mcapstat.log")
	log := New(LoggingConfig{Enabled: true, Level: "debug", Path: path, MaxSize: 1})
	log.Infof("hello %s", "file")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

// TestNew_LevelFilter tests that unparseable levels fall back to info
// TestNew_LevelFilter 测试无法解析的级别回退为 info
func TestNew_LevelFilter(t *testing.T) {
	log := New(LoggingConfig{Level: "verbose"})
	assert.False(t, log.Desugar().Core().Enabled(-1))
	assert.True(t, log.Desugar().Core().Enabled(0))
}

// TestWithContext tests adding logger to context
// TestWithContext 测试将 logger 添加到 context
func TestWithContext(t *testing.T) {
	log := Nop()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, Get(ctx))

	// Empty context falls back to the global logger
	// 空 context 回退到全局 logger
	assert.NotNil(t, Get(context.Background()))
}
