package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livp123/mcapstat/internal/analysis"
	"github.com/livp123/mcapstat/internal/runtime"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// executeCommand executes a cobra command and returns output.
// executeCommand 执行 cobra 命令并返回输出。
func executeCommand(cmd *cobra.Command, args ...string) (string, error) {
	runtime.Reset()
	reanalyzeType = analysis.TypeBasicStats
	defer runtime.Reset()

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// TestRootCommandHelp tests root command help output.
// TestRootCommandHelp 测试根命令帮助输出。
func TestRootCommandHelp(t *testing.T) {
	output, err := executeCommand(RootCmd, "--help")
	assert.NoError(t, err)
	assert.Contains(t, output, "mcapstat")
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "Available Commands:")
	for _, name := range []string{"analyze", "reanalyze", "validate", "version", "completion"} {
		assert.Contains(t, output, name)
	}
}

// TestInvalidCommand tests invalid command handling.
// TestInvalidCommand 测试无效命令处理。
func TestInvalidCommand(t *testing.T) {
	_, err := executeCommand(RootCmd, "invalid-command")
	assert.Error(t, err)
}

// TestVersionCommand tests the version output.
// TestVersionCommand 测试版本输出。
func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(RootCmd, "version")
	require.NoError(t, err)
	assert.Equal(t, "mcapstat dev\n", output)
}

// TestCompletionCommand tests completion script generation.
// TestCompletionCommand 测试补全脚本生成。
func TestCompletionCommand(t *testing.T) {
	output, err := executeCommand(RootCmd, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, output, "mcapstat")

	_, err = executeCommand(RootCmd, "completion", "powershell")
	assert.Error(t, err)
}

// TestValidateCommand tests the validate command.
// TestValidateCommand 测试 validate 命令。
func TestValidateCommand(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cfg := writeConfig(t, "analyses:\n  - id: a\n    topic_name: /imu\n    field_names: x\n    parse_string: x * 2\n")
		output, err := executeCommand(RootCmd, "validate", "-c", cfg)
		require.NoError(t, err)
		assert.Contains(t, output, "[OK] 1 task(s) valid")
	})

	t.Run("broken task", func(t *testing.T) {
		cfg := writeConfig(t, `analyses:
  - id: good
    topic_name: /imu
    field_names: x
    parse_string: x
    analysis_type: mystery
  - id: bad
    topic_name: /imu
    field_names: x
    parse_string: x + y
`)
		output, err := executeCommand(RootCmd, "validate", "-c", cfg)
		assert.True(t, errors.Is(err, mcaperrors.ErrConfigInvalid))
		assert.Contains(t, output, "[ERROR] task bad (extract)")
		assert.Contains(t, output, "[WARN]  task good")
	})

	t.Run("missing config", func(t *testing.T) {
		_, err := executeCommand(RootCmd, "validate", "-c", filepath.Join(t.TempDir(), "none.yaml"))
		assert.True(t, errors.Is(err, mcaperrors.ErrConfigNotFound))
	})
}

// TestAnalyzeAndReanalyzeCommands runs analyze and then reanalyzes its CSV.
// TestAnalyzeAndReanalyzeCommands 执行 analyze 后重新分析其 CSV。
func TestAnalyzeAndReanalyzeCommands(t *testing.T) {
	outDir := t.TempDir()
	cfg := writeConfig(t, "analyses:\n  - id: imu_x\n    topic_name: /imu\n    field_names: x\n    parse_string: x\n    analysis_type: basic_stats\n")

	src := filepath.Join(t.TempDir(), "run1.jsonl")
	require.NoError(t, os.WriteFile(src, []byte(`{"topic":"/imu","log_time":1,"message":{"x":1}}
{"topic":"/imu","log_time":2,"message":{"x":3}}
`), 0o600))

	output, err := executeCommand(RootCmd, "analyze", src, "-c", cfg, "--output-dir", outDir, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, output, "Results saved to "+outDir)

	csvs, err := filepath.Glob(filepath.Join(outDir, "*", "imu_x.csv"))
	require.NoError(t, err)
	require.Len(t, csvs, 1)

	output, err = executeCommand(RootCmd, "reanalyze", csvs[0], "--type", "basic_stats")
	require.NoError(t, err)
	assert.Contains(t, output, "imu_x")
	assert.Contains(t, output, "mean=2")

	_, err = executeCommand(RootCmd, "reanalyze", filepath.Join(outDir, "missing.csv"))
	assert.Error(t, err)
}

// TestAnalyzeCommandArgs tests argument checking.
// TestAnalyzeCommandArgs 测试参数检查。
func TestAnalyzeCommandArgs(t *testing.T) {
	_, err := executeCommand(RootCmd, "analyze")
	assert.Error(t, err)
}
