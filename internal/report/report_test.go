package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/livp123/mcapstat/internal/model"
)

func sampleReport() *Report {
	r := New(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), []string{"a.jsonl"})
	r.Add(model.AnalysisResult{
		TaskID:       "imu_rate",
		TopicName:    "/imu",
		AnalysisType: "timestamp(freq:100)",
		StartTimeNs:  0,
		EndTimeNs:    19_500_000,
		RowCount:     3,
		Summary: model.Summary{Timestamp: &model.TimestampSummary{
			SpecifiedFrequencyHz: 100,
			ExpectedPeriodS:      0.01,
			PeriodS:              model.Stats{Mean: 0.00975, Std: 0.0003536, Max: 0.01, Min: 0.0095, Count: 2},
			FrequencyHz:          model.Stats{Mean: math.NaN(), Std: math.NaN(), Max: math.NaN(), Min: math.NaN()},
			JitterDriftS:         model.Stats{Mean: -0.0001667, Std: 0.0002887, Max: 0, Min: -0.0005, Count: 3},
		}},
	})
	r.Add(model.AnalysisResult{
		TaskID:       "speed",
		TopicName:    "/can",
		AnalysisType: "basic_stats",
		RowCount:     5,
		Summary:      model.Summary{BasicStats: &model.Stats{Mean: 3, Std: 1.5811388, Max: 5, Min: 1, Count: 5}},
	})
	r.Add(model.AnalysisResult{TaskID: "raw", TopicName: "/raw", AnalysisType: "none", RowCount: 1})
	r.Add(model.AnalysisResult{TaskID: "short", TopicName: "/imu", AnalysisType: "basic_stats"})
	r.Skip("empty", "/nothing", "no rows extracted")
	return r
}

func TestNew_RunID(t *testing.T) {
	r := New(time.Now(), nil)
	_, err := uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.NotEqual(t, r.RunID, New(time.Now(), nil).RunID)
}

// TestMarkdown tests the Markdown report layout
// TestMarkdown 测试 Markdown 报告格式
func TestMarkdown(t *testing.T) {
	md := string(sampleReport().Markdown())

	assert.Contains(t, md, "# MCAP Analysis Report (Generated on: 2024-05-01 12:00:00)")
	assert.Contains(t, md, "## Task: imu_rate (Topic: /imu)")
	assert.Contains(t, md, "- **Total Messages:** 3")
	assert.Contains(t, md, "- **Start Time:** 1970-01-01 00:00:00.000000000 (UTC)")
	assert.Contains(t, md, "Specified Frequency: 100 Hz (Expected Period: 0.01 s)")
	assert.Contains(t, md, "### Period [s]\n| Statistic | Value |")
	assert.Contains(t, md, "| Min | 0.0095 |")
	assert.Contains(t, md, "### Frequency [Hz]\n| Statistic | Value |\n| :--- | :--- |\n| Mean | NaN |")
	assert.Contains(t, md, "### Basic Statistics [unit-less]")
	assert.Contains(t, md, "| Std Dev | 1.581 |")
	assert.Contains(t, md, "(No analysis performed for type 'none'.)")
	assert.Contains(t, md, "No analysis results available.")
	assert.Contains(t, md, "| empty | /nothing | no rows extracted |")
}

func TestYAML(t *testing.T) {
	data, err := sampleReport().YAML()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	results := doc["results"].([]any)
	require.Len(t, results, 4)

	first := results[0].(map[string]any)
	assert.Equal(t, "imu_rate", first["task_id"])
	ts := first["summary"].(map[string]any)["timestamp"].(map[string]any)
	assert.Equal(t, 100, ts["specified_frequency_hz"])
	freq := ts["frequency_hz"].(map[string]any)
	assert.True(t, math.IsNaN(freq["mean"].(float64)))

	assert.Contains(t, string(data), "reason: no rows extracted")
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	paths, err := sampleReport().WriteFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, MarkdownFile), filepath.Join(dir, YAMLFile)}, paths)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

// TestConsole tests the console summary without a terminal
// TestConsole 测试非终端环境下的控制台输出
func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().Console(&buf))
	out := buf.String()

	assert.Contains(t, out, "MCAP Analysis Report")
	assert.Contains(t, out, "imu_rate (/imu)")
	assert.Contains(t, out, "mean=0.00975")
	assert.Contains(t, out, "mean=NaN")
	assert.Contains(t, out, "count=5")
	assert.Contains(t, out, "(no analysis for type 'none')")
	assert.Contains(t, out, "! empty skipped: no rows extracted")
	assert.NotContains(t, out, "\x1b[", "no color codes when not writing to a terminal")
}
