// Package report renders analysis results: a console summary, a Markdown
// report and a YAML document for machines.
//
// report 包输出分析结果：控制台摘要、Markdown 报告以及 YAML 文档。
package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/livp123/mcapstat/internal/analysis"
	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/utils/fileutil"
	"github.com/livp123/mcapstat/internal/utils/fmtutil"
)

// File names written into the run directory.
const (
	MarkdownFile = "result.md"
	YAMLFile     = "result.yaml"
)

// Skipped records a task that produced no analysis.
// Skipped 记录未产出分析结果的任务。
type Skipped struct {
	TaskID    string `yaml:"task_id"`
	TopicName string `yaml:"topic_name,omitempty"`
	Reason    string `yaml:"reason"`
}

// Report accumulates the results of one run.
// Report 汇总一次运行的结果。
type Report struct {
	RunID       string                 `yaml:"run_id"`
	GeneratedAt time.Time              `yaml:"generated_at"`
	Sources     []string               `yaml:"sources,omitempty"`
	Results     []model.AnalysisResult `yaml:"results"`
	Skipped     []Skipped              `yaml:"skipped,omitempty"`
}

// New starts an empty report with a fresh run id.
// New 创建带有新运行 ID 的空报告。
func New(now time.Time, sources []string) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: now,
		Sources:     sources,
	}
}

// Add appends one task result.
func (r *Report) Add(res model.AnalysisResult) {
	r.Results = append(r.Results, res)
}

// Skip records a task without results.
func (r *Report) Skip(taskID, topic, reason string) {
	r.Skipped = append(r.Skipped, Skipped{TaskID: taskID, TopicName: topic, Reason: reason})
}

// YAML encodes the report. NaN statistics are written as .nan.
func (r *Report) YAML() ([]byte, error) {
	return yaml.Marshal(r)
}

// Markdown renders the report as a Markdown document.
// Markdown 将报告渲染为 Markdown 文档。
func (r *Report) Markdown() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# MCAP Analysis Report (Generated on: %s)\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: `%s`\n\n", r.RunID)

	for _, res := range r.Results {
		fmt.Fprintf(&b, "## Task: %s (Topic: %s)\n\n", res.TaskID, res.TopicName)

		b.WriteString("### Overall Stats\n")
		fmt.Fprintf(&b, "- **Total Messages:** %s\n", fmtutil.FormatCount(res.RowCount))
		fmt.Fprintf(&b, "- **Start Time:** %s (UTC)\n", fmtutil.FormatTimestampNs(res.StartTimeNs))
		fmt.Fprintf(&b, "- **End Time:** %s (UTC)\n", fmtutil.FormatTimestampNs(res.EndTimeNs))
		fmt.Fprintf(&b, "- **Duration:** %s\n\n", fmtutil.FormatSpan(res.StartTimeNs, res.EndTimeNs))

		s := res.Summary
		switch {
		case res.AnalysisType == analysis.TypeNone:
			b.WriteString("(No analysis performed for type 'none'.)\n\n")
		case s.Empty():
			b.WriteString("No analysis results available.\n\n")
		case s.Timestamp != nil:
			ts := s.Timestamp
			fmt.Fprintf(&b, "Specified Frequency: %s Hz (Expected Period: %s s)\n\n",
				fmtutil.FormatStat(ts.SpecifiedFrequencyHz), fmtutil.FormatStat(ts.ExpectedPeriodS))
			writeStatsTable(&b, "Period", "s", ts.PeriodS)
			writeStatsTable(&b, "Frequency", "Hz", ts.FrequencyHz)
			writeStatsTable(&b, "Jitter/Drift from ToS", "s", ts.JitterDriftS)
		case s.BasicStats != nil:
			writeStatsTable(&b, "Basic Statistics", "unit-less", *s.BasicStats)
		}
		b.WriteString("---\n\n")
	}

	if len(r.Skipped) > 0 {
		b.WriteString("## Skipped Tasks\n\n| Task | Topic | Reason |\n| :--- | :--- | :--- |\n")
		for _, sk := range r.Skipped {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", sk.TaskID, sk.TopicName, strings.ReplaceAll(sk.Reason, "|", `\|`))
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func writeStatsTable(b *strings.Builder, title, unit string, st model.Stats) {
	fmt.Fprintf(b, "### %s [%s]\n", title, unit)
	b.WriteString("| Statistic | Value |\n| :--- | :--- |\n")
	fmt.Fprintf(b, "| Mean | %s |\n", fmtutil.FormatStat(st.Mean))
	fmt.Fprintf(b, "| Std Dev | %s |\n", fmtutil.FormatStat(st.Std))
	fmt.Fprintf(b, "| Max | %s |\n", fmtutil.FormatStat(st.Max))
	fmt.Fprintf(b, "| Min | %s |\n", fmtutil.FormatStat(st.Min))
	fmt.Fprintf(b, "| Count | %d |\n\n", st.Count)
}

// WriteFiles writes result.md and result.yaml into dir and returns their paths.
// WriteFiles 将 result.md 与 result.yaml 写入目录。
func (r *Report) WriteFiles(dir string) ([]string, error) {
	mdPath := filepath.Join(dir, MarkdownFile)
	if err := fileutil.AtomicWriteFile(mdPath, r.Markdown(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", MarkdownFile, err)
	}

	data, err := r.YAML()
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", YAMLFile, err)
	}
	yamlPath := filepath.Join(dir, YAMLFile)
	if err := fileutil.AtomicWriteFile(yamlPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", YAMLFile, err)
	}
	return []string{mdPath, yamlPath}, nil
}
