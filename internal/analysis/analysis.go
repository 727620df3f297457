// Package analysis computes summary statistics over a task's row series.
//
// analysis 包对任务的数据行序列计算汇总统计。
package analysis

import (
	"strings"

	"go.uber.org/zap"

	"github.com/livp123/mcapstat/internal/model"
)

// Analysis type names accepted in task configuration.
const (
	TypeNone       = "none"
	TypeBasicStats = "basic_stats"
	TypeTimestamp  = "timestamp"
)

// Analyzer turns a row series into a summary. Implementations only read
// ParsedValue and TimestampNs, so re-loaded results analyze the same way.
// Analyzer 将数据行序列转换为汇总结果。
type Analyzer interface {
	Type() string
	Analyze(result model.TaskResult) (model.Summary, error)
}

// New returns the analyzer for an analysis_type string. An unknown type is
// logged and treated as "none"; a malformed timestamp type is a ConfigError.
// New 根据 analysis_type 返回对应的分析器，未知类型按 none 处理。
func New(analysisType string, log *zap.SugaredLogger) (Analyzer, error) {
	t := strings.TrimSpace(analysisType)
	switch {
	case t == "" || t == TypeNone:
		return None{}, nil
	case t == TypeBasicStats:
		return BasicStats{}, nil
	case strings.HasPrefix(t, TypeTimestamp):
		return NewTimestamp(t)
	default:
		if log != nil {
			log.Warnf("[WARN] Unknown analysis_type %q, treating as %q", analysisType, TypeNone)
		}
		return None{}, nil
	}
}

// Known reports whether New recognizes the analysis type without falling
// back to "none".
func Known(analysisType string) bool {
	t := strings.TrimSpace(analysisType)
	return t == "" || t == TypeNone || t == TypeBasicStats || strings.HasPrefix(t, TypeTimestamp)
}

// Run analyzes one task result and fills in the report envelope.
// Run 分析单个任务结果并填充报告信息。
func Run(task model.AnalysisTask, result model.TaskResult, a Analyzer) (model.AnalysisResult, error) {
	out := model.AnalysisResult{
		TaskID:       task.ID,
		TopicName:    task.TopicName,
		AnalysisType: task.AnalysisType,
		RowCount:     result.Len(),
	}
	if out.AnalysisType == "" {
		out.AnalysisType = TypeNone
	}
	if n := result.Len(); n > 0 {
		out.StartTimeNs = result.Rows[0].TimestampNs
		out.EndTimeNs = result.Rows[n-1].TimestampNs
	}

	summary, err := a.Analyze(result)
	if err != nil {
		return out, err
	}
	out.Summary = summary
	return out, nil
}

// None performs no analysis.
type None struct{}

// Type returns "none".
func (None) Type() string { return TypeNone }

// Analyze returns an empty summary.
func (None) Analyze(model.TaskResult) (model.Summary, error) {
	return model.Summary{}, nil
}
