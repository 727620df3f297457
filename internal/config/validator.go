package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/livp123/mcapstat/internal/analysis"
	"github.com/livp123/mcapstat/internal/extract"
	"github.com/livp123/mcapstat/internal/model"
)

// ValidationError represents one task that cannot run.
// ValidationError 表示一个无法运行的任务。
type ValidationError struct {
	TaskID string `json:"task_id" yaml:"task_id"`
	Stage  string `json:"stage" yaml:"stage"` // "extract" or "analysis"
	Err    error  `json:"-" yaml:"-"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("task %s (%s): %v", e.TaskID, e.Stage, e.Err)
}

// ValidationWarning represents a task that runs with degraded behavior.
// ValidationWarning 表示一个会降级运行的任务。
type ValidationWarning struct {
	TaskID  string `json:"task_id" yaml:"task_id"`
	Message string `json:"message" yaml:"message"`
}

// ValidationResult collects per-task findings.
// ValidationResult 汇总每个任务的检查结果。
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationWarning
	// Processors holds the compiled tasks that passed, in config order.
	Processors []*extract.Processor
	// Analyzers maps task id to its analyzer.
	Analyzers map[string]analysis.Analyzer
}

// AddError adds a task error.
// AddError 添加任务错误。
func (r *ValidationResult) AddError(taskID, stage string, err error) {
	r.Errors = append(r.Errors, ValidationError{TaskID: taskID, Stage: stage, Err: err})
	r.Valid = false
}

// AddWarning adds a task warning.
// AddWarning 添加任务警告。
func (r *ValidationResult) AddWarning(taskID, message string) {
	r.Warnings = append(r.Warnings, ValidationWarning{TaskID: taskID, Message: message})
}

// CompileTasks builds a processor and an analyzer for every task. A task
// that fails either step is reported and left out; the others still run.
// CompileTasks 为每个任务构建处理器与分析器，失败的任务被跳过。
func CompileTasks(tasks []model.AnalysisTask, log *zap.SugaredLogger) *ValidationResult {
	result := &ValidationResult{
		Valid:     true,
		Analyzers: make(map[string]analysis.Analyzer, len(tasks)),
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	for _, task := range tasks {
		p, err := extract.NewProcessor(task, log)
		if err != nil {
			result.AddError(task.ID, "extract", err)
			continue
		}

		if !analysis.Known(task.AnalysisType) {
			result.AddWarning(task.ID, fmt.Sprintf("unknown analysis_type %q, treated as %q", task.AnalysisType, analysis.TypeNone))
		}
		a, err := analysis.New(task.AnalysisType, log)
		if err != nil {
			result.AddError(task.ID, "analysis", err)
			continue
		}

		result.Processors = append(result.Processors, p)
		result.Analyzers[task.ID] = a
	}
	return result
}
