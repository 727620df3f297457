// Package extract turns decoded messages into task rows: field paths are
// resolved, each value is coerced by its directive, and the task expression is
// evaluated over the results.
//
// extract 包将解码后的消息转换为任务行。
package extract

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/livp123/mcapstat/internal/expression"
	"github.com/livp123/mcapstat/internal/metrics"
	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/utils/logger"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

type fieldPlan struct {
	name      string
	ident     string
	path      Path
	directive Directive
}

// Processor extracts rows for one analysis task. Everything it needs is
// compiled in NewProcessor; Extract keeps no state between calls.
// Processor 为单个分析任务提取数据行，所有编译工作在构造时完成。
type Processor struct {
	task    model.AnalysisTask
	fields  []fieldPlan
	program *expression.Program
	log     *zap.SugaredLogger
}

// NewProcessor compiles a task. Any error is a ConfigError (or an
// ExpressionError for a bad expression) and disables only this task.
// NewProcessor 编译任务，错误只会禁用当前任务。
func NewProcessor(task model.AnalysisTask, log *zap.SugaredLogger) (*Processor, error) {
	if log == nil {
		log = logger.Get(nil)
	}
	if task.ID == "" {
		return nil, mcaperrors.NewConfigError("id", task.ID)
	}
	if task.TopicName == "" {
		return nil, mcaperrors.NewTaskConfigError(task.ID, "topic_name is empty")
	}

	spec, err := ParseSpec(task.ParseString, task.FieldNames)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	idents := make([]string, 0, len(task.FieldNames))
	plans := make([]fieldPlan, 0, len(task.FieldNames))
	for _, name := range task.FieldNames {
		path, err := CompilePath(name)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		plans = append(plans, fieldPlan{
			name:      name,
			ident:     spec.Identifiers[name],
			path:      path,
			directive: spec.Directives[name],
		})
		idents = append(idents, spec.Identifiers[name])
	}

	program, err := expression.Compile(spec.Expression, idents)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", task.ID, err)
	}

	log.Debugf("[TASK] %s compiled: topic=%s expr=%q", task.ID, task.TopicName, spec.Expression)

	return &Processor{
		task:    task,
		fields:  plans,
		program: program,
		log:     log,
	}, nil
}

// TaskID returns the task identifier.
func (p *Processor) TaskID() string { return p.task.ID }

// Topic returns the topic the task reads.
func (p *Processor) Topic() string { return p.task.TopicName }

// Task returns the task definition.
func (p *Processor) Task() model.AnalysisTask { return p.task }

// Expression returns the bare, flattened expression.
func (p *Processor) Expression() string { return p.program.Source() }

// Directive returns the compiled directive of a declared field.
func (p *Processor) Directive(field string) (Directive, bool) {
	for _, f := range p.fields {
		if f.name == field {
			return f.directive, true
		}
	}
	return Directive{}, false
}

// Extract builds one row from a decoded message, or returns why it cannot.
// Extract 从解码消息构建一行，失败时返回原因。
func (p *Processor) Extract(timestampNs int64, msg model.Message) (model.Row, error) {
	raw := make(map[string]any, len(p.fields))
	env := make(map[string]any, len(p.fields))

	for _, f := range p.fields {
		v, err := f.path.Resolve(msg)
		if err != nil {
			return model.Row{}, err
		}
		raw[f.name] = v

		parsed, err := f.directive.Apply(v)
		if err != nil {
			return model.Row{}, fmt.Errorf("field %s: %w", f.name, err)
		}
		env[f.ident] = parsed
	}

	value, err := p.program.Eval(env)
	if err != nil {
		return model.Row{}, err
	}

	return model.Row{TimestampNs: timestampNs, Raw: raw, ParsedValue: value}, nil
}

// Process is Extract with the failure logged and counted. It reports whether
// a row was produced.
// Process 在 Extract 基础上记录并统计失败原因。
func (p *Processor) Process(timestampNs int64, msg model.Message) (model.Row, bool) {
	row, err := p.Extract(timestampNs, msg)
	if err != nil {
		reason := SkipReason(err)
		metrics.RowsSkipped.WithLabelValues(p.task.ID, reason).Inc()
		p.log.Debugf("[SKIP] task=%s ts=%d reason=%s: %v", p.task.ID, timestampNs, reason, err)
		return model.Row{}, false
	}
	metrics.RowsExtracted.WithLabelValues(p.task.ID).Inc()
	return row, true
}

// SkipReason classifies a per-message failure for metrics and logs.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, mcaperrors.ErrFieldNotFound):
		return "field_not_found"
	case errors.Is(err, mcaperrors.ErrCoercion):
		return "coercion"
	case errors.Is(err, mcaperrors.ErrExpression):
		return "expression"
	default:
		return "other"
	}
}
