// Package app wires discovery, extraction, analysis and reporting into the
// operations exposed by the command line.
//
// app 包将文件发现、字段提取、分析与报告组合为命令行操作。
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/livp123/mcapstat/internal/analysis"
	"github.com/livp123/mcapstat/internal/config"
	"github.com/livp123/mcapstat/internal/dispatch"
	"github.com/livp123/mcapstat/internal/metrics"
	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/report"
	"github.com/livp123/mcapstat/internal/source"
	"github.com/livp123/mcapstat/internal/utils/fileutil"
	"github.com/livp123/mcapstat/internal/utils/logger"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
	"github.com/livp123/mcapstat/pkg/storage"
)

// Options adjusts a single Analyze call. Zero values fall back to the
// configuration or to production defaults.
// Options 调整单次 Analyze 调用，零值使用配置或默认值。
type Options struct {
	Opener source.Opener
	Stdout io.Writer
	Now    func() time.Time
}

// RunSummary describes what one analysis run produced.
// RunSummary 描述一次分析运行的产出。
type RunSummary struct {
	RunDir   string
	Files    []string
	CSVFiles []string
	Outputs  []string
	Report   *report.Report
}

func (o Options) withDefaults() Options {
	if o.Opener == nil {
		o.Opener = source.JSONLOpener{}
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Analyze runs every configured task over the files found at src and
// writes CSVs and reports into a fresh run directory.
// Analyze 对 src 中的文件执行所有任务，并将 CSV 与报告写入新的运行目录。
func Analyze(ctx context.Context, cfg *config.Config, src string, opts Options) (*RunSummary, error) {
	log := logger.Get(ctx)
	opts = opts.withDefaults()
	cfg.ApplyDefaults()
	started := opts.Now()

	files, err := source.Discover(src, cfg.FilePattern)
	if err != nil {
		return nil, err
	}
	log.Infof("[SCAN] Found %d input file(s) under %s", len(files), src)

	rep := report.New(started, files)
	compiled := compileTasks(ctx, cfg, rep)
	if len(compiled.Processors) == 0 {
		return nil, mcaperrors.NewConfigError("analyses", "no runnable tasks")
	}

	d := dispatch.New(compiled.Processors, opts.Opener, log, dispatch.WithWorkers(cfg.Workers))
	results, err := d.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	runDir, err := fileutil.CreateRunDir(cfg.OutputDir, started)
	if err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	log.Infof("[OUT] Writing results to %s", runDir)

	summary := &RunSummary{RunDir: runDir, Files: files, Report: rep}
	store := storage.NewCSVStore(runDir)

	for _, p := range compiled.Processors {
		task := p.Task()
		result := results[task.ID]
		if result.Len() == 0 {
			log.Warnf("[WARN]  Task %s: no rows extracted from topic %s, skipping", task.ID, task.TopicName)
			rep.Skip(task.ID, task.TopicName, "no rows extracted")
			continue
		}

		if cfg.SaveCSV {
			path, err := store.Save(result)
			if err != nil {
				log.Errorf("[ERROR] Task %s: failed to save CSV: %v", task.ID, err)
			} else {
				summary.CSVFiles = append(summary.CSVFiles, path)
				log.Debugf("Task %s: %d rows saved to %s", task.ID, result.Len(), path)
			}
		}

		res, err := analysis.Run(task, result, compiled.Analyzers[task.ID])
		if err != nil {
			log.Errorf("[ERROR] Task %s: analysis failed: %v", task.ID, err)
			metrics.TasksFailed.WithLabelValues("analysis").Inc()
			rep.Skip(task.ID, task.TopicName, err.Error())
			continue
		}
		rep.Add(res)
	}

	if err := rep.Console(opts.Stdout); err != nil {
		log.Warnf("[WARN]  Failed to print console report: %v", err)
	}
	outputs, err := rep.WriteFiles(runDir)
	if err != nil {
		return summary, err
	}
	summary.Outputs = outputs

	metrics.RunDuration.Set(opts.Now().Sub(started).Seconds())
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warnf("[WARN]  Failed to write metrics to %s: %v", cfg.MetricsFile, err)
		}
	}

	log.Infof("[OK] Analysis finished: %d task(s) reported, %d skipped", len(rep.Results), len(rep.Skipped))
	return summary, nil
}

// compileTasks builds the runnable tasks and records the broken ones in
// the report.
func compileTasks(ctx context.Context, cfg *config.Config, rep *report.Report) *config.ValidationResult {
	log := logger.Get(ctx)
	compiled := config.CompileTasks(cfg.Analyses, log)

	topics := make(map[string]string, len(cfg.Analyses))
	for _, task := range cfg.Analyses {
		topics[task.ID] = task.TopicName
	}
	for _, w := range compiled.Warnings {
		log.Warnf("[WARN]  Task %s: %s", w.TaskID, w.Message)
	}
	for _, e := range compiled.Errors {
		log.Errorf("[ERROR] %v", e)
		metrics.TasksFailed.WithLabelValues(e.Stage).Inc()
		rep.Skip(e.TaskID, topics[e.TaskID], e.Err.Error())
	}
	return compiled
}

// Validate compiles every task without reading any data.
// Validate 编译所有任务但不读取数据。
func Validate(ctx context.Context, cfg *config.Config) (*config.ValidationResult, error) {
	compiled := config.CompileTasks(cfg.Analyses, logger.Get(ctx))
	if !compiled.Valid {
		return compiled, fmt.Errorf("%w: %d of %d task(s) failed to compile",
			mcaperrors.ErrConfigInvalid, len(compiled.Errors), len(cfg.Analyses))
	}
	return compiled, nil
}

// Reanalyze loads a task CSV written by a previous run and analyzes it
// with analysisType, printing the console summary to w.
// Reanalyze 加载之前保存的任务 CSV 并重新分析。
func Reanalyze(ctx context.Context, csvPath, analysisType string, w io.Writer) (model.AnalysisResult, error) {
	log := logger.Get(ctx)

	result, err := storage.NewCSVStore("").Load(csvPath)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	log.Infof("[LOAD] Loaded %d rows for task %s from %s", result.Len(), result.TaskID, csvPath)

	a, err := analysis.New(analysisType, log)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	task := model.AnalysisTask{ID: result.TaskID, TopicName: result.TopicName, AnalysisType: a.Type()}
	if analysisType != "" && analysis.Known(analysisType) {
		task.AnalysisType = analysisType
	}

	res, err := analysis.Run(task, result, a)
	if err != nil {
		return res, err
	}

	rep := report.New(time.Now(), []string{csvPath})
	rep.Add(res)
	if w != nil {
		if err := rep.Console(w); err != nil {
			return res, err
		}
	}
	return res, nil
}
