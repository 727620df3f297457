// Package dispatch routes decoded records to the processors subscribed to
// their topic and collects per-task row series across input files.
//
// dispatch 包将解码记录按主题分发给对应的处理器，并跨文件汇总每个任务的数据行。
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/livp123/mcapstat/internal/extract"
	"github.com/livp123/mcapstat/internal/metrics"
	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/source"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// Dispatcher owns a static topic routing table. It is read-only after New.
// Dispatcher 持有静态的主题路由表，构造后只读。
type Dispatcher struct {
	routes     map[string][]*extract.Processor
	processors []*extract.Processor
	opener     source.Opener
	log        *zap.SugaredLogger
	workers    int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers scans up to n files concurrently. Results are still merged in
// file order.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// New builds the routing table. Several processors may share a topic.
func New(processors []*extract.Processor, opener source.Opener, log *zap.SugaredLogger, opts ...Option) *Dispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	d := &Dispatcher{
		routes:     make(map[string][]*extract.Processor),
		processors: processors,
		opener:     opener,
		log:        log,
		workers:    1,
	}
	for _, p := range processors {
		d.routes[p.Topic()] = append(d.routes[p.Topic()], p)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Topics lists the subscribed topics, sorted.
func (d *Dispatcher) Topics() []string {
	topics := make([]string, 0, len(d.routes))
	for t := range d.routes {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}

// fileRows is the output of scanning one file.
type fileRows struct {
	rows map[string][]model.Row
	err  error
}

// Run scans files in natural filename order and returns one TaskResult per
// processor. A file that fails to open or read is logged and skipped; rows
// read from it before the failure are kept. Cancelling ctx stops the run and
// returns what was collected so far together with ErrCanceled.
// Run 按自然文件名顺序扫描文件，返回每个处理器的 TaskResult。
func (d *Dispatcher) Run(ctx context.Context, files []string) (map[string]model.TaskResult, error) {
	ordered := append([]string(nil), files...)
	source.SortNatural(ordered)

	results := make(map[string]model.TaskResult, len(d.processors))
	for _, p := range d.processors {
		task := p.Task()
		results[task.ID] = model.TaskResult{
			TaskID:     task.ID,
			TopicName:  task.TopicName,
			FieldNames: append([]string(nil), task.FieldNames...),
		}
	}
	if len(d.processors) == 0 {
		return results, nil
	}

	merge := func(path string, fr fileRows) {
		if fr.err != nil && !errors.Is(fr.err, mcaperrors.ErrCanceled) {
			metrics.FileErrors.Inc()
			d.log.Warnf("[WARN] Skipping rest of %s: %v", path, fr.err)
		} else if fr.err == nil {
			metrics.FilesProcessed.Inc()
		}
		for id, rows := range fr.rows {
			r := results[id]
			r.Rows = append(r.Rows, rows...)
			results[id] = r
		}
	}

	if d.workers <= 1 || len(ordered) <= 1 {
		for _, path := range ordered {
			if ctx.Err() != nil {
				break
			}
			merge(path, d.scanFile(ctx, path))
		}
	} else {
		for i, fr := range d.scanParallel(ctx, ordered) {
			merge(ordered[i], fr)
		}
	}

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("%w: %v", mcaperrors.ErrCanceled, err)
	}
	return results, nil
}

// scanParallel scans files with a fixed worker pool. Slot i holds file i.
func (d *Dispatcher) scanParallel(ctx context.Context, files []string) []fileRows {
	out := make([]fileRows, len(files))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := d.workers
	if workers > len(files) {
		workers = len(files)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				out[idx] = d.scanFile(ctx, files[idx])
			}
		}()
	}

	for i := range files {
		if ctx.Err() != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}

// scanFile opens, reads and closes one file.
func (d *Dispatcher) scanFile(ctx context.Context, path string) fileRows {
	fr := fileRows{rows: make(map[string][]model.Row)}

	reader, err := d.opener.Open(path, d.Topics())
	if err != nil {
		if !errors.Is(err, mcaperrors.ErrContainerRead) {
			err = mcaperrors.NewContainerReadError(path, err)
		}
		fr.err = err
		return fr
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && fr.err == nil {
			d.log.Debugf("[FILE] close %s: %v", path, cerr)
		}
	}()

	d.log.Infof("[FILE] Reading %s", path)
	var count int
	for {
		if ctx.Err() != nil {
			fr.err = mcaperrors.ErrCanceled
			return fr
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !errors.Is(err, mcaperrors.ErrContainerRead) {
				err = mcaperrors.NewContainerReadError(path, err)
			}
			fr.err = err
			return fr
		}

		procs := d.routes[rec.Topic]
		if len(procs) == 0 {
			continue
		}
		metrics.MessagesTotal.WithLabelValues(rec.Topic).Inc()
		count++

		for _, p := range procs {
			if row, ok := p.Process(rec.LogTimeNs, rec.Message); ok {
				fr.rows[p.TaskID()] = append(fr.rows[p.TaskID()], row)
			}
		}
	}

	d.log.Debugf("[FILE] %s: %d routed messages", path, count)
	return fr
}
