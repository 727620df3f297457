// Package source is the boundary to the log decoder: it finds input files and
// turns each one into an ordered stream of decoded records.
//
// source 包是与日志解码器之间的边界：发现输入文件并将其转换为有序的解码记录流。
package source

import (
	"io"

	"github.com/livp123/mcapstat/internal/model"
)

// Record is one decoded message with its channel and log time.
// Record 是带有主题与日志时间的一条解码消息。
type Record struct {
	Topic     string
	LogTimeNs int64
	Message   model.Message
}

// Reader yields records in log order. Next returns io.EOF after the last
// record; any other error ends the file.
// Reader 按日志顺序产出记录。
type Reader interface {
	Next() (Record, error)
	Close() error
}

// Opener opens one input file, yielding only records on the given topics
// (all topics when the list is empty).
// Opener 打开单个输入文件，仅产出指定主题的记录。
type Opener interface {
	Open(path string, topics []string) (Reader, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string, topics []string) (Reader, error)

// Open calls f.
func (f OpenerFunc) Open(path string, topics []string) (Reader, error) {
	return f(path, topics)
}

// SliceReader replays a fixed record list. Useful for tests and for callers
// that already hold decoded records in memory.
type SliceReader struct {
	Records []Record
	pos     int
	closed  bool
}

// Next returns the next record or io.EOF.
func (r *SliceReader) Next() (Record, error) {
	if r.pos >= len(r.Records) {
		return Record{}, io.EOF
	}
	rec := r.Records[r.pos]
	r.pos++
	return rec, nil
}

// Close marks the reader closed.
func (r *SliceReader) Close() error {
	r.closed = true
	return nil
}

// Closed reports whether Close was called.
func (r *SliceReader) Closed() bool { return r.closed }
