package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/buger/jsonparser"
	"github.com/nxadm/tail"

	"github.com/livp123/mcapstat/internal/model"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// JSONLOpener reads decoded-record exports: one JSON object per line with
// "topic", "log_time" (nanoseconds) and "message" keys. Byte arrays are
// written as JSON arrays of integers.
// JSONLOpener 读取每行一个 JSON 对象的解码记录导出文件。
type JSONLOpener struct{}

// Open starts reading path from the beginning. The file is read once,
// without following appended data.
func (JSONLOpener) Open(path string, topics []string) (Reader, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, mcaperrors.NewContainerReadError(path, err)
	}

	var filter map[string]bool
	if len(topics) > 0 {
		filter = make(map[string]bool, len(topics))
		for _, topic := range topics {
			filter[topic] = true
		}
	}
	return &jsonlReader{path: path, tail: t, topics: filter}, nil
}

type jsonlReader struct {
	path   string
	tail   *tail.Tail
	topics map[string]bool
}

func (r *jsonlReader) Next() (Record, error) {
	for {
		line, ok := <-r.tail.Lines
		if !ok {
			if err := r.tail.Wait(); err != nil {
				return Record{}, mcaperrors.NewContainerReadError(r.path, err)
			}
			return Record{}, io.EOF
		}
		if line.Err != nil {
			return Record{}, mcaperrors.NewContainerReadError(r.path, line.Err)
		}

		text := bytes.TrimSpace([]byte(line.Text))
		if len(text) == 0 {
			continue
		}

		rec, keep, err := r.decode(text)
		if err != nil {
			return Record{}, mcaperrors.NewContainerReadError(r.path, fmt.Errorf("line %d: %w", line.Num, err))
		}
		if keep {
			return rec, nil
		}
	}
}

// decode reads the record header with jsonparser and only decodes the
// message body for wanted topics.
func (r *jsonlReader) decode(line []byte) (Record, bool, error) {
	if !json.Valid(line) {
		return Record{}, false, fmt.Errorf("invalid JSON")
	}

	topic, err := jsonparser.GetString(line, "topic")
	if err != nil || topic == "" {
		return Record{}, false, fmt.Errorf("record has no topic")
	}
	if r.topics != nil && !r.topics[topic] {
		return Record{}, false, nil
	}

	ts, err := jsonparser.GetInt(line, "log_time")
	if err != nil {
		return Record{}, false, fmt.Errorf("log_time: %w", err)
	}

	msg := model.Message{}
	body, typ, _, err := jsonparser.Get(line, "message")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError) || typ == jsonparser.Null:
	case err != nil:
		return Record{}, false, fmt.Errorf("message: %w", err)
	case typ != jsonparser.Object:
		return Record{}, false, fmt.Errorf("message is %s, want object", typ)
	default:
		var raw map[string]any
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return Record{}, false, fmt.Errorf("message: %w", err)
		}
		msg = model.Normalize(raw).(model.Message)
	}

	return Record{Topic: topic, LogTimeNs: ts, Message: msg}, true, nil
}

// Close stops the underlying reader and releases the file.
func (r *jsonlReader) Close() error {
	return r.tail.Stop()
}
