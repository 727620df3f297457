package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/utils/fileutil"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// CSVStore keeps one <task_id>.csv per task in Dir.
// CSVStore 在 Dir 目录中为每个任务保存一个 CSV 文件。
type CSVStore struct {
	Dir string
}

// NewCSVStore creates a CSV-backed store.
// NewCSVStore 创建基于 CSV 的存储。
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Dir: dir}
}

// Path returns the file a task is saved to.
func (s *CSVStore) Path(taskID string) string {
	return filepath.Join(s.Dir, taskID+".csv")
}

// Save writes the header mcap_timestamp_ns, raw_<field>..., parsed_value and
// one line per row.
func (s *CSVStore) Save(result model.TaskResult) (string, error) {
	if result.TaskID == "" || strings.ContainsAny(result.TaskID, `/\`) {
		return "", fmt.Errorf("%w: task id %q", mcaperrors.ErrInvalidFilePath, result.TaskID)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, len(result.FieldNames)+2)
	header = append(header, ColumnTimestamp)
	for _, f := range result.FieldNames {
		header = append(header, RawColumnPrefix+f)
	}
	header = append(header, ColumnParsedValue)
	if err := w.Write(header); err != nil {
		return "", err
	}

	record := make([]string, len(header))
	for _, row := range result.Rows {
		record[0] = strconv.FormatInt(row.TimestampNs, 10)
		for i, f := range result.FieldNames {
			cell, err := formatCell(row.Raw[f])
			if err != nil {
				return "", fmt.Errorf("row %d field %s: %w", row.TimestampNs, f, err)
			}
			record[i+1] = cell
		}
		cell, err := formatCell(row.ParsedValue)
		if err != nil {
			return "", fmt.Errorf("row %d parsed_value: %w", row.TimestampNs, err)
		}
		record[len(record)-1] = cell
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	path := s.Path(result.TaskID)
	if err := os.MkdirAll(filepath.Clean(s.Dir), 0o755); err != nil {
		return "", err
	}
	if err := fileutil.AtomicWriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a CSV written by Save. The task id is taken from the file name.
func (s *CSVStore) Load(path string) (model.TaskResult, error) {
	safePath := filepath.Clean(path)
	f, err := os.Open(safePath) // #nosec G304 // path is sanitized with filepath.Clean
	if err != nil {
		return model.TaskResult{}, mcaperrors.NewFileError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return model.TaskResult{}, fmt.Errorf("%s: read header: %w", path, err)
	}
	tsCol, valCol := -1, -1
	var fields []string
	fieldCols := map[int]string{}
	for i, name := range header {
		switch {
		case name == ColumnTimestamp:
			tsCol = i
		case name == ColumnParsedValue:
			valCol = i
		case strings.HasPrefix(name, RawColumnPrefix):
			field := strings.TrimPrefix(name, RawColumnPrefix)
			fields = append(fields, field)
			fieldCols[i] = field
		}
	}
	if valCol < 0 {
		return model.TaskResult{}, fmt.Errorf("%w: %s has no %s column", mcaperrors.ErrConfigInvalid, path, ColumnParsedValue)
	}

	result := model.TaskResult{
		TaskID:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FieldNames: fields,
	}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return result, fmt.Errorf("%s:%d: %w", path, line, err)
		}

		row := model.Row{ParsedValue: parseCell(rec[valCol])}
		if tsCol >= 0 {
			ts, err := strconv.ParseInt(rec[tsCol], 10, 64)
			if err != nil {
				return result, fmt.Errorf("%s:%d: %s: %w", path, line, ColumnTimestamp, err)
			}
			row.TimestampNs = ts
		}
		if len(fieldCols) > 0 {
			row.Raw = make(map[string]any, len(fieldCols))
			for col, field := range fieldCols {
				row.Raw[field] = parseCell(rec[col])
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

// formatCell renders a value so that parseCell returns an equal scalar.
// Strings are JSON-quoted so "007" does not come back as a number.
// Composite values are written as JSON.
func formatCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return formatFloat(val), nil
	case bool:
		return strconv.FormatBool(val), nil
	case string:
		return marshalJSON(val)
	case []byte:
		ints := make([]int, len(val))
		for i, b := range val {
			ints[i] = int(b)
		}
		return marshalJSON(ints)
	default:
		return marshalJSON(val)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// parseCell is the inverse of formatCell for scalars: empty is nil, a
// JSON-quoted cell is a string, then int64, uint64, float64 and bool are
// tried before falling back to the raw text.
func parseCell(s string) any {
	if s == "" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var str string
		if err := json.Unmarshal([]byte(s), &str); err == nil {
			return str
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
