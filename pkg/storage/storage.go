// Package storage persists task row series so they can be inspected or
// re-analyzed later.
// storage 包持久化任务数据行序列，便于之后检查或重新分析。
package storage

import (
	"github.com/livp123/mcapstat/internal/model"
)

// Column names shared by every persisted result.
const (
	ColumnTimestamp   = "mcap_timestamp_ns"
	ColumnParsedValue = "parsed_value"
	RawColumnPrefix   = "raw_"
)

// Store is the interface for persisting task results
// Store 是持久化任务结果的接口。
type Store interface {
	// Save writes one task result and returns where it was written.
	// Save 写入单个任务结果并返回写入位置。
	Save(result model.TaskResult) (string, error)

	// Load reads a result written by Save. Only ParsedValue and TimestampNs
	// are needed by analyzers; raw columns come back as scalars or strings.
	// Load 读取 Save 写入的结果。
	Load(path string) (model.TaskResult, error)
}
