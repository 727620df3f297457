package extract

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livp123/mcapstat/internal/metrics"
	"github.com/livp123/mcapstat/internal/model"
	"github.com/livp123/mcapstat/internal/utils/logger"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

func newTestProcessor(t *testing.T, task model.AnalysisTask) *Processor {
	t.Helper()
	p, err := NewProcessor(task, logger.Nop())
	require.NoError(t, err)
	return p
}

// TestProcessor_Extract tests a full row extraction
// TestProcessor_Extract 测试完整的行提取
func TestProcessor_Extract(t *testing.T) {
	p := newTestProcessor(t, model.AnalysisTask{
		ID:          "stamp",
		TopicName:   "/imu",
		FieldNames:  model.FieldList{"header.stamp.sec", "header.stamp.nanosec"},
		ParseString: "header.stamp.sec * 1000000000 + header.stamp.nanosec",
	})
	assert.Equal(t, "stamp", p.TaskID())
	assert.Equal(t, "/imu", p.Topic())
	assert.Equal(t, "header_stamp_sec * 1000000000 + header_stamp_nanosec", p.Expression())

	row, err := p.Extract(42, testMessage())
	require.NoError(t, err)
	assert.Equal(t, int64(42), row.TimestampNs)
	assert.Equal(t, int64(10_000_000_500), row.ParsedValue)
	assert.Equal(t, map[string]any{"header.stamp.sec": int64(10), "header.stamp.nanosec": int64(500)}, row.Raw)
}

// TestProcessor_ByteFields tests byte-range directives inside a task
// TestProcessor_ByteFields 测试任务中的字节范围指令
func TestProcessor_ByteFields(t *testing.T) {
	p := newTestProcessor(t, model.AnalysisTask{
		ID:          "bytes",
		TopicName:   "/can",
		FieldNames:  model.FieldList{"data", "payload"},
		ParseString: "data(byte:0-2,type:uint16) + payload(byte:1-1,type:uint8)",
	})

	row, err := p.Extract(1, testMessage())
	require.NoError(t, err)
	// data = [1,2,3,4] -> 0x0201, payload[1] = 0xbb
	assert.Equal(t, int64(0x0201+0xbb), row.ParsedValue)
}

// TestProcessor_ShortInputSkipsRow tests a 3-byte input against a uint32 range
// TestProcessor_ShortInputSkipsRow 测试 3 字节输入对应 uint32 范围时跳过该行
func TestProcessor_ShortInputSkipsRow(t *testing.T) {
	p := newTestProcessor(t, model.AnalysisTask{
		ID:          "short_input",
		TopicName:   "/raw",
		FieldNames:  model.FieldList{"blob"},
		ParseString: "blob(byte:0-4,type:uint32)",
	})

	_, err := p.Extract(1, model.Message{"blob": []byte{1, 2, 3}})
	assert.True(t, errors.Is(err, mcaperrors.ErrFieldNotFound))

	before := testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("short_input", "field_not_found"))
	_, ok := p.Process(1, model.Message{"blob": []byte{1, 2, 3}})
	assert.False(t, ok)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RowsSkipped.WithLabelValues("short_input", "field_not_found")))

	row, ok := p.Process(2, model.Message{"blob": []byte{1, 0, 0, 0}})
	assert.True(t, ok)
	assert.Equal(t, int64(1), row.ParsedValue)
}

// TestProcessor_SkipReasons tests per-message failures
// TestProcessor_SkipReasons 测试单条消息失败原因
func TestProcessor_SkipReasons(t *testing.T) {
	p := newTestProcessor(t, model.AnalysisTask{
		ID:          "ratio",
		TopicName:   "/odom",
		FieldNames:  model.FieldList{"a", "b"},
		ParseString: "a(type:int8) / b",
	})

	tests := []struct {
		name   string
		msg    model.Message
		reason string
	}{
		{"Missing field", model.Message{"a": int64(1)}, "field_not_found"},
		{"Coercion", model.Message{"a": int64(1000), "b": int64(1)}, "coercion"},
		{"Division by zero", model.Message{"a": int64(1), "b": int64(0)}, "expression"},
		{"Non-numeric", model.Message{"a": int64(1), "b": "x"}, "expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Extract(0, tt.msg)
			require.Error(t, err)
			assert.Equal(t, tt.reason, SkipReason(err))
		})
	}
}

// TestProcessor_ReservedWordFields tests top-level fields named like
// expression keywords
// TestProcessor_ReservedWordFields 测试与表达式关键字同名的顶层字段
func TestProcessor_ReservedWordFields(t *testing.T) {
	p := newTestProcessor(t, model.AnalysisTask{
		ID:          "keywords",
		TopicName:   "/odd",
		FieldNames:  model.FieldList{"in", "not", "nil"},
		ParseString: "in * 2 + not - nil",
	})

	row, err := p.Extract(1, model.Message{"in": int64(3), "not": int64(1), "nil": int64(4)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), row.ParsedValue)
	assert.Equal(t, map[string]any{"in": int64(3), "not": int64(1), "nil": int64(4)}, row.Raw)
}

// TestNewProcessor_ConfigErrors tests that bad tasks fail at construction
// TestNewProcessor_ConfigErrors 测试错误任务在构造时失败
func TestNewProcessor_ConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		task     model.AnalysisTask
		sentinel error
	}{
		{"Missing id", model.AnalysisTask{TopicName: "/t", FieldNames: model.FieldList{"a"}, ParseString: "a"}, mcaperrors.ErrConfigInvalid},
		{"Missing topic", model.AnalysisTask{ID: "x", FieldNames: model.FieldList{"a"}, ParseString: "a"}, mcaperrors.ErrConfigInvalid},
		{"Unsupported byte type", model.AnalysisTask{ID: "x", TopicName: "/t", FieldNames: model.FieldList{"a"}, ParseString: "a(byte:0-16,type:float128)"}, mcaperrors.ErrConfigInvalid},
		{"Undeclared identifier", model.AnalysisTask{ID: "x", TopicName: "/t", FieldNames: model.FieldList{"a"}, ParseString: "a + b"}, mcaperrors.ErrExpression},
		{"Function call", model.AnalysisTask{ID: "x", TopicName: "/t", FieldNames: model.FieldList{"a"}, ParseString: "abs(a)"}, mcaperrors.ErrExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProcessor(tt.task, logger.Nop())
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
		})
	}
}
