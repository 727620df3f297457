package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livp123/mcapstat/internal/model"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

func testMessage() model.Message {
	return model.Message{
		"header": model.Message{
			"stamp": model.Message{"sec": int64(10), "nanosec": int64(500)},
			"frame": nil,
		},
		"data":    []any{int64(1), int64(2), int64(3), int64(4)},
		"payload": []byte{0xaa, 0xbb},
		"points":  []any{model.Message{"x": 1.5}, model.Message{"x": 2.5}},
		"matrix":  []any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}},
	}
}

// TestPath_Resolve tests dotted and indexed access
// TestPath_Resolve 测试点号与下标访问
func TestPath_Resolve(t *testing.T) {
	tests := []struct {
		path     string
		expected any
	}{
		{"header.stamp.sec", int64(10)},
		{"data[3]", int64(4)},
		{"data[-1]", int64(4)},
		{"payload[1]", int64(0xbb)},
		{"points[1].x", 2.5},
		{"matrix[1][0]", int64(3)},
		{"header.frame", nil},
	}

	msg := testMessage()
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := CompilePath(tt.path)
			require.NoError(t, err)
			got, err := p.Resolve(msg)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestPath_NotFound tests that missing segments are FieldNotFound
// TestPath_NotFound 测试缺失路径段返回 FieldNotFound
func TestPath_NotFound(t *testing.T) {
	msg := testMessage()
	for _, path := range []string{"header.stamp.usec", "data[4]", "data[-5]", "header.stamp.sec.x", "header[0]", "missing"} {
		t.Run(path, func(t *testing.T) {
			p, err := CompilePath(path)
			require.NoError(t, err)
			_, err = p.Resolve(msg)
			assert.True(t, errors.Is(err, mcaperrors.ErrFieldNotFound), "got %v", err)
		})
	}
}

func TestCompilePath_Invalid(t *testing.T) {
	for _, path := range []string{"", "1abc", "a..b", "a[x]", "a[1", "a b"} {
		_, err := CompilePath(path)
		assert.True(t, errors.Is(err, mcaperrors.ErrConfigInvalid), "path %q: %v", path, err)
	}
}

func TestFlattenPath(t *testing.T) {
	assert.Equal(t, "header_stamp_sec", flattenPath("header.stamp.sec"))
	assert.Equal(t, "data_3", flattenPath("data[3]"))
	assert.Equal(t, "data_m1", flattenPath("data[-1]"))
	assert.Equal(t, "points_0_x", flattenPath("points[0].x"))
	assert.Equal(t, "_in", flattenPath("in"))
	assert.Equal(t, "_nil", flattenPath("nil"))
	assert.Equal(t, "pose_in", flattenPath("pose.in"))
}
