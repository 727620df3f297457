package extract

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// TestParseDirective tests the directive grammar
// TestParseDirective 测试指令语法
func TestParseDirective(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Directive
		wantErr  bool
	}{
		{"Default keyword", "default", Directive{Kind: DirectiveDefault}, false},
		{"Type cast", "type:int32", Directive{Kind: DirectiveTypeCast, TypeName: "int32"}, false},
		{"Byte range typed", "byte:0-8,type:float64", Directive{Kind: DirectiveByteRange, Start: 0, Length: 8, TypeName: "float64"}, false},
		{"Byte range spaced", "byte:4-2, type:uint16", Directive{Kind: DirectiveByteRange, Start: 4, Length: 2, TypeName: "uint16"}, false},
		{"Byte range untyped", "byte:2-3", Directive{Kind: DirectiveByteRange, Start: 2, Length: 3}, false},
		{"Unknown cast type", "type:complex128", Directive{}, true},
		{"Unsupported byte type", "byte:0-8,type:int128", Directive{}, true},
		{"Width mismatch", "byte:0-4,type:float64", Directive{}, true},
		{"Zero length", "byte:0-0", Directive{}, true},
		{"Unknown syntax", "scale:10", Directive{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDirective(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, mcaperrors.ErrConfigInvalid), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

// TestByteRange_RoundTrip tests decode-then-encode over every numeric format
// TestByteRange_RoundTrip 测试所有数值格式的解码再编码往返
func TestByteRange_RoundTrip(t *testing.T) {
	le := binary.LittleEndian
	encode := map[string]func(v any) []byte{
		"int8":    func(v any) []byte { return []byte{byte(int8(v.(int64)))} },
		"uint8":   func(v any) []byte { return []byte{byte(v.(int64))} },
		"int16":   func(v any) []byte { return le.AppendUint16(nil, uint16(int16(v.(int64)))) },
		"uint16":  func(v any) []byte { return le.AppendUint16(nil, uint16(v.(int64))) },
		"int32":   func(v any) []byte { return le.AppendUint32(nil, uint32(int32(v.(int64)))) },
		"uint32":  func(v any) []byte { return le.AppendUint32(nil, uint32(v.(int64))) },
		"int64":   func(v any) []byte { return le.AppendUint64(nil, uint64(v.(int64))) },
		"uint64":  func(v any) []byte { return le.AppendUint64(nil, v.(uint64)) },
		"float32": func(v any) []byte { return le.AppendUint32(nil, math.Float32bits(float32(v.(float64)))) },
		"float64": func(v any) []byte { return le.AppendUint64(nil, math.Float64bits(v.(float64))) },
	}

	samples := [][]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
		{0x80, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x80},
		{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0xf0, 0x3f},
	}

	for typeName, width := range byteWidths {
		for _, sample := range samples {
			original := sample[:width]
			// Skip NaN payloads for floats: their bits need not survive a float32/float64 trip.
			if typeName == "float32" && math.IsNaN(float64(math.Float32frombits(le.Uint32(original)))) {
				continue
			}
			if typeName == "float64" && math.IsNaN(math.Float64frombits(le.Uint64(original))) {
				continue
			}

			d, err := ParseDirective("byte:0-" + itoa(width) + ",type:" + typeName)
			require.NoError(t, err)

			decoded, err := d.Apply(append([]byte(nil), original...))
			require.NoError(t, err, typeName)
			assert.Equal(t, original, encode[typeName](decoded), "type %s sample %x", typeName, original)
		}
	}
}

func itoa(i int) string {
	return string(rune('0' + i))
}

// TestByteRange_ShortSliceIsFieldNotFound tests that a short input skips the row
// TestByteRange_ShortSliceIsFieldNotFound 测试输入过短时跳过该行
func TestByteRange_ShortSliceIsFieldNotFound(t *testing.T) {
	d, err := ParseDirective("byte:0-4,type:uint32")
	require.NoError(t, err)

	_, err = d.Apply([]byte{1, 2, 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, mcaperrors.ErrFieldNotFound))

	_, err = d.Apply([]any{int64(1), int64(2), int64(3)})
	assert.True(t, errors.Is(err, mcaperrors.ErrFieldNotFound))

	// Start past the end clamps to an empty slice
	// 起始位置超出末尾时得到空切片
	d, err = ParseDirective("byte:10-2")
	require.NoError(t, err)
	_, err = d.Apply([]byte{1, 2, 3})
	assert.True(t, errors.Is(err, mcaperrors.ErrFieldNotFound))
}

// TestByteRange_Inputs tests accepted and rejected raw values
// TestByteRange_Inputs 测试可接受与拒绝的原始值
func TestByteRange_Inputs(t *testing.T) {
	d, err := ParseDirective("byte:1-2")
	require.NoError(t, err)

	v, err := d.Apply([]any{int64(9), int64(0xab), int64(0xcd), int64(7)})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xab, 0xcd}, v)

	typed, err := ParseDirective("byte:1-2,type:uint16")
	require.NoError(t, err)
	v, err = typed.Apply([]byte{9, 0x34, 0x12})
	require.NoError(t, err)
	assert.Equal(t, int64(0x1234), v)

	for _, bad := range []any{"abc", int64(4), nil, []any{int64(1), int64(256), int64(3)}, []any{"a", "b", "c"}} {
		_, err := d.Apply(bad)
		assert.True(t, errors.Is(err, mcaperrors.ErrCoercion), "input %v: %v", bad, err)
	}
}

// TestTypeCast tests scalar reinterpretation
// TestTypeCast 测试标量类型转换
func TestTypeCast(t *testing.T) {
	tests := []struct {
		typeName string
		in       any
		expected any
		wantErr  bool
	}{
		{"int32", 12.9, int64(12), false},
		{"int32", -12.9, int64(-12), false},
		{"int8", int64(127), int64(127), false},
		{"int8", int64(128), nil, true},
		{"uint8", int64(-1), nil, true},
		{"uint16", "65535", int64(65535), false},
		{"uint64", uint64(math.MaxUint64), uint64(math.MaxUint64), false},
		{"int64", math.NaN(), nil, true},
		{"int64", math.Inf(1), nil, true},
		{"float64", int64(3), 3.0, false},
		{"float32", 0.1, float64(float32(0.1)), false},
		{"float32", 1e300, nil, true},
		{"bool", int64(0), false, false},
		{"bool", "true", true, false},
		{"int", " 42 ", int64(42), false},
		{"float", "abc", nil, true},
		{"int32", []any{int64(1)}, nil, true},
		{"int32", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			d, err := ParseDirective("type:" + tt.typeName)
			require.NoError(t, err)
			got, err := d.Apply(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, mcaperrors.ErrCoercion), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDefaultPassThrough(t *testing.T) {
	d := Directive{Kind: DirectiveDefault}
	v, err := d.Apply("anything")
	require.NoError(t, err)
	assert.Equal(t, "anything", v)
	assert.Equal(t, "default", d.String())
}
