package extract

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

type castKind int

const (
	castSigned castKind = iota
	castUnsigned
	castFloat
	castBool
)

type castSpec struct {
	kind castKind
	bits int
}

var castTypes = map[string]castSpec{
	"int8":    {castSigned, 8},
	"int16":   {castSigned, 16},
	"int32":   {castSigned, 32},
	"int64":   {castSigned, 64},
	"int":     {castSigned, 64},
	"uint8":   {castUnsigned, 8},
	"uint16":  {castUnsigned, 16},
	"uint32":  {castUnsigned, 32},
	"uint64":  {castUnsigned, 64},
	"uint":    {castUnsigned, 64},
	"float32": {castFloat, 32},
	"float64": {castFloat, 64},
	"float":   {castFloat, 64},
	"double":  {castFloat, 64},
	"bool":    {castBool, 1},
}

// Apply converts a raw field value according to the directive.
// Signed and narrow unsigned integers come back as int64, uint64 as uint64,
// floats as float64, and an untyped byte range as []byte.
// Apply 按指令转换原始字段值。
func (d Directive) Apply(raw any) (any, error) {
	switch d.Kind {
	case DirectiveTypeCast:
		return castValue(d.TypeName, raw)
	case DirectiveByteRange:
		return d.applyByteRange(raw)
	default:
		return raw, nil
	}
}

func (d Directive) applyByteRange(raw any) (any, error) {
	buf, err := toBytes(raw)
	if err != nil {
		return nil, err
	}

	start := d.Start
	if start > len(buf) {
		start = len(buf)
	}
	end := d.Start + d.Length
	if end > len(buf) {
		end = len(buf)
	}
	slice := buf[start:end]
	if len(slice) < d.Length {
		return nil, mcaperrors.NewFieldNotFoundError(d.String(),
			fmt.Sprintf("byte slice is shorter (%d) than the requested length (%d)", len(slice), d.Length))
	}

	if d.TypeName == "" {
		out := make([]byte, len(slice))
		copy(out, slice)
		return out, nil
	}
	return decodeLittleEndian(d.TypeName, slice)
}

func toBytes(raw any) ([]byte, error) {
	switch v := raw.(type) {
	case []byte:
		return v, nil
	case []any:
		out := make([]byte, len(v))
		for i, elem := range v {
			b, ok := byteValue(elem)
			if !ok {
				return nil, fmt.Errorf("%w: element %d (%v) is not a byte", mcaperrors.ErrCoercion, i, elem)
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: byte directive needs a byte sequence, got %T", mcaperrors.ErrCoercion, raw)
	}
}

func byteValue(v any) (byte, bool) {
	switch n := v.(type) {
	case int64:
		if n >= 0 && n <= math.MaxUint8 {
			return byte(n), true
		}
	case uint64:
		if n <= math.MaxUint8 {
			return byte(n), true
		}
	case int:
		if n >= 0 && n <= math.MaxUint8 {
			return byte(n), true
		}
	case float64:
		if n >= 0 && n <= math.MaxUint8 && n == math.Trunc(n) {
			return byte(n), true
		}
	}
	return 0, false
}

func decodeLittleEndian(typeName string, b []byte) (any, error) {
	le := binary.LittleEndian
	switch typeName {
	case "int8":
		return int64(int8(b[0])), nil
	case "uint8":
		return int64(b[0]), nil
	case "int16":
		return int64(int16(le.Uint16(b))), nil
	case "uint16":
		return int64(le.Uint16(b)), nil
	case "int32":
		return int64(int32(le.Uint32(b))), nil
	case "uint32":
		return int64(le.Uint32(b)), nil
	case "int64":
		return int64(le.Uint64(b)), nil
	case "uint64":
		return le.Uint64(b), nil
	case "float32":
		return float64(math.Float32frombits(le.Uint32(b))), nil
	case "float64":
		return math.Float64frombits(le.Uint64(b)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported type %q in byte directive", mcaperrors.ErrConfigInvalid, typeName)
	}
}

// castValue reinterprets a scalar as the named type.
func castValue(typeName string, raw any) (any, error) {
	spec, ok := castTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: unknown type %q", mcaperrors.ErrCoercion, typeName)
	}

	if s, isString := raw.(string); isString {
		parsed, err := parseScalarString(spec, s)
		if err != nil {
			return nil, mcaperrors.NewCoercionError(typeName, raw)
		}
		raw = parsed
	}

	switch spec.kind {
	case castBool:
		f, ok := scalarFloat(raw)
		if !ok {
			return nil, mcaperrors.NewCoercionError(typeName, raw)
		}
		return f != 0, nil
	case castFloat:
		f, ok := scalarFloat(raw)
		if !ok {
			return nil, mcaperrors.NewCoercionError(typeName, raw)
		}
		if spec.bits == 32 {
			if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
				return nil, mcaperrors.NewCoercionError(typeName, raw)
			}
			return float64(float32(f)), nil
		}
		return f, nil
	case castSigned:
		i, ok := toSigned(raw, spec.bits)
		if !ok {
			return nil, mcaperrors.NewCoercionError(typeName, raw)
		}
		return i, nil
	default:
		u, ok := toUnsigned(raw, spec.bits)
		if !ok {
			return nil, mcaperrors.NewCoercionError(typeName, raw)
		}
		if spec.bits == 64 {
			return u, nil
		}
		return int64(u), nil
	}
}

func parseScalarString(spec castSpec, s string) (any, error) {
	s = strings.TrimSpace(s)
	if spec.kind == castBool {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	return strconv.ParseFloat(s, 64)
}

func scalarFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toSigned(v any, bits int) (int64, bool) {
	lo := -int64(1) << (bits - 1)
	hi := int64(1)<<(bits-1) - 1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}

	var i int64
	switch n := v.(type) {
	case int64:
		i = n
	case int:
		i = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		i = int64(n)
	case bool:
		if n {
			i = 1
		}
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		t := math.Trunc(n)
		if t < -9.223372036854775808e18 || t >= 9.223372036854775808e18 {
			return 0, false
		}
		i = int64(t)
	default:
		return 0, false
	}

	if i < lo || i > hi {
		return 0, false
	}
	return i, true
}

func toUnsigned(v any, bits int) (uint64, bool) {
	hi := uint64(math.MaxUint64)
	if bits < 64 {
		hi = uint64(1)<<bits - 1
	}

	var u uint64
	switch n := v.(type) {
	case int64:
		if n < 0 {
			return 0, false
		}
		u = uint64(n)
	case int:
		if n < 0 {
			return 0, false
		}
		u = uint64(n)
	case uint64:
		u = n
	case bool:
		if n {
			u = 1
		}
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		t := math.Trunc(n)
		if t < 0 || t >= 1.8446744073709551616e19 {
			return 0, false
		}
		u = uint64(t)
	default:
		return 0, false
	}

	if u > hi {
		return 0, false
	}
	return u, true
}
