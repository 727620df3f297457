package model

// Message is the decoded form of one log record: a tree of named values.
// Leaves are int64, uint64, float64, bool, string, nil or []byte;
// inner nodes are []any sequences or nested Message maps.
// Message 是单条日志记录的解码形式：一棵具名值树。
type Message map[string]any

// Normalize converts generic decoder output (map[string]any, []interface{},
// json.Number) into the Message value space in place.
func Normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(Message, len(val))
		for k, child := range val {
			m[k] = Normalize(child)
		}
		return m
	case Message:
		for k, child := range val {
			val[k] = Normalize(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = Normalize(child)
		}
		return val
	case numberLike:
		return normalizeNumber(val)
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return v
	}
}
