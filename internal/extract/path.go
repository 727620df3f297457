package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livp123/mcapstat/internal/model"
	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

type segment struct {
	key     string
	index   int
	isIndex bool
}

// Path is a compiled field path such as "header.stamp.sec" or "data[3]".
// Path 是已编译的字段路径。
type Path struct {
	raw      string
	segments []segment
}

// CompilePath parses a dotted/indexed field path.
// CompilePath 解析点号/下标形式的字段路径。
func CompilePath(p string) (Path, error) {
	p = strings.TrimSpace(p)
	end := scanPath(p, 0)
	if p == "" || end != len(p) {
		return Path{}, mcaperrors.NewConfigError("field_name", p)
	}

	var segs []segment
	i := 0
	for i < len(p) {
		switch p[i] {
		case '.':
			i++
		case '[':
			j := strings.IndexByte(p[i:], ']') + i
			idx, err := strconv.Atoi(p[i+1 : j])
			if err != nil {
				return Path{}, mcaperrors.NewConfigError("field_name", p)
			}
			segs = append(segs, segment{index: idx, isIndex: true})
			i = j + 1
		default:
			j := i
			for j < len(p) && isIdentChar(p[j]) {
				j++
			}
			segs = append(segs, segment{key: p[i:j]})
			i = j
		}
	}
	return Path{raw: p, segments: segs}, nil
}

// String returns the path as written in configuration.
func (p Path) String() string { return p.raw }

// Resolve walks the message tree. A missing key or out-of-range index yields
// ErrFieldNotFound; an explicit null resolves to nil without error.
// Resolve 遍历消息树，缺失字段返回 ErrFieldNotFound，显式 null 返回 nil。
func (p Path) Resolve(msg model.Message) (any, error) {
	var cur any = msg
	for _, seg := range p.segments {
		if seg.isIndex {
			next, err := indexValue(cur, seg.index)
			if err != nil {
				return nil, mcaperrors.NewFieldNotFoundError(p.raw, err.Error())
			}
			cur = next
			continue
		}

		var (
			next any
			ok   bool
		)
		switch m := cur.(type) {
		case model.Message:
			next, ok = m[seg.key]
		case map[string]any:
			next, ok = m[seg.key]
		default:
			return nil, mcaperrors.NewFieldNotFoundError(p.raw, fmt.Sprintf("cannot read %q from %T", seg.key, cur))
		}
		if !ok {
			return nil, mcaperrors.NewFieldNotFoundError(p.raw, fmt.Sprintf("no attribute %q", seg.key))
		}
		cur = next
	}
	return cur, nil
}

func indexValue(v any, idx int) (any, error) {
	switch s := v.(type) {
	case []any:
		i, ok := normalizeIndex(idx, len(s))
		if !ok {
			return nil, fmt.Errorf("index %d out of range (len %d)", idx, len(s))
		}
		return s[i], nil
	case []byte:
		i, ok := normalizeIndex(idx, len(s))
		if !ok {
			return nil, fmt.Errorf("index %d out of range (len %d)", idx, len(s))
		}
		return int64(s[i]), nil
	default:
		return nil, fmt.Errorf("cannot index %T", v)
	}
}

func normalizeIndex(idx, n int) (int, bool) {
	if idx < 0 {
		idx += n
	}
	return idx, idx >= 0 && idx < n
}

// reservedWords are lexed by the expression parser as operators or literals.
var reservedWords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "let": true,
	"if": true, "else": true, "matches": true, "contains": true,
	"startsWith": true, "endsWith": true, "true": true, "false": true, "nil": true,
}

// flattenPath turns a field path into an expression identifier:
// "header.stamp.sec" -> "header_stamp_sec", "data[-1]" -> "data_m1".
// A result that is a reserved word gets a leading underscore ("in" -> "_in").
func flattenPath(p string) string {
	r := strings.NewReplacer(".", "_", "[", "_", "]", "", "-", "m")
	id := r.Replace(p)
	if reservedWords[id] {
		return "_" + id
	}
	return id
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// scanPath returns the end offset of the field path starting at s[i].
// s[i] must be an identifier start character.
func scanPath(s string, i int) int {
	if i >= len(s) || !isIdentStart(s[i]) {
		return i
	}
	j := i + 1
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	for j < len(s) {
		switch {
		case s[j] == '.' && j+1 < len(s) && isIdentStart(s[j+1]):
			j += 2
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
		case s[j] == '[':
			k := j + 1
			if k < len(s) && s[k] == '-' {
				k++
			}
			digits := k
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			if k == digits || k >= len(s) || s[k] != ']' {
				return j
			}
			j = k + 1
		default:
			return j
		}
	}
	return j
}
