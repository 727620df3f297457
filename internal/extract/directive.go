package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// DirectiveKind selects how a raw field value is interpreted.
// DirectiveKind 决定如何解释原始字段值。
type DirectiveKind int

const (
	DirectiveDefault DirectiveKind = iota
	DirectiveTypeCast
	DirectiveByteRange
)

// Directive is the per-field "how to read this value" instruction.
// Directive 是单个字段的解析指令。
type Directive struct {
	Kind     DirectiveKind
	TypeName string // cast target, or byte decode format (may be empty for ByteRange)
	Start    int    // ByteRange only
	Length   int    // ByteRange only
}

var (
	typeDirectiveRe = regexp.MustCompile(`^type:(\w+)$`)
	byteDirectiveRe = regexp.MustCompile(`^byte:(\d+)-(\d+)(?:,type:(\w+))?$`)
)

// byteWidths lists the fixed-width little-endian formats a byte range may decode.
var byteWidths = map[string]int{
	"int8":    1,
	"uint8":   1,
	"int16":   2,
	"uint16":  2,
	"int32":   4,
	"uint32":  4,
	"float32": 4,
	"int64":   8,
	"uint64":  8,
	"float64": 8,
}

// ParseDirective parses the text captured inside "field(...)".
// Accepted forms: "default", "type:<name>", "byte:<start>-<length>[,type:<name>]".
// ParseDirective 解析 "field(...)" 括号内的文本。
func ParseDirective(raw string) (Directive, error) {
	s := strings.Join(strings.Fields(raw), "")
	if s == "" || s == "default" {
		return Directive{Kind: DirectiveDefault}, nil
	}

	if m := typeDirectiveRe.FindStringSubmatch(s); m != nil {
		if _, ok := castTypes[m[1]]; !ok {
			return Directive{}, mcaperrors.NewConfigError("type", m[1])
		}
		return Directive{Kind: DirectiveTypeCast, TypeName: m[1]}, nil
	}

	if m := byteDirectiveRe.FindStringSubmatch(s); m != nil {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			return Directive{}, mcaperrors.NewConfigError("byte.start", m[1])
		}
		length, err := strconv.Atoi(m[2])
		if err != nil || length <= 0 {
			return Directive{}, mcaperrors.NewConfigError("byte.length", m[2])
		}
		d := Directive{Kind: DirectiveByteRange, Start: start, Length: length, TypeName: m[3]}
		if d.TypeName != "" {
			width, ok := byteWidths[d.TypeName]
			if !ok {
				return Directive{}, fmt.Errorf("%w: unsupported type %q in byte directive", mcaperrors.ErrConfigInvalid, d.TypeName)
			}
			if width != length {
				return Directive{}, fmt.Errorf("%w: byte directive length %d does not match %s width %d",
					mcaperrors.ErrConfigInvalid, length, d.TypeName, width)
			}
		}
		return d, nil
	}

	return Directive{}, fmt.Errorf("%w: unknown parsing directive %q", mcaperrors.ErrConfigInvalid, raw)
}

// String renders the directive in parse-string form.
func (d Directive) String() string {
	switch d.Kind {
	case DirectiveTypeCast:
		return "type:" + d.TypeName
	case DirectiveByteRange:
		if d.TypeName != "" {
			return fmt.Sprintf("byte:%d-%d,type:%s", d.Start, d.Length, d.TypeName)
		}
		return fmt.Sprintf("byte:%d-%d", d.Start, d.Length)
	default:
		return "default"
	}
}
