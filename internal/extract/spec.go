package extract

import (
	"fmt"
	"sort"
	"strings"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// ParsedSpec is a parse string split into its two compile-once halves.
// ParsedSpec 是拆分后的 parse string：字段指令与纯表达式。
type ParsedSpec struct {
	// Directives maps each declared field to its directive.
	Directives map[string]Directive
	// Identifiers maps each declared field to its flattened expression identifier.
	Identifiers map[string]string
	// Expression is the parse string with directives stripped and field paths
	// replaced by their identifiers.
	Expression string
}

// ParseSpec extracts per-field directives from parseString and returns the
// bare expression. Every declared field must appear in parseString, and may
// carry at most one distinct directive.
// ParseSpec 从 parseString 中提取字段指令并返回纯表达式。
func ParseSpec(parseString string, fields []string) (*ParsedSpec, error) {
	if strings.TrimSpace(parseString) == "" {
		return nil, mcaperrors.NewConfigError("parse_string", parseString)
	}
	if len(fields) == 0 {
		return nil, mcaperrors.NewConfigError("field_names", "[]")
	}

	spec := &ParsedSpec{
		Directives:  make(map[string]Directive, len(fields)),
		Identifiers: make(map[string]string, len(fields)),
	}

	owners := make(map[string]string, len(fields))
	for _, f := range fields {
		if _, dup := spec.Identifiers[f]; dup {
			return nil, fmt.Errorf("%w: field %q listed twice", mcaperrors.ErrConfigInvalid, f)
		}
		id := flattenPath(f)
		if other, clash := owners[id]; clash {
			return nil, fmt.Errorf("%w: fields %q and %q both map to identifier %q", mcaperrors.ErrConfigInvalid, other, f, id)
		}
		owners[id] = f
		spec.Identifiers[f] = id
	}

	rawDirectives := make(map[string]string)
	referenced := make(map[string]bool)

	var out strings.Builder
	s := parseString
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case isDigit(c) || (c == '.' && i+1 < len(s) && isDigit(s[i+1])):
			j := scanNumber(s, i)
			out.WriteString(s[i:j])
			i = j
		case isIdentStart(c):
			j := scanPath(s, i)
			path := s[i:j]
			id, declared := spec.Identifiers[path]
			if !declared {
				out.WriteString(path)
				i = j
				continue
			}
			referenced[path] = true
			out.WriteString(id)
			i = j

			if i < len(s) && s[i] == '(' {
				closing := strings.IndexByte(s[i:], ')')
				if closing < 0 {
					return nil, fmt.Errorf("%w: unterminated directive for field %q", mcaperrors.ErrConfigInvalid, path)
				}
				raw := s[i+1 : i+closing]
				i += closing + 1

				d, err := ParseDirective(raw)
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", path, err)
				}
				if prev, seen := rawDirectives[path]; seen && prev != d.String() {
					return nil, fmt.Errorf("%w: field %q has conflicting directives %q and %q",
						mcaperrors.ErrConfigInvalid, path, prev, d.String())
				}
				rawDirectives[path] = d.String()
				spec.Directives[path] = d
			} else if detachedDirective(s, i) {
				return nil, fmt.Errorf("%w: directive for field %q must directly follow the field name",
					mcaperrors.ErrConfigInvalid, path)
			}
		default:
			out.WriteByte(c)
			i++
		}
	}

	var missing []string
	for _, f := range fields {
		if !referenced[f] {
			missing = append(missing, f)
			continue
		}
		if _, ok := spec.Directives[f]; !ok {
			spec.Directives[f] = Directive{Kind: DirectiveDefault}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: fields not referenced in parse_string: %s",
			mcaperrors.ErrConfigInvalid, strings.Join(missing, ", "))
	}

	spec.Expression = strings.TrimSpace(out.String())
	return spec, nil
}

// detachedDirective reports whether s[i:] is whitespace followed by a
// parenthesized directive, as in "a (type:int32)".
func detachedDirective(s string, i int) bool {
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j == i || j >= len(s) || s[j] != '(' {
		return false
	}
	closing := strings.IndexByte(s[j:], ')')
	if closing < 0 {
		return false
	}
	inner := strings.TrimSpace(s[j+1 : j+closing])
	return inner == "default" || strings.HasPrefix(inner, "type:") || strings.HasPrefix(inner, "byte:")
}

// scanNumber returns the end of the numeric literal starting at s[i],
// including a fraction and an exponent ("1.5e-3").
func scanNumber(s string, i int) int {
	j := i
	for j < len(s) && (isDigit(s[j]) || s[j] == '_') {
		j++
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
		}
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigit(s[k]) {
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			j = k
		}
	}
	return j
}
