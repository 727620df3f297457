package expression

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr/ast"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

// number is an int64 unless float is set.
type number struct {
	i       int64
	f       float64
	isFloat bool
}

func intNum(i int64) number     { return number{i: i} }
func floatNum(f float64) number { return number{f: f, isFloat: true} }

func (n number) float() float64 {
	if n.isFloat {
		return n.f
	}
	return float64(n.i)
}

func (n number) value() any {
	if n.isFloat {
		return n.f
	}
	return n.i
}

// Eval evaluates the program against a flat identifier table. A program that
// is a single identifier returns the bound value unchanged; any other program
// returns an int64 or float64.
// Eval 使用扁平标识符表对程序求值。
func (p *Program) Eval(env map[string]any) (any, error) {
	if id, ok := p.root.(*ast.IdentifierNode); ok {
		v, bound := env[id.Value]
		if !bound {
			return nil, mcaperrors.NewExpressionError(fmt.Sprintf("unbound identifier %q", id.Value))
		}
		if v == nil {
			return nil, mcaperrors.NewExpressionError(fmt.Sprintf("identifier %q is null", id.Value))
		}
		return v, nil
	}

	n, err := eval(p.root, env)
	if err != nil {
		return nil, err
	}
	return n.value(), nil
}

func eval(node ast.Node, env map[string]any) (number, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return intNum(int64(n.Value)), nil
	case *ast.FloatNode:
		return floatNum(n.Value), nil
	case *ast.IdentifierNode:
		v, bound := env[n.Value]
		if !bound {
			return number{}, mcaperrors.NewExpressionError(fmt.Sprintf("unbound identifier %q", n.Value))
		}
		return toNumber(n.Value, v)
	case *ast.UnaryNode:
		x, err := eval(n.Node, env)
		if err != nil {
			return number{}, err
		}
		if n.Operator == "+" {
			return x, nil
		}
		return negate(x), nil
	case *ast.BinaryNode:
		l, err := eval(n.Left, env)
		if err != nil {
			return number{}, err
		}
		r, err := eval(n.Right, env)
		if err != nil {
			return number{}, err
		}
		return binary(n.Operator, l, r)
	default:
		return number{}, mcaperrors.NewExpressionError(fmt.Sprintf("unsupported construct %T", node))
	}
}

func toNumber(name string, v any) (number, error) {
	switch val := v.(type) {
	case int64:
		return intNum(val), nil
	case int:
		return intNum(int64(val)), nil
	case uint64:
		if val <= math.MaxInt64 {
			return intNum(int64(val)), nil
		}
		return floatNum(float64(val)), nil
	case float64:
		return floatNum(val), nil
	case float32:
		return floatNum(float64(val)), nil
	case bool:
		if val {
			return intNum(1), nil
		}
		return intNum(0), nil
	default:
		return number{}, mcaperrors.NewExpressionError(fmt.Sprintf("identifier %q is not numeric (%T)", name, v))
	}
}

func negate(x number) number {
	if x.isFloat {
		return floatNum(-x.f)
	}
	if x.i == math.MinInt64 {
		return floatNum(-float64(x.i))
	}
	return intNum(-x.i)
}

func binary(op string, l, r number) (number, error) {
	bothInt := !l.isFloat && !r.isFloat

	switch op {
	case "+":
		if bothInt {
			if s, ok := addInt(l.i, r.i); ok {
				return intNum(s), nil
			}
		}
		return floatNum(l.float() + r.float()), nil
	case "-":
		if bothInt && r.i != math.MinInt64 {
			if s, ok := addInt(l.i, -r.i); ok {
				return intNum(s), nil
			}
		}
		return floatNum(l.float() - r.float()), nil
	case "*":
		if bothInt {
			if p, ok := mulInt(l.i, r.i); ok {
				return intNum(p), nil
			}
		}
		return floatNum(l.float() * r.float()), nil
	case "/":
		if r.float() == 0 {
			return number{}, mcaperrors.NewExpressionError("division by zero")
		}
		return floatNum(l.float() / r.float()), nil
	case "%":
		return modulo(l, r)
	case "**", "^":
		return power(l, r)
	default:
		return number{}, mcaperrors.NewExpressionError(fmt.Sprintf("unsupported operator %q", op))
	}
}

// modulo is floored: the result takes the sign of the divisor.
func modulo(l, r number) (number, error) {
	if r.float() == 0 {
		return number{}, mcaperrors.NewExpressionError("modulo by zero")
	}
	if !l.isFloat && !r.isFloat {
		if r.i == -1 {
			return intNum(0), nil
		}
		m := l.i % r.i
		if m != 0 && (m < 0) != (r.i < 0) {
			m += r.i
		}
		return intNum(m), nil
	}
	m := math.Mod(l.float(), r.float())
	if m != 0 && (m < 0) != (r.float() < 0) {
		m += r.float()
	}
	return floatNum(m), nil
}

func power(l, r number) (number, error) {
	if !l.isFloat && !r.isFloat && r.i >= 0 {
		if p, ok := powInt(l.i, r.i); ok {
			return intNum(p), nil
		}
	}
	if l.float() == 0 && r.float() < 0 {
		return number{}, mcaperrors.NewExpressionError("zero raised to a negative power")
	}
	p := math.Pow(l.float(), r.float())
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return number{}, mcaperrors.NewExpressionError(fmt.Sprintf("%v ** %v is not a finite real number", l.value(), r.value()))
	}
	return floatNum(p), nil
}

func addInt(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return p, true
}

func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			var ok bool
			if result, ok = mulInt(result, base); !ok {
				return 0, false
			}
		}
		exp >>= 1
		if exp > 0 {
			var ok bool
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return result, true
}
