// Package expression evaluates the arithmetic part of a task's parse string.
//
// Source text is parsed with the expr-lang parser, then checked against a
// closed set of nodes: numeric literals, declared identifiers, unary + and -,
// and the binary operators + - * / % ** ^. Anything else is rejected when the
// program is compiled, so configuration text can never reach member access,
// function calls, or builtins.
//
// expression 包对任务 parse string 中的算术部分求值，仅允许封闭的节点集合。
package expression

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	mcaperrors "github.com/livp123/mcapstat/pkg/errors"
)

var binaryOperators = map[string]bool{
	"+":  true,
	"-":  true,
	"*":  true,
	"/":  true,
	"%":  true,
	"**": true,
	"^":  true,
}

// Program is a validated arithmetic expression, compiled once per task.
// Program 是已验证的算术表达式，每个任务只编译一次。
type Program struct {
	source string
	root   ast.Node
	idents []string
}

// Compile parses src and checks that it only uses the arithmetic grammar and
// identifiers from declared.
// Compile 解析 src 并检查其只使用算术语法与已声明的标识符。
func Compile(src string, declared []string) (*Program, error) {
	tree, err := parser.Parse(src)
	if err != nil {
		return nil, mcaperrors.NewExpressionError(fmt.Sprintf("parse %q: %v", src, err))
	}

	allowed := make(map[string]bool, len(declared))
	for _, d := range declared {
		allowed[d] = true
	}

	used := make(map[string]bool)
	if err := validate(tree.Node, allowed, used); err != nil {
		return nil, err
	}

	idents := make([]string, 0, len(used))
	for id := range used {
		idents = append(idents, id)
	}
	sort.Strings(idents)

	return &Program{source: src, root: tree.Node, idents: idents}, nil
}

// Source returns the expression text the program was compiled from.
func (p *Program) Source() string { return p.source }

// Identifiers returns the identifiers referenced by the program, sorted.
func (p *Program) Identifiers() []string { return p.idents }

func validate(node ast.Node, allowed, used map[string]bool) error {
	switch n := node.(type) {
	case *ast.IntegerNode, *ast.FloatNode:
		return nil
	case *ast.IdentifierNode:
		if !allowed[n.Value] {
			return mcaperrors.NewExpressionError(fmt.Sprintf("unknown identifier %q", n.Value))
		}
		used[n.Value] = true
		return nil
	case *ast.UnaryNode:
		if n.Operator != "-" && n.Operator != "+" {
			return mcaperrors.NewExpressionError(fmt.Sprintf("unsupported unary operator %q", n.Operator))
		}
		return validate(n.Node, allowed, used)
	case *ast.BinaryNode:
		if !binaryOperators[n.Operator] {
			return mcaperrors.NewExpressionError(fmt.Sprintf("unsupported operator %q", n.Operator))
		}
		if err := validate(n.Left, allowed, used); err != nil {
			return err
		}
		return validate(n.Right, allowed, used)
	default:
		return mcaperrors.NewExpressionError(fmt.Sprintf("unsupported construct %T", node))
	}
}
