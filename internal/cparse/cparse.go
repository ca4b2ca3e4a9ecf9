// Package cparse extracts function definitions and call sites from decompiled C text
// using tree-sitter. Decompiler output is rarely valid C; tree-sitter's error recovery
// still yields the well-formed functions, and anything it cannot make sense of is skipped.
package cparse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// Function is a function definition found in the source.
type Function struct {
	Name      string
	Signature string // declaration text up to the body, whitespace collapsed
	StartLine int    // 1-based
	EndLine   int    // 1-based, inclusive
}

// Extraction holds what was found in one source text.
type Extraction struct {
	Functions []Function
	Calls     []string // called identifiers, first-seen order, deduplicated
}

// Function returns the definition named name.
func (e *Extraction) Function(name string) (Function, bool) {
	for _, fn := range e.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return Function{}, false
}

// Parser parses C source. It is safe for concurrent use; each Parse call creates its own
// tree-sitter parser.
type Parser struct {
	language *sitter.Language
}

// NewParser creates a C parser.
func NewParser() *Parser {
	return &Parser{language: sitter.NewLanguage(c.Language())}
}

// Parse extracts function definitions and called identifiers from source.
func (p *Parser) Parse(ctx context.Context, source []byte) (*Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to set C language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse C source")
	}
	defer tree.Close()

	ex := &Extraction{Functions: []Function{}, Calls: []string{}}
	seen := make(map[string]bool)

	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "function_definition":
			if fn, ok := extractFunction(n, source); ok {
				ex.Functions = append(ex.Functions, fn)
			}
		case "call_expression":
			if name := calleeName(n, source); name != "" && !seen[name] {
				seen[name] = true
				ex.Calls = append(ex.Calls, name)
			}
		}
		return true
	})

	return ex, nil
}

// ParseLines joins lines with newlines and parses them.
func (p *Parser) ParseLines(ctx context.Context, lines []string) (*Extraction, error) {
	return p.Parse(ctx, []byte(strings.Join(lines, "\n")))
}

func extractFunction(node *sitter.Node, source []byte) (Function, bool) {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return Function{}, false
	}
	name := findFunctionName(declarator, source)
	if name == "" {
		return Function{}, false
	}

	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}

	return Function{
		Name:      name,
		Signature: collapseSpace(string(source[node.StartByte():end])),
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}, true
}

// findFunctionName descends through pointer and function declarators to the identifier.
func findFunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier":
		return nodeText(node, source)
	case "function_declarator", "pointer_declarator", "parenthesized_declarator":
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			return findFunctionName(inner, source)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "identifier" {
			return nodeText(child, source)
		}
	}
	return ""
}

func calleeName(node *sitter.Node, source []byte) string {
	fn := node.ChildByFieldName("function")
	if fn == nil || fn.Kind() != "identifier" {
		return ""
	}
	return nodeText(fn, source)
}

func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree visits node and its descendants depth-first; returning false skips children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visitor(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
