// Package verify syntax-checks rewritten Python before it reaches
// disk. It parses with tree-sitter and rejects output containing
// ERROR or missing nodes.
package verify

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Verifier wraps a tree-sitter parser. A parser is not safe for
// concurrent use, so Check serializes callers.
type Verifier struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// New creates a Verifier for Python sources.
func New() *Verifier {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Verifier{parser: parser}
}

// Check parses source and reports every syntax error found. An empty
// slice means the source parses cleanly.
func (v *Verifier) Check(ctx context.Context, source []byte) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	tree, err := v.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var errs []string
	findErrors(tree.RootNode(), &errs)
	return errs, nil
}

func findErrors(node *sitter.Node, errs *[]string) {
	if node.Type() == "ERROR" || node.IsMissing() {
		*errs = append(*errs, fmt.Sprintf(
			"syntax error at line %d, column %d",
			node.StartPoint().Row+1,
			node.StartPoint().Column+1,
		))
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		findErrors(node.Child(i), errs)
	}
}
