package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	kdldoc "github.com/sblinch/kdl-go/document"
)

// ErrUnsupportedValue is returned for KDL values that have no Literal form,
// such as integers outside the int64 range.
var ErrUnsupportedValue = errors.New("unsupported value")

// ParseFile reads and parses the KDL document at path.
func ParseFile(path string) (nodes []*Node, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	return Parse(f, path)
}

// ParseString parses KDL source held in memory. filename is only used to
// attribute errors.
func ParseString(src, filename string) ([]*Node, error) {
	return Parse(strings.NewReader(src), filename)
}

// Parse parses a whole KDL document from r into its top-level nodes.
// Syntax errors come from the KDL parser and are wrapped with filename.
func Parse(r io.Reader, filename string) ([]*Node, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	doc, err := kdl.Parse(bytes.NewReader(markEmptyBlocks(src)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	nodes := make([]*Node, 0, len(doc.Nodes))
	for _, kn := range doc.Nodes {
		n, err := fromKDL(kn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func fromKDL(kn *kdldoc.Node) (*Node, error) {
	n := &Node{Name: kn.Name.ValueString()}

	if len(kn.Arguments) > 0 {
		n.Arguments = make([]AnnotatedLiteral, 0, len(kn.Arguments))
		for i, v := range kn.Arguments {
			lit, err := literalFromKDL(v)
			if err != nil {
				return nil, fmt.Errorf("node %q argument %d: %w", n.Name, i, err)
			}
			n.Arguments = append(n.Arguments, lit)
		}
	}

	if len(kn.Properties) > 0 {
		n.Properties = make(Properties, len(kn.Properties))
		for k, v := range kn.Properties {
			lit, err := literalFromKDL(v)
			if err != nil {
				return nil, fmt.Errorf("node %q property %q: %w", n.Name, k, err)
			}
			n.Properties[k] = lit
		}
	}

	if len(kn.Children) == 1 && kn.Children[0].Name.ValueString() == _emptyBlockMarker {
		n.Children = []*Node{}
		return n, nil
	}
	if len(kn.Children) > 0 {
		n.Children = make([]*Node, 0, len(kn.Children))
		for _, kid := range kn.Children {
			c, err := fromKDL(kid)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", n.Name, err)
			}
			n.Children = append(n.Children, c)
		}
	}
	return n, nil
}

func literalFromKDL(v *kdldoc.Value) (AnnotatedLiteral, error) {
	lit, err := resolveLiteral(v.ResolvedValue())
	if err != nil {
		return AnnotatedLiteral{}, err
	}
	return AnnotatedLiteral{Annotation: string(v.Type), Literal: lit}, nil
}

func resolveLiteral(raw any) (Literal, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int64:
		return Int(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case uint64:
		if x > 1<<63-1 {
			return Literal{}, fmt.Errorf("%w: integer %d overflows int64", ErrUnsupportedValue, x)
		}
		return Int(int64(x)), nil
	case *big.Int:
		if !x.IsInt64() {
			return Literal{}, fmt.Errorf("%w: integer %s overflows int64", ErrUnsupportedValue, x)
		}
		return Int(x.Int64()), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(float64(x)), nil
	case *big.Float:
		f, _ := x.Float64()
		return Float(f), nil
	default:
		return Literal{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}
