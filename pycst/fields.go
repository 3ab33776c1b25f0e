package pycst

import (
	"fmt"
	"reflect"
	"sync"
)

// FieldKind classifies a node struct field, derived from its Go type.
// Tok-shaped fields are syntax unless tagged `cst:"sem"`; Node-shaped
// fields are children.
type FieldKind int

const (
	FieldParens FieldKind = iota
	FieldTok
	FieldOptTok
	FieldTokList
	FieldChild
	FieldChildList
)

// FieldView describes one field of a node type, in declaration order.
// The slice index reported by Fields is the field index accepted by
// TokText, TokTexts, ChildAt and ChildrenAt.
type FieldView struct {
	Name string
	Kind FieldKind
	Sem  bool
}

type fieldInfo struct {
	index int
	name  string
	role  FieldKind
	sem   bool
}

type nodePlan struct {
	kind   string
	fields []fieldInfo
	views  []FieldView
	parens int // index of the Parens field, -1 if none
}

var (
	nodeIfaceType = reflect.TypeOf((*Node)(nil)).Elem()
	tokType       = reflect.TypeOf(Tok{})
	tokPtrType    = reflect.TypeOf((*Tok)(nil))
	parensType    = reflect.TypeOf(Parens(nil))

	planMu    sync.RWMutex
	planCache = map[reflect.Type]*nodePlan{}
)

// planFor returns the cached field plan for a node's struct type.
func planFor(t reflect.Type) *nodePlan {
	planMu.RLock()
	p := planCache[t]
	planMu.RUnlock()
	if p != nil {
		return p
	}

	p = &nodePlan{kind: t.Name(), parens: -1}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		info := fieldInfo{index: i, name: f.Name, sem: f.Tag.Get("cst") == "sem"}
		switch {
		case f.Type == parensType:
			info.role = FieldParens
			p.parens = i
		case f.Type == tokType:
			info.role = FieldTok
		case f.Type == tokPtrType:
			info.role = FieldOptTok
		case f.Type.Kind() == reflect.Slice && f.Type.Elem() == tokType:
			info.role = FieldTokList
		case f.Type.Implements(nodeIfaceType):
			info.role = FieldChild
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Implements(nodeIfaceType):
			info.role = FieldChildList
		default:
			panic(fmt.Sprintf("pycst: %s.%s has unsupported field type %s", t.Name(), f.Name, f.Type))
		}
		p.fields = append(p.fields, info)
		p.views = append(p.views, FieldView{Name: f.Name, Kind: info.role, Sem: info.sem})
	}

	planMu.Lock()
	planCache[t] = p
	planMu.Unlock()
	return p
}

func structValue(n Node) reflect.Value {
	return reflect.ValueOf(n).Elem()
}

// KindOf returns the node's kind name, e.g. "BinaryOp". Rule dispatch and
// the matcher compiler key on it.
func KindOf(n Node) string {
	return planFor(reflect.TypeOf(n).Elem()).kind
}

// fieldNode extracts the Node stored in a child field, nil if the field
// is empty.
func fieldNode(v reflect.Value) Node {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(Node)
}

// MapChildren applies fn to each direct child of n in syntax order and
// returns a node with the results. When no child changes, n itself is
// returned; otherwise the parent is shallow-copied, so the input node is
// never mutated. fn must return a node assignable to the child's slot
// (an expression slot stays an expression).
func MapChildren(n Node, fn func(Node) Node) (Node, bool) {
	rv := structValue(n)
	plan := planFor(rv.Type())

	var clone reflect.Value
	changed := false
	ensure := func() reflect.Value {
		if !changed {
			clone = reflect.New(rv.Type())
			clone.Elem().Set(rv)
			changed = true
		}
		return clone.Elem()
	}

	for _, f := range plan.fields {
		switch f.role {
		case FieldChild:
			old := fieldNode(rv.Field(f.index))
			if old == nil {
				continue
			}
			nn := fn(old)
			if nn != old {
				ensure().Field(f.index).Set(reflect.ValueOf(nn))
			}
		case FieldChildList:
			list := rv.Field(f.index)
			var newList reflect.Value
			for i := 0; i < list.Len(); i++ {
				old := fieldNode(list.Index(i))
				if old == nil {
					continue
				}
				nn := fn(old)
				if nn == old {
					continue
				}
				if !newList.IsValid() {
					newList = reflect.MakeSlice(list.Type(), list.Len(), list.Len())
					reflect.Copy(newList, list)
				}
				newList.Index(i).Set(reflect.ValueOf(nn))
			}
			if newList.IsValid() {
				ensure().Field(f.index).Set(newList)
			}
		}
	}

	if !changed {
		return n, false
	}
	return clone.Interface().(Node), true
}

// Fields returns the field layout of n's type.
func Fields(n Node) []FieldView {
	return planFor(reflect.TypeOf(n).Elem()).views
}

// TokText returns the text of token field i and whether the token is
// present. Optional token fields report false when unset.
func TokText(n Node, i int) (string, bool) {
	rv := structValue(n)
	switch planFor(rv.Type()).fields[i].role {
	case FieldTok:
		return rv.Field(i).Interface().(Tok).Text, true
	case FieldOptTok:
		p := rv.Field(i).Interface().(*Tok)
		if p == nil {
			return "", false
		}
		return p.Text, true
	}
	return "", false
}

// TokTexts returns the texts of token list field i.
func TokTexts(n Node, i int) []string {
	rv := structValue(n)
	if planFor(rv.Type()).fields[i].role != FieldTokList {
		return nil
	}
	list := rv.Field(i).Interface().([]Tok)
	out := make([]string, len(list))
	for j, t := range list {
		out[j] = t.Text
	}
	return out
}

// ChildAt returns the node in child field i, nil when the slot is empty.
func ChildAt(n Node, i int) Node {
	rv := structValue(n)
	if planFor(rv.Type()).fields[i].role != FieldChild {
		return nil
	}
	return fieldNode(rv.Field(i))
}

// ChildrenAt returns the nodes of child list field i.
func ChildrenAt(n Node, i int) []Node {
	rv := structValue(n)
	if planFor(rv.Type()).fields[i].role != FieldChildList {
		return nil
	}
	list := rv.Field(i)
	out := make([]Node, list.Len())
	for j := 0; j < list.Len(); j++ {
		out[j] = fieldNode(list.Index(j))
	}
	return out
}

// Children returns the direct child nodes of n in syntax order.
func Children(n Node) []Node {
	rv := structValue(n)
	plan := planFor(rv.Type())
	var out []Node
	for _, f := range plan.fields {
		switch f.role {
		case FieldChild:
			if c := fieldNode(rv.Field(f.index)); c != nil {
				out = append(out, c)
			}
		case FieldChildList:
			list := rv.Field(f.index)
			for i := 0; i < list.Len(); i++ {
				if c := fieldNode(list.Index(i)); c != nil {
					out = append(out, c)
				}
			}
		}
	}
	return out
}
