package pycst

import (
	"reflect"
	"strings"
)

// Print renders a tree back to source text. Tokens are emitted in syntax
// order, each preceded by its lead trivia, so unmodified regions come out
// exactly as they were parsed.
func Print(n Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func writeTok(sb *strings.Builder, t Tok) {
	sb.WriteString(t.Lead)
	sb.WriteString(t.Text)
}

func writeNode(sb *strings.Builder, n Node) {
	rv := structValue(n)
	plan := planFor(rv.Type())

	var parens Parens
	if plan.parens >= 0 {
		parens = rv.Field(plan.parens).Interface().(Parens)
	}
	for _, pr := range parens {
		writeTok(sb, pr.L)
	}

	for _, f := range plan.fields {
		switch f.role {
		case FieldParens:
			// written around the node
		case FieldTok:
			writeTok(sb, rv.Field(f.index).Interface().(Tok))
		case FieldOptTok:
			if t := rv.Field(f.index).Interface().(*Tok); t != nil {
				writeTok(sb, *t)
			}
		case FieldTokList:
			list := rv.Field(f.index)
			for i := 0; i < list.Len(); i++ {
				writeTok(sb, list.Index(i).Interface().(Tok))
			}
		case FieldChild:
			if c := fieldNode(rv.Field(f.index)); c != nil {
				writeNode(sb, c)
			}
		case FieldChildList:
			list := rv.Field(f.index)
			for i := 0; i < list.Len(); i++ {
				if c := fieldNode(list.Index(i)); c != nil {
					writeNode(sb, c)
				}
			}
		}
	}

	for i := len(parens) - 1; i >= 0; i-- {
		writeTok(sb, parens[i].R)
	}
}

// LeadOf returns the lead trivia of the first token the node would print.
func LeadOf(n Node) string {
	if t := firstTok(n); t != nil {
		return t.Lead
	}
	return ""
}

func firstTok(n Node) *Tok {
	rv := structValue(n)
	plan := planFor(rv.Type())

	if plan.parens >= 0 {
		if parens := rv.Field(plan.parens).Interface().(Parens); len(parens) > 0 {
			return &parens[0].L
		}
	}
	for _, f := range plan.fields {
		switch f.role {
		case FieldParens:
		case FieldTok:
			return rv.Field(f.index).Addr().Interface().(*Tok)
		case FieldOptTok:
			if t := rv.Field(f.index).Interface().(*Tok); t != nil {
				return t
			}
		case FieldTokList:
			list := rv.Field(f.index)
			if list.Len() > 0 {
				return list.Index(0).Addr().Interface().(*Tok)
			}
		case FieldChild:
			if c := fieldNode(rv.Field(f.index)); c != nil {
				if t := firstTok(c); t != nil {
					return t
				}
			}
		case FieldChildList:
			list := rv.Field(f.index)
			for i := 0; i < list.Len(); i++ {
				if c := fieldNode(list.Index(i)); c != nil {
					if t := firstTok(c); t != nil {
						return t
					}
				}
			}
		}
	}
	return nil
}

// WithLead returns a copy of n whose first printed token carries the
// given lead trivia. The input node is not modified.
func WithLead(n Node, lead string) Node {
	nn, _ := withLead(n, lead)
	return nn
}

func withLead(n Node, lead string) (Node, bool) {
	rv := structValue(n)
	plan := planFor(rv.Type())

	clone := reflect.New(rv.Type())
	clone.Elem().Set(rv)
	cv := clone.Elem()

	if plan.parens >= 0 {
		if parens := rv.Field(plan.parens).Interface().(Parens); len(parens) > 0 {
			np := append(Parens(nil), parens...)
			np[0].L.Lead = lead
			cv.Field(plan.parens).Set(reflect.ValueOf(np))
			return clone.Interface().(Node), true
		}
	}
	for _, f := range plan.fields {
		switch f.role {
		case FieldParens:
		case FieldTok:
			t := rv.Field(f.index).Interface().(Tok)
			t.Lead = lead
			cv.Field(f.index).Set(reflect.ValueOf(t))
			return clone.Interface().(Node), true
		case FieldOptTok:
			if t := rv.Field(f.index).Interface().(*Tok); t != nil {
				nt := *t
				nt.Lead = lead
				cv.Field(f.index).Set(reflect.ValueOf(&nt))
				return clone.Interface().(Node), true
			}
		case FieldTokList:
			list := rv.Field(f.index)
			if list.Len() > 0 {
				nl := reflect.MakeSlice(list.Type(), list.Len(), list.Len())
				reflect.Copy(nl, list)
				t := nl.Index(0).Interface().(Tok)
				t.Lead = lead
				nl.Index(0).Set(reflect.ValueOf(t))
				cv.Field(f.index).Set(nl)
				return clone.Interface().(Node), true
			}
		case FieldChild:
			if c := fieldNode(rv.Field(f.index)); c != nil {
				if nc, ok := withLead(c, lead); ok {
					cv.Field(f.index).Set(reflect.ValueOf(nc))
					return clone.Interface().(Node), true
				}
			}
		case FieldChildList:
			list := rv.Field(f.index)
			for i := 0; i < list.Len(); i++ {
				c := fieldNode(list.Index(i))
				if c == nil {
					continue
				}
				nc, ok := withLead(c, lead)
				if !ok {
					continue
				}
				nl := reflect.MakeSlice(list.Type(), list.Len(), list.Len())
				reflect.Copy(nl, list)
				nl.Index(i).Set(reflect.ValueOf(nc))
				cv.Field(f.index).Set(nl)
				return clone.Interface().(Node), true
			}
		}
	}
	return n, false
}

// WrapParens returns a copy of e wrapped in one more explicit paren
// pair. The expression's lead trivia moves onto the opening paren.
func WrapParens(e Expr) Expr {
	rv := structValue(e)
	plan := planFor(rv.Type())
	if plan.parens < 0 {
		return e
	}

	lead := LeadOf(e)
	stripped := WithLead(e, "").(Expr)
	sv := structValue(stripped)

	clone := reflect.New(sv.Type())
	clone.Elem().Set(sv)

	existing := sv.Field(plan.parens).Interface().(Parens)
	wrapped := append(Parens{{L: Tok{Lead: lead, Text: "("}, R: tok(")")}}, existing...)
	clone.Elem().Field(plan.parens).Set(reflect.ValueOf(wrapped))
	return clone.Interface().(Expr)
}
