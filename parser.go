package dragondb

import "fmt"

// fragment is either literal text or a placeholder.
type fragment struct {
	text  string
	tok   token
	isTok bool
}

// template is a parsed SQL template. It is never modified after parse and
// may be shared between goroutines through the parse cache.
type template struct {
	src        string
	frags      []fragment
	positional bool
	named      bool
	maxIndex   int
}

// parse splits src into fragments and numbers the implicit placeholders.
func (s scanner) parse(src string) (*template, error) {
	t := &template{src: src, maxIndex: -1}
	implicit, pos := 0, 0
	for {
		tok, ok := s.next(src, pos)
		if !ok {
			break
		}
		if tok.pos > pos {
			t.frags = append(t.frags, fragment{text: src[pos:tok.pos]})
		}
		if tok.code != codeEscape {
			if tok.index < 0 && tok.name == "" {
				tok.index = implicit
				implicit++
			}
			if tok.index >= 0 {
				t.positional = true
				if tok.index > t.maxIndex {
					t.maxIndex = tok.index
				}
			} else {
				t.named = true
			}
		}
		t.frags = append(t.frags, fragment{tok: tok, isTok: true})
		pos = tok.end
	}
	if pos < len(src) {
		t.frags = append(t.frags, fragment{text: src[pos:]})
	}

	if t.positional && t.named {
		return nil, &TemplateError{
			Kind:     MixedReferenceStyle,
			Template: src,
			Msg:      "you can't mix named and numbered args",
		}
	}
	return t, nil
}

// bind checks args against the template and picks the binding style.
func (t *template) bind(args []any) (Bindings, error) {
	if t.named {
		if len(args) != 1 {
			return nil, &TemplateError{
				Kind:     MissingNamedMap,
				Template: t.src,
				Msg:      fmt.Sprintf("named args need exactly one map argument, got %d args", len(args)),
			}
		}
		n, ok := asNamed(args[0])
		if !ok {
			return nil, &TemplateError{
				Kind:     MissingNamedMap,
				Template: t.src,
				Msg:      fmt.Sprintf("named args need a map argument, got %T", args[0]),
			}
		}
		return n, nil
	}
	if t.positional && t.maxIndex+1 > len(args) {
		return nil, &TemplateError{
			Kind:     ArgumentCountMismatch,
			Template: t.src,
			Msg:      fmt.Sprintf("expected %d args, but only got %d", t.maxIndex+1, len(args)),
		}
	}
	return Positional(args), nil
}
