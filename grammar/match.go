package grammar

import (
	"strings"
)

// DefaultMaxDepth bounds phrase nesting during a match.
const DefaultMaxDepth = 32

// Matcher matches shapes against text. The zero value matches complete input
// only, with DefaultMaxDepth.
type Matcher struct {
	// Partial lets Placeholder and Argument nodes with ShowForEmpty stand in
	// for input that has not been typed yet.
	Partial bool
	// MaxDepth bounds nested Phrase expansion. Zero means DefaultMaxDepth.
	MaxDepth int
}

// Candidate is one complete parse of the input.
type Candidate struct {
	Value any
	// Pending lists placeholder labels still awaiting input. Always empty
	// unless the Matcher is Partial.
	Pending []string
}

type state struct {
	pos     int
	value   any
	pending []string
}

// Match returns every parse of input against root, in grammar order.
// No candidates means no match.
func (m Matcher) Match(root Node, input string) []Candidate {
	depth := m.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	r := run{input: input, partial: m.Partial, maxDepth: depth}

	var out []Candidate
	for _, s := range r.match(root, 0, 0) {
		if s.pos != len(input) {
			continue
		}
		out = append(out, Candidate{Value: s.value, Pending: s.pending})
	}
	return out
}

// Parse matches input against a phrase definition with a default Matcher.
func Parse(def Definition, input string) []Candidate {
	return Matcher{}.Match(Phrase{Definition: def}, input)
}

type run struct {
	input    string
	partial  bool
	maxDepth int
}

func (r *run) match(n Node, pos, depth int) []state {
	switch n := n.(type) {
	case Literal:
		if end, ok := r.prefix(pos, n.Text); ok {
			return []state{{pos: end, value: n.Value}}
		}
		return nil
	case List:
		return r.list(n, pos)
	case Sequence:
		return r.sequence(n, pos, depth)
	case Choice:
		return r.choice(n, pos, depth)
	case Placeholder:
		return r.labeled(n.Label, n.ShowForEmpty, n.Child, pos, depth)
	case Argument:
		return r.labeled(n.Label, n.ShowForEmpty, n.Child, pos, depth)
	case Repeat:
		return r.repeat(n, pos, depth)
	case Term:
		var out []state
		for _, sp := range n.Scanner.Scan(r.input[pos:]) {
			out = append(out, state{pos: pos + sp.Len, value: sp.Value})
		}
		return out
	case Phrase:
		return r.phrase(n.Definition, pos, depth)
	case nil:
		return []state{{pos: pos}}
	}
	return nil
}

func (r *run) prefix(pos int, text string) (int, bool) {
	end := pos + len(text)
	if end > len(r.input) {
		return 0, false
	}
	if !strings.EqualFold(r.input[pos:end], text) {
		return 0, false
	}
	return end, true
}

func (r *run) list(n List, pos int) []state {
	var out []state
	for _, it := range n.Items {
		end, ok := r.prefix(pos, it.Text)
		if !ok {
			continue
		}
		v := it.Value
		if v == nil {
			v = n.Value
		}
		if v == nil {
			v = it.Text
		}
		out = append(out, state{pos: end, value: v})
		if n.Limit > 0 && len(out) >= n.Limit {
			break
		}
	}
	return out
}

// acc accumulates a sequence's value along one branch.
type acc struct {
	pos     int
	fields  Fields
	scalar  any
	pending []string
}

func (a acc) with(c Child, s state) acc {
	next := acc{pos: s.pos, fields: a.fields, scalar: a.scalar, pending: joinPending(a.pending, s.pending)}
	merge := c.Merge
	if arg, ok := c.Node.(Argument); ok && c.ID == "" && arg.Merge {
		merge = true
	}
	switch {
	case c.ID != "":
		if s.value != nil {
			next.fields = next.fields.with(c.ID, s.value)
		}
	case merge:
		if f, ok := s.value.(Fields); ok {
			for k, v := range f {
				next.fields = next.fields.with(k, v)
			}
		} else if s.value != nil {
			next.scalar = s.value
		}
	}
	return next
}

func (f Fields) with(k string, v any) Fields {
	out := make(Fields, len(f)+1)
	for fk, fv := range f {
		out[fk] = fv
	}
	out[k] = v
	return out
}

func (r *run) sequence(n Sequence, pos, depth int) []state {
	branches := []acc{{pos: pos}}
	for _, c := range n.Children {
		var next []acc
		for _, b := range branches {
			for _, s := range r.match(c.Node, b.pos, depth) {
				next = append(next, b.with(c, s))
			}
			if c.Optional {
				next = append(next, b)
			}
		}
		if len(next) == 0 {
			return nil
		}
		branches = next
	}

	out := make([]state, 0, len(branches))
	for _, b := range branches {
		var v any
		if b.scalar != nil {
			v = b.scalar
		} else if b.fields != nil {
			v = b.fields
		} else {
			v = Fields{}
		}
		out = append(out, state{pos: b.pos, value: v, pending: b.pending})
	}
	return out
}

func (r *run) choice(n Choice, pos, depth int) []state {
	var out []state
	for _, c := range n.Children {
		for _, s := range r.match(c.Node, pos, depth) {
			v := s.value
			if c.ID != "" {
				if v == nil {
					v = Fields{}
				} else {
					v = Fields{c.ID: v}
				}
			}
			if n.Value != nil {
				v = n.Value
			}
			out = append(out, state{pos: s.pos, value: v, pending: s.pending})
			if n.Limit > 0 && len(out) >= n.Limit {
				return out
			}
		}
	}
	return out
}

func (r *run) labeled(label string, showForEmpty bool, child Node, pos, depth int) []state {
	out := r.match(child, pos, depth)
	if r.partial && showForEmpty && pos == len(r.input) {
		out = append(out, state{pos: pos, pending: []string{label}})
	}
	return out
}

func (r *run) repeat(n Repeat, pos, depth int) []state {
	type rep struct {
		pos     int
		values  []any
		pending []string
	}

	var out []state
	emit := func(b rep) {
		if len(b.values) >= n.Min {
			out = append(out, state{pos: b.pos, value: b.values, pending: b.pending})
		}
	}

	current := []rep{{pos: pos}}
	emit(current[0])
	for count := 0; n.Max <= 0 || count < n.Max; count++ {
		var next []rep
		for _, b := range current {
			starts := []state{{pos: b.pos}}
			if count > 0 && n.Separator != nil {
				starts = r.match(n.Separator, b.pos, depth)
			}
			for _, st := range starts {
				for _, s := range r.match(n.Child, st.pos, depth) {
					if s.pos == b.pos {
						continue
					}
					values := make([]any, len(b.values), len(b.values)+1)
					copy(values, b.values)
					next = append(next, rep{
						pos:     s.pos,
						values:  append(values, s.value),
						pending: joinPending(b.pending, st.pending, s.pending),
					})
				}
			}
		}
		if len(next) == 0 {
			break
		}
		for _, b := range next {
			emit(b)
		}
		current = next
	}
	return out
}

func (r *run) phrase(def Definition, pos, depth int) []state {
	if def == nil || depth >= r.maxDepth {
		return nil
	}
	var out []state
	for _, s := range r.match(def.Describe(), pos, depth+1) {
		v, ok := def.Reduce(s.value)
		if !ok {
			v = nil
		}
		out = append(out, state{pos: s.pos, value: v, pending: s.pending})
	}
	return out
}

func joinPending(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
