// Package grammar describes matchable phrase shapes as an immutable node
// algebra and matches them against text, yielding every candidate parse.
//
// Nodes carry no state. Building the same shape twice yields structurally
// identical trees, so callers may rebuild shapes on every keystroke.
package grammar

// Node is one of the node types declared in this package.
type Node interface {
	node()
}

// Literal matches Text exactly (case-insensitively) and yields Value.
type Literal struct {
	Text  string
	Value any
}

// Item is one entry of a List.
type Item struct {
	Text  string
	Value any
}

// List matches any one of its items. Each match yields the item's Value,
// falling back to the list's Value and then to the item text.
// Limit caps the number of matching items taken from one position. Zero
// means no cap.
type List struct {
	Items []Item
	Value any
	Limit int
}

// Child is an element of a Sequence or Choice.
//
// ID keys the child's value in the enclosing Fields. Merge lifts the child's
// value into the enclosing value instead: Fields are merged key by key, any
// other value replaces the enclosing value. Optional children may be skipped.
type Child struct {
	ID       string
	Node     Node
	Optional bool
	Merge    bool
}

// Sequence matches its children in order.
type Sequence struct {
	Children []Child
}

// Choice matches any one of its children, in order. A non-nil Value replaces
// whatever the chosen child yielded. Limit caps the number of alternatives
// yielded from one position.
type Choice struct {
	Children []Child
	Value    any
	Limit    int
}

// Placeholder labels a sub-shape. With ShowForEmpty, a partial match may stop
// here with the label pending instead of requiring input.
type Placeholder struct {
	Label        string
	Child        Node
	ShowForEmpty bool
}

// Argument is a placeholder for free text. When Merge is set and the
// argument is an unnamed sequence child, its Fields merge into the
// sequence's Fields.
type Argument struct {
	Label        string
	Child        Node
	Merge        bool
	ShowForEmpty bool
}

// Repeat matches Child between Min and Max times, with Separator between
// occurrences. Max <= 0 means unbounded. It yields a []any of child values.
type Repeat struct {
	Child     Node
	Separator Node
	Min       int
	Max       int
}

// Span is one way a Scanner can consume the start of its input.
type Span struct {
	Len   int
	Value any
}

// Scanner is a primitive matcher supplied from outside the algebra.
type Scanner interface {
	Scan(rest string) []Span
}

// Term wraps a Scanner as a Node.
type Term struct {
	Scanner Scanner
}

// Definition is a named phrase: a shape paired with a reducer that turns the
// shape's raw value into a semantic value. Reduce reports false when no value
// can be derived.
type Definition interface {
	Name() string
	Describe() Node
	Reduce(raw any) (any, bool)
}

// Phrase embeds a Definition. Its value is the reducer's output.
type Phrase struct {
	Definition Definition
}

func (Literal) node()     {}
func (List) node()        {}
func (Sequence) node()    {}
func (Choice) node()      {}
func (Placeholder) node() {}
func (Argument) node()    {}
func (Repeat) node()      {}
func (Term) node()        {}
func (Phrase) node()      {}

// Fields is the value of a Sequence or Choice with named children.
type Fields map[string]any

// Get returns the value stored under id when raw is a Fields holding a value
// of type T there.
func Get[T any](raw any, id string) (T, bool) {
	var zero T
	f, ok := raw.(Fields)
	if !ok {
		return zero, false
	}
	v, ok := f[id]
	if !ok || v == nil {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Has reports whether raw is a Fields with a non-nil value under id.
func Has(raw any, id string) bool {
	f, ok := raw.(Fields)
	if !ok {
		return false
	}
	return f[id] != nil
}
