package timeutil

import (
	"timebot/duration"
	"timebot/grammar"
	"timebot/number"
)

// Kind enumerates the time phrases.
type Kind int

const (
	KindMinutes Kind = iota
	KindAbsoluteNamed
	KindTimeOfDay
	KindAbsoluteNumeric
	KindAbsoluteRelativeHour
	KindAbsoluteTimeOfDay
	KindRelativeTime
	KindAbsolute
	KindAmbiguousTime
	KindRecursiveTime
	KindTime
)

var kindNames = map[Kind]string{
	KindMinutes:              "Minutes",
	KindAbsoluteNamed:        "AbsoluteNamed",
	KindTimeOfDay:            "TimeOfDay",
	KindAbsoluteNumeric:      "AbsoluteNumeric",
	KindAbsoluteRelativeHour: "AbsoluteRelativeHour",
	KindAbsoluteTimeOfDay:    "AbsoluteTimeOfDay",
	KindRelativeTime:         "RelativeTime",
	KindAbsolute:             "Absolute",
	KindAmbiguousTime:        "AmbiguousTime",
	KindRecursiveTime:        "RecursiveTime",
	KindTime:                 "Time",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(?)"
}

// Options toggles the branches and sub-features each phrase offers. Phrases
// read only the fields that apply to them.
type Options struct {
	// Seconds offers seconds in durations.
	Seconds bool
	// Recurse offers "<duration> before <time>" in Time.
	Recurse bool
	// Relative offers "in <duration>", "<duration> ago" and
	// "<duration> from now" in Time.
	Relative bool
	// Prepositions accepts a leading "at " before absolute times.
	Prepositions bool
	// AMPM accepts an am/pm marker after numeric hours.
	AMPM bool
	// Named offers "noon" and "midnight" in Absolute.
	Named bool
	// TimeOfDay offers "<hour> in the <daypart>" in Absolute.
	TimeOfDay bool
	// Minutes accepts ":MM" after numeric hours.
	Minutes bool

	// nested marks the base time inside RecursiveTime. It disables the
	// recursive and relative branches whatever Recurse and Relative say.
	nested bool
}

// DefaultOptions enables everything except Seconds and Prepositions.
func DefaultOptions() Options {
	return Options{
		Recurse:   true,
		Relative:  true,
		AMPM:      true,
		Named:     true,
		TimeOfDay: true,
		Minutes:   true,
	}
}

// base returns the options of the time nested inside RecursiveTime.
func (o Options) base() Options {
	return Options{
		Seconds:   o.Seconds,
		AMPM:      true,
		Named:     true,
		TimeOfDay: true,
		Minutes:   true,
		nested:    true,
	}
}

// Nested reports whether o describes a time nested inside RecursiveTime.
func (o Options) Nested() bool { return o.nested }

// Phrase is a time phrase of one Kind with its options. It implements
// grammar.Definition.
type Phrase struct {
	kind Kind
	opts Options
}

// New returns the phrase of kind k configured with o.
func New(k Kind, o Options) Phrase {
	return Phrase{kind: k, opts: o}
}

// Kind returns the phrase kind.
func (p Phrase) Kind() Kind { return p.kind }

// Options returns the phrase options.
func (p Phrase) Options() Options { return p.opts }

// Name implements grammar.Definition.
func (p Phrase) Name() string { return p.kind.String() }

// Describe implements grammar.Definition.
func (p Phrase) Describe() grammar.Node {
	o := p.opts
	switch p.kind {
	case KindMinutes:
		return number.DigitString{Descriptor: "minutes", Max: 59, MinLength: 2, MaxLength: 2, AllowLeadingZeros: true}.Node()
	case KindAbsoluteNamed:
		return grammar.List{Items: []grammar.Item{
			{Text: "midnight", Value: 0},
			{Text: "noon", Value: 12},
		}}
	case KindTimeOfDay:
		items := make([]grammar.Item, 0, len(Dayparts))
		for _, d := range Dayparts {
			items = append(items, grammar.Item{Text: d.Name, Value: d})
		}
		return grammar.Placeholder{Label: "time of day", Child: grammar.List{Items: items}}
	case KindAbsoluteNumeric:
		return describeNumeric(o)
	case KindAbsoluteRelativeHour:
		return describeRelativeHour(o)
	case KindAbsoluteTimeOfDay:
		return describeTimeOfDay()
	case KindRelativeTime:
		return describeRelative(o)
	case KindAbsolute:
		return describeAbsolute(o)
	case KindAmbiguousTime:
		return describeAmbiguous(o)
	case KindRecursiveTime:
		return describeRecursive(o)
	case KindTime:
		return describeTime(o)
	}
	return nil
}

func phrase(k Kind, o Options) grammar.Node {
	return grammar.Phrase{Definition: New(k, o)}
}

// Marker lists are ordered longest first: a list with Limit 1 stops at the
// first spelling that matches.
var (
	amMarkers = []grammar.Item{
		{Text: " a.m."}, {Text: "a.m."}, {Text: " a.m"}, {Text: "a.m"},
		{Text: " am"}, {Text: "am"}, {Text: " a"}, {Text: "a"},
	}
	pmMarkers = []grammar.Item{
		{Text: " p.m."}, {Text: "p.m."}, {Text: " p.m"}, {Text: "p.m"},
		{Text: " pm"}, {Text: "pm"}, {Text: " p"}, {Text: "p"},
	}
)

func describeNumeric(o Options) grammar.Node {
	children := []grammar.Child{
		{ID: "hour", Node: grammar.Choice{Children: []grammar.Child{
			{Node: number.DigitString{Descriptor: "hour", Min: 1, Max: 12, MaxLength: 2}.Node()},
			{Node: number.Cardinal{Min: 1, Max: 12}.Node()},
		}}},
	}
	if o.Minutes {
		children = append(children, grammar.Child{ID: "minute", Optional: true, Node: grammar.Sequence{Children: []grammar.Child{
			{Node: grammar.Literal{Text: ":"}},
			{Merge: true, Node: phrase(KindMinutes, o)},
		}}})
	}
	if o.AMPM {
		children = append(children, grammar.Child{ID: "ampm", Optional: true, Node: grammar.Choice{Children: []grammar.Child{
			{Node: grammar.List{Items: amMarkers, Value: AM, Limit: 1}},
			{Node: grammar.List{Items: pmMarkers, Value: PM, Limit: 1}},
		}}})
	}
	return grammar.Sequence{Children: children}
}

func describeRelativeHour(o Options) grammar.Node {
	hourOpts := o
	hourOpts.Minutes = false

	return grammar.Sequence{Children: []grammar.Child{
		{ID: "minute", Node: grammar.Placeholder{Label: "number", ShowForEmpty: true, Child: grammar.Choice{Children: []grammar.Child{
			{Node: grammar.Literal{Text: "quarter", Value: 15}},
			{Node: grammar.Literal{Text: "a quarter", Value: 15}},
			{Node: grammar.Literal{Text: "half", Value: 30}},
			{Node: number.Integer{Min: 1, Max: 59}.Node()},
			{Node: number.Cardinal{Min: 1, Max: 59}.Node()},
		}}}},
		{ID: "direction", Node: grammar.Choice{Children: []grammar.Child{
			{Node: grammar.Choice{Value: 1, Limit: 1, Children: []grammar.Child{
				{Node: grammar.Literal{Text: " past "}},
			}}},
			{Node: grammar.Choice{Value: -1, Limit: 1, Children: []grammar.Child{
				{Node: grammar.Literal{Text: " to "}},
				{Node: grammar.Literal{Text: " of "}},
				{Node: grammar.Literal{Text: " til "}},
				{Node: grammar.Literal{Text: " before "}},
				{Node: grammar.Literal{Text: " from "}},
			}}},
		}}},
		{ID: "absolute", Node: grammar.Placeholder{Label: "hour", Child: grammar.Choice{Children: []grammar.Child{
			{Node: phrase(KindAbsoluteNumeric, hourOpts)},
			{Node: phrase(KindAbsoluteNamed, o)},
		}}}},
	}}
}

func describeTimeOfDay() grammar.Node {
	plain := Options{Minutes: true}
	return grammar.Sequence{Children: []grammar.Child{
		{ID: "absolute", Node: grammar.Choice{Children: []grammar.Child{
			{Node: phrase(KindAbsoluteNumeric, plain)},
			{Node: phrase(KindAbsoluteRelativeHour, plain)},
		}}},
		{Node: grammar.Literal{Text: " in the "}},
		{ID: "timeOfDay", Node: phrase(KindTimeOfDay, plain)},
	}}
}

func describeRelative(o Options) grammar.Node {
	d := grammar.Phrase{Definition: duration.Phrase{Seconds: o.Seconds}}
	return grammar.Choice{Children: []grammar.Child{
		{Node: grammar.Sequence{Children: []grammar.Child{
			{ID: "direction", Node: grammar.Literal{Text: "in ", Value: 1}},
			{ID: "duration", Node: d},
		}}},
		{Node: grammar.Sequence{Children: []grammar.Child{
			{ID: "duration", Node: d},
			{ID: "direction", Node: grammar.Literal{Text: " from now", Value: 1}},
		}}},
		{Node: grammar.Sequence{Children: []grammar.Child{
			{ID: "duration", Node: d},
			{ID: "direction", Node: grammar.Literal{Text: " ago", Value: -1}},
		}}},
	}}
}

func describeAbsolute(o Options) grammar.Node {
	children := []grammar.Child{
		{Node: phrase(KindAbsoluteNumeric, Options{AMPM: o.AMPM, Minutes: true})},
		{Node: phrase(KindAbsoluteRelativeHour, Options{AMPM: o.AMPM})},
	}
	if o.Named {
		children = append(children, grammar.Child{Node: phrase(KindAbsoluteNamed, o)})
	}
	if o.TimeOfDay {
		children = append(children, grammar.Child{Node: phrase(KindAbsoluteTimeOfDay, o)})
	}
	return grammar.Choice{Children: children}
}

func describeAmbiguous(o Options) grammar.Node {
	var children []grammar.Child
	if o.Prepositions {
		children = append(children, grammar.Child{Optional: true, Node: grammar.Literal{Text: "at "}})
	}
	children = append(children, grammar.Child{Node: grammar.Argument{
		Label:        "time",
		ShowForEmpty: true,
		Merge:        true,
		Child:        phrase(KindAbsoluteNumeric, Options{Minutes: true}),
	}, Merge: true})
	return grammar.Sequence{Children: children}
}

// directions are the offset markers of RecursiveTime. " from " appears
// with both signs, so "X from T" yields one candidate for each.
var directions = []grammar.Item{
	{Text: " before ", Value: -1},
	{Text: " after ", Value: 1},
	{Text: " from ", Value: 1},
	{Text: " past ", Value: 1},
	{Text: " to ", Value: -1},
	{Text: " of ", Value: -1},
	{Text: " til ", Value: -1},
	{Text: " from ", Value: -1},
}

func describeRecursive(o Options) grammar.Node {
	return grammar.Sequence{Children: []grammar.Child{
		{Node: grammar.Argument{Label: "offset", ShowForEmpty: true, Merge: true, Child: grammar.Sequence{Children: []grammar.Child{
			{ID: "duration", Node: grammar.Phrase{Definition: duration.Phrase{Seconds: o.Seconds}}},
			{ID: "direction", Node: grammar.List{Items: directions, Limit: 2}},
		}}}},
		{ID: "time", Node: phrase(KindTime, o.base())},
	}}
}

func describeTime(o Options) grammar.Node {
	var absolute []grammar.Child
	if o.Prepositions {
		absolute = append(absolute, grammar.Child{Optional: true, Node: grammar.Literal{Text: "at "}})
	}
	absolute = append(absolute, grammar.Child{ID: "absolute", Node: phrase(KindAbsolute, o)})

	branches := []grammar.Child{{Node: grammar.Sequence{Children: absolute}}}
	if o.Relative && !o.nested {
		branches = append(branches, grammar.Child{ID: "relative", Node: phrase(KindRelativeTime, o)})
	}
	if o.Recurse && !o.nested {
		branches = append(branches, grammar.Child{ID: "recursive", Node: phrase(KindRecursiveTime, o)})
	}

	return grammar.Argument{
		Label:        "time",
		ShowForEmpty: true,
		Merge:        true,
		Child:        grammar.Choice{Children: branches},
	}
}
