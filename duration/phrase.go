package duration

import (
	"timebot/grammar"
	"timebot/number"
)

const (
	unitHours   = "h"
	unitMinutes = "m"
	unitSeconds = "s"
)

// Phrase matches one to three unit components joined by ", ", " and " or a
// space. Its value is a Duration with only the stated units present. A unit
// stated twice yields no value.
type Phrase struct {
	// Seconds offers seconds as a unit.
	Seconds bool
}

// Name implements grammar.Definition.
func (Phrase) Name() string { return "Duration" }

// Describe implements grammar.Definition.
func (p Phrase) Describe() grammar.Node {
	limit := 2
	if p.Seconds {
		limit = 3
	}
	component := grammar.Choice{Children: []grammar.Child{
		{Node: grammar.Sequence{Children: []grammar.Child{
			{ID: "n", Node: grammar.Placeholder{Label: "number", ShowForEmpty: true, Child: grammar.Choice{Children: []grammar.Child{
				{Node: number.Integer{Min: 1, Max: 9999}.Node()},
				{Node: number.Cardinal{Min: 1, Max: 99}.Node()},
				{Node: grammar.List{Items: []grammar.Item{{Text: "an"}, {Text: "a"}}, Value: 1}},
			}}}},
			{Node: grammar.Literal{Text: " "}},
			{ID: "unit", Node: p.units()},
		}}},
		{Node: grammar.List{Items: []grammar.Item{{Text: "half an hour"}, {Text: "half hour"}}, Value: grammar.Fields{"n": 30, "unit": unitMinutes}}},
	}}

	return grammar.Placeholder{
		Label:        "duration",
		ShowForEmpty: true,
		Child: grammar.Repeat{
			Child: component,
			Separator: grammar.List{Items: []grammar.Item{
				{Text: ", and "}, {Text: " and "}, {Text: ", "}, {Text: " "},
			}},
			Min: 1,
			Max: limit,
		},
	}
}

func (p Phrase) units() grammar.Node {
	items := []grammar.Item{
		{Text: "hours", Value: unitHours},
		{Text: "hour", Value: unitHours},
		{Text: "hrs", Value: unitHours},
		{Text: "hr", Value: unitHours},
		{Text: "minutes", Value: unitMinutes},
		{Text: "minute", Value: unitMinutes},
		{Text: "mins", Value: unitMinutes},
		{Text: "min", Value: unitMinutes},
	}
	if p.Seconds {
		items = append(items,
			grammar.Item{Text: "seconds", Value: unitSeconds},
			grammar.Item{Text: "second", Value: unitSeconds},
			grammar.Item{Text: "secs", Value: unitSeconds},
			grammar.Item{Text: "sec", Value: unitSeconds},
		)
	}
	return grammar.Placeholder{Label: "unit", Child: grammar.List{Items: items}}
}

// Reduce implements grammar.Definition.
func (Phrase) Reduce(raw any) (any, bool) {
	parts, ok := raw.([]any)
	if !ok || len(parts) == 0 {
		return nil, false
	}

	var d Duration
	for _, part := range parts {
		n, ok := grammar.Get[int](part, "n")
		if !ok {
			return nil, false
		}
		unit, _ := grammar.Get[string](part, "unit")
		switch unit {
		case unitHours:
			if d.Hours != nil {
				return nil, false
			}
			d.Hours = &n
		case unitMinutes:
			if d.Minutes != nil {
				return nil, false
			}
			d.Minutes = &n
		case unitSeconds:
			if d.Seconds != nil {
				return nil, false
			}
			d.Seconds = &n
		default:
			return nil, false
		}
	}
	return d, true
}
