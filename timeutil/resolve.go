package timeutil

import (
	"strconv"

	"timebot/duration"
	"timebot/grammar"
)

const minutesPerDay = 24 * 60

// Reduce implements grammar.Definition. It never fails loudly: a phrase whose
// required parts are absent reports false.
func (p Phrase) Reduce(raw any) (any, bool) {
	switch p.kind {
	case KindMinutes:
		return reduceMinutes(raw)
	case KindAbsoluteNamed:
		hour, ok := raw.(int)
		if !ok {
			return nil, false
		}
		return Clock{Hour: hour}, true
	case KindTimeOfDay:
		d, ok := raw.(Daypart)
		return d, ok
	case KindAbsoluteNumeric:
		return reduceNumeric(raw)
	case KindAbsoluteRelativeHour:
		return reduceRelativeHour(raw)
	case KindAbsoluteTimeOfDay:
		return reduceTimeOfDay(raw)
	case KindRelativeTime:
		return reduceRelative(raw)
	case KindAbsolute, KindAmbiguousTime:
		return raw, raw != nil
	case KindRecursiveTime:
		return reduceRecursive(raw)
	case KindTime:
		return reduceTime(raw)
	}
	return nil, false
}

func reduceMinutes(raw any) (any, bool) {
	s, ok := raw.(string)
	if !ok {
		return nil, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return n, true
}

func reduceNumeric(raw any) (any, bool) {
	var hour int
	switch h := grammarValue(raw, "hour").(type) {
	case string:
		n, err := strconv.Atoi(h)
		if err != nil {
			return nil, false
		}
		hour = n
	case int:
		hour = h
	default:
		return nil, false
	}

	minute, _ := grammar.Get[int](raw, "minute")
	ampm, _ := grammar.Get[Meridiem](raw, "ampm")
	return AmbiguousHour{Hour: hour, Minute: minute, Meridiem: ampm}, true
}

// reduceRelativeHour reads "<q> past <h>" as h:q and "<q> to <h>" as q
// minutes before h o'clock, wrapping around midnight.
func reduceRelativeHour(raw any) (any, bool) {
	q, ok := grammar.Get[int](raw, "minute")
	if !ok {
		return nil, false
	}
	direction, ok := grammar.Get[int](raw, "direction")
	if !ok {
		return nil, false
	}

	var base AmbiguousHour
	switch h := grammarValue(raw, "absolute").(type) {
	case AmbiguousHour:
		base = h
	case Clock:
		base = AmbiguousHour{Hour: h.Hour}
	default:
		return nil, false
	}

	if direction > 0 {
		return AmbiguousHour{Hour: base.Hour, Minute: q, Meridiem: base.Meridiem}, true
	}
	total := ((base.Hour*60-q)%minutesPerDay + minutesPerDay) % minutesPerDay
	return AmbiguousHour{Hour: total / 60, Minute: total % 60, Meridiem: base.Meridiem}, true
}

// reduceTimeOfDay keeps the hour when it already lies in the daypart and
// moves it by twelve hours otherwise.
func reduceTimeOfDay(raw any) (any, bool) {
	h, ok := grammar.Get[AmbiguousHour](raw, "absolute")
	if !ok {
		return nil, false
	}
	part, ok := grammar.Get[Daypart](raw, "timeOfDay")
	if !ok {
		return nil, false
	}

	hour := h.Hour
	if !part.Contains(hour) {
		if hour < 12 {
			hour += 12
		} else {
			hour -= 12
		}
	}
	return Clock{Hour: hour, Minute: h.Minute}, true
}

func reduceRelative(raw any) (any, bool) {
	d, ok := grammar.Get[duration.Duration](raw, "duration")
	if !ok {
		return nil, false
	}
	direction, ok := grammar.Get[int](raw, "direction")
	if !ok {
		return nil, false
	}
	if direction < 0 {
		d = d.Negate()
	}
	return d, true
}

func reduceRecursive(raw any) (any, bool) {
	d, ok := grammar.Get[duration.Duration](raw, "duration")
	if !ok {
		return nil, false
	}
	direction, ok := grammar.Get[int](raw, "direction")
	if !ok || direction == 0 {
		return nil, false
	}
	base, ok := grammar.Get[Value](raw, "time")
	if !ok || base.Relative {
		return nil, false
	}
	if direction < 0 {
		d = d.Negate()
	}
	return base.Clock.Add(d), true
}

func reduceTime(raw any) (any, bool) {
	switch {
	case grammar.Has(raw, "recursive"):
		c, ok := grammar.Get[Clock](raw, "recursive")
		if !ok {
			return nil, false
		}
		return Value{Clock: c}, true
	case grammar.Has(raw, "relative"):
		d, ok := grammar.Get[duration.Duration](raw, "relative")
		if !ok {
			return nil, false
		}
		return Value{Offset: d, Relative: true}, true
	case grammar.Has(raw, "absolute"):
		switch a := grammarValue(raw, "absolute").(type) {
		case AmbiguousHour:
			return Value{Clock: a.Clock()}, true
		case Clock:
			return Value{Clock: a}, true
		}
	}
	return nil, false
}

func grammarValue(raw any, id string) any {
	v, _ := grammar.Get[any](raw, id)
	return v
}
