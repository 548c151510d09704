// Package duration holds the duration phrase ("20 minutes", "an hour and
// 10 minutes") and its value.
package duration

import (
	"fmt"
	"strings"
	"time"
)

// Duration is an amount of hours, minutes and seconds. Each field is
// independently optional. A nil field was not stated.
type Duration struct {
	Hours   *int
	Minutes *int
	Seconds *int
}

// Hours returns a Duration of n hours.
func Hours(n int) Duration { return Duration{Hours: &n} }

// Minutes returns a Duration of n minutes.
func Minutes(n int) Duration { return Duration{Minutes: &n} }

// Seconds returns a Duration of n seconds.
func Seconds(n int) Duration { return Duration{Seconds: &n} }

// Plus returns d with the fields present in o added in. Fields absent from
// both stay absent.
func (d Duration) Plus(o Duration) Duration {
	return Duration{
		Hours:   addField(d.Hours, o.Hours),
		Minutes: addField(d.Minutes, o.Minutes),
		Seconds: addField(d.Seconds, o.Seconds),
	}
}

// Negate flips the sign of every present field.
func (d Duration) Negate() Duration {
	return Duration{
		Hours:   negField(d.Hours),
		Minutes: negField(d.Minutes),
		Seconds: negField(d.Seconds),
	}
}

// IsZero reports whether no field is present.
func (d Duration) IsZero() bool {
	return d.Hours == nil && d.Minutes == nil && d.Seconds == nil
}

// Std converts d to a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(deref(d.Hours))*time.Hour +
		time.Duration(deref(d.Minutes))*time.Minute +
		time.Duration(deref(d.Seconds))*time.Second
}

// String renders the present fields, e.g. "1h-20m" or "" when empty.
func (d Duration) String() string {
	var b strings.Builder
	if d.Hours != nil {
		fmt.Fprintf(&b, "%dh", *d.Hours)
	}
	if d.Minutes != nil {
		fmt.Fprintf(&b, "%dm", *d.Minutes)
	}
	if d.Seconds != nil {
		fmt.Fprintf(&b, "%ds", *d.Seconds)
	}
	return b.String()
}

func addField(a, b *int) *int {
	if a == nil && b == nil {
		return nil
	}
	n := deref(a) + deref(b)
	return &n
}

func negField(p *int) *int {
	if p == nil {
		return nil
	}
	n := -*p
	return &n
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
