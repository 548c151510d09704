// Package number provides the numeric primitives used by phrase grammars:
// digit strings, bounded integers and spelled-out English cardinals.
package number

import (
	"strconv"
	"strings"

	"timebot/grammar"
)

// DigitString matches a run of decimal digits and yields it as a string.
// A match never ends inside a digit run.
type DigitString struct {
	Descriptor        string
	Min               int
	Max               int // zero means unbounded
	MinLength         int
	MaxLength         int // zero means unbounded
	AllowLeadingZeros bool
}

// Node wraps d for use in a grammar.
func (d DigitString) Node() grammar.Node {
	return grammar.Term{Scanner: d}
}

// Scan implements grammar.Scanner.
func (d DigitString) Scan(rest string) []grammar.Span {
	run := digitRun(rest)
	if run == "" {
		return nil
	}
	if len(run) < d.MinLength || (d.MaxLength > 0 && len(run) > d.MaxLength) {
		return nil
	}
	if !d.AllowLeadingZeros && len(run) > 1 && run[0] == '0' {
		return nil
	}
	n, err := strconv.Atoi(run)
	if err != nil || n < d.Min || (d.Max > 0 && n > d.Max) {
		return nil
	}
	return []grammar.Span{{Len: len(run), Value: run}}
}

// Integer matches a run of decimal digits in [Min, Max] and yields an int.
type Integer struct {
	Min int
	Max int
}

// Node wraps i for use in a grammar.
func (i Integer) Node() grammar.Node {
	return grammar.Term{Scanner: i}
}

// Scan implements grammar.Scanner.
func (i Integer) Scan(rest string) []grammar.Span {
	run := digitRun(rest)
	if run == "" {
		return nil
	}
	n, err := strconv.Atoi(run)
	if err != nil || n < i.Min || n > i.Max {
		return nil
	}
	return []grammar.Span{{Len: len(run), Value: n}}
}

// Cardinal matches an English number word in [Min, Max] ("five",
// "twenty-one", "forty two") and yields an int. A match never ends inside a
// word, so "twenty five" yields both 20 and 25.
type Cardinal struct {
	Min int
	Max int
}

// Node wraps c for use in a grammar.
func (c Cardinal) Node() grammar.Node {
	return grammar.Term{Scanner: c}
}

// Scan implements grammar.Scanner.
func (c Cardinal) Scan(rest string) []grammar.Span {
	var out []grammar.Span
	for _, w := range cardinals {
		if w.value < c.Min || w.value > c.Max {
			continue
		}
		if len(rest) < len(w.text) || !strings.EqualFold(rest[:len(w.text)], w.text) {
			continue
		}
		if len(rest) > len(w.text) && isLetter(rest[len(w.text)]) {
			continue
		}
		out = append(out, grammar.Span{Len: len(w.text), Value: w.value})
	}
	return out
}

// Words returns the spelling of n for 0 <= n < 100, hyphenating compounds.
func Words(n int) string {
	switch {
	case n < 0 || n >= 100:
		return strconv.Itoa(n)
	case n < 20:
		return ones[n]
	case n%10 == 0:
		return tens[n/10]
	}
	return tens[n/10] + "-" + ones[n%10]
}

type word struct {
	text  string
	value int
}

var (
	ones = []string{
		"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
		"seventeen", "eighteen", "nineteen",
	}
	tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

	cardinals = buildCardinals()
)

func buildCardinals() []word {
	var out []word
	for n := 0; n < 100; n++ {
		out = append(out, word{text: Words(n), value: n})
		if n > 20 && n%10 != 0 {
			out = append(out, word{text: tens[n/10] + " " + ones[n%10], value: n})
		}
	}
	return out
}

func digitRun(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
