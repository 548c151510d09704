package timeutil

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"timebot/duration"
	"timebot/grammar"
)

var (
	// ErrNoMatch means no candidate parse covers the input.
	ErrNoMatch = errors.New("no time expression matched")
	// ErrNoValue means candidates matched but none resolved to a time.
	ErrNoValue = errors.New("time expression has no value")
)

// Parser parses time expressions like "quarter to five", "in 20 minutes" or
// "an hour before noon" with the Time phrase and resolves every candidate.
type Parser struct {
	phrase  Phrase
	matcher grammar.Matcher
	log     zerolog.Logger
}

// NewParser constructs a Parser for the Time phrase configured with opts.
func NewParser(opts Options, logger zerolog.Logger) *Parser {
	return &Parser{
		phrase: New(KindTime, opts),
		log:    logger,
	}
}

// Resolution is one interpretation of an expression.
type Resolution struct {
	// Clock is the resolved wall-clock time.
	Clock Clock
	// At anchors Clock to a full timestamp relative to the parse's now.
	At time.Time
	// Relative is set for "in 20 minutes" style expressions; Offset is then
	// the signed duration added to now.
	Relative bool
	Offset   duration.Duration
}

// Parse resolves input against now. Resolutions are returned in grammar
// order with duplicates removed. A nil error guarantees at least one.
func (p *Parser) Parse(now time.Time, input string) ([]Resolution, error) {
	input = normalize(input)
	if input == "" {
		return nil, ErrNoMatch
	}

	candidates := p.matcher.Match(grammar.Phrase{Definition: p.phrase}, input)
	if len(candidates) == 0 {
		p.log.Debug().Str("input", input).Msg("no candidate parse")
		return nil, ErrNoMatch
	}

	type key struct {
		clock    Clock
		at       int64
		relative bool
	}
	seen := make(map[key]struct{}, len(candidates))

	var out []Resolution
	for _, c := range candidates {
		v, ok := c.Value.(Value)
		if !ok {
			continue
		}
		r := Resolution{
			Clock:    v.ClockAt(now),
			At:       v.TimeAt(now),
			Relative: v.Relative,
			Offset:   v.Offset,
		}
		k := key{clock: r.Clock, at: r.At.UnixNano(), relative: r.Relative}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}

	p.log.Debug().
		Str("input", input).
		Int("candidates", len(candidates)).
		Int("resolutions", len(out)).
		Msg("parsed time expression")

	if len(out) == 0 {
		return nil, ErrNoValue
	}
	return out, nil
}

// Pending returns the placeholder labels that could follow a partially typed
// expression, e.g. "duration" or "time". Duplicates are removed.
//
// Only labeled placeholders are reported. Connecting words such as " past "
// or " before " are literals, so "quarter " or "20 minutes " report nothing
// even though a direction word is expected next.
func (p *Parser) Pending(input string) []string {
	m := grammar.Matcher{Partial: true}
	seen := map[string]struct{}{}
	var out []string
	for _, c := range m.Match(grammar.Phrase{Definition: p.phrase}, normalizePartial(input)) {
		for _, label := range c.Pending {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	return out
}

func normalize(input string) string {
	return strings.Join(strings.Fields(input), " ")
}

// normalizePartial keeps one trailing space, which separates a finished word
// from the next placeholder.
func normalizePartial(input string) string {
	s := normalize(input)
	if s != "" && strings.HasSuffix(input, " ") {
		s += " "
	}
	return s
}
