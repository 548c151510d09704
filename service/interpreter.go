package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/rs/zerolog"

	"timebot/llm"
	"timebot/storage"
	"timebot/timeutil"
)

// ErrUnresolved is returned when no layer could resolve a query.
var ErrUnresolved = errors.New("could not resolve time expression")

// Source names the layer that answered a query.
type Source string

const (
	SourceGrammar  Source = "grammar"
	SourceFallback Source = "fallback"
	SourceRewrite  Source = "rewrite"
)

// NewFallback returns the natural-language parser used when the time grammar
// has no match, loaded with the English and common rule sets.
func NewFallback() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Interpreter answers "when is <expr>?" questions. It tries the time grammar
// first, then the natural-language fallback, then an LLM rewrite fed back
// into the grammar. Either optional layer may be nil.
type Interpreter struct {
	store    storage.Store
	parser   *timeutil.Parser
	fallback *when.Parser
	rewriter llm.Rewriter
	log      zerolog.Logger
}

// NewInterpreter constructs a new Interpreter.
func NewInterpreter(store storage.Store, parser *timeutil.Parser, fallback *when.Parser, rewriter llm.Rewriter, logger zerolog.Logger) *Interpreter {
	return &Interpreter{
		store:    store,
		parser:   parser,
		fallback: fallback,
		rewriter: rewriter,
		log:      logger,
	}
}

// Query describes a question coming from a chat or the command line.
type Query struct {
	ChatID int64
	// Text is the time expression after the command, e.g. "quarter to five".
	Text string
}

// Answer is the outcome of a resolved query.
type Answer struct {
	Input       string
	Source      Source
	Resolutions []timeutil.Resolution
}

// Resolve answers q against now and records the first resolution.
func (s *Interpreter) Resolve(ctx context.Context, now time.Time, q Query) (Answer, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Answer{}, fmt.Errorf("%w: empty expression", ErrUnresolved)
	}

	ans, err := s.resolve(ctx, now, text)
	if err != nil {
		s.log.Info().Err(err).Str("input", text).Msg("unresolved time expression")
		return Answer{}, err
	}

	if s.store != nil {
		first := ans.Resolutions[0]
		rec := storage.Query{
			ChatID:   q.ChatID,
			Input:    text,
			Source:   string(ans.Source),
			Hour:     first.Clock.Hour,
			Minute:   first.Clock.Minute,
			At:       first.At,
			Relative: first.Relative,
		}
		if err := s.store.SaveQuery(ctx, rec); err != nil {
			s.log.Error().Err(err).Int64("chat_id", q.ChatID).Msg("save query")
		}
	}
	return ans, nil
}

func (s *Interpreter) resolve(ctx context.Context, now time.Time, text string) (Answer, error) {
	res, err := s.parser.Parse(now, text)
	if err == nil {
		return Answer{Input: text, Source: SourceGrammar, Resolutions: res}, nil
	}
	if !errors.Is(err, timeutil.ErrNoMatch) {
		return Answer{}, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}

	if s.fallback != nil {
		r, ferr := s.fallback.Parse(text, now)
		if ferr != nil {
			s.log.Debug().Err(ferr).Str("input", text).Msg("fallback parse")
		} else if r != nil {
			at := r.Time.In(now.Location())
			return Answer{Input: text, Source: SourceFallback, Resolutions: []timeutil.Resolution{{
				Clock: timeutil.Clock{Hour: at.Hour(), Minute: at.Minute()},
				At:    at,
			}}}, nil
		}
	}

	if s.rewriter != nil {
		rewritten, rerr := s.rewriter.Rewrite(ctx, text)
		if rerr != nil {
			s.log.Warn().Err(rerr).Str("input", text).Msg("llm rewrite")
		} else if rewritten != "" {
			if res, perr := s.parser.Parse(now, rewritten); perr == nil {
				return Answer{Input: text, Source: SourceRewrite, Resolutions: res}, nil
			}
		}
	}

	return Answer{}, fmt.Errorf("%w: %w", ErrUnresolved, err)
}

// History returns the most recent answered queries of a chat.
func (s *Interpreter) History(ctx context.Context, chatID int64, limit int) ([]storage.Query, error) {
	if s.store == nil {
		return nil, nil
	}
	qs, err := s.store.RecentQueries(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return qs, nil
}

// HistoryText renders the recent queries of a chat, one per line, e.g.
// "quarter to five -> 04:45 (grammar, 3 minutes ago)".
func (s *Interpreter) HistoryText(ctx context.Context, chatID int64, limit int) (string, error) {
	qs, err := s.History(ctx, chatID, limit)
	if err != nil {
		return "", err
	}
	if len(qs) == 0 {
		return "No questions asked yet.", nil
	}

	var b strings.Builder
	for i, q := range qs {
		if i > 0 {
			b.WriteByte('\n')
		}
		clock := timeutil.Clock{Hour: q.Hour, Minute: q.Minute}
		fmt.Fprintf(&b, "%s -> %s (%s, %s)", q.Input, clock, q.Source, humanize.Time(q.CreatedAt))
	}
	return b.String(), nil
}

// Text renders the answer for a chat reply, e.g. "16:40" or
// "17:20 (20 minutes from now)". Ambiguous answers list every reading.
func (a Answer) Text(now time.Time) string {
	parts := make([]string, 0, len(a.Resolutions))
	for _, r := range a.Resolutions {
		s := r.Clock.String()
		if r.Relative {
			s += " (" + humanize.RelTime(r.At, now, "ago", "from now") + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " or ")
}
