package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"timebot/storage"
	"timebot/timeutil"
)

type fakeStore struct {
	saved []storage.Query
	err   error
}

func (f *fakeStore) SaveQuery(ctx context.Context, q storage.Query) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, q)
	return nil
}

func (f *fakeStore) RecentQueries(ctx context.Context, chatID int64, limit int) ([]storage.Query, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []storage.Query
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].ChatID == chatID {
			out = append(out, f.saved[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeRewriter struct {
	calls    []string
	response string
	err      error
}

func (f *fakeRewriter) Rewrite(ctx context.Context, phrase string) (string, error) {
	f.calls = append(f.calls, phrase)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var now = time.Date(2024, 3, 10, 14, 5, 0, 0, time.UTC)

func newParser() *timeutil.Parser {
	return timeutil.NewParser(timeutil.DefaultOptions(), zerolog.Nop())
}

func TestInterpreter_Grammar(t *testing.T) {
	store := &fakeStore{}
	rw := &fakeRewriter{}
	s := NewInterpreter(store, newParser(), NewFallback(), rw, zerolog.Nop())

	ans, err := s.Resolve(context.Background(), now, Query{ChatID: 7, Text: "  an hour before noon "})
	require.NoError(t, err)
	require.Equal(t, SourceGrammar, ans.Source)
	require.Equal(t, "an hour before noon", ans.Input)
	require.Equal(t, "11:00", ans.Text(now))
	require.Empty(t, rw.calls)

	require.Len(t, store.saved, 1)
	require.Equal(t, int64(7), store.saved[0].ChatID)
	require.Equal(t, "grammar", store.saved[0].Source)
	require.Equal(t, 11, store.saved[0].Hour)
	require.Equal(t, 0, store.saved[0].Minute)
}

func TestInterpreter_Fallback(t *testing.T) {
	store := &fakeStore{}
	s := NewInterpreter(store, newParser(), NewFallback(), nil, zerolog.Nop())

	ans, err := s.Resolve(context.Background(), now, Query{ChatID: 1, Text: "tomorrow at 5pm"})
	require.NoError(t, err)
	require.Equal(t, SourceFallback, ans.Source)
	require.Len(t, ans.Resolutions, 1)
	require.Equal(t, now.AddDate(0, 0, 1).Day(), ans.Resolutions[0].At.Day())
	require.Equal(t, "17:00", ans.Resolutions[0].Clock.String())
	require.Equal(t, "fallback", store.saved[0].Source)
}

func TestInterpreter_Rewrite(t *testing.T) {
	rw := &fakeRewriter{response: "4:45 pm"}
	s := NewInterpreter(&fakeStore{}, newParser(), nil, rw, zerolog.Nop())

	ans, err := s.Resolve(context.Background(), now, Query{Text: "tea time-ish"})
	require.NoError(t, err)
	require.Equal(t, SourceRewrite, ans.Source)
	require.Equal(t, "tea time-ish", ans.Input)
	require.Equal(t, "16:45", ans.Text(now))
	require.Equal(t, []string{"tea time-ish"}, rw.calls)
}

func TestInterpreter_RewriteFailures(t *testing.T) {
	for name, rw := range map[string]*fakeRewriter{
		"error":        {err: errors.New("llm down")},
		"no time":      {response: ""},
		"still broken": {response: "banana o'clock"},
	} {
		t.Run(name, func(t *testing.T) {
			store := &fakeStore{}
			s := NewInterpreter(store, newParser(), nil, rw, zerolog.Nop())

			_, err := s.Resolve(context.Background(), now, Query{Text: "banana"})
			require.ErrorIs(t, err, ErrUnresolved)
			require.ErrorIs(t, err, timeutil.ErrNoMatch)
			require.Empty(t, store.saved)
		})
	}
}

func TestInterpreter_NoValueSkipsOtherLayers(t *testing.T) {
	rw := &fakeRewriter{response: "noon"}
	s := NewInterpreter(&fakeStore{}, newParser(), NewFallback(), rw, zerolog.Nop())

	_, err := s.Resolve(context.Background(), now, Query{Text: "1 hour 2 hours ago"})
	require.ErrorIs(t, err, ErrUnresolved)
	require.ErrorIs(t, err, timeutil.ErrNoValue)
	require.Empty(t, rw.calls)
}

func TestInterpreter_EmptyInput(t *testing.T) {
	s := NewInterpreter(&fakeStore{}, newParser(), nil, nil, zerolog.Nop())

	_, err := s.Resolve(context.Background(), now, Query{Text: "   "})
	require.ErrorIs(t, err, ErrUnresolved)
}

// TestInterpreter_StoreErrorIgnored ensures that a failing store does not
// hide a resolved answer.
func TestInterpreter_StoreErrorIgnored(t *testing.T) {
	s := NewInterpreter(&fakeStore{err: errors.New("disk full")}, newParser(), nil, nil, zerolog.Nop())

	ans, err := s.Resolve(context.Background(), now, Query{Text: "noon"})
	require.NoError(t, err)
	require.Equal(t, "12:00", ans.Text(now))
}

func TestInterpreter_NilStore(t *testing.T) {
	s := NewInterpreter(nil, newParser(), nil, nil, zerolog.Nop())

	_, err := s.Resolve(context.Background(), now, Query{Text: "noon"})
	require.NoError(t, err)

	qs, err := s.History(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Empty(t, qs)
}

func TestAnswer_Text(t *testing.T) {
	s := NewInterpreter(nil, newParser(), nil, nil, zerolog.Nop())

	ans, err := s.Resolve(context.Background(), now, Query{Text: "20 minutes from 5pm"})
	require.NoError(t, err)
	require.Equal(t, "17:20 or 16:40", ans.Text(now))

	ans, err = s.Resolve(context.Background(), now, Query{Text: "in 20 minutes"})
	require.NoError(t, err)
	require.Equal(t, "14:25 (20 minutes from now)", ans.Text(now))

	ans, err = s.Resolve(context.Background(), now, Query{Text: "2 hours ago"})
	require.NoError(t, err)
	require.Equal(t, "12:05 (2 hours ago)", ans.Text(now))
}

func TestInterpreter_HistoryText(t *testing.T) {
	store := &fakeStore{}
	s := NewInterpreter(store, newParser(), nil, nil, zerolog.Nop())

	text, err := s.HistoryText(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Equal(t, "No questions asked yet.", text)

	_, err = s.Resolve(context.Background(), now, Query{ChatID: 3, Text: "quarter to five"})
	require.NoError(t, err)
	_, err = s.Resolve(context.Background(), now, Query{ChatID: 4, Text: "noon"})
	require.NoError(t, err)

	text, err = s.HistoryText(context.Background(), 3, 10)
	require.NoError(t, err)
	require.Contains(t, text, "quarter to five -> 04:45 (grammar, ")
	require.NotContains(t, text, "noon")

	store.err = errors.New("db locked")
	_, err = s.HistoryText(context.Background(), 3, 10)
	require.Error(t, err)
}
