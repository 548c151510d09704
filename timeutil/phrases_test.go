package timeutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"timebot/duration"
	"timebot/grammar"
)

var allKinds = []Kind{
	KindMinutes, KindAbsoluteNamed, KindTimeOfDay, KindAbsoluteNumeric,
	KindAbsoluteRelativeHour, KindAbsoluteTimeOfDay, KindRelativeTime,
	KindAbsolute, KindAmbiguousTime, KindRecursiveTime, KindTime,
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "AbsoluteRelativeHour", KindAbsoluteRelativeHour.String())
	require.Equal(t, "Time", New(KindTime, DefaultOptions()).Name())
	require.Equal(t, "Kind(?)", Kind(99).String())
}

func TestDescribe_Deterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.Prepositions = true
	for _, k := range allKinds {
		t.Run(k.String(), func(t *testing.T) {
			first := New(k, opts).Describe()
			require.NotNil(t, first)
			require.Equal(t, first, New(k, opts).Describe())
		})
	}
}

func TestOptions_Base(t *testing.T) {
	o := DefaultOptions()
	o.Seconds = true
	o.Prepositions = true

	b := o.base()
	require.True(t, b.Nested())
	require.False(t, o.Nested())
	require.True(t, b.Seconds)
	require.False(t, b.Prepositions)
	require.True(t, b.Named)
}

func TestDescribeTime_Branches(t *testing.T) {
	branches := func(o Options) int {
		arg, ok := New(KindTime, o).Describe().(grammar.Argument)
		require.True(t, ok)
		choice, ok := arg.Child.(grammar.Choice)
		require.True(t, ok)
		return len(choice.Children)
	}

	require.Equal(t, 3, branches(DefaultOptions()))
	require.Equal(t, 1, branches(DefaultOptions().base()))

	o := DefaultOptions()
	o.Relative = false
	require.Equal(t, 2, branches(o))
}

func TestMinutesPhrase(t *testing.T) {
	cs := grammar.Parse(New(KindMinutes, Options{}), "07")
	require.Len(t, cs, 1)
	require.Equal(t, 7, cs[0].Value)

	require.Empty(t, grammar.Parse(New(KindMinutes, Options{}), "7"))
	require.Empty(t, grammar.Parse(New(KindMinutes, Options{}), "60"))
}

func TestTimeOfDayPhrase(t *testing.T) {
	cs := grammar.Parse(New(KindTimeOfDay, Options{}), "Evening")
	require.Len(t, cs, 1)
	require.Equal(t, Dayparts[2], cs[0].Value)
}

func TestAmbiguousTimePhrase(t *testing.T) {
	plain := New(KindAmbiguousTime, Options{})

	cs := grammar.Parse(plain, "5:30")
	require.Len(t, cs, 1)
	require.Equal(t, AmbiguousHour{Hour: 5, Minute: 30}, cs[0].Value)

	require.Empty(t, grammar.Parse(plain, "5pm"))
	require.Empty(t, grammar.Parse(plain, "at 5"))

	cs = grammar.Parse(New(KindAmbiguousTime, Options{Prepositions: true}), "at 5")
	require.Len(t, cs, 1)
	require.Equal(t, AmbiguousHour{Hour: 5}, cs[0].Value)
}

func TestRelativePhrase(t *testing.T) {
	cs := grammar.Parse(New(KindRelativeTime, DefaultOptions()), "half an hour ago")
	require.Len(t, cs, 1)
	require.Equal(t, "-30m", cs[0].Value.(duration.Duration).String())
}
