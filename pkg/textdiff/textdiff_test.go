package textdiff

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstructOld concatenates equal and delete segments.
func reconstructOld(diff []Segment) string {
	var sb strings.Builder
	for _, seg := range diff {
		if seg.Type == OpEqual || seg.Type == OpDelete {
			sb.WriteString(seg.Content)
		}
	}
	return sb.String()
}

// reconstructNew concatenates equal and insert segments.
func reconstructNew(diff []Segment) string {
	var sb strings.Builder
	for _, seg := range diff {
		if seg.Type == OpEqual || seg.Type == OpInsert {
			sb.WriteString(seg.Content)
		}
	}
	return sb.String()
}

func TestCompareInsertedWord(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Compare("The quick fox", "The quick brown fox")
	require.NoError(t, err)

	expected := []Segment{
		{Type: OpEqual, Content: "The quick "},
		{Type: OpInsert, Content: "brown "},
		{Type: OpEqual, Content: "fox"},
	}
	assert.Equal(t, expected, result.Diff)
	assert.Equal(t, Stats{WordsAdded: 1, WordsRemoved: 0, WordsUnchanged: 3, TotalChanges: 1}, result.Stats)
}

func TestCompareIdenticalContent(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Compare("alpha beta gamma", "alpha beta gamma")
	require.NoError(t, err)

	require.Len(t, result.Diff, 1)
	assert.Equal(t, OpEqual, result.Diff[0].Type)
	assert.Equal(t, "alpha beta gamma", result.Diff[0].Content)
	assert.Equal(t, Stats{WordsUnchanged: 3}, result.Stats)
}

func TestCompareBothEmpty(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Compare("", "")
	require.NoError(t, err)

	assert.Empty(t, result.Diff)
	assert.Equal(t, Stats{}, result.Stats)
}

func TestCompareOneSideEmpty(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Compare("", "new content here")
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Type: OpInsert, Content: "new content here"}}, result.Diff)
	assert.Equal(t, 3, result.Stats.WordsAdded)

	result, err = engine.Compare("old content", "")
	require.NoError(t, err)
	assert.Equal(t, []Segment{{Type: OpDelete, Content: "old content"}}, result.Diff)
	assert.Equal(t, 2, result.Stats.WordsRemoved)
}

func TestCompareReplacement(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Compare("approve the budget today", "approve the revised budget tomorrow")
	require.NoError(t, err)

	assert.Equal(t, "approve the budget today", reconstructOld(result.Diff))
	assert.Equal(t, "approve the revised budget tomorrow", reconstructNew(result.Diff))
	assert.Equal(t, result.Stats.WordsAdded+result.Stats.WordsRemoved, result.Stats.TotalChanges)
}

func TestCompareRoundTrip(t *testing.T) {
	engine := NewEngine(0)

	cases := []struct {
		name string
		old  string
		new  string
	}{
		{"prefix insert", "quarterly report", "draft quarterly report"},
		{"suffix delete", "final version attached below", "final version"},
		{"full rewrite", "one two three", "four five six seven"},
		{"whitespace change", "a  b\tc", "a b c"},
		{"multiline", "line one\nline two\nline three", "line one\nline 2\nline three\nline four"},
		{"unicode", "résumé für müller", "résumé für meier"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := engine.Compare(tc.old, tc.new)
			require.NoError(t, err)
			assert.Equal(t, tc.old, reconstructOld(result.Diff))
			assert.Equal(t, tc.new, reconstructNew(result.Diff))
		})
	}
}

func TestCompareRoundTripRandomized(t *testing.T) {
	engine := NewEngine(0)
	rng := rand.New(rand.NewSource(42))
	vocab := []string{"the", "review", "document", "pending", "approval", "draft", "final", "budget"}

	randomText := func(n int) string {
		words := make([]string, n)
		for i := range words {
			words[i] = vocab[rng.Intn(len(vocab))]
		}
		return strings.Join(words, " ")
	}

	for i := 0; i < 50; i++ {
		oldText := randomText(rng.Intn(120))
		newText := randomText(rng.Intn(120))

		result, err := engine.Compare(oldText, newText)
		require.NoError(t, err)
		require.Equal(t, oldText, reconstructOld(result.Diff))
		require.Equal(t, newText, reconstructNew(result.Diff))
		require.Equal(t, result.Stats.WordsAdded+result.Stats.WordsRemoved, result.Stats.TotalChanges)
	}
}

func TestCompareIdempotent(t *testing.T) {
	engine := NewEngine(0)

	first, err := engine.Compare("the quick fox jumps", "the slow fox sleeps")
	require.NoError(t, err)
	second, err := engine.Compare("the quick fox jumps", "the slow fox sleeps")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompareContentTooLarge(t *testing.T) {
	engine := NewEngine(16)

	_, err := engine.Compare(strings.Repeat("x", 17), "short")
	assert.ErrorIs(t, err, ErrContentTooLarge)

	_, err = engine.Compare("short", strings.Repeat("x", 17))
	assert.ErrorIs(t, err, ErrContentTooLarge)
}

func TestSplitProjection(t *testing.T) {
	engine := NewEngine(0)

	result, err := engine.Compare("The quick fox", "The quick brown fox")
	require.NoError(t, err)

	sbs := result.Split()
	assert.Equal(t, "The quick fox", reconstructOld(sbs.Left))
	assert.Equal(t, "The quick brown fox", reconstructNew(sbs.Right))

	// Left stream never contains inserts, right stream never deletes.
	for _, seg := range sbs.Left {
		assert.NotEqual(t, OpInsert, seg.Type)
	}
	for _, seg := range sbs.Right {
		assert.NotEqual(t, OpDelete, seg.Type)
	}
}
