package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ner-eval/internal/core/types"
)

func TestResolveSentence(t *testing.T) {
	doc := tumorDoc("d1", "O", 5)

	tests := []struct {
		name   string
		start  int
		stop   int
		wantOk bool
		want   int
	}{
		{name: "first sentence start", start: 0, stop: 5, wantOk: true, want: 0},
		{name: "inclusive end", start: 17, stop: 18, wantOk: true, want: 0},
		{name: "second sentence", start: 21, stop: 31, wantOk: true, want: 1},
		{name: "crosses boundary", start: 9, stop: 31, wantOk: true, want: 0},
		{name: "beyond document", start: 40, stop: 45, wantOk: false, want: -1},
		{name: "negative offset", start: -1, stop: 2, wantOk: false, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := ResolveSentence(doc, tt.start, tt.stop)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, idx)
		})
	}
}

func TestResolveSentenceSharedBoundaryPicksFirst(t *testing.T) {
	doc := types.NewDocument("d1", "aaaa bbbb", []types.Sentence{
		{SpanStart: 0, SpanEnd: 4},
		{SpanStart: 4, SpanEnd: 9},
	}, nil)

	idx, ok := ResolveSentence(doc, 4, 6)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestResolveSentenceResultsAreKnownSentences(t *testing.T) {
	doc := types.NewDocument("d1", "one. two. three.", []types.Sentence{
		{SpanStart: 0, SpanEnd: 4},
		{SpanStart: 5, SpanEnd: 9},
		{SpanStart: 10, SpanEnd: 16},
	}, nil)

	for offset := -2; offset <= 20; offset++ {
		idx, ok := ResolveSentence(doc, offset, offset+1)
		if !ok {
			continue
		}
		require.True(t, idx >= 0 && idx < len(doc.Sentences), "offset %d resolved to %d", offset, idx)
		assert.True(t, doc.Sentences[idx].Contains(offset))
	}

	for _, sent := range doc.Sentences {
		for offset := sent.SpanStart + 1; offset < sent.SpanEnd; offset++ {
			idx, ok := ResolveSentence(doc, offset, offset)
			require.True(t, ok)
			assert.Equal(t, sent.SentOrderIdx, idx, "interior offset %d", offset)
		}
	}
}
