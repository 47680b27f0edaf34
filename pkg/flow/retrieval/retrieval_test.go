package retrieval

import (
	"testing"

	"rag-chat-be/pkg/flow"

	"github.com/stretchr/testify/assert"
)

func docs(sourceIDs ...string) []flow.Document {
	out := make([]flow.Document, len(sourceIDs))
	for i, s := range sourceIDs {
		out[i] = flow.Document{DocumentID: s + "-doc", SourceID: s}
	}
	return out
}

func sources(documents []flow.Document) []string {
	out := make([]string, len(documents))
	for i, d := range documents {
		out[i] = d.SourceID
	}
	return out
}

func TestReorderBySourcePriority(t *testing.T) {
	cases := []struct {
		name     string
		in       []string
		priority []string
		want     []string
	}{
		{
			name:     "prioritized sources move to front in priority order",
			in:       []string{"a", "b", "c", "b", "a"},
			priority: []string{"c", "b"},
			want:     []string{"c", "b", "b", "a", "a"},
		},
		{
			name:     "no priority keeps ranked order",
			in:       []string{"a", "b", "c"},
			priority: nil,
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "priority entries with no matches are ignored",
			in:       []string{"a", "b"},
			priority: []string{"x", "b"},
			want:     []string{"b", "a"},
		},
		{
			name:     "unlisted sources keep relative order",
			in:       []string{"d", "a", "e", "a"},
			priority: []string{"a"},
			want:     []string{"a", "a", "d", "e"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReorderBySourcePriority(docs(tc.in...), tc.priority)
			assert.Equal(t, tc.want, sources(got))
		})
	}
}

func TestReorderBySourcePriorityEmptyInput(t *testing.T) {
	assert.Empty(t, ReorderBySourcePriority(nil, []string{"a"}))
}
