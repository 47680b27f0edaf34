package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQADocument(t *testing.T) {
	text := `Q: How do I reset my password?
A: Open the settings page and click "Reset password".
You will receive an email with further steps.

Q: What payment methods are supported?
A: Credit card and bank transfer.
`

	pairs := ParseQADocument(text)
	require.Len(t, pairs, 2)

	assert.Equal(t, "How do I reset my password?", pairs[0].Question)
	assert.Equal(t, "Open the settings page and click \"Reset password\".\nYou will receive an email with further steps.", pairs[0].Answer)

	assert.Equal(t, "What payment methods are supported?", pairs[1].Question)
	assert.Equal(t, "Credit card and bank transfer.", pairs[1].Answer)
}

func TestParseQADocumentSkipsIncompletePairs(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"question without answer", "Q: orphan question\nQ: real one\nA: real answer", 1},
		{"answer without question", "A: floating answer", 0},
		{"empty document", "", 0},
		{"prose only", "just some text\nwith no markers", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, ParseQADocument(tc.text), tc.want)
		})
	}
}

func TestContentHashIsStable(t *testing.T) {
	a := ContentHash("question", "answer")
	b := ContentHash("question", "answer")
	c := ContentHash("question", "other answer")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 7)
}

func TestParsedPairsGetContentIds(t *testing.T) {
	pairs := ParseQADocument("Q: hello?\nA: world.")
	require.Len(t, pairs, 1)
	assert.Equal(t, ContentHash("hello?", "world."), pairs[0].FaqID)
}
