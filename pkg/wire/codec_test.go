package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
	}{
		{
			name: "documents",
			payload: DocumentsPayload{
				QueryID: "q-1",
				Documents: []SourceDocument{
					{DocumentID: "doc-1abc123", Title: "standard_deduction.pdf", Content: "The standard deduction is...", Source: "https://example.gov/doc", SourceID: "pubs"},
				},
			},
		},
		{
			name:    "documents empty list",
			payload: DocumentsPayload{QueryID: "q-2", Documents: []SourceDocument{}},
		},
		{
			name: "faq",
			payload: FAQPayload{
				QueryID: "q-3",
				FAQs:    []FAQ{{FaqID: "a1b2c3d", Question: "What is the standard deduction?", Answer: "It depends on filing status."}},
			},
		},
		{
			name:    "fragment",
			payload: FragmentPayload{QueryID: "q-4", Fragment: "The stan"},
		},
		{
			name:    "answer-event start",
			payload: AnswerEventPayload{QueryID: "q-5", Event: EventStart},
		},
		{
			name:    "answer-event stop",
			payload: AnswerEventPayload{QueryID: "q-5", Event: EventStop},
		},
		{
			name:    "error with query",
			payload: ErrorPayload{QueryID: "q-6", Error: "An unexpected error occurred while processing a message."},
		},
		{
			name:    "connection-level error without query",
			payload: ErrorPayload{Error: "A server error occurred while processing the message."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.payload)
			require.NoError(t, err)

			decoded, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestEncodeStreamRouting(t *testing.T) {
	tests := []struct {
		payload      Payload
		wantStream   string
		wantRespType string
	}{
		{DocumentsPayload{QueryID: "q"}, StreamResources, TypeDocuments},
		{FAQPayload{QueryID: "q"}, StreamResources, TypeFAQ},
		{FragmentPayload{QueryID: "q", Fragment: "x"}, StreamAnswer, TypeFragment},
		{AnswerEventPayload{QueryID: "q", Event: EventStart}, StreamAnswerEvent, TypeAnswerEvent},
		{ErrorPayload{Error: "boom"}, StreamError, TypeError},
	}

	for _, tt := range tests {
		data, err := Encode(tt.payload)
		require.NoError(t, err)

		var env map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &env))

		var streamID string
		require.NoError(t, json.Unmarshal(env["streamId"], &streamID))
		assert.Equal(t, tt.wantStream, streamID)

		var body struct {
			ResponseType string `json:"responseType"`
		}
		require.NoError(t, json.Unmarshal(env["body"], &body))
		assert.Equal(t, tt.wantRespType, body.ResponseType)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{{{`},
		{"unknown tag", `{"streamId":"answer","body":{"responseType":"telemetry","queryId":"q"}}`},
		{"missing tag", `{"streamId":"answer","body":{"queryId":"q"}}`},
		{"fragment without queryId", `{"streamId":"answer","body":{"responseType":"fragment","content":{"fragment":"x"}}}`},
		{"fragment without content", `{"streamId":"answer","body":{"responseType":"fragment","queryId":"q"}}`},
		{"answer-event bad event", `{"streamId":"answer-event","body":{"responseType":"answer-event","queryId":"q","event":"pause"}}`},
		{"answer-event missing event", `{"streamId":"answer-event","body":{"responseType":"answer-event","queryId":"q"}}`},
		{"documents without content", `{"streamId":"resources","body":{"responseType":"documents","queryId":"q"}}`},
		{"error without message", `{"streamId":"error","body":{"responseType":"error"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEmptyDocumentListIsValid(t *testing.T) {
	raw := `{"streamId":"resources","body":{"responseType":"documents","queryId":"q1","content":{"documents":[]}}}`

	decoded, err := Decode([]byte(raw))
	require.NoError(t, err)

	docs, ok := decoded.(DocumentsPayload)
	require.True(t, ok)
	assert.Equal(t, "q1", docs.QueryID)
	assert.Empty(t, docs.Documents)
}
