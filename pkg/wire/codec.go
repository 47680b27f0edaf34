package wire

import (
	"encoding/json"
	"fmt"
)

// envelope is the over-the-wire shape of every push message.
type envelope struct {
	StreamID string `json:"streamId"`
	Body     body   `json:"body"`
}

type body struct {
	ResponseType string   `json:"responseType"`
	QueryID      string   `json:"queryId,omitempty"`
	Event        string   `json:"event,omitempty"`
	Content      *content `json:"content,omitempty"`
}

type content struct {
	Documents []SourceDocument `json:"documents,omitempty"`
	FAQs      []FAQ            `json:"faqs,omitempty"`
	Fragment  string           `json:"fragment,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Encode serializes a payload into its envelope form.
func Encode(p Payload) ([]byte, error) {
	env := envelope{
		StreamID: p.StreamID(),
		Body:     body{ResponseType: p.ResponseType()},
	}

	switch v := p.(type) {
	case DocumentsPayload:
		env.Body.QueryID = v.QueryID
		docs := v.Documents
		if docs == nil {
			docs = []SourceDocument{}
		}
		env.Body.Content = &content{Documents: docs}
	case FAQPayload:
		env.Body.QueryID = v.QueryID
		faqs := v.FAQs
		if faqs == nil {
			faqs = []FAQ{}
		}
		env.Body.Content = &content{FAQs: faqs}
	case FragmentPayload:
		env.Body.QueryID = v.QueryID
		env.Body.Content = &content{Fragment: v.Fragment}
	case AnswerEventPayload:
		env.Body.QueryID = v.QueryID
		env.Body.Event = v.Event
	case ErrorPayload:
		env.Body.QueryID = v.QueryID
		env.Body.Content = &content{Error: v.Error}
	default:
		return nil, fmt.Errorf("wire: unknown payload type %T", p)
	}

	return json.Marshal(env)
}

// Decode validates raw bytes against the message union and returns the typed
// payload. Unknown or malformed messages return an error; callers drop them
// rather than crash.
func Decode(data []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("wire: malformed envelope: %w", err)
	}

	b := env.Body
	switch b.ResponseType {
	case TypeDocuments:
		if b.QueryID == "" {
			return nil, fmt.Errorf("wire: documents message missing queryId")
		}
		if b.Content == nil {
			return nil, fmt.Errorf("wire: documents message missing content")
		}
		docs := b.Content.Documents
		if docs == nil {
			docs = []SourceDocument{}
		}
		return DocumentsPayload{QueryID: b.QueryID, Documents: docs}, nil

	case TypeFAQ:
		if b.QueryID == "" {
			return nil, fmt.Errorf("wire: faq message missing queryId")
		}
		if b.Content == nil {
			return nil, fmt.Errorf("wire: faq message missing content")
		}
		faqs := b.Content.FAQs
		if faqs == nil {
			faqs = []FAQ{}
		}
		return FAQPayload{QueryID: b.QueryID, FAQs: faqs}, nil

	case TypeFragment:
		if b.QueryID == "" {
			return nil, fmt.Errorf("wire: fragment message missing queryId")
		}
		if b.Content == nil {
			return nil, fmt.Errorf("wire: fragment message missing content")
		}
		return FragmentPayload{QueryID: b.QueryID, Fragment: b.Content.Fragment}, nil

	case TypeAnswerEvent:
		if b.QueryID == "" {
			return nil, fmt.Errorf("wire: answer-event message missing queryId")
		}
		if b.Event != EventStart && b.Event != EventStop {
			return nil, fmt.Errorf("wire: answer-event message has invalid event %q", b.Event)
		}
		return AnswerEventPayload{QueryID: b.QueryID, Event: b.Event}, nil

	case TypeError:
		if b.Content == nil || b.Content.Error == "" {
			return nil, fmt.Errorf("wire: error message missing error content")
		}
		return ErrorPayload{QueryID: b.QueryID, Error: b.Content.Error}, nil

	default:
		return nil, fmt.Errorf("wire: unknown responseType %q", b.ResponseType)
	}
}
