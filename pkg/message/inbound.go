package message

import "encoding/json"

// IncomingMessage is the normalized form of one inbound chat event.
// Sender and Recipient are platform identifiers rendered as strings.
type IncomingMessage struct {
	Text        string          `json:"text"`
	Sender      string          `json:"sender"`
	Recipient   string          `json:"recipient"`
	ThreadID    string          `json:"thread_id,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Attachments []Attachment    `json:"attachments,omitempty"`
}

// ChatID returns the conversation to answer in: the recipient, or the sender
// when the recipient is unknown.
func (m *IncomingMessage) ChatID() string {
	if m.Recipient == "" {
		return m.Sender
	}
	return m.Recipient
}

// AttachmentsOf returns the attachments of the given kind, in order.
func (m *IncomingMessage) AttachmentsOf(kind AttachmentKind) []Attachment {
	var out []Attachment
	for _, a := range m.Attachments {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// HasAttachments reports whether the message carries any attachment,
// including unresolved ones.
func (m *IncomingMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
