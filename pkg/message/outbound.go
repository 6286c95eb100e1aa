package message

// Reply is anything that can be sent back to a chat: Text, OutgoingMessage
// or Question.
type Reply interface {
	reply()
}

// Text is a plain text reply.
type Text string

// OutgoingMessage is a reply with text and an optional attachment. When an
// attachment is set, Text becomes its caption.
type OutgoingMessage struct {
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// NewTextMessage creates an outgoing message without attachment.
func NewTextMessage(text string) OutgoingMessage {
	return OutgoingMessage{Text: text}
}

// WithAttachment returns a copy of the message carrying the attachment.
func (m OutgoingMessage) WithAttachment(a Attachment) OutgoingMessage {
	m.Attachment = &a
	return m
}

// Button is one choice offered by a Question.
// URL turns the button into a link; Additional is merged into the rendered
// platform button as-is.
type Button struct {
	Text       string         `json:"text"`
	Value      string         `json:"value,omitempty"`
	URL        string         `json:"url,omitempty"`
	Additional map[string]any `json:"additional,omitempty"`
}

// NewButton creates a button whose value defaults to its text.
func NewButton(text string) Button {
	return Button{Text: text, Value: text}
}

// WithValue returns a copy of the button with the given value.
func (b Button) WithValue(value string) Button {
	b.Value = value
	return b
}

// WithURL returns a copy of the button linking to url.
func (b Button) WithURL(url string) Button {
	b.URL = url
	return b
}

// WithAdditional returns a copy of the button with an extra parameter set.
func (b Button) WithAdditional(key string, value any) Button {
	extra := make(map[string]any, len(b.Additional)+1)
	for k, v := range b.Additional {
		extra[k] = v
	}
	extra[key] = value
	b.Additional = extra
	return b
}

// Question is a prompt with buttons. Buttons render one per row unless
// SingleRow is set.
type Question struct {
	Text      string   `json:"text"`
	Buttons   []Button `json:"buttons"`
	SingleRow bool     `json:"single_row,omitempty"`
}

// NewQuestion creates a question without buttons.
func NewQuestion(text string) Question {
	return Question{Text: text}
}

// AddButtons returns a copy of the question with the buttons appended.
func (q Question) AddButtons(buttons ...Button) Question {
	all := make([]Button, 0, len(q.Buttons)+len(buttons))
	all = append(all, q.Buttons...)
	q.Buttons = append(all, buttons...)
	return q
}

// InSingleRow returns a copy of the question laying all buttons out in one row.
func (q Question) InSingleRow() Question {
	q.SingleRow = true
	return q
}

func (Text) reply()            {}
func (OutgoingMessage) reply() {}
func (Question) reply()        {}
