package message

// KeyboardType selects between an inline keyboard and a reply keyboard.
type KeyboardType string

const (
	KeyboardInline KeyboardType = "inline_keyboard"
	KeyboardReply  KeyboardType = "keyboard"
)

// KeyboardButton is one button of a Keyboard. Unset fields are omitted.
type KeyboardButton struct {
	Text            string `json:"text"`
	URL             string `json:"url,omitempty"`
	CallbackData    string `json:"callback_data,omitempty"`
	RequestContact  bool   `json:"request_contact,omitempty"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

// Keyboard is a grid of buttons that can be attached to a reply through
// its ReplyMarkup parameters.
type Keyboard struct {
	Type KeyboardType
	Rows [][]KeyboardButton
}

// NewKeyboard creates an empty inline keyboard.
func NewKeyboard() *Keyboard {
	return &Keyboard{Type: KeyboardInline}
}

// AddRow appends a row of buttons.
func (k *Keyboard) AddRow(buttons ...KeyboardButton) *Keyboard {
	k.Rows = append(k.Rows, buttons)
	return k
}

// ReplyMarkup returns the keyboard as extra send parameters.
func (k *Keyboard) ReplyMarkup() map[string]any {
	rows := k.Rows
	if rows == nil {
		rows = [][]KeyboardButton{}
	}
	return map[string]any{
		"reply_markup": map[string]any{
			string(k.Type): rows,
		},
	}
}
