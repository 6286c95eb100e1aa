package message

// User describes a chat member as reported by the platform.
type User struct {
	ID        string         `json:"id"`
	FirstName string         `json:"first_name,omitempty"`
	LastName  string         `json:"last_name,omitempty"`
	Username  string         `json:"username,omitempty"`
	Info      map[string]any `json:"info,omitempty"`
}

// Status returns the member's status in the chat (creator, administrator,
// member, restricted, left, kicked), or "" when unknown.
func (u User) Status() string {
	s, _ := u.Info["status"].(string)
	return s
}

// LanguageCode returns the IETF language tag of the user, or "" when unknown.
func (u User) LanguageCode() string {
	inner, ok := u.Info["user"].(map[string]any)
	if !ok {
		return ""
	}
	s, _ := inner["language_code"].(string)
	return s
}

// Answer is a user's reply within a conversation. Interactive answers come
// from button presses and carry the callback identifier.
type Answer struct {
	Text        string          `json:"text"`
	Value       string          `json:"value,omitempty"`
	CallbackID  string          `json:"callback_id,omitempty"`
	Interactive bool            `json:"interactive,omitempty"`
	Message     IncomingMessage `json:"message"`
}
