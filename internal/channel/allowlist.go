// Package channel holds delivery policy shared by chat adapters: who may
// talk to the bot and how long replies are split.
package channel

import (
	"strings"

	"github.com/flemzord/tgbridge/pkg/message"
)

// AllowList controls which users and chats are permitted to interact with
// the bot. An empty or nil AllowList denies everyone.
type AllowList struct {
	users  map[string]struct{}
	groups map[string]struct{}
}

// NewAllowList creates an AllowList with O(1) lookups. Keys are trimmed and
// lowercased at construction time.
func NewAllowList(users, groups []string) *AllowList {
	a := &AllowList{
		users:  make(map[string]struct{}, len(users)),
		groups: make(map[string]struct{}, len(groups)),
	}
	for _, u := range users {
		a.users[normalize(u)] = struct{}{}
	}
	for _, g := range groups {
		a.groups[normalize(g)] = struct{}{}
	}
	return a
}

// Len returns the number of user and chat entries.
func (a *AllowList) Len() int {
	if a == nil {
		return 0
	}
	return len(a.users) + len(a.groups)
}

// IsAllowed reports whether the message sender or chat is permitted.
//
// Rules:
//   - If both maps are empty → deny.
//   - If the sender ID matches a user entry → allow.
//   - If the recipient (chat) ID matches a group entry → allow.
//   - Otherwise → deny.
func (a *AllowList) IsAllowed(msg message.IncomingMessage) bool {
	if a.Len() == 0 {
		return false
	}

	if _, ok := a.users[normalize(msg.Sender)]; ok {
		return true
	}
	if _, ok := a.groups[normalize(msg.Recipient)]; ok {
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
