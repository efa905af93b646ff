package domain

// Update is the read-only projection of one upstream chat message.
type Update struct {
	UpdateID    int
	Position    int
	ChatID      int64
	SenderID    int64
	SenderIsBot bool
	Text        string
}

// Identity is the relay bot's own account.
type Identity struct {
	ID       int64
	Username string
}

// RelayResult is the outcome of one lookup. Found=false is a normal
// outcome, not an error.
type RelayResult struct {
	Found bool
	Text  string
}

// NotFound is the result when no qualifying reply was seen.
func NotFound() RelayResult { return RelayResult{Found: false, Text: MsgNoData} }

// SelectReply scans updates from most recent to oldest and returns the
// first message in chatID written by a bot other than self. Older
// qualifying messages are ignored.
func SelectReply(updates []Update, chatID, selfID int64) (Update, bool) {
	for i := len(updates) - 1; i >= 0; i-- {
		u := updates[i]
		if u.ChatID == chatID && u.SenderIsBot && u.SenderID != selfID {
			return u, true
		}
	}
	return Update{}, false
}
