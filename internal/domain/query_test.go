package domain

import (
	"errors"
	"testing"
)

func TestParseQuery(t *testing.T) {
	valid := []string{"5551234567", "0000000000", "1234567890"}
	for _, s := range valid {
		q, err := ParseQuery(s)
		if err != nil {
			t.Fatalf("ParseQuery(%q): %v", s, err)
		}
		if q.Command() != "/num "+s {
			t.Fatalf("Command() = %q", q.Command())
		}
	}

	invalid := []string{"", "555123456", "55512345678", "555123456x", "\n5551234567", "5551234567\n", "555 123 4567", "٥٥٥١٢٣٤٥٦٧"}
	for _, s := range invalid {
		if _, err := ParseQuery(s); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("ParseQuery(%q) err = %v, want ErrInvalidNumber", s, err)
		}
	}
}

func TestSelectReply(t *testing.T) {
	const chat, self = int64(-1), int64(10)
	updates := []Update{
		{Position: 0, ChatID: chat, SenderID: self, SenderIsBot: true, Text: "/num 5551234567"},
		{Position: 1, ChatID: chat, SenderID: 20, SenderIsBot: true, Text: "A"},
		{Position: 2, ChatID: chat, SenderID: 30, Text: "human"},
		{Position: 3, ChatID: chat, SenderID: 21, SenderIsBot: true, Text: "B"},
	}

	u, ok := SelectReply(updates, chat, self)
	if !ok || u.Text != "B" || u.Position != 3 {
		t.Fatalf("got %+v ok=%v, want B", u, ok)
	}

	if _, ok := SelectReply(updates[:1], chat, self); ok {
		t.Fatalf("self message must not be selected")
	}
	if _, ok := SelectReply(updates, chat+1, self); ok {
		t.Fatalf("other chat must not match")
	}
	if _, ok := SelectReply(nil, chat, self); ok {
		t.Fatalf("empty list must not match")
	}
}

func TestUpstreamSendError(t *testing.T) {
	inner := errors.New("Bad Request: chat not found")
	err := error(&UpstreamSendError{Payload: `{"ok":false}`, Err: inner})
	if err.Error() != `Failed to send request: {"ok":false}` {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Fatalf("should unwrap to the upstream error")
	}
}
