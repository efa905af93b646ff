// Package telegramtest runs an in-process stand-in for the Bot API's
// getUpdates, sendMessage and getMe methods.
package telegramtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	UserName  string `json:"username,omitempty"`
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat"`
	Date      int    `json:"date"`
	Text      string `json:"text,omitempty"`
}

type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Sent is one sendMessage call as received.
type Sent struct {
	ChatID int64
	Text   string
}

// Responder produces the messages other chat members post after a command.
type Responder func(chatID int64, text string) []Message

// Server is a fake Bot API. The zero value is not usable; call New.
type Server struct {
	*httptest.Server

	Token string
	Self  User

	mu          sync.Mutex
	updates     []Update
	nextUpdate  int
	calls       []string
	sent        []Sent
	responder   Responder
	sendError   *apiError
	failUpdates bool
}

type apiError struct {
	Code        int
	Description string
}

// New starts a fake Bot API for token. Call Close when done.
func New(token string, self User) *Server {
	s := &Server{Token: token, Self: self}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Endpoint is the tgbotapi-style endpoint format for this server.
func (s *Server) Endpoint() string { return s.URL + "/bot%s/%s" }

// Push appends messages to the update buffer.
func (s *Server) Push(msgs ...Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range msgs {
		s.pushLocked(m)
	}
}

func (s *Server) pushLocked(m Message) {
	s.nextUpdate++
	m.MessageID = s.nextUpdate
	mm := m
	s.updates = append(s.updates, Update{UpdateID: s.nextUpdate, Message: &mm})
}

// OnSend installs a responder invoked for every accepted sendMessage.
func (s *Server) OnSend(r Responder) {
	s.mu.Lock()
	s.responder = r
	s.mu.Unlock()
}

// FailSend makes sendMessage answer ok=false with the given code and description.
func (s *Server) FailSend(code int, description string) {
	s.mu.Lock()
	s.sendError = &apiError{Code: code, Description: description}
	s.mu.Unlock()
}

// FailUpdates makes limited getUpdates calls fail. Clearing calls still succeed.
func (s *Server) FailUpdates() {
	s.mu.Lock()
	s.failUpdates = true
	s.mu.Unlock()
}

// Calls lists the Bot API methods invoked, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Server) SentMessages() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.sent...)
}

// Buffered returns the updates currently held.
func (s *Server) Buffered() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Update(nil), s.updates...)
}

// BotMessage builds a message from a bot account.
func BotMessage(chatID, fromID int64, text string) Message {
	return Message{From: &User{ID: fromID, IsBot: true, FirstName: "bot"}, Chat: &Chat{ID: chatID, Type: "supergroup"}, Text: text}
}

// HumanMessage builds a message from a regular user.
func HumanMessage(chatID, fromID int64, text string) Message {
	return Message{From: &User{ID: fromID, FirstName: "human"}, Chat: &Chat{ID: chatID, Type: "supergroup"}, Text: text}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + s.Token + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error_code": 401, "description": "Unauthorized"})
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	_ = r.ParseForm()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method)

	switch method {
	case "getMe":
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": s.Self})
	case "sendMessage":
		s.handleSendLocked(w, r)
	case "getUpdates":
		s.handleUpdatesLocked(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error_code": 404, "description": "Not Found"})
	}
}

func (s *Server) handleSendLocked(w http.ResponseWriter, r *http.Request) {
	if s.sendError != nil {
		writeJSON(w, s.sendError.Code, map[string]any{"ok": false, "error_code": s.sendError.Code, "description": s.sendError.Description})
		return
	}
	chatID, err := strconv.ParseInt(r.FormValue("chat_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error_code": 400, "description": "Bad Request: chat not found"})
		return
	}
	text := r.FormValue("text")
	s.sent = append(s.sent, Sent{ChatID: chatID, Text: text})

	// Bots do not receive their own messages through getUpdates in
	// practice, but the relay must cope if they show up; record it.
	s.pushLocked(Message{From: &s.Self, Chat: &Chat{ID: chatID, Type: "supergroup"}, Text: text})
	if s.responder != nil {
		for _, m := range s.responder(chatID, text) {
			s.pushLocked(m)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": Message{MessageID: s.nextUpdate, From: &s.Self, Chat: &Chat{ID: chatID}, Text: text}})
}

func (s *Server) handleUpdatesLocked(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.FormValue("offset"))
	limit, _ := strconv.Atoi(r.FormValue("limit"))

	if offset < 0 {
		// negative offset: keep only the last -offset updates
		if keep := -offset; len(s.updates) > keep {
			s.updates = append([]Update(nil), s.updates[len(s.updates)-keep:]...)
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": s.updates})
		return
	}
	if s.failUpdates {
		writeJSON(w, http.StatusConflict, map[string]any{"ok": false, "error_code": 409, "description": "Conflict: terminated by other getUpdates request"})
		return
	}
	out := s.updates
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []Update{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "result": out})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
