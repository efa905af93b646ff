//go:build !integration

package telegram

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"numrelay/internal/config"
	"numrelay/internal/domain"
	"numrelay/internal/infra/adapters/telegram/telegramtest"
)

const (
	testToken  = "123456:TEST"
	testChatID = int64(-1001234)
)

func newTestAdapter(t *testing.T) (*RealTelegramBotAdapter, *telegramtest.Server) {
	t.Helper()
	srv := telegramtest.New(testToken, telegramtest.User{ID: 777, IsBot: true, FirstName: "relay", UserName: "relay_bot"})
	t.Cleanup(srv.Close)

	cfg := &config.RelayConfig{APIEndpoint: srv.Endpoint(), UpstreamTO: 5 * time.Second}
	logger := zerolog.Nop()
	a, err := NewRealTelegramBotAdapter(cfg, testToken, nil, &logger)
	if err != nil {
		t.Fatalf("NewRealTelegramBotAdapter: %v", err)
	}
	return a, srv
}

func TestNewRealTelegramBotAdapter_DoesNotCallAPI(t *testing.T) {
	_, srv := newTestAdapter(t)
	if calls := srv.Calls(); len(calls) != 0 {
		t.Fatalf("constructor should not call the API, got %v", calls)
	}
}

func TestNewRealTelegramBotAdapter_Validation(t *testing.T) {
	if _, err := NewRealTelegramBotAdapter(nil, testToken, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewRealTelegramBotAdapter(&config.RelayConfig{}, "", nil, nil); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestClearUpdates_DropsOlderUpdates(t *testing.T) {
	a, srv := newTestAdapter(t)
	srv.Push(
		telegramtest.BotMessage(testChatID, 1, "old 1"),
		telegramtest.BotMessage(testChatID, 1, "old 2"),
		telegramtest.BotMessage(testChatID, 1, "old 3"),
	)

	if err := a.ClearUpdates(context.Background()); err != nil {
		t.Fatalf("ClearUpdates: %v", err)
	}
	buf := srv.Buffered()
	if len(buf) != 1 || buf[0].Message.Text != "old 3" {
		t.Fatalf("buffer after clear = %+v", buf)
	}
}

func TestSendMessage_PostsChatAndText(t *testing.T) {
	a, srv := newTestAdapter(t)

	if err := a.SendMessage(context.Background(), testChatID, "/num 5551234567"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	want := []telegramtest.Sent{{ChatID: testChatID, Text: "/num 5551234567"}}
	if got := srv.SentMessages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sent = %+v, want %+v", got, want)
	}
}

func TestSendMessage_FailureCarriesUpstreamPayload(t *testing.T) {
	a, srv := newTestAdapter(t)
	srv.FailSend(400, "Bad Request: chat not found")

	err := a.SendMessage(context.Background(), testChatID, "/num 5551234567")
	var sendErr *domain.UpstreamSendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("expected UpstreamSendError, got %T %v", err, err)
	}
	if !strings.Contains(sendErr.Payload, `"error_code":400`) || !strings.Contains(sendErr.Payload, "chat not found") {
		t.Fatalf("payload = %s", sendErr.Payload)
	}
	if !strings.HasPrefix(sendErr.Error(), "Failed to send request: {") {
		t.Fatalf("message = %q", sendErr.Error())
	}
}

func TestGetUpdates_MapsMessages(t *testing.T) {
	a, srv := newTestAdapter(t)
	srv.Push(
		telegramtest.HumanMessage(testChatID, 5, "hello"),
		telegramtest.BotMessage(testChatID, 9, "answer"),
		telegramtest.Message{Chat: &telegramtest.Chat{ID: testChatID}, Text: "channel post"},
	)

	got, err := a.GetUpdates(context.Background(), 15)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].SenderIsBot || got[0].SenderID != 5 || got[0].Text != "hello" {
		t.Fatalf("update 0 = %+v", got[0])
	}
	if !got[1].SenderIsBot || got[1].SenderID != 9 || got[1].ChatID != testChatID || got[1].Position != 1 {
		t.Fatalf("update 1 = %+v", got[1])
	}
	if got[2].SenderIsBot || got[2].SenderID != 0 {
		t.Fatalf("message without sender should map to non-bot, got %+v", got[2])
	}
}

func TestGetUpdates_RespectsLimit(t *testing.T) {
	a, srv := newTestAdapter(t)
	for i := 0; i < 20; i++ {
		srv.Push(telegramtest.HumanMessage(testChatID, 5, "x"))
	}
	got, err := a.GetUpdates(context.Background(), 15)
	if err != nil {
		t.Fatalf("GetUpdates: %v", err)
	}
	if len(got) != 15 {
		t.Fatalf("len = %d, want 15", len(got))
	}
}

func TestGetUpdates_FailureIsFetchError(t *testing.T) {
	a, srv := newTestAdapter(t)
	srv.FailUpdates()

	_, err := a.GetUpdates(context.Background(), 15)
	if !errors.Is(err, domain.ErrFetchUpdates) {
		t.Fatalf("expected ErrFetchUpdates, got %v", err)
	}
}

func TestGetSelf(t *testing.T) {
	a, _ := newTestAdapter(t)
	me, err := a.GetSelf(context.Background())
	if err != nil {
		t.Fatalf("GetSelf: %v", err)
	}
	if me.ID != 777 || me.Username != "relay_bot" {
		t.Fatalf("identity = %+v", me)
	}
}

func TestCanceledContextAbortsCall(t *testing.T) {
	a, srv := newTestAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.SendMessage(ctx, testChatID, "/num 5551234567"); err == nil {
		t.Fatalf("expected error for canceled context")
	}
	if len(srv.SentMessages()) != 0 {
		t.Fatalf("nothing should reach the server")
	}
}

func TestNoopBotAdapter_RepliesToCommands(t *testing.T) {
	b := NewNoopBotAdapter(nil)
	ctx := context.Background()

	if err := b.SendMessage(ctx, testChatID, "/num 5551234567"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	ups, _ := b.GetUpdates(ctx, 15)
	me, _ := b.GetSelf(ctx)

	u, ok := domain.SelectReply(ups, testChatID, me.ID)
	if !ok || u.Text != "noop reply to /num 5551234567" {
		t.Fatalf("reply = %+v ok=%v", u, ok)
	}

	_ = b.ClearUpdates(ctx)
	ups, _ = b.GetUpdates(ctx, 15)
	if len(ups) != 1 {
		t.Fatalf("clear should keep only the last update, got %d", len(ups))
	}
}
