//go:build !integration

package client_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"numrelay/internal/client"
	"numrelay/internal/config"
	"numrelay/internal/domain"
	"numrelay/internal/infra/adapters/telegram"
	"numrelay/internal/infra/adapters/telegram/telegramtest"
	"numrelay/internal/infra/api"
	"numrelay/internal/usecase"
)

func TestSanitizeInput(t *testing.T) {
	cases := map[string]string{
		"12a3456789X0":     "1234567890",
		"555-123-4567":     "5551234567",
		"(555) 123 45 678": "5551234567",
		"abc":              "",
		"١٢٣4567890123":    "4567890123",
	}
	for in, want := range cases {
		if got := client.SanitizeInput(in); got != want {
			t.Errorf("SanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateNumber(t *testing.T) {
	cases := map[string]bool{
		"5551234567":   true,
		" 5551234567 ": true,
		"555123456":    false,
		"55512345678":  false,
		"555123456a":   false,
		"":             false,
	}
	for in, want := range cases {
		if got := client.ValidateNumber(in); got != want {
			t.Errorf("ValidateNumber(%q) = %v, want %v", in, got, want)
		}
	}
}

// relayStub answers /api/data with a canned status and body.
func relayStub(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != client.DataPath || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmit_LocalValidationSkipsRequest(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer srv.Close()

	v := &client.RecordingView{}
	_, err := client.NewController(srv.URL, v, nil, nil).Submit(context.Background(), "12345")
	if err == nil || err.Error() != domain.MsgInvalidNumber {
		t.Fatalf("err = %v", err)
	}
	if hits != 0 {
		t.Fatalf("no request expected")
	}
	if !v.ErrorShown || v.ErrorMessage != domain.MsgInvalidNumber || v.Loading {
		t.Fatalf("view = %+v", v)
	}
}

func TestSubmit_InvalidAfterSuccessHidesResult(t *testing.T) {
	srv := relayStub(t, 200, `{"success":true,"data":"Name: Jane"}`)
	v := &client.RecordingView{}
	ctrl := client.NewController(srv.URL, v, nil, nil)

	if _, err := ctrl.Submit(context.Background(), "5551234567"); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if !v.ResultShown {
		t.Fatalf("result should be visible after a hit")
	}

	if _, err := ctrl.Submit(context.Background(), "123"); err == nil {
		t.Fatalf("expected validation error")
	}
	if v.ResultShown || !v.ErrorShown || v.Loading {
		t.Fatalf("exactly the error should be visible, view = %+v", v)
	}
}

func TestSubmit_Outcomes(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       string
		wantResult string
		wantError  string
	}{
		{"found", 200, `{"success":true,"data":"Name: Jane"}`, "Name: Jane", ""},
		{"no data", 200, `{"success":false,"data":"No data found for this number"}`, "", "No data found for this number"},
		{"no data without text", 200, `{"success":false}`, "", "No data found"},
		{"server error message", 500, `{"error":"Failed to retrieve data"}`, "", "Failed to retrieve data"},
		{"server error without message", 503, `{}`, "", "Something went wrong"},
		{"not json", 502, `<html>bad gateway</html>`, "", client.MsgGeneric},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := relayStub(t, tc.status, tc.body)
			v := &client.RecordingView{}
			text, err := client.NewController(srv.URL, v, nil, nil).Submit(context.Background(), "5551234567")

			if v.Loading {
				t.Fatalf("loading must be hidden at the end")
			}
			if tc.wantError == "" {
				if err != nil || text != tc.wantResult || !v.ResultShown || v.ResultText != tc.wantResult || v.ErrorShown {
					t.Fatalf("text=%q err=%v view=%+v", text, err, v)
				}
				return
			}
			if err == nil || err.Error() != tc.wantError {
				t.Fatalf("err = %v, want %q", err, tc.wantError)
			}
			if v.ResultShown || !v.ErrorShown || v.ErrorMessage != tc.wantError {
				t.Fatalf("view = %+v", v)
			}
		})
	}
}

func TestSubmit_EventOrder(t *testing.T) {
	srv := relayStub(t, 200, `{"success":true,"data":"x"}`)
	v := &client.RecordingView{}
	if _, err := client.NewController(srv.URL, v, nil, nil).Submit(context.Background(), "5551234567"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := []string{"ShowLoading", "HideResult", "HideError", "ShowResult", "HideLoading"}
	if !reflect.DeepEqual(v.Events, want) {
		t.Fatalf("events = %v, want %v", v.Events, want)
	}
}

func TestSubmit_UnreachableRelay(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	v := &client.RecordingView{}
	_, err := client.NewController(url, v, &http.Client{Timeout: time.Second}, nil).Submit(context.Background(), "5551234567")
	if err == nil || err.Error() != client.MsgGeneric {
		t.Fatalf("err = %v", err)
	}
	if v.Loading || !v.ErrorShown {
		t.Fatalf("view = %+v", v)
	}
}

func TestEndToEnd_NoReplyShowsNoData(t *testing.T) {
	const token = "123456:E2E"
	fake := telegramtest.New(token, telegramtest.User{ID: 1, IsBot: true, FirstName: "relay"})
	defer fake.Close()

	nop := zerolog.Nop()
	bot, err := telegram.NewRealTelegramBotAdapter(&config.RelayConfig{APIEndpoint: fake.Endpoint(), UpstreamTO: 5 * time.Second}, token, nil, &nop)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	uc, err := usecase.NewRelayUseCase(bot, usecase.RelayOptions{ChatID: -100, Waiter: usecase.NoWait}, &nop)
	if err != nil {
		t.Fatalf("relay: %v", err)
	}
	relay := httptest.NewServer(api.NewServer(uc, api.Options{}, &nop).Router())
	defer relay.Close()

	v := &client.RecordingView{}
	_, err = client.NewController(relay.URL, v, nil, nil).Submit(context.Background(), client.SanitizeInput("555-123-4567"))
	if err == nil {
		t.Fatalf("expected no-data error")
	}
	if !v.ErrorShown || v.ErrorMessage != domain.MsgNoData || v.ResultShown || v.Loading {
		t.Fatalf("view = %+v", v)
	}
	if sent := fake.SentMessages(); len(sent) != 1 || sent[0].Text != "/num 5551234567" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestTerminalView(t *testing.T) {
	var out, errOut bytes.Buffer
	v := &client.TerminalView{Out: &out, Err: &errOut}
	v.ShowLoading()
	v.ShowResult("Name: Jane")
	v.ShowError("No data found")
	if out.String() != "Name: Jane\n" {
		t.Fatalf("out = %q", out.String())
	}
	if errOut.String() != "Error: No data found\n" {
		t.Fatalf("err = %q", errOut.String())
	}
}
