package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"numrelay/internal/domain"
)

type lookupRequest struct {
	Number json.RawMessage `json:"number"`
}

// number returns the field as the relay sees it: strings unquoted, any
// other JSON value by its literal text, which never passes validation
// unless it is a bare 10-digit integer.
func (q lookupRequest) number() string {
	if len(q.Number) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(q.Number, &s); err == nil {
		return s
	}
	return string(q.Number)
}

type resultBody struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeResult(w http.ResponseWriter, res domain.RelayResult) {
	if !res.Found {
		writeJSON(w, http.StatusOK, resultBody{Success: false, Data: domain.MsgNoData})
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Success: true, Data: res.Text})
}

// errorStatus maps a lookup failure onto its status code and body message.
func errorStatus(err error) (int, string) {
	var sendErr *domain.UpstreamSendError
	switch {
	case errors.Is(err, domain.ErrInvalidNumber):
		return http.StatusBadRequest, domain.MsgInvalidNumber
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, domain.MsgRateLimited
	case errors.Is(err, domain.ErrChatBusy):
		return http.StatusServiceUnavailable, domain.MsgBusy
	case errors.As(err, &sendErr):
		return http.StatusInternalServerError, sendErr.Error()
	case errors.Is(err, domain.ErrFetchUpdates):
		return http.StatusInternalServerError, domain.MsgFetchFailed
	}
	msg := err.Error()
	if msg == "" {
		msg = domain.MsgFetchFailed
	}
	return http.StatusInternalServerError, msg
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeJSON(w, status, errorBody{Error: msg})
}
