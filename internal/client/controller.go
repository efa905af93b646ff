// Package client drives the lookup form: it filters input, validates it
// locally, calls the relay and renders exactly one outcome on a View.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"numrelay/internal/domain"
)

const (
	DataPath = "/api/data"

	MsgGeneric      = "Failed to retrieve data. Please try again."
	msgServerFailed = "Something went wrong"
	msgNoData       = "No data found"
)

// Controller submits numbers to a relay at BaseURL.
type Controller struct {
	endpoint string
	client   *http.Client
	view     View
	log      *zerolog.Logger
}

// NewController builds a controller for the relay at baseURL. client may be
// nil, in which case a 30s-timeout client is used.
func NewController(baseURL string, view View, client *http.Client, logger *zerolog.Logger) *Controller {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Controller{
		endpoint: strings.TrimRight(baseURL, "/") + DataPath,
		client:   client,
		view:     view,
		log:      logger,
	}
}

type response struct {
	Success bool   `json:"success"`
	Data    string `json:"data"`
	Error   string `json:"error"`
}

// Submit handles one form submission. The returned string is the result
// text; the error's message is what the error panel shows.
func (c *Controller) Submit(ctx context.Context, raw string) (string, error) {
	number := strings.TrimSpace(raw)
	if !ValidateNumber(number) {
		c.view.HideResult()
		c.view.ShowError(domain.MsgInvalidNumber)
		return "", errors.New(domain.MsgInvalidNumber)
	}

	c.view.ShowLoading()
	c.view.HideResult()
	c.view.HideError()
	defer c.view.HideLoading()

	text, err := c.fetch(ctx, number)
	if err != nil {
		c.view.ShowError(err.Error())
		return "", err
	}
	c.view.ShowResult(text)
	return text, nil
}

func (c *Controller) fetch(ctx context.Context, number string) (string, error) {
	b, _ := json.Marshal(map[string]string{"number": number})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return "", errors.New(MsgGeneric)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Msg("lookup request failed")
		return "", errors.New(MsgGeneric)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Debug().Err(err).Int("status", resp.StatusCode).Msg("lookup response is not JSON")
		return "", errors.New(MsgGeneric)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.New(firstNonEmpty(out.Error, msgServerFailed))
	}
	if !out.Success {
		return "", errors.New(firstNonEmpty(out.Data, msgNoData))
	}
	return out.Data, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
