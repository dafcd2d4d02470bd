package whatsapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fonnte wraps the Fonnte WhatsApp gateway (https://fonnte.com).
// The API token is process configuration injected at startup.
type Fonnte struct {
	APIURL string
	Token  string
	HTTP   *http.Client
}

func NewFonnte(apiURL, token string) *Fonnte {
	return &Fonnte{
		APIURL: apiURL,
		Token:  token,
		HTTP:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers a WhatsApp message to the target phone number (62-prefixed).
// Any non-2xx provider response is a delivery error.
func (f *Fonnte) Send(ctx context.Context, target, message string) error {
	form := url.Values{
		"target":      {target},
		"message":     {message},
		"countryCode": {"62"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", f.Token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fonnte send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("fonnte send: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
