package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const maxErrorBody = 4096

// postJSON sends body as JSON and decodes a 2xx reply into out. Any other
// status becomes an *APIError carrying the vendor's error message.
func postJSON(ctx context.Context, client *http.Client, provider, endpoint string, header http.Header, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redactKey(urlErr.URL)
		}
		return NewAPIError(provider, 0, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return NewAPIError(provider, resp.StatusCode, errorMessage(raw), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewAPIError(provider, resp.StatusCode, "failed to decode response", err)
	}
	return nil
}

// errorMessage extracts error.message from an OpenAI or Gemini style error
// body, keeping Gemini's invalid-key reason which only appears in details.
func errorMessage(raw []byte) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}
	if strings.Contains(string(raw), geminiInvalidKeyMarker) && !strings.Contains(msg, geminiInvalidKeyMarker) {
		msg += " [" + geminiInvalidKeyMarker + "]"
	}
	if msg == "" {
		msg = "no error details"
	}
	return msg
}

// redactKey hides a key query parameter so transport errors never print it
func redactKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Get("key") == "" {
		return raw
	}
	q.Set("key", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}
