package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adelmans/zev/internal/config"
)

func TestGeminiAPIURLIncludesKey(t *testing.T) {
	p, err := NewGemini(config.Config{GeminiAPIKey: "test-key"}, Options{})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	want := "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent?key=test-key"
	if p.APIURL() != want {
		t.Errorf("APIURL() = %q, want %q", p.APIURL(), want)
	}
}

func TestGeminiGetOptions(t *testing.T) {
	var gotReq geminiRequest
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotReq)

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{
						{"text": `{"commands":[{"command":"rm -rf build","short_explanation":"Remove the build dir",`},
						{"text": `"is_dangerous":true,"dangerous_explanation":"Deletes files"}],"is_valid":true}`},
					},
				},
				"finishReason": "STOP",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	var out bytes.Buffer
	p, err := NewGemini(config.Config{GeminiAPIKey: "test-key", GeminiModel: "gemini-pro"}, Options{GeminiBaseURL: srv.URL, Out: &out})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}

	got := p.GetOptions(context.Background(), "clean the build", "OS: Linux")
	if got == nil {
		t.Fatalf("GetOptions() = nil, output: %s", out.String())
	}
	if len(got.Commands) != 1 || !got.Commands[0].IsDangerous || got.Commands[0].DangerNote() != "Deletes files" {
		t.Errorf("unexpected commands: %+v", got.Commands)
	}
	if gotPath != "/models/gemini-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}
	if gotReq.GenerationConfig.ResponseMimeType != "application/json" {
		t.Errorf("responseMimeType = %q", gotReq.GenerationConfig.ResponseMimeType)
	}
	if len(gotReq.Contents) != 1 || !strings.Contains(gotReq.Contents[0].Parts[0].Text, "clean the build") {
		t.Errorf("unexpected contents: %+v", gotReq.Contents)
	}
}

func TestGeminiInvalidKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT","details":[{"reason":"API_KEY_INVALID"}]}}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	p, err := NewGemini(config.Config{GeminiAPIKey: "bad-key"}, Options{GeminiBaseURL: srv.URL, Out: &out})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}

	if got := p.GetOptions(context.Background(), "list files", ""); got != nil {
		t.Fatalf("GetOptions() = %+v, want nil", got)
	}
	if !strings.Contains(out.String(), "There was an error with your Gemini API key") {
		t.Errorf("output = %q", out.String())
	}
}

func TestGeminiNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer srv.Close()

	var out bytes.Buffer
	p, err := NewGemini(config.Config{GeminiAPIKey: "k"}, Options{GeminiBaseURL: srv.URL, Out: &out})
	if err != nil {
		t.Fatalf("NewGemini() error = %v", err)
	}
	if got := p.GetOptions(context.Background(), "list files", ""); got != nil {
		t.Fatalf("GetOptions() = %+v, want nil", got)
	}
	if !strings.Contains(out.String(), "SAFETY") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRedactKey(t *testing.T) {
	got := redactKey("https://example.com/v1beta/models/m:generateContent?key=secret")
	if strings.Contains(got, "secret") {
		t.Errorf("redactKey() leaked key: %q", got)
	}
	plain := "https://api.openai.com/v1/chat/completions"
	if redactKey(plain) != plain {
		t.Errorf("redactKey() changed %q", plain)
	}
}
