package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pbaille/memo/internal/domain"
)

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *Anthropic {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewAnthropic("test-key", "")
	if err != nil {
		t.Fatal(err)
	}
	a.endpoint = srv.URL
	return a
}

func TestNewAnthropicRequiresKey(t *testing.T) {
	if _, err := NewAnthropic("", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestAnthropicClassify(t *testing.T) {
	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("x-api-key"))
		}
		var req apiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != defaultModel || len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "明天开会") {
			t.Errorf("unexpected request %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]string{{
				"type": "text",
				"text": "```json\n{\"Work\": 0.8, \"Daily\": 0.15, \"Shopping\": 0.9, \"Study\": -0.2}\n```",
			}},
		})
	})

	got, err := a.Classify(context.Background(), "明天开会", "zh")
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != domain.Work || got.Probability != 0.8 {
		t.Errorf("got %s %.2f, want Work 0.80", got.Label, got.Probability)
	}
	if _, ok := got.Scores["Shopping"]; ok {
		t.Error("unknown label kept")
	}
	if got.Scores[domain.Study] != 0 {
		t.Errorf("study not clamped: %v", got.Scores[domain.Study])
	}
}

func TestAnthropicClassifyHTTPError(t *testing.T) {
	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	})
	if _, err := a.Classify(context.Background(), "hi", "en"); err == nil {
		t.Fatal("expected error")
	}
}

func TestAnthropicClassifyUnsupported(t *testing.T) {
	a := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("api should not be called")
	})
	if _, err := a.Classify(context.Background(), "bonjour", "fr"); err != ErrUnknownLanguage {
		t.Fatalf("err = %v", err)
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		in      string
		want    map[domain.Category]float64
		wantErr bool
	}{
		{`{"Query_Today": 1}`, map[domain.Category]float64{domain.QueryToday: 1}, false},
		{"```\n{\"Delete_All\": 1.5}\n```", map[domain.Category]float64{domain.DeleteAll: 1}, false},
		{"not json", nil, true},
	}
	for _, tt := range tests {
		got, err := parseResponse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseResponse(%q) err = %v", tt.in, err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseResponse(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("parseResponse(%q)[%s] = %v, want %v", tt.in, k, got[k], v)
			}
		}
	}
}
