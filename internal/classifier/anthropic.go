package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pbaille/memo/internal/domain"
	"github.com/pbaille/memo/internal/metrics"
)

const (
	anthropicAPI = "https://api.anthropic.com/v1/messages"
	defaultModel = "claude-sonnet-4-20250514"
)

// Anthropic classifies utterances via the Anthropic Messages API
type Anthropic struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewAnthropic creates a new Anthropic classifier. An empty model selects
// the default one.
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic api key not set")
	}
	if model == "" {
		model = defaultModel
	}

	return &Anthropic{
		apiKey:   apiKey,
		model:    model,
		endpoint: anthropicAPI,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Classify asks the model for a probability per label and returns the
// most likely one.
func (a *Anthropic) Classify(ctx context.Context, text, lang string) (Result, error) {
	if !Supported(lang) {
		return Result{Label: domain.Others}, ErrUnknownLanguage
	}

	resp, err := a.callAPI(ctx, buildPrompt(text, lang))
	if err != nil {
		return Result{}, fmt.Errorf("api call: %w", err)
	}

	scores, err := parseResponse(resp)
	if err != nil {
		return Result{}, err
	}
	return best(scores), nil
}

func buildPrompt(text, lang string) string {
	var sb strings.Builder

	sb.WriteString("Classify this voice memo transcription into one of the categories below. Return JSON only.\n\n")
	sb.WriteString("Language: ")
	sb.WriteString(lang)
	sb.WriteString("\nTranscription:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nCategories:\n")
	for _, c := range domain.Categories {
		if c == domain.Others {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(string(c))
		sb.WriteString("\n")
	}

	sb.WriteString(`
Return a JSON object mapping every category to a probability:
{"Study": 0.1, "Work": 0.7, "Daily": 0.1, "Delete_Specific": 0.0, ...}

Rules:
- Study, Work and Daily are new memos to save
- Delete_Specific removes matching memos; Delete_All removes every memo in a period
- Query_Today, Query_Tomorrow and Query_Custom ask which memos exist on a day
- Probabilities are 0.0-1.0 and should sum to 1

Return ONLY the JSON, no other text.`)

	return sb.String()
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (a *Anthropic) callAPI(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	status := "error"
	defer func() { metrics.RecordUpstreamCall("anthropic", status, time.Since(start)) }()

	reqBody := apiRequest{
		Model:     a.model,
		MaxTokens: 256,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	status = "ok"
	return apiResp.Content[0].Text, nil
}

// parseResponse reads the score map, dropping labels outside the known set
// and clamping scores into [0, 1].
func parseResponse(resp string) (map[domain.Category]float64, error) {
	// Clean up response - remove markdown code blocks if present
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var raw map[string]float64
	if err := json.Unmarshal([]byte(resp), &raw); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}

	scores := make(map[domain.Category]float64, len(raw))
	for k, v := range raw {
		c := domain.Category(k)
		if !c.Known() {
			continue
		}
		scores[c] = min(max(v, 0), 1)
	}
	return scores, nil
}
