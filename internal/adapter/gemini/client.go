// Package gemini is a minimal REST client for the Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"armonia/internal/domain"
)

// SystemPrompt frames the assistant for every conversation.
const SystemPrompt = `You are ArmonIA, an assistant focused on mental health and emotional wellbeing. Your goals:
- listen to and validate the user's emotions
- offer warm, empathetic, non-clinical support
- suggest relaxation and stress-management techniques
- point to wellbeing resources
- if you detect a mental health crisis, recommend contacting a professional
Reply conversationally and in the user's language.`

// ErrBlocked is returned when the model produced no text, typically because a
// safety filter stopped the response.
var ErrBlocked = errors.New("gemini: response blocked")

// Config configures a Client.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New returns a client, or an error when no API key is configured.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing gemini api key")
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	SafetySettings    []safetySetting  `json:"safetySettings"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

var defaultSafety = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
}

// Reply sends the conversation so far plus message and returns the model's text.
func (c *Client) Reply(ctx context.Context, history []domain.ChatMessage, message string) (string, error) {
	req := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: SystemPrompt}}},
		Contents:          buildContents(history, message),
		SafetySettings:    defaultSafety,
		GenerationConfig:  generationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.cfg.Endpoint, c.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini read: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini %d %s: %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if out.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, out.PromptFeedback.BlockReason)
	}
	for _, cand := range out.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", ErrBlocked
}

// buildContents maps stored chat history to Gemini roles. Leading assistant
// turns are dropped because a conversation must open with a user turn.
func buildContents(history []domain.ChatMessage, message string) []content {
	contents := make([]content, 0, len(history)+1)
	for _, m := range history {
		role := "user"
		if m.Sender == domain.SenderAI {
			role = "model"
		}
		if len(contents) == 0 && role == "model" {
			continue
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	return append(contents, content{Role: "user", Parts: []part{{Text: message}}})
}
