package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-orchestrator-be/pkg/llm"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	maxAttempts     = 3
	initialBackoff  = 1 * time.Second
	defaultSystem   = "You are a helpful assistant."
	mockReplyFormat = "Mock response to: %s"
)

// Credentials with these prefixes short-circuit to a deterministic
// offline response. Required for reproducible tests.
var testCredentialPrefixes = []string{"sk-dummy", "sk-test"}

type OpenAIProvider struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, modelName string) *OpenAIProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenAIProvider{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request structs ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

func (o *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.NewOptions(opts...)

	credential := o.APIKey
	if options.Credential != "" {
		credential = options.Credential
	}
	if credential == "" {
		return "", fmt.Errorf("openai: no API key configured")
	}

	if isTestCredential(credential) {
		return mockResponse(history, options), nil
	}

	messages := buildMessages(history, options)

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	payloadBytes, err := json.Marshal(buildPayload(model, messages, options))
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, err := o.doWithRetry(ctx, credential, payloadBytes)
	if err != nil {
		return "", err
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	return ExtractText(raw), nil
}

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func (o *OpenAIProvider) doWithRetry(ctx context.Context, credential string, payload []byte) ([]byte, error) {
	url := o.BaseURL + "/chat/completions"

	var lastErr error
	backoff := initialBackoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+credential)

		resp, err := o.Client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("openai request failed: %w", err)
		} else {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("read response: %w", readErr)
			} else if resp.StatusCode == http.StatusOK {
				return bodyBytes, nil
			} else if !isRetryable(resp.StatusCode) {
				return nil, fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
			} else {
				lastErr = fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
			}
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("openai: all %d attempts failed: %w", maxAttempts, lastErr)
}

func isRetryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTestCredential(credential string) bool {
	for _, prefix := range testCredentialPrefixes {
		if strings.HasPrefix(credential, prefix) {
			return true
		}
	}
	return false
}

// buildPayload assembles the request body. Extra options pass through
// as top-level backend parameters (stop, top_p, seed, ...) but can
// never shadow the core fields.
func buildPayload(model string, messages []chatMessage, options *llm.Options) map[string]interface{} {
	payload := make(map[string]interface{}, len(options.Extra)+4)
	for k, v := range options.Extra {
		payload[k] = v
	}

	payload["model"] = model
	payload["messages"] = messages
	payload["temperature"] = options.Temperature
	if options.MaxTokens > 0 {
		payload["max_tokens"] = options.MaxTokens
	}
	if options.Format == "json" {
		payload["response_format"] = responseFormat{Type: "json_object"}
	}
	return payload
}

func buildMessages(history []llm.Message, options *llm.Options) []chatMessage {
	system := defaultSystem
	if options.SystemPrompt != "" {
		system = options.SystemPrompt
	}

	messages := make([]chatMessage, 0, len(history)+1)
	hasSystem := false
	for _, msg := range history {
		if msg.Role == "system" {
			hasSystem = true
		}
	}
	if !hasSystem {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	for _, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		messages = append(messages, chatMessage{Role: role, Content: msg.Content})
	}
	return messages
}

func mockResponse(history []llm.Message, options *llm.Options) string {
	if options.Format == "json" {
		return "{}"
	}
	last := ""
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			last = history[i].Content
			break
		}
	}
	if len(last) > 60 {
		last = last[:60]
	}
	return fmt.Sprintf(mockReplyFormat, last)
}

// ExtractText pulls the generated text out of a response of unknown shape.
// Probe order: chat-completion content, completion text, then generic
// fields. Serializes the whole response if nothing matches.
func ExtractText(raw map[string]interface{}) string {
	if choices, ok := raw["choices"].([]interface{}); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]interface{}); ok {
			if message, ok := choice["message"].(map[string]interface{}); ok {
				if content, ok := message["content"].(string); ok {
					return content
				}
			}
			if text, ok := choice["text"].(string); ok {
				return text
			}
		}
	}
	for _, field := range []string{"completion", "text", "generated_text", "output"} {
		if value, ok := raw[field].(string); ok {
			return value
		}
	}
	serialized, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	return string(serialized)
}
