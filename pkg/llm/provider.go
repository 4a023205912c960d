package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature  float64
	MaxTokens    int
	Model        string // Override default model
	SystemPrompt string // Replaces the provider's default system message
	Format       string // "json" requests structured output from the backend
	Credential   string // Per-call API key override; never stored on the provider
	Extra        map[string]interface{}
}

func NewOptions(opts ...Option) *Options {
	options := &Options{
		Temperature: 0.7,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSystemPrompt(prompt string) Option {
	return func(o *Options) {
		o.SystemPrompt = prompt
	}
}

func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithCredential scopes an API key override to a single call.
// The provider must not persist it.
func WithCredential(credential string) Option {
	return func(o *Options) {
		o.Credential = credential
	}
}

func WithExtra(extra map[string]interface{}) Option {
	return func(o *Options) {
		if o.Extra == nil {
			o.Extra = make(map[string]interface{})
		}
		for k, v := range extra {
			o.Extra[k] = v
		}
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
