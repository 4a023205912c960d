package pipeline

import (
	"github.com/google/uuid"

	"ai-orchestrator-be/pkg/llm"
)

// Defaults applied to every new request context. Callers override them
// per request through options or an explicit LLM config.
const (
	DefaultMaxTokens             = 1000
	DefaultTemperature           = 0.7
	DefaultFormat                = "text"
	DefaultDomain                = "general"
	DefaultVectorSearchLimit     = 5
	DefaultVectorSearchThreshold = 0.7
	DefaultExternalSearchLimit   = 3
	DefaultSufficientConfidence  = 0.85
	DefaultMinRelevantInfo       = 2

	// Confidence assigned to external search results, which carry no
	// comparable similarity score.
	ExternalSearchConfidence = 0.7
)

// RequestContext travels through every stage of one request. Stages add
// to it; no stage removes what another stage depends on.
type RequestContext struct {
	RequestId uuid.UUID
	SessionId uuid.UUID
	History   []llm.Message

	// Sampling and output shape
	MaxTokens    int
	Temperature  float64
	Format       string
	Domain       string
	Tone         string
	CodeLanguage string
	AddCitations bool

	// Retrieval knobs
	VectorSearchLimit     int
	VectorSearchThreshold float64
	ExternalSearchLimit   int
	AlwaysSearchExternal  bool
	SufficientConfidence  float64
	MinRelevantInfo       int

	// Formatting knobs
	SkipRewriteBelow int // rune count; 0 disables the skip

	Options  map[string]interface{}
	Metadata map[string]interface{}
}

func NewRequestContext() *RequestContext {
	return &RequestContext{
		RequestId:             uuid.New(),
		MaxTokens:             DefaultMaxTokens,
		Temperature:           DefaultTemperature,
		Format:                DefaultFormat,
		Domain:                DefaultDomain,
		VectorSearchLimit:     DefaultVectorSearchLimit,
		VectorSearchThreshold: DefaultVectorSearchThreshold,
		ExternalSearchLimit:   DefaultExternalSearchLimit,
		SufficientConfidence:  DefaultSufficientConfidence,
		MinRelevantInfo:       DefaultMinRelevantInfo,
		Options:               make(map[string]interface{}),
		Metadata:              make(map[string]interface{}),
	}
}

// LLMConfig is a caller-supplied per-request override. Zero values mean
// "not set"; Temperature uses a pointer so 0.0 remains expressible.
type LLMConfig struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	Options     map[string]interface{}
}
