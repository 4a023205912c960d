package pipeline

// Outcome marks how a stage produced its result. Stages other than
// generation never fail hard; a degraded outcome means a documented
// default was substituted somewhere.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeDegraded
)

func (o Outcome) String() string {
	if o == OutcomeDegraded {
		return "degraded"
	}
	return "ok"
}

// KnowledgeItem is one retrieved piece of reference information.
type KnowledgeItem struct {
	Content string
	Score   float64
	Source  string
}

// KnowledgeContext is the merged retrieval result. Built once by the
// knowledge stage and read-only afterwards.
type KnowledgeContext struct {
	RelevantInfo []KnowledgeItem
	Sources      []string
	Confidence   float64
	Outcome      Outcome
}

// EmptyKnowledgeContext is the well-formed zero result downstream
// stages receive when retrieval fails entirely.
func EmptyKnowledgeContext() *KnowledgeContext {
	return &KnowledgeContext{
		RelevantInfo: []KnowledgeItem{},
		Sources:      []string{},
		Confidence:   0.0,
		Outcome:      OutcomeDegraded,
	}
}

// ReasoningResult is the immutable output of the four-step chain.
type ReasoningResult struct {
	Intent               string
	Domain               string
	Complexity           string
	Keywords             []string
	KnowledgeSufficiency string
	Gaps                 []string
	Reliability          string
	KeyPoints            []string
	SuggestedFormat      string
	Tone                 string
	Structure            string
	Sections             []string
	Outcome              Outcome
}

// FallbackReasoningResult is returned when the chain fails hard. The
// pipeline proceeds with this degraded analysis.
func FallbackReasoningResult() *ReasoningResult {
	return &ReasoningResult{
		Intent:               "unknown",
		Domain:               "general",
		Complexity:           "medium",
		Keywords:             []string{},
		KnowledgeSufficiency: "unknown",
		Gaps:                 []string{},
		Reliability:          "medium",
		KeyPoints:            []string{},
		SuggestedFormat:      "text",
		Tone:                 "neutral",
		Structure:            "default",
		Sections:             []string{},
		Outcome:              OutcomeDegraded,
	}
}
