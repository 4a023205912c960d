package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	ResponseFormatText     = "text"
	ResponseFormatMarkdown = "markdown"
	ResponseFormatJSON     = "json"
	ResponseFormatCode     = "code"
	ResponseFormatTable    = "table"

	FeedbackTypeAccuracy     = "accuracy"
	FeedbackTypeRelevance    = "relevance"
	FeedbackTypeClarity      = "clarity"
	FeedbackTypeCompleteness = "completeness"
)
