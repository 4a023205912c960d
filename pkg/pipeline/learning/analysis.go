package learning

import "strings"

// Sentiment labels derived from numeric ratings.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Feedback types with dedicated improvement/strength tagging.
var feedbackTypes = []string{"accuracy", "relevance", "clarity", "completeness"}

// Comment keyword lists. Each list triggers at most one tag: the scan
// stops at the first match, it does not tag per keyword.
var (
	negativeKeywords = []string{"error", "wrong", "inaccurate", "confusing", "incomplete", "irrelevant"}
	positiveKeywords = []string{"good", "accurate", "clear", "useful", "helpful", "perfect"}
)

// Input is the feedback payload the analysis works on.
type Input struct {
	Rating       int
	FeedbackType string
	Comment      string
}

// Analysis is the derived classification stored with the feedback.
type Analysis struct {
	Sentiment        string
	ImprovementAreas []string
	Strengths        []string
}

// ClampRating bounds a rating to [1,5].
func ClampRating(rating int) int {
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}

// Sentiment maps a rating to its three-valued classification:
// >=4 positive, ==3 neutral, <=2 negative.
func Sentiment(rating int) string {
	rating = ClampRating(rating)
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating == 3:
		return SentimentNeutral
	default:
		return SentimentNegative
	}
}

// Analyze derives sentiment and improvement/strength tags from one
// feedback submission.
func Analyze(in Input) Analysis {
	rating := ClampRating(in.Rating)
	analysis := Analysis{
		Sentiment:        Sentiment(rating),
		ImprovementAreas: []string{},
		Strengths:        []string{},
	}

	if isKnownFeedbackType(in.FeedbackType) {
		if rating <= 3 {
			analysis.ImprovementAreas = append(analysis.ImprovementAreas, in.FeedbackType+" improvement needed")
		} else {
			analysis.Strengths = append(analysis.Strengths, "high "+in.FeedbackType)
		}
	}

	comment := strings.ToLower(in.Comment)
	if comment != "" {
		for _, keyword := range negativeKeywords {
			if strings.Contains(comment, keyword) {
				analysis.ImprovementAreas = append(analysis.ImprovementAreas, "improvement needed")
				break
			}
		}
		for _, keyword := range positiveKeywords {
			if strings.Contains(comment, keyword) {
				analysis.Strengths = append(analysis.Strengths, "overall satisfaction")
				break
			}
		}
	}

	return analysis
}

func isKnownFeedbackType(feedbackType string) bool {
	for _, t := range feedbackTypes {
		if t == feedbackType {
			return true
		}
	}
	return false
}

// NextAverage computes the streaming mean after one more rating.
// count is the total including the new rating.
func NextAverage(oldAverage float64, count int64, rating int) float64 {
	if count <= 0 {
		return float64(rating)
	}
	return (oldAverage*float64(count-1) + float64(rating)) / float64(count)
}
