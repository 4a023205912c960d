package service

import (
	"context"
	"fmt"
	"testing"

	"ai-orchestrator-be/internal/config"
	"ai-orchestrator-be/internal/dto"
	"ai-orchestrator-be/pkg/pipeline/learning"

	"github.com/google/uuid"
)

func newFeedbackFixture() (*fakeUnitOfWork, IFeedbackService) {
	uow := &fakeUnitOfWork{
		feedback:    &fakeFeedbackRepo{},
		metrics:     &fakeMetricsRepo{},
		suggestions: &fakeSuggestionRepo{},
	}
	svc := NewFeedbackService(
		&fakeFactory{uow: uow},
		learning.NewSuggestionGenerator(&scriptedProvider{err: fmt.Errorf("offline")}, testLogger()),
		nil,
		nil,
		nil,
		nil,
		&config.Config{},
		nopLogger{},
	)
	return uow, svc
}

func TestSubmitStoresAnalyzedFeedback(t *testing.T) {
	uow, svc := newFeedbackFixture()

	res, err := svc.Submit(context.Background(), &dto.SubmitFeedbackRequest{
		RequestId:    uuid.New(),
		Rating:       5,
		FeedbackType: "accuracy",
		Comment:      "very helpful answer",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if res.Sentiment != learning.SentimentPositive {
		t.Errorf("Sentiment = %q, want %q", res.Sentiment, learning.SentimentPositive)
	}
	if len(uow.feedback.created) != 1 {
		t.Fatalf("expected 1 stored feedback, got %d", len(uow.feedback.created))
	}
	if len(uow.metrics.applied) != 1 {
		t.Errorf("expected metrics to fold in 1 feedback, got %d", len(uow.metrics.applied))
	}
	if len(uow.suggestions.created) != 0 {
		t.Errorf("high rating should not create a suggestion, got %d", len(uow.suggestions.created))
	}
}

func TestSubmitLowRatingCreatesSuggestion(t *testing.T) {
	uow, svc := newFeedbackFixture()

	_, err := svc.Submit(context.Background(), &dto.SubmitFeedbackRequest{
		RequestId:    uuid.New(),
		Rating:       2,
		FeedbackType: "clarity",
		Comment:      "confusing explanation",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if len(uow.suggestions.created) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(uow.suggestions.created))
	}
	// The LLM is offline so the default suggestion keys off the feedback type.
	if got := uow.suggestions.created[0].Area; got != "clarity" {
		t.Errorf("suggestion Area = %q, want %q", got, "clarity")
	}
	if got := uow.suggestions.created[0].Priority; got != "medium" {
		t.Errorf("suggestion Priority = %q, want %q", got, "medium")
	}
}

func TestSubmitClampsRating(t *testing.T) {
	uow, svc := newFeedbackFixture()

	res, err := svc.Submit(context.Background(), &dto.SubmitFeedbackRequest{
		RequestId: uuid.New(),
		Rating:    11,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.Rating != 5 {
		t.Errorf("Rating = %d, want clamped 5", res.Rating)
	}
	if uow.feedback.created[0].Rating != 5 {
		t.Errorf("stored Rating = %d, want 5", uow.feedback.created[0].Rating)
	}
}

func TestSubmitSurvivesMetricsFailure(t *testing.T) {
	uow, svc := newFeedbackFixture()
	uow.metrics.applyErr = fmt.Errorf("lock timeout")

	res, err := svc.Submit(context.Background(), &dto.SubmitFeedbackRequest{
		RequestId: uuid.New(),
		Rating:    4,
	})
	if err != nil {
		t.Fatalf("Submit() should not fail on metrics error, got %v", err)
	}
	if res == nil {
		t.Fatal("expected a response despite metrics failure")
	}
}

func TestSubmitAttachesTextAnalysis(t *testing.T) {
	uow := &fakeUnitOfWork{
		feedback:    &fakeFeedbackRepo{},
		metrics:     &fakeMetricsRepo{},
		suggestions: &fakeSuggestionRepo{},
	}
	svc := NewFeedbackService(
		&fakeFactory{uow: uow},
		learning.NewSuggestionGenerator(&scriptedProvider{err: fmt.Errorf("offline")}, testLogger()),
		learning.NewTextAnalyzer(&scriptedProvider{err: fmt.Errorf("offline")}, testLogger()),
		nil,
		nil,
		nil,
		&config.Config{},
		nopLogger{},
	)

	_, err := svc.Submit(context.Background(), &dto.SubmitFeedbackRequest{
		RequestId:    uuid.New(),
		Rating:       5,
		FeedbackType: "relevance",
		Comment:      "perfect answer",
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	meta := uow.feedback.created[0].Metadata
	if meta == nil {
		t.Fatal("expected text analysis metadata")
	}
	if meta["text_sentiment"] != learning.SentimentPositive {
		t.Errorf("text_sentiment = %v, want %q", meta["text_sentiment"], learning.SentimentPositive)
	}
	if _, ok := meta["analysis_confidence"]; !ok {
		t.Error("expected analysis_confidence in metadata")
	}
}

func TestMarkSuggestionImplemented(t *testing.T) {
	uow, svc := newFeedbackFixture()

	id := uuid.New()
	if err := svc.MarkSuggestionImplemented(context.Background(), id); err != nil {
		t.Fatalf("MarkSuggestionImplemented() error = %v", err)
	}
	if len(uow.suggestions.implemented) != 1 || uow.suggestions.implemented[0] != id {
		t.Errorf("implemented = %v, want [%s]", uow.suggestions.implemented, id)
	}
}

func TestGetMetricsWithoutCache(t *testing.T) {
	uow, svc := newFeedbackFixture()
	uow.metrics.current = nil

	res, err := svc.GetMetrics(context.Background())
	if err != nil {
		t.Fatalf("GetMetrics() error = %v", err)
	}
	if res.TotalFeedbackCount != 0 {
		t.Errorf("TotalFeedbackCount = %d, want 0", res.TotalFeedbackCount)
	}
	if res.SentimentDistribution == nil {
		t.Error("SentimentDistribution should be an empty map, not nil")
	}
}
