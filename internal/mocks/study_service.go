package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// SubmitReviewCall records the arguments of one SubmitReview call.
type SubmitReviewCall struct {
	LearnerID  domain.LearnerID
	CardID     domain.CardID
	Submission study.ReviewSubmission
}

// MockStudyService implements study.Service for testing
type MockStudyService struct {
	NextCardFn          func(ctx context.Context, learnerID domain.LearnerID, req study.NextCardRequest) (*study.NextCard, error)
	SubmitReviewFn      func(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID, sub study.ReviewSubmission) (*study.ReviewResult, error)
	PreviewFn           func(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) (*study.CardPreview, error)
	ResetCardFn         func(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) error
	DueSummaryFn        func(ctx context.Context, learnerID domain.LearnerID, filter domain.CatalogFilter) (*study.DueSummary, error)
	ProgressSummaryFn   func(ctx context.Context, learnerID domain.LearnerID) (*study.ProgressSummary, error)
	DeleteAllProgressFn func(ctx context.Context, learnerID domain.LearnerID) error
	EndSessionFn        func(ctx context.Context, learnerID domain.LearnerID) error

	// Err is returned by methods whose function is nil.
	Err error

	mu                sync.Mutex
	nextCardRequests  []study.NextCardRequest
	submitReviewCalls []SubmitReviewCall
}

var _ study.Service = (*MockStudyService)(nil)

// NextCard implements study.Service.
func (m *MockStudyService) NextCard(
	ctx context.Context,
	learnerID domain.LearnerID,
	req study.NextCardRequest,
) (*study.NextCard, error) {
	m.mu.Lock()
	m.nextCardRequests = append(m.nextCardRequests, req)
	m.mu.Unlock()

	if m.NextCardFn != nil {
		return m.NextCardFn(ctx, learnerID, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &study.NextCard{Done: true}, nil
}

// SubmitReview implements study.Service.
func (m *MockStudyService) SubmitReview(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
	sub study.ReviewSubmission,
) (*study.ReviewResult, error) {
	m.mu.Lock()
	m.submitReviewCalls = append(m.submitReviewCalls, SubmitReviewCall{
		LearnerID:  learnerID,
		CardID:     cardID,
		Submission: sub,
	})
	m.mu.Unlock()

	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, learnerID, cardID, sub)
	}
	return nil, m.Err
}

// Preview implements study.Service.
func (m *MockStudyService) Preview(
	ctx context.Context,
	learnerID domain.LearnerID,
	cardID domain.CardID,
) (*study.CardPreview, error) {
	if m.PreviewFn != nil {
		return m.PreviewFn(ctx, learnerID, cardID)
	}
	return nil, m.Err
}

// ResetCard implements study.Service.
func (m *MockStudyService) ResetCard(ctx context.Context, learnerID domain.LearnerID, cardID domain.CardID) error {
	if m.ResetCardFn != nil {
		return m.ResetCardFn(ctx, learnerID, cardID)
	}
	return m.Err
}

// DueSummary implements study.Service.
func (m *MockStudyService) DueSummary(
	ctx context.Context,
	learnerID domain.LearnerID,
	filter domain.CatalogFilter,
) (*study.DueSummary, error) {
	if m.DueSummaryFn != nil {
		return m.DueSummaryFn(ctx, learnerID, filter)
	}
	return nil, m.Err
}

// ProgressSummary implements study.Service.
func (m *MockStudyService) ProgressSummary(
	ctx context.Context,
	learnerID domain.LearnerID,
) (*study.ProgressSummary, error) {
	if m.ProgressSummaryFn != nil {
		return m.ProgressSummaryFn(ctx, learnerID)
	}
	return nil, m.Err
}

// DeleteAllProgress implements study.Service.
func (m *MockStudyService) DeleteAllProgress(ctx context.Context, learnerID domain.LearnerID) error {
	if m.DeleteAllProgressFn != nil {
		return m.DeleteAllProgressFn(ctx, learnerID)
	}
	return m.Err
}

// EndSession implements study.Service.
func (m *MockStudyService) EndSession(ctx context.Context, learnerID domain.LearnerID) error {
	if m.EndSessionFn != nil {
		return m.EndSessionFn(ctx, learnerID)
	}
	return m.Err
}

// NextCardRequests returns the requests passed to NextCard so far.
func (m *MockStudyService) NextCardRequests() []study.NextCardRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]study.NextCardRequest(nil), m.nextCardRequests...)
}

// SubmitReviewCalls returns the arguments passed to SubmitReview so far.
func (m *MockStudyService) SubmitReviewCalls() []SubmitReviewCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SubmitReviewCall(nil), m.submitReviewCalls...)
}
