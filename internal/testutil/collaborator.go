package testutil

import (
	"context"
	"sync"

	"slimlog/internal/slim"
)

// FakeCollaborator is a scripted slim.Collaborator. Each method returns its
// configured result or error and records what it was called with.
// Safe for concurrent use.
type FakeCollaborator struct {
	mu sync.Mutex

	// Assessments are returned in order; the last one repeats.
	Assessments    []*slim.FoodAssessment
	AssessErr      error
	AssessRequests []slim.AssessFoodRequest

	Verdict      string
	VerdictErr   error
	VerdictCalls int

	ChatReply    string
	ChatErr      error
	ChatContexts []string

	Evaluation       *slim.ChoiceEvaluation
	EvaluateErr      error
	EvaluateRequests []slim.ChoiceRequest

	Alternative    *slim.Alternative
	AlternativeErr error
	Habits         []string

	GeneratedImage *slim.Image
	GenerateErr    error

	EditedImage *slim.Image
	EditErr     error

	Summary        string
	SummaryErr     error
	SummarizedLogs [][]*slim.DailyLog

	Analysis     *slim.DailyAnalysis
	AnalysisErr  error
	AnalyzeCalls int

	// When Block is non-nil every call signals Entered (if set) and then
	// waits for Block to be closed or ctx to end.
	Block   chan struct{}
	Entered chan struct{}
}

// NewFakeCollaborator returns a collaborator with benign default answers.
func NewFakeCollaborator() *FakeCollaborator {
	return &FakeCollaborator{
		Verdict:    "Good choice.",
		ChatReply:  "Keep going!",
		Evaluation: &slim.ChoiceEvaluation{Recommendation: slim.RecommendYes, Reason: "Fits your budget."},
		Summary:    "A steady week.",
	}
}

func (f *FakeCollaborator) wait(ctx context.Context) error {
	if f.Block == nil {
		return nil
	}
	if f.Entered != nil {
		f.Entered <- struct{}{}
	}
	select {
	case <-f.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeCollaborator) AssessFood(ctx context.Context, req slim.AssessFoodRequest) (*slim.FoodAssessment, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AssessRequests = append(f.AssessRequests, req)
	if f.AssessErr != nil {
		return nil, f.AssessErr
	}
	if len(f.Assessments) == 0 {
		return nil, slim.ErrCollaboratorUnavailable
	}
	a := f.Assessments[0]
	if len(f.Assessments) > 1 {
		f.Assessments = f.Assessments[1:]
	}
	return a, nil
}

func (f *FakeCollaborator) FoodVerdict(ctx context.Context, foodName string, macros slim.MacroNutrients) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VerdictCalls++
	if f.VerdictErr != nil {
		return "", f.VerdictErr
	}
	return f.Verdict, nil
}

func (f *FakeCollaborator) Chat(ctx context.Context, history []slim.ChatTurn, message string, userContext string) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ChatContexts = append(f.ChatContexts, userContext)
	if f.ChatErr != nil {
		return "", f.ChatErr
	}
	return f.ChatReply, nil
}

func (f *FakeCollaborator) EvaluateChoice(ctx context.Context, req slim.ChoiceRequest) (*slim.ChoiceEvaluation, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.EvaluateRequests = append(f.EvaluateRequests, req)
	if f.EvaluateErr != nil {
		return nil, f.EvaluateErr
	}
	return f.Evaluation, nil
}

func (f *FakeCollaborator) SuggestAlternative(ctx context.Context, image slim.Image, habits string) (*slim.Alternative, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Habits = append(f.Habits, habits)
	if f.AlternativeErr != nil {
		return nil, f.AlternativeErr
	}
	if f.Alternative == nil {
		return nil, slim.ErrCollaboratorUnavailable
	}
	return f.Alternative, nil
}

func (f *FakeCollaborator) GenerateImage(ctx context.Context, description string) (*slim.Image, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GenerateErr != nil {
		return nil, f.GenerateErr
	}
	if f.GeneratedImage == nil {
		return nil, slim.ErrCollaboratorUnavailable
	}
	return f.GeneratedImage, nil
}

func (f *FakeCollaborator) EditImage(ctx context.Context, image slim.Image, instruction string) (*slim.Image, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EditErr != nil {
		return nil, f.EditErr
	}
	if f.EditedImage == nil {
		return nil, slim.ErrCollaboratorUnavailable
	}
	return f.EditedImage, nil
}

func (f *FakeCollaborator) SummarizeWeek(ctx context.Context, logs []*slim.DailyLog) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SummarizedLogs = append(f.SummarizedLogs, logs)
	if f.SummaryErr != nil {
		return "", f.SummaryErr
	}
	return f.Summary, nil
}

func (f *FakeCollaborator) AnalyzeDay(ctx context.Context, log *slim.DailyLog) (*slim.DailyAnalysis, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AnalyzeCalls++
	if f.AnalysisErr != nil {
		return nil, f.AnalysisErr
	}
	if f.Analysis == nil {
		return nil, slim.ErrCollaboratorUnavailable
	}
	return f.Analysis, nil
}

var _ slim.Collaborator = (*FakeCollaborator)(nil)
