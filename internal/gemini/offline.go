package gemini

import (
	"context"

	"slimlog/internal/slim"
)

// Offline is a collaborator for running without network access or an API
// key. Every call fails with slim.ErrCollaboratorUnavailable, so the app
// degrades exactly as it would during an outage.
type Offline struct{}

var _ slim.Collaborator = Offline{}

func (Offline) AssessFood(context.Context, slim.AssessFoodRequest) (*slim.FoodAssessment, error) {
	return nil, unavailable("offline")
}

func (Offline) FoodVerdict(context.Context, string, slim.MacroNutrients) (string, error) {
	return "", unavailable("offline")
}

func (Offline) Chat(context.Context, []slim.ChatTurn, string, string) (string, error) {
	return "", unavailable("offline")
}

func (Offline) EvaluateChoice(context.Context, slim.ChoiceRequest) (*slim.ChoiceEvaluation, error) {
	return nil, unavailable("offline")
}

func (Offline) SuggestAlternative(context.Context, slim.Image, string) (*slim.Alternative, error) {
	return nil, unavailable("offline")
}

func (Offline) GenerateImage(context.Context, string) (*slim.Image, error) {
	return nil, unavailable("offline")
}

func (Offline) EditImage(context.Context, slim.Image, string) (*slim.Image, error) {
	return nil, unavailable("offline")
}

func (Offline) SummarizeWeek(context.Context, []*slim.DailyLog) (string, error) {
	return "", unavailable("offline")
}

func (Offline) AnalyzeDay(context.Context, *slim.DailyLog) (*slim.DailyAnalysis, error) {
	return nil, unavailable("offline")
}
