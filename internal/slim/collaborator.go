package slim

import "context"

// Image is raw image bytes with their MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// AssessFoodRequest describes a food to recognize. On a follow-up round the
// questions from the previous assessment are sent back with the user's answers.
type AssessFoodRequest struct {
	Description       string
	Image             *Image
	PreviousQuestions []string
	Answers           []string
}

// FoodAssessment is the collaborator's view of a described food. When
// IsSpecific is false the collaborator is asking for clarification instead
// of committing to numbers.
type FoodAssessment struct {
	IsSpecific          bool            `json:"isSpecific"`
	ClarifyingQuestions []string        `json:"clarifyingQuestions,omitempty"`
	FoodName            string          `json:"foodName,omitempty"`
	EstimatedMacros     *MacroNutrients `json:"estimatedMacros,omitempty"`
}

// Ready reports whether the assessment can be turned into a food entry.
func (a *FoodAssessment) Ready() bool {
	return a != nil && a.IsSpecific && a.EstimatedMacros != nil && a.FoodName != ""
}

// ChatRole identifies the speaker of a chat turn.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatTurn is one message in an advisor conversation.
type ChatTurn struct {
	Role ChatRole
	Text string
}

// ChoiceRequest asks whether the user should eat something.
type ChoiceRequest struct {
	Description string
	Image       *Image
	UserContext string
}

// Recommendation values for ChoiceEvaluation.
const (
	RecommendYes = "Yes"
	RecommendNo  = "No"
)

// ChoiceEvaluation is a strict Yes/No answer with a short reason.
type ChoiceEvaluation struct {
	Recommendation string `json:"recommendation"`
	Reason         string `json:"reason"`
}

// Alternative is a healthier swap for a pictured food.
type Alternative struct {
	OriginalFood         string  `json:"originalFood"`
	HealthierAlternative string  `json:"healthierAlternative"`
	WhyItIsBetter        string  `json:"whyItIsBetter"`
	CalorieDifference    float64 `json:"calorieDifference"`
}

// Collaborator is the remote generative model. Every method may fail; a
// failure or an unparseable response is reported as ErrCollaboratorUnavailable
// and never leaks a partially-typed result.
type Collaborator interface {
	AssessFood(ctx context.Context, req AssessFoodRequest) (*FoodAssessment, error)
	FoodVerdict(ctx context.Context, foodName string, macros MacroNutrients) (string, error)
	Chat(ctx context.Context, history []ChatTurn, message string, userContext string) (string, error)
	EvaluateChoice(ctx context.Context, req ChoiceRequest) (*ChoiceEvaluation, error)
	SuggestAlternative(ctx context.Context, image Image, habits string) (*Alternative, error)
	GenerateImage(ctx context.Context, description string) (*Image, error)
	EditImage(ctx context.Context, image Image, instruction string) (*Image, error)
	SummarizeWeek(ctx context.Context, logs []*DailyLog) (string, error)
	AnalyzeDay(ctx context.Context, log *DailyLog) (*DailyAnalysis, error)
}
