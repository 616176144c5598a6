package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"slimlog/internal/slim"
)

var macrosSchema = object(
	[]string{"calories", "protein", "carbs", "fats", "saturatedFats", "sugars"},
	map[string]*schema{
		"calories":      num(""),
		"protein":       num(""),
		"carbs":         num(""),
		"fats":          num(""),
		"saturatedFats": num(""),
		"sugars":        num(""),
	},
)

var assessmentSchema = object([]string{"isSpecific"}, map[string]*schema{
	"isSpecific":          boolean("True if we can calculate calories with 90% accuracy."),
	"clarifyingQuestions": array(str(""), "List of 2-3 short questions to ask the user if isSpecific is false."),
	"foodName":            str(""),
	"estimatedMacros":     macrosSchema,
})

const assessInstruction = "If the user input is vague (e.g., 'sandwich', 'rice', 'chicken'), set isSpecific to false " +
	"and ask for cooking method, portion size (grams/cups), or ingredients. Do not guess averages. " +
	"Only return macros if you are confident."

// AssessFood recognizes a described or pictured food. Vague input yields
// clarifying questions instead of numbers.
func (c *Client) AssessFood(ctx context.Context, req slim.AssessFoodRequest) (*slim.FoodAssessment, error) {
	prompt := fmt.Sprintf("You are a strict, precision-focused nutritionist AI. Your goal is EXACT calorie tracking.\nUser Input: %q\n", req.Description)
	if len(req.PreviousQuestions) > 0 && len(req.Answers) > 0 {
		questions, _ := json.Marshal(req.PreviousQuestions)
		answers, _ := json.Marshal(req.Answers)
		prompt += fmt.Sprintf("Context - Previous Questions: %s\nUser Answers: %s\nCombine this information to determine specific macros.\n", questions, answers)
	}

	parts := []part{textPart(prompt)}
	if req.Image != nil {
		parts = append(parts, imagePart(*req.Image))
	}

	var raw struct {
		IsSpecific          *bool                `json:"isSpecific"`
		ClarifyingQuestions []string             `json:"clarifyingQuestions"`
		FoodName            string               `json:"foodName"`
		EstimatedMacros     *slim.MacroNutrients `json:"estimatedMacros"`
	}
	err := c.generateJSON(ctx, c.textModel, &generateRequest{
		Contents:          []content{userContent(parts...)},
		SystemInstruction: system(assessInstruction),
		GenerationConfig:  jsonOutput(assessmentSchema),
	}, &raw)
	if err != nil {
		return nil, err
	}

	if raw.IsSpecific == nil {
		return nil, unavailable("assessment is missing isSpecific")
	}
	if !*raw.IsSpecific {
		questions := nonEmpty(raw.ClarifyingQuestions)
		if len(questions) == 0 {
			return nil, unavailable("vague assessment came without clarifying questions")
		}
		return &slim.FoodAssessment{IsSpecific: false, ClarifyingQuestions: questions}, nil
	}

	name := strings.TrimSpace(raw.FoodName)
	if name == "" || raw.EstimatedMacros == nil {
		return nil, unavailable("specific assessment is missing a food name or macros")
	}
	if err := raw.EstimatedMacros.Validate(); err != nil {
		return nil, unavailable("assessment macros rejected: %v", err)
	}
	return &slim.FoodAssessment{IsSpecific: true, FoodName: name, EstimatedMacros: raw.EstimatedMacros}, nil
}

// FoodVerdict is a one-sentence weight-loss verdict on a confirmed food.
func (c *Client) FoodVerdict(ctx context.Context, foodName string, macros slim.MacroNutrients) (string, error) {
	macrosJSON, err := json.Marshal(macros)
	if err != nil {
		return "", fmt.Errorf("encoding macros: %w", err)
	}
	return c.generateText(ctx, c.textModel, &generateRequest{
		Contents: []content{userContent(textPart(fmt.Sprintf(
			"Analyze this food for weight loss: %s. Macros: %s. Give a single sentence verdict.", foodName, macrosJSON)))},
		SystemInstruction: system("You are a weight loss coach. Be direct. Mention if high in saturated fat or sugar. Max 15 words."),
	})
}

// Chat continues an advisor conversation grounded in the user's numbers.
func (c *Client) Chat(ctx context.Context, history []slim.ChatTurn, message string, userContext string) (string, error) {
	contents := make([]content, 0, len(history)+1)
	for _, turn := range history {
		role := "user"
		if turn.Role == slim.RoleModel {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{textPart(turn.Text)}})
	}
	contents = append(contents, userContent(textPart(message)))

	instruction := "You are SlimLogic AI, a supportive but strict weight loss coach.\n" +
		"You have access to the user's data: " + userContext + ".\n" +
		"Use this data to give specific advice. If they ask \"What should I eat?\", look at their remaining calories and macros.\n" +
		"Keep answers concise (under 3 sentences) unless asked for a detailed plan."

	return c.generateText(ctx, c.textModel, &generateRequest{
		Contents:          contents,
		SystemInstruction: system(instruction),
	})
}

var choiceSchema = object([]string{"recommendation", "reason"}, map[string]*schema{
	"recommendation": enum(slim.RecommendYes, slim.RecommendNo),
	"reason":         str(""),
})

// EvaluateChoice answers "should I eat this?" with a strict Yes or No.
func (c *Client) EvaluateChoice(ctx context.Context, req slim.ChoiceRequest) (*slim.ChoiceEvaluation, error) {
	parts := []part{textPart(fmt.Sprintf(
		"Based on the user's remaining calories and goals (%s), should they eat this? Be strict. "+
			"If it fits, say Yes. If it blows the limit or is junk, say No. Provide a short, punchy reason.", req.UserContext))}
	if strings.TrimSpace(req.Description) != "" {
		parts = append(parts, textPart("Food: "+req.Description))
	}
	if req.Image != nil {
		parts = append(parts, imagePart(*req.Image))
	}

	var eval slim.ChoiceEvaluation
	err := c.generateJSON(ctx, c.textModel, &generateRequest{
		Contents:         []content{userContent(parts...)},
		GenerationConfig: jsonOutput(choiceSchema),
	}, &eval)
	if err != nil {
		return nil, err
	}
	if eval.Recommendation != slim.RecommendYes && eval.Recommendation != slim.RecommendNo {
		return nil, unavailable("recommendation %q is not Yes or No", eval.Recommendation)
	}
	eval.Reason = strings.TrimSpace(eval.Reason)
	if eval.Reason == "" {
		return nil, unavailable("recommendation came without a reason")
	}
	return &eval, nil
}

var alternativeSchema = object(
	[]string{"originalFood", "healthierAlternative", "whyItIsBetter", "calorieDifference"},
	map[string]*schema{
		"originalFood":         str(""),
		"healthierAlternative": str(""),
		"whyItIsBetter":        str(""),
		"calorieDifference":    num("Estimated calories saved"),
	},
)

// SuggestAlternative identifies a pictured food and proposes a healthier swap.
func (c *Client) SuggestAlternative(ctx context.Context, image slim.Image, habits string) (*slim.Alternative, error) {
	prompt := "Identify this food. Suggest a healthier alternative that satisfies a similar craving but is better for weight loss. " +
		"Context of user habits: " + habits

	var alt slim.Alternative
	err := c.generateJSON(ctx, c.textModel, &generateRequest{
		Contents:         []content{userContent(textPart(prompt), imagePart(image))},
		GenerationConfig: jsonOutput(alternativeSchema),
	}, &alt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(alt.OriginalFood) == "" || strings.TrimSpace(alt.HealthierAlternative) == "" || strings.TrimSpace(alt.WhyItIsBetter) == "" {
		return nil, unavailable("alternative is missing required fields")
	}
	if math.IsNaN(alt.CalorieDifference) || math.IsInf(alt.CalorieDifference, 0) {
		return nil, unavailable("calorie difference is not a number")
	}
	return &alt, nil
}

var imageOutput = &generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}

// GenerateImage renders a food photo for description.
func (c *Client) GenerateImage(ctx context.Context, description string) (*slim.Image, error) {
	prompt := fmt.Sprintf("A delicious, high-quality, professional food photography shot of %s. Bright, appetizing, healthy.", description)
	return c.generateImage(ctx, c.imageModel, &generateRequest{
		Contents:         []content{userContent(textPart(prompt))},
		GenerationConfig: imageOutput,
	})
}

// EditImage applies instruction to a meal photo.
func (c *Client) EditImage(ctx context.Context, image slim.Image, instruction string) (*slim.Image, error) {
	return c.generateImage(ctx, c.imageModel, &generateRequest{
		Contents:         []content{userContent(imagePart(image), textPart(instruction))},
		GenerationConfig: imageOutput,
	})
}

// SummarizeWeek writes a narrative progress report for logs.
func (c *Client) SummarizeWeek(ctx context.Context, logs []*slim.DailyLog) (string, error) {
	history, err := json.Marshal(logs)
	if err != nil {
		return "", fmt.Errorf("encoding history: %w", err)
	}
	prompt := "Analyze this weekly food log history JSON and write a professional progress report.\n" +
		"Data: " + string(history) + "\n\n" +
		"Format Requirements:\n" +
		"- Use **bold** for key insights.\n" +
		"- Write in clear, encouraging paragraphs.\n" +
		"- Start with a \"Weekly Snapshot\" header.\n" +
		"- End with a \"Focus for Next Week\" section.\n" +
		"- Do NOT use JSON or markdown code blocks, just use the text formatting."

	return c.generateText(ctx, c.reasoningModel, &generateRequest{
		Contents:          []content{userContent(textPart(prompt))},
		SystemInstruction: system("You are a data analyst for a weight loss app. Be encouraging but factual."),
	})
}

var analysisSchema = object([]string{"verdict", "summary", "dos", "donts"}, map[string]*schema{
	"verdict": enum(slim.VerdictGoodDay, slim.VerdictNeedsImprovement, slim.VerdictOffTrack),
	"summary": str(""),
	"dos":     array(str(""), ""),
	"donts":   array(str(""), ""),
})

// AnalyzeDay reviews one day's log and gives advice for tomorrow.
func (c *Client) AnalyzeDay(ctx context.Context, log *slim.DailyLog) (*slim.DailyAnalysis, error) {
	logJSON, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("encoding log: %w", err)
	}

	var analysis slim.DailyAnalysis
	err = c.generateJSON(ctx, c.reasoningModel, &generateRequest{
		Contents: []content{userContent(textPart(fmt.Sprintf(
			"Analyze this daily log: %s. Did the user meet their goals? Provide actionable advice for tomorrow.", logJSON)))},
		GenerationConfig: jsonOutput(analysisSchema),
	}, &analysis)
	if err != nil {
		return nil, err
	}

	switch analysis.Verdict {
	case slim.VerdictGoodDay, slim.VerdictNeedsImprovement, slim.VerdictOffTrack:
	default:
		return nil, unavailable("analysis verdict %q is not recognized", analysis.Verdict)
	}
	analysis.Summary = strings.TrimSpace(analysis.Summary)
	if analysis.Summary == "" {
		return nil, unavailable("analysis came without a summary")
	}
	analysis.Dos = nonEmpty(analysis.Dos)
	analysis.Donts = nonEmpty(analysis.Donts)
	return &analysis, nil
}

// nonEmpty trims items and drops blanks. It never returns nil.
func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
