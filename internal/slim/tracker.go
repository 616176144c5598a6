package slim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Placeholders shown when the collaborator cannot answer.
const (
	VerdictUnavailable = "Could not generate verdict."
	SummaryUnavailable = "Could not generate summary."
)

const (
	reportDays      = 7
	advisorDays     = 3
	habitsMaxLength = 200
)

// Tracker routes user actions to the active user's logbook and to the AI
// collaborator. Collaborator failures never block local log mutations.
type Tracker struct {
	session *SessionManager
	ai      Collaborator
	images  ImageStore
	idgen   IDGenerator
	clock   Clock
	logger  Logger
	flights *flightGroup
}

// NewTracker creates a Tracker. images may be nil, in which case food photos
// are assessed but not kept.
func NewTracker(session *SessionManager, ai Collaborator, images ImageStore, idgen IDGenerator, clock Clock, logger Logger) *Tracker {
	return &Tracker{
		session: session,
		ai:      ai,
		images:  images,
		idgen:   idgen,
		clock:   clock,
		logger:  logger,
		flights: newFlightGroup(),
	}
}

// Dashboard is the state of today's log relative to the calorie limit.
type Dashboard struct {
	Profile         UserProfile
	Date            string
	Entries         []FoodEntry // newest first
	Totals          MacroNutrients
	Consumed        float64
	Remaining       float64
	PercentConsumed int
	OverLimit       bool
	Weight          *float64
	Notes           string
}

// Dashboard summarizes today for the active user.
func (t *Tracker) Dashboard() (*Dashboard, error) {
	profile, book, err := t.active()
	if err != nil {
		return nil, err
	}

	today := book.TodayLog()
	entries := make([]FoodEntry, len(today.Entries))
	for i, e := range today.Entries {
		entries[len(entries)-1-i] = e
	}

	totals := today.TotalMacros()
	limit := float64(profile.DailyCalorieLimit)
	return &Dashboard{
		Profile:         *profile,
		Date:            today.Date,
		Entries:         entries,
		Totals:          totals,
		Consumed:        totals.Calories,
		Remaining:       math.Max(0, limit-totals.Calories),
		PercentConsumed: int(math.Round(totals.Calories / limit * 100)),
		OverLimit:       totals.Calories > limit,
		Weight:          today.Weight,
		Notes:           today.Notes,
	}, nil
}

// AssessFood asks the collaborator to recognize a food. The result may be a
// request for clarification rather than numbers.
func (t *Tracker) AssessFood(ctx context.Context, req AssessFoodRequest) (*FoodAssessment, error) {
	if strings.TrimSpace(req.Description) == "" && req.Image == nil {
		return nil, invalid("description", "describe the food or attach a photo")
	}
	if len(req.Answers) > 0 && len(req.Answers) != len(req.PreviousQuestions) {
		return nil, invalid("answers", "must answer every clarifying question")
	}
	if _, _, err := t.active(); err != nil {
		return nil, err
	}

	release, err := t.flights.acquire(FlowAssess)
	if err != nil {
		return nil, err
	}
	defer release()

	assessment, err := t.ai.AssessFood(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("assessing food: %w", err)
	}
	t.logger.Debug("food assessed", "specific", assessment.IsSpecific, "food", assessment.FoodName)
	return assessment, nil
}

// ConfirmFood turns a specific assessment into a logged entry. The one-line
// verdict is best effort: if the collaborator fails the entry is logged with
// a placeholder verdict.
func (t *Tracker) ConfirmFood(ctx context.Context, assessment *FoodAssessment, photo *Image) (*FoodEntry, error) {
	if !assessment.Ready() {
		return nil, invalid("assessment", "needs a food name and macros before it can be logged")
	}
	_, book, err := t.active()
	if err != nil {
		return nil, err
	}

	release, err := t.flights.acquire(FlowConfirm)
	if err != nil {
		return nil, err
	}
	defer release()

	macros := *assessment.EstimatedMacros
	verdict, err := t.ai.FoodVerdict(ctx, assessment.FoodName, macros)
	if err != nil || strings.TrimSpace(verdict) == "" {
		t.logger.Warn("verdict unavailable", "food", assessment.FoodName, "error", err)
		verdict = VerdictUnavailable
	}

	var imageRef string
	if photo != nil && t.images != nil {
		imageRef, err = StoreImage(t.images, photo)
		if err != nil {
			t.logger.Warn("food photo not stored", "food", assessment.FoodName, "error", err)
			imageRef = ""
		}
	}

	entry := FoodEntry{
		ID:        t.idgen.New(),
		Name:      assessment.FoodName,
		Timestamp: t.clock.Now(),
		Macros:    macros,
		Verdict:   verdict,
		ImageRef:  imageRef,
	}
	if err := book.AddEntry(entry); err != nil {
		return nil, fmt.Errorf("adding entry: %w", err)
	}

	t.logger.Info("food logged", "id", entry.ID, "food", entry.Name, "calories", entry.Macros.Calories)
	return &entry, nil
}

// RemoveFood deletes an entry by id from any day. It reports whether the
// entry existed.
func (t *Tracker) RemoveFood(id string) (bool, error) {
	_, book, err := t.active()
	if err != nil {
		return false, err
	}
	removed, err := book.RemoveEntry(id)
	if err != nil {
		return false, fmt.Errorf("removing entry: %w", err)
	}
	if removed {
		t.logger.Info("food removed", "id", id)
	}
	return removed, nil
}

// CheckInResult describes a weight check-in against the last recorded weight.
type CheckInResult struct {
	Weight      float64
	Previous    float64
	HasPrevious bool
	Change      float64
}

// CheckIn records today's weight on the log and on the profile.
func (t *Tracker) CheckIn(weight float64) (*CheckInResult, error) {
	_, book, err := t.active()
	if err != nil {
		return nil, err
	}

	prev, hasPrev := book.PreviousWeight()
	if err := book.SetWeight(weight); err != nil {
		return nil, fmt.Errorf("recording weight: %w", err)
	}
	if err := t.session.UpdateWeight(weight); err != nil {
		return nil, fmt.Errorf("updating profile weight: %w", err)
	}

	result := &CheckInResult{Weight: weight, Previous: prev, HasPrevious: hasPrev}
	if hasPrev {
		result.Change = weight - prev
	}
	t.logger.Info("weight checked in", "weight", weight)
	return result, nil
}

// PreviousWeight returns the last weight recorded before today.
func (t *Tracker) PreviousWeight() (float64, bool, error) {
	_, book, err := t.active()
	if err != nil {
		return 0, false, err
	}
	w, ok := book.PreviousWeight()
	return w, ok, nil
}

// SetNotes replaces today's notes.
func (t *Tracker) SetNotes(notes string) error {
	_, book, err := t.active()
	if err != nil {
		return err
	}
	return book.SetNotes(notes)
}

// DaySummary is one row of the history view.
type DaySummary struct {
	Date       string
	EntryCount int
	Calories   float64
	Weight     *float64
	OverLimit  bool
	Entries    []FoodEntry
	Analysis   *DailyAnalysis
}

// History lists every logged day, newest first.
func (t *Tracker) History() ([]DaySummary, error) {
	profile, book, err := t.active()
	if err != nil {
		return nil, err
	}

	logs := book.LogsNewestFirst()
	days := make([]DaySummary, len(logs))
	for i, log := range logs {
		cals := log.TotalCalories()
		days[i] = DaySummary{
			Date:       log.Date,
			EntryCount: len(log.Entries),
			Calories:   cals,
			Weight:     log.Weight,
			OverLimit:  cals > float64(profile.DailyCalorieLimit),
			Entries:    log.Entries,
			Analysis:   log.Analysis,
		}
	}
	return days, nil
}

// AnalyzeDay returns the AI review of a day, generating and caching it on
// the log the first time it is requested.
func (t *Tracker) AnalyzeDay(ctx context.Context, date string) (*DailyAnalysis, error) {
	if _, err := parseDate(date); err != nil {
		return nil, invalid("date", fmt.Sprintf("%q is not YYYY-MM-DD", date))
	}
	_, book, err := t.active()
	if err != nil {
		return nil, err
	}

	log := book.Log(date)
	if log == nil {
		return nil, invalid("date", fmt.Sprintf("nothing logged on %s", date))
	}
	if log.Analysis != nil {
		return log.Analysis, nil
	}
	if len(log.Entries) == 0 {
		return nil, invalid("date", fmt.Sprintf("%s has no food entries to analyze", date))
	}

	release, err := t.flights.acquire(FlowAnalyze)
	if err != nil {
		return nil, err
	}
	defer release()

	analysis, err := t.ai.AnalyzeDay(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", date, err)
	}
	if err := book.SetAnalysis(date, analysis); err != nil {
		return nil, fmt.Errorf("caching analysis: %w", err)
	}
	return analysis, nil
}

// Ask sends one message to the advisor along with the user's current numbers.
func (t *Tracker) Ask(ctx context.Context, history []ChatTurn, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", invalid("message", "is required")
	}
	profile, book, err := t.active()
	if err != nil {
		return "", err
	}

	release, err := t.flights.acquire(FlowChat)
	if err != nil {
		return "", err
	}
	defer release()

	reply, err := t.ai.Chat(ctx, history, message, advisorContext(profile, book))
	if err != nil {
		return "", fmt.Errorf("asking advisor: %w", err)
	}
	return reply, nil
}

// Greeting is the advisor's opening line.
func (t *Tracker) Greeting() (string, error) {
	profile, book, err := t.active()
	if err != nil {
		return "", err
	}
	consumed := book.TodayLog().TotalCalories()
	return fmt.Sprintf("Hi %s! I'm your SlimLogic coach. I see you've eaten %.0f of your %d calories today. How can I help you right now?",
		profile.Username, consumed, profile.DailyCalorieLimit), nil
}

// ShouldIEat asks for a strict Yes/No on a food given today's remaining budget.
func (t *Tracker) ShouldIEat(ctx context.Context, description string, photo *Image) (*ChoiceEvaluation, error) {
	if strings.TrimSpace(description) == "" && photo == nil {
		return nil, invalid("description", "describe the food or attach a photo")
	}
	profile, book, err := t.active()
	if err != nil {
		return nil, err
	}

	release, err := t.flights.acquire(FlowEvaluate)
	if err != nil {
		return nil, err
	}
	defer release()

	consumed := book.TodayLog().TotalCalories()
	limit := float64(profile.DailyCalorieLimit)
	userContext := fmt.Sprintf("Consumed Today: %.0f/%d. Remaining: %.0f cal.", consumed, profile.DailyCalorieLimit, limit-consumed)

	eval, err := t.ai.EvaluateChoice(ctx, ChoiceRequest{Description: description, Image: photo, UserContext: userContext})
	if err != nil {
		return nil, fmt.Errorf("evaluating food choice: %w", err)
	}
	return eval, nil
}

// SwapResult is a healthier alternative and, when available, a picture of it.
type SwapResult struct {
	Alternative Alternative
	Image       *Image
}

// SuggestSwap identifies the pictured food and proposes a healthier
// alternative. The illustration is optional; failing to generate it does not
// fail the swap.
func (t *Tracker) SuggestSwap(ctx context.Context, photo Image) (*SwapResult, error) {
	_, book, err := t.active()
	if err != nil {
		return nil, err
	}

	release, err := t.flights.acquire(FlowSwap)
	if err != nil {
		return nil, err
	}
	defer release()

	alt, err := t.ai.SuggestAlternative(ctx, photo, eatingHabits(book))
	if err != nil {
		return nil, fmt.Errorf("suggesting alternative: %w", err)
	}

	result := &SwapResult{Alternative: *alt}
	img, err := t.ai.GenerateImage(ctx, alt.HealthierAlternative)
	if err != nil {
		t.logger.Warn("alternative image unavailable", "food", alt.HealthierAlternative, "error", err)
	} else {
		result.Image = img
	}
	return result, nil
}

// FixMeal edits a meal photo according to instruction.
func (t *Tracker) FixMeal(ctx context.Context, photo Image, instruction string) (*Image, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, invalid("instruction", "is required")
	}
	if _, _, err := t.active(); err != nil {
		return nil, err
	}

	release, err := t.flights.acquire(FlowFixMeal)
	if err != nil {
		return nil, err
	}
	defer release()

	img, err := t.ai.EditImage(ctx, photo, instruction)
	if err != nil {
		return nil, fmt.Errorf("editing meal image: %w", err)
	}
	return img, nil
}

// ReportPoint is one day in the weekly chart.
type ReportPoint struct {
	Date     string
	Calories float64
	Weight   *float64
}

// Report covers the most recent logged week.
type Report struct {
	Points           []ReportPoint
	Summary          string
	SummaryAvailable bool
}

// WeeklyReport charts the last seven logged days and asks for a narrative
// summary. The chart is always returned; the summary falls back to a
// placeholder if the collaborator fails.
func (t *Tracker) WeeklyReport(ctx context.Context) (*Report, error) {
	_, book, err := t.active()
	if err != nil {
		return nil, err
	}

	logs := book.Logs()
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	if len(logs) > reportDays {
		logs = logs[len(logs)-reportDays:]
	}

	report := &Report{Points: make([]ReportPoint, len(logs))}
	for i, log := range logs {
		report.Points[i] = ReportPoint{Date: log.Date, Calories: log.TotalCalories(), Weight: log.Weight}
	}

	release, err := t.flights.acquire(FlowReport)
	if err != nil {
		return nil, err
	}
	defer release()

	summary, err := t.ai.SummarizeWeek(ctx, logs)
	if err != nil || strings.TrimSpace(summary) == "" {
		t.logger.Warn("weekly summary unavailable", "error", err)
		report.Summary = SummaryUnavailable
		return report, nil
	}
	report.Summary = summary
	report.SummaryAvailable = true
	return report, nil
}

// FoodPhoto writes the stored photo of an entry to w. It fails if the entry
// has no photo or no image store is configured.
func (t *Tracker) FoodPhoto(id string, w io.Writer) error {
	_, book, err := t.active()
	if err != nil {
		return err
	}
	if t.images == nil {
		return fmt.Errorf("no image store configured")
	}
	for _, log := range book.Logs() {
		for _, e := range log.Entries {
			if e.ID != id {
				continue
			}
			if e.ImageRef == "" {
				return fmt.Errorf("entry %s has no photo", id)
			}
			if err := t.images.Get(e.ImageRef, w); err != nil {
				return fmt.Errorf("reading photo for %s: %w", id, err)
			}
			return nil
		}
	}
	return fmt.Errorf("no entry with id %s", id)
}

func (t *Tracker) active() (*UserProfile, *Logbook, error) {
	profile, err := t.session.Current()
	if err != nil {
		return nil, nil, err
	}
	book, err := t.session.Logbook()
	if err != nil {
		return nil, nil, err
	}
	return profile, book, nil
}

// advisorContext describes the user's numbers for the chat coach.
func advisorContext(profile *UserProfile, book *Logbook) string {
	consumed := book.TodayLog().TotalCalories()
	limit := float64(profile.DailyCalorieLimit)

	type recentDay struct {
		Date     string   `json:"date"`
		Calories float64  `json:"calories"`
		Weight   *float64 `json:"weight,omitempty"`
	}
	logs := book.LogsNewestFirst()
	if len(logs) > advisorDays {
		logs = logs[:advisorDays]
	}
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Date < logs[j].Date })
	recent := make([]recentDay, len(logs))
	for i, log := range logs {
		recent[i] = recentDay{Date: log.Date, Calories: log.TotalCalories(), Weight: log.Weight}
	}
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		recentJSON = []byte("[]")
	}

	return fmt.Sprintf("User: %s, %d years old, %s, %.0f cm, current weight %.1f lbs, target weight %.1f lbs. "+
		"Daily Calorie Limit: %d. Consumed Today: %.0f. Remaining Calories: %.0f. Recent Logs Summary: %s",
		profile.Username, profile.Age, profile.Gender, profile.HeightCm, profile.CurrentWeight, profile.TargetWeight,
		profile.DailyCalorieLimit, consumed, limit-consumed, recentJSON)
}

// eatingHabits is a short description of what the user usually logs.
func eatingHabits(book *Logbook) string {
	var names []string
	for _, log := range book.LogsNewestFirst() {
		for _, e := range log.Entries {
			names = append(names, e.Name)
		}
	}
	if len(names) == 0 {
		return "New user"
	}
	habits := "User tends to eat " + strings.Join(names, ", ")
	if len(habits) > habitsMaxLength {
		n := habitsMaxLength
		for n > 0 && !utf8.RuneStart(habits[n]) {
			n--
		}
		habits = habits[:n]
	}
	return habits
}

// IsCollaboratorFailure reports whether err came from the AI collaborator,
// meaning the action can be retried later.
func IsCollaboratorFailure(err error) bool {
	return errors.Is(err, ErrCollaboratorUnavailable)
}
