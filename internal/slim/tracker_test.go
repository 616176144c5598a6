package slim_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"slimlog/internal/images"
	"slimlog/internal/slim"
	"slimlog/internal/testutil"
)

type trackerEnv struct {
	tracker *slim.Tracker
	session *slim.SessionManager
	ai      *testutil.FakeCollaborator
	images  *images.MemoryStore
	clock   *testutil.StubClock
}

// newTestTracker returns a tracker with "alice" (limit 1581) signed up.
func newTestTracker(t *testing.T) *trackerEnv {
	t.Helper()
	session, _, clock := newTestSession(t)
	if _, err := session.SignUp(aliceSignUp()); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	ai := testutil.NewFakeCollaborator()
	store := testutil.NewTestImageStore()
	tracker := slim.NewTracker(session, ai, store, testutil.NewStubIDGenerator(), clock, slim.NewNopLogger())
	return &trackerEnv{tracker: tracker, session: session, ai: ai, images: store, clock: clock}
}

func specific(name string, calories float64) *slim.FoodAssessment {
	return &slim.FoodAssessment{
		IsSpecific:      true,
		FoodName:        name,
		EstimatedMacros: &slim.MacroNutrients{Calories: calories, Protein: 20, Carbs: 30, Fats: 10, SaturatedFats: 2, Sugars: 5},
	}
}

func (e *trackerEnv) logFood(t *testing.T, name string, calories float64) *slim.FoodEntry {
	t.Helper()
	got, err := e.tracker.ConfirmFood(context.Background(), specific(name, calories), nil)
	if err != nil {
		t.Fatalf("ConfirmFood(%s) error = %v", name, err)
	}
	return got
}

func TestTracker_RequiresSession(t *testing.T) {
	session, _, clock := newTestSession(t)
	tracker := slim.NewTracker(session, testutil.NewFakeCollaborator(), nil, testutil.NewStubIDGenerator(), clock, slim.NewNopLogger())

	if _, err := tracker.Dashboard(); !errors.Is(err, slim.ErrNoSession) {
		t.Errorf("Dashboard() error = %v, want ErrNoSession", err)
	}
	if _, err := tracker.RemoveFood("x"); !errors.Is(err, slim.ErrNoSession) {
		t.Errorf("RemoveFood() error = %v, want ErrNoSession", err)
	}
	if _, err := tracker.Ask(context.Background(), nil, "hi"); !errors.Is(err, slim.ErrNoSession) {
		t.Errorf("Ask() error = %v, want ErrNoSession", err)
	}
}

func TestTracker_Dashboard(t *testing.T) {
	env := newTestTracker(t)
	env.logFood(t, "Oatmeal", 300)
	env.clock.Advance(time.Hour)
	env.logFood(t, "Burrito", 900)

	d, err := env.tracker.Dashboard()
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if d.Date != "2024-01-15" {
		t.Errorf("Date = %q", d.Date)
	}
	if d.Consumed != 1200 || d.Remaining != 381 {
		t.Errorf("Consumed/Remaining = %v/%v, want 1200/381", d.Consumed, d.Remaining)
	}
	if d.PercentConsumed != 76 {
		t.Errorf("PercentConsumed = %d, want 76", d.PercentConsumed)
	}
	if d.OverLimit {
		t.Error("OverLimit = true under the limit")
	}
	if len(d.Entries) != 2 || d.Entries[0].Name != "Burrito" {
		t.Errorf("Entries should be newest first: %+v", d.Entries)
	}
	if d.Totals.Protein != 40 {
		t.Errorf("Totals.Protein = %v, want 40", d.Totals.Protein)
	}
}

func TestTracker_DashboardOverLimit(t *testing.T) {
	env := newTestTracker(t)
	env.logFood(t, "Feast", 2000)

	d, err := env.tracker.Dashboard()
	if err != nil {
		t.Fatal(err)
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %v, want 0", d.Remaining)
	}
	if !d.OverLimit {
		t.Error("OverLimit = false over the limit")
	}
}

func TestTracker_AssessFood(t *testing.T) {
	t.Run("clarification round", func(t *testing.T) {
		env := newTestTracker(t)
		env.ai.Assessments = []*slim.FoodAssessment{
			{IsSpecific: false, ClarifyingQuestions: []string{"How was it cooked?", "How much?"}},
			specific("Fried rice, 1 cup", 340),
		}

		first, err := env.tracker.AssessFood(context.Background(), slim.AssessFoodRequest{Description: "rice"})
		if err != nil {
			t.Fatalf("AssessFood() error = %v", err)
		}
		if first.Ready() {
			t.Fatal("vague assessment should not be ready")
		}

		second, err := env.tracker.AssessFood(context.Background(), slim.AssessFoodRequest{
			Description:       "rice",
			PreviousQuestions: first.ClarifyingQuestions,
			Answers:           []string{"fried", "one cup"},
		})
		if err != nil {
			t.Fatalf("AssessFood() follow-up error = %v", err)
		}
		if !second.Ready() {
			t.Errorf("follow-up assessment = %+v, want ready", second)
		}
		if got := env.ai.AssessRequests[1].Answers; len(got) != 2 {
			t.Errorf("answers not forwarded: %v", got)
		}
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestTracker(t)
		var verr *slim.ValidationError
		if _, err := env.tracker.AssessFood(context.Background(), slim.AssessFoodRequest{Description: " "}); !errors.As(err, &verr) {
			t.Errorf("empty description error = %v, want ValidationError", err)
		}
		_, err := env.tracker.AssessFood(context.Background(), slim.AssessFoodRequest{
			Description: "rice", PreviousQuestions: []string{"a", "b"}, Answers: []string{"x"},
		})
		if !errors.As(err, &verr) {
			t.Errorf("partial answers error = %v, want ValidationError", err)
		}
	})

	t.Run("collaborator failure", func(t *testing.T) {
		env := newTestTracker(t)
		env.ai.AssessErr = slim.ErrCollaboratorUnavailable

		_, err := env.tracker.AssessFood(context.Background(), slim.AssessFoodRequest{Description: "rice"})
		if !slim.IsCollaboratorFailure(err) {
			t.Errorf("AssessFood() error = %v, want collaborator failure", err)
		}
	})
}

func TestTracker_ConfirmFood(t *testing.T) {
	t.Run("logs with verdict", func(t *testing.T) {
		env := newTestTracker(t)
		env.ai.Verdict = "Lean protein, great pick."

		got := env.logFood(t, "Chicken breast", 250)
		if got.ID != "id-1" || got.Verdict != "Lean protein, great pick." {
			t.Errorf("ConfirmFood() = %+v", got)
		}
		if !got.Timestamp.Equal(env.clock.Now()) {
			t.Errorf("Timestamp = %v, want %v", got.Timestamp, env.clock.Now())
		}
	})

	t.Run("verdict failure falls back to placeholder", func(t *testing.T) {
		env := newTestTracker(t)
		env.ai.VerdictErr = slim.ErrCollaboratorUnavailable

		got := env.logFood(t, "Donut", 450)
		if got.Verdict != slim.VerdictUnavailable {
			t.Errorf("Verdict = %q, want placeholder", got.Verdict)
		}
		d, _ := env.tracker.Dashboard()
		if len(d.Entries) != 1 {
			t.Errorf("entry was not logged despite verdict failure")
		}
	})

	t.Run("rejects vague assessment", func(t *testing.T) {
		env := newTestTracker(t)
		_, err := env.tracker.ConfirmFood(context.Background(), &slim.FoodAssessment{IsSpecific: false}, nil)
		var verr *slim.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("ConfirmFood() error = %v, want ValidationError", err)
		}
		if env.ai.VerdictCalls != 0 {
			t.Error("verdict requested for a rejected assessment")
		}
	})

	t.Run("stores photo", func(t *testing.T) {
		env := newTestTracker(t)
		photo := &slim.Image{MIMEType: "image/jpeg", Data: []byte("jpeg bytes")}

		got, err := env.tracker.ConfirmFood(context.Background(), specific("Salad", 180), photo)
		if err != nil {
			t.Fatal(err)
		}
		if got.ImageRef != slim.ImageKey(photo.Data) {
			t.Errorf("ImageRef = %q, want content key", got.ImageRef)
		}

		var buf bytes.Buffer
		if err := env.tracker.FoodPhoto(got.ID, &buf); err != nil {
			t.Fatalf("FoodPhoto() error = %v", err)
		}
		if buf.String() != "jpeg bytes" {
			t.Errorf("FoodPhoto() = %q", buf.String())
		}
	})
}

func TestTracker_FoodPhotoErrors(t *testing.T) {
	env := newTestTracker(t)
	e := env.logFood(t, "Toast", 100)

	if err := env.tracker.FoodPhoto(e.ID, &bytes.Buffer{}); err == nil {
		t.Error("FoodPhoto() for an entry without a photo expected error")
	}
	if err := env.tracker.FoodPhoto("nope", &bytes.Buffer{}); err == nil {
		t.Error("FoodPhoto() for an unknown entry expected error")
	}
}

func TestTracker_RemoveFood(t *testing.T) {
	env := newTestTracker(t)
	e := env.logFood(t, "Toast", 100)

	removed, err := env.tracker.RemoveFood("unknown")
	if err != nil || removed {
		t.Errorf("RemoveFood(unknown) = %v, %v, want false, nil", removed, err)
	}

	removed, err = env.tracker.RemoveFood(e.ID)
	if err != nil || !removed {
		t.Errorf("RemoveFood() = %v, %v, want true, nil", removed, err)
	}
	d, _ := env.tracker.Dashboard()
	if d.Consumed != 0 {
		t.Errorf("Consumed after remove = %v, want 0", d.Consumed)
	}
}

func TestTracker_CheckIn(t *testing.T) {
	env := newTestTracker(t)

	first, err := env.tracker.CheckIn(150)
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if first.HasPrevious {
		t.Errorf("first check-in reports a previous weight: %+v", first)
	}

	env.clock.AdvanceDays(1)
	if _, err := env.tracker.CheckIn(148); err != nil {
		t.Fatal(err)
	}
	env.clock.AdvanceDays(1)

	prev, ok, err := env.tracker.PreviousWeight()
	if err != nil || !ok || prev != 148 {
		t.Errorf("PreviousWeight() = %v, %v, %v, want 148", prev, ok, err)
	}

	third, err := env.tracker.CheckIn(147.5)
	if err != nil {
		t.Fatal(err)
	}
	if third.Previous != 148 || third.Change != -0.5 {
		t.Errorf("CheckIn() = %+v, want previous 148 change -0.5", third)
	}

	profile, _ := env.session.Current()
	if profile.CurrentWeight != 147.5 {
		t.Errorf("profile weight = %v, want 147.5", profile.CurrentWeight)
	}
	if profile.DailyCalorieLimit != 1581 {
		t.Errorf("check-in changed the calorie limit to %d", profile.DailyCalorieLimit)
	}
}

func TestTracker_SetNotes(t *testing.T) {
	env := newTestTracker(t)
	if err := env.tracker.SetNotes("skipped lunch"); err != nil {
		t.Fatal(err)
	}
	d, _ := env.tracker.Dashboard()
	if d.Notes != "skipped lunch" {
		t.Errorf("Notes = %q", d.Notes)
	}
}

func TestTracker_History(t *testing.T) {
	env := newTestTracker(t)
	env.logFood(t, "Feast", 2000)
	env.clock.AdvanceDays(1)
	env.logFood(t, "Salad", 300)

	days, err := env.tracker.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 2 {
		t.Fatalf("History() = %d days, want 2", len(days))
	}
	if days[0].Date != "2024-01-16" || days[0].OverLimit {
		t.Errorf("days[0] = %+v", days[0])
	}
	if days[1].Date != "2024-01-15" || !days[1].OverLimit || days[1].EntryCount != 1 {
		t.Errorf("days[1] = %+v", days[1])
	}
}

func TestTracker_AnalyzeDay(t *testing.T) {
	t.Run("generates once then caches", func(t *testing.T) {
		env := newTestTracker(t)
		env.logFood(t, "Salad", 300)
		env.ai.Analysis = &slim.DailyAnalysis{Verdict: slim.VerdictGoodDay, Summary: "Nice.", Dos: []string{"more water"}, Donts: []string{}}

		for i := 0; i < 2; i++ {
			got, err := env.tracker.AnalyzeDay(context.Background(), "2024-01-15")
			if err != nil {
				t.Fatalf("AnalyzeDay() error = %v", err)
			}
			if got.Summary != "Nice." {
				t.Errorf("AnalyzeDay() = %+v", got)
			}
		}
		if env.ai.AnalyzeCalls != 1 {
			t.Errorf("AnalyzeCalls = %d, want 1", env.ai.AnalyzeCalls)
		}

		days, _ := env.tracker.History()
		if days[0].Analysis == nil {
			t.Error("analysis was not cached on the log")
		}
	})

	t.Run("failure caches nothing", func(t *testing.T) {
		env := newTestTracker(t)
		env.logFood(t, "Salad", 300)
		env.ai.AnalysisErr = slim.ErrCollaboratorUnavailable

		if _, err := env.tracker.AnalyzeDay(context.Background(), "2024-01-15"); !slim.IsCollaboratorFailure(err) {
			t.Fatalf("AnalyzeDay() error = %v, want collaborator failure", err)
		}
		days, _ := env.tracker.History()
		if days[0].Analysis != nil {
			t.Error("failed analysis was cached")
		}
	})

	t.Run("rejects bad or empty days", func(t *testing.T) {
		env := newTestTracker(t)
		if err := env.tracker.SetNotes("weigh-in only"); err != nil {
			t.Fatal(err)
		}

		var verr *slim.ValidationError
		for _, date := range []string{"yesterday", "2020-01-01", "2024-01-15"} {
			if _, err := env.tracker.AnalyzeDay(context.Background(), date); !errors.As(err, &verr) {
				t.Errorf("AnalyzeDay(%q) error = %v, want ValidationError", date, err)
			}
		}
		if env.ai.AnalyzeCalls != 0 {
			t.Errorf("AnalyzeCalls = %d, want 0", env.ai.AnalyzeCalls)
		}
	})
}

func TestTracker_Ask(t *testing.T) {
	env := newTestTracker(t)
	env.logFood(t, "Oatmeal", 300)
	env.ai.ChatReply = "Try grilled fish."

	reply, err := env.tracker.Ask(context.Background(), []slim.ChatTurn{{Role: slim.RoleModel, Text: "Hi"}}, "What should I eat?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply != "Try grilled fish." {
		t.Errorf("Ask() = %q", reply)
	}

	ctx := env.ai.ChatContexts[0]
	for _, want := range []string{"Daily Calorie Limit: 1581", "Consumed Today: 300", "Remaining Calories: 1281", "2024-01-15"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("advisor context missing %q: %s", want, ctx)
		}
	}

	if _, err := env.tracker.Ask(context.Background(), nil, "  "); err == nil {
		t.Error("Ask() with blank message expected error")
	}
}

func TestTracker_AskUsesRecentDaysOnly(t *testing.T) {
	env := newTestTracker(t)
	for i := 0; i < 5; i++ {
		env.logFood(t, "Meal", 100)
		env.clock.AdvanceDays(1)
	}

	if _, err := env.tracker.Ask(context.Background(), nil, "How am I doing?"); err != nil {
		t.Fatal(err)
	}
	ctx := env.ai.ChatContexts[0]
	if strings.Contains(ctx, "2024-01-15") || strings.Contains(ctx, "2024-01-16") {
		t.Errorf("advisor context includes old days: %s", ctx)
	}
	if !strings.Contains(ctx, "2024-01-19") {
		t.Errorf("advisor context misses the latest day: %s", ctx)
	}
}

func TestTracker_Greeting(t *testing.T) {
	env := newTestTracker(t)
	env.logFood(t, "Oatmeal", 300)

	got, err := env.tracker.Greeting()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "alice") || !strings.Contains(got, "300 of your 1581") {
		t.Errorf("Greeting() = %q", got)
	}
}

func TestTracker_ShouldIEat(t *testing.T) {
	env := newTestTracker(t)
	env.logFood(t, "Lunch", 1000)
	env.ai.Evaluation = &slim.ChoiceEvaluation{Recommendation: slim.RecommendNo, Reason: "Too much."}

	got, err := env.tracker.ShouldIEat(context.Background(), "large pizza", nil)
	if err != nil {
		t.Fatalf("ShouldIEat() error = %v", err)
	}
	if got.Recommendation != slim.RecommendNo {
		t.Errorf("ShouldIEat() = %+v", got)
	}
	if ctx := env.ai.EvaluateRequests[0].UserContext; !strings.Contains(ctx, "Remaining: 581") {
		t.Errorf("UserContext = %q", ctx)
	}

	if _, err := env.tracker.ShouldIEat(context.Background(), "", nil); err == nil {
		t.Error("ShouldIEat() without food expected error")
	}
}

func TestTracker_SuggestSwap(t *testing.T) {
	photo := slim.Image{MIMEType: "image/jpeg", Data: []byte("burger")}

	t.Run("with illustration", func(t *testing.T) {
		env := newTestTracker(t)
		env.logFood(t, "Cheeseburger", 700)
		env.ai.Alternative = &slim.Alternative{OriginalFood: "Burger", HealthierAlternative: "Lettuce wrap", WhyItIsBetter: "Fewer carbs", CalorieDifference: 250}
		env.ai.GeneratedImage = &slim.Image{MIMEType: "image/png", Data: []byte("png")}

		got, err := env.tracker.SuggestSwap(context.Background(), photo)
		if err != nil {
			t.Fatalf("SuggestSwap() error = %v", err)
		}
		if got.Alternative.HealthierAlternative != "Lettuce wrap" || got.Image == nil {
			t.Errorf("SuggestSwap() = %+v", got)
		}
		if !strings.Contains(env.ai.Habits[0], "Cheeseburger") {
			t.Errorf("habits = %q", env.ai.Habits[0])
		}
	})

	t.Run("illustration failure is tolerated", func(t *testing.T) {
		env := newTestTracker(t)
		env.ai.Alternative = &slim.Alternative{OriginalFood: "Burger", HealthierAlternative: "Lettuce wrap", WhyItIsBetter: "Fewer carbs"}
		env.ai.GenerateErr = slim.ErrCollaboratorUnavailable

		got, err := env.tracker.SuggestSwap(context.Background(), photo)
		if err != nil {
			t.Fatalf("SuggestSwap() error = %v", err)
		}
		if got.Image != nil {
			t.Error("Image should be nil when generation fails")
		}
		if env.ai.Habits[0] != "New user" {
			t.Errorf("habits for an empty history = %q", env.ai.Habits[0])
		}
	})

	t.Run("habits are cut on a rune boundary", func(t *testing.T) {
		env := newTestTracker(t)
		for i := 0; i < 40; i++ {
			env.logFood(t, "aé", 10)
		}
		env.ai.Alternative = &slim.Alternative{OriginalFood: "Burger", HealthierAlternative: "Lettuce wrap", WhyItIsBetter: "Fewer carbs"}

		if _, err := env.tracker.SuggestSwap(context.Background(), photo); err != nil {
			t.Fatalf("SuggestSwap() error = %v", err)
		}
		habits := env.ai.Habits[0]
		if !utf8.ValidString(habits) {
			t.Errorf("habits are not valid UTF-8: tail %q", habits[len(habits)-4:])
		}
		if len(habits) > 200 || len(habits) < 198 {
			t.Errorf("len(habits) = %d, want just under 200", len(habits))
		}
	})

	t.Run("alternative failure", func(t *testing.T) {
		env := newTestTracker(t)
		env.ai.AlternativeErr = slim.ErrCollaboratorUnavailable
		if _, err := env.tracker.SuggestSwap(context.Background(), photo); !slim.IsCollaboratorFailure(err) {
			t.Errorf("SuggestSwap() error = %v, want collaborator failure", err)
		}
	})
}

func TestTracker_FixMeal(t *testing.T) {
	env := newTestTracker(t)
	env.ai.EditedImage = &slim.Image{MIMEType: "image/png", Data: []byte("edited")}
	photo := slim.Image{MIMEType: "image/png", Data: []byte("plate")}

	got, err := env.tracker.FixMeal(context.Background(), photo, "add a lemon slice")
	if err != nil {
		t.Fatalf("FixMeal() error = %v", err)
	}
	if string(got.Data) != "edited" {
		t.Errorf("FixMeal() = %q", got.Data)
	}
	if _, err := env.tracker.FixMeal(context.Background(), photo, ""); err == nil {
		t.Error("FixMeal() without instruction expected error")
	}
}

func TestTracker_WeeklyReport(t *testing.T) {
	t.Run("last seven days in date order", func(t *testing.T) {
		env := newTestTracker(t)
		for i := 0; i < 9; i++ {
			env.logFood(t, "Meal", float64(100*(i+1)))
			env.clock.AdvanceDays(1)
		}

		report, err := env.tracker.WeeklyReport(context.Background())
		if err != nil {
			t.Fatalf("WeeklyReport() error = %v", err)
		}
		if len(report.Points) != 7 {
			t.Fatalf("Points = %d, want 7", len(report.Points))
		}
		if report.Points[0].Date != "2024-01-17" || report.Points[6].Date != "2024-01-23" {
			t.Errorf("Points span %s..%s", report.Points[0].Date, report.Points[6].Date)
		}
		if report.Points[6].Calories != 900 {
			t.Errorf("last point calories = %v, want 900", report.Points[6].Calories)
		}
		if !report.SummaryAvailable || report.Summary != "A steady week." {
			t.Errorf("Summary = %q (available %v)", report.Summary, report.SummaryAvailable)
		}
		if got := len(env.ai.SummarizedLogs[0]); got != 7 {
			t.Errorf("summarized %d logs, want 7", got)
		}
	})

	t.Run("summary failure keeps the chart", func(t *testing.T) {
		env := newTestTracker(t)
		env.logFood(t, "Meal", 500)
		env.ai.SummaryErr = slim.ErrCollaboratorUnavailable

		report, err := env.tracker.WeeklyReport(context.Background())
		if err != nil {
			t.Fatalf("WeeklyReport() error = %v", err)
		}
		if report.SummaryAvailable || report.Summary != slim.SummaryUnavailable {
			t.Errorf("Summary = %q (available %v)", report.Summary, report.SummaryAvailable)
		}
		if len(report.Points) != 1 {
			t.Errorf("Points = %d, want 1", len(report.Points))
		}
	})
}

func TestTracker_OneRequestPerFlow(t *testing.T) {
	env := newTestTracker(t)
	env.ai.Block = make(chan struct{})
	env.ai.Entered = make(chan struct{}, 1)

	done := make(chan error, 1)
	go func() {
		_, err := env.tracker.Ask(context.Background(), nil, "first")
		done <- err
	}()
	<-env.ai.Entered

	if _, err := env.tracker.Ask(context.Background(), nil, "second"); !errors.Is(err, slim.ErrRequestInFlight) {
		t.Errorf("concurrent Ask() error = %v, want ErrRequestInFlight", err)
	}

	// Local mutations are never blocked by a pending request.
	if _, err := env.tracker.CheckIn(170); err != nil {
		t.Errorf("CheckIn() during pending chat error = %v", err)
	}

	close(env.ai.Block)
	if err := <-done; err != nil {
		t.Errorf("first Ask() error = %v", err)
	}

	if _, err := env.tracker.Ask(context.Background(), nil, "third"); err != nil {
		t.Errorf("Ask() after release error = %v", err)
	}
}
