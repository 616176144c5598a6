package slim

import (
	"math"
	"time"
)

// DateLayout is the calendar-day key format used to partition logs.
const DateLayout = "2006-01-02"

// MacroNutrients are the six tracked nutritional quantities.
type MacroNutrients struct {
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Carbs         float64 `json:"carbs"`
	Fats          float64 `json:"fats"`
	SaturatedFats float64 `json:"saturatedFats"`
	Sugars        float64 `json:"sugars"`
}

// Validate rejects negative or non-finite quantities.
func (m MacroNutrients) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", m.Calories},
		{"protein", m.Protein},
		{"carbs", m.Carbs},
		{"fats", m.Fats},
		{"saturatedFats", m.SaturatedFats},
		{"sugars", m.Sugars},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return invalid(f.name, "must be a finite number")
		}
		if f.value < 0 {
			return invalid(f.name, "must not be negative")
		}
	}
	return nil
}

// Add returns the field-wise sum of m and o.
func (m MacroNutrients) Add(o MacroNutrients) MacroNutrients {
	return MacroNutrients{
		Calories:      m.Calories + o.Calories,
		Protein:       m.Protein + o.Protein,
		Carbs:         m.Carbs + o.Carbs,
		Fats:          m.Fats + o.Fats,
		SaturatedFats: m.SaturatedFats + o.SaturatedFats,
		Sugars:        m.Sugars + o.Sugars,
	}
}

// FoodEntry is a single confirmed food item. Entries are never mutated after
// creation, only removed by ID.
type FoodEntry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Macros    MacroNutrients `json:"macros"`
	Verdict   string         `json:"verdict,omitempty"`
	ImageRef  string         `json:"imageRef,omitempty"`
}

// Validate checks that the entry is well-formed enough to be logged.
func (e FoodEntry) Validate() error {
	if e.ID == "" {
		return invalid("id", "is required")
	}
	if e.Name == "" {
		return invalid("name", "is required")
	}
	return e.Macros.Validate()
}

// DailyAnalysis is the cached AI review of one day.
type DailyAnalysis struct {
	Verdict string   `json:"verdict"` // "Good Day", "Needs Improvement" or "Off Track"
	Summary string   `json:"summary"`
	Dos     []string `json:"dos"`
	Donts   []string `json:"donts"`
}

// Analysis verdicts accepted from the collaborator.
const (
	VerdictGoodDay          = "Good Day"
	VerdictNeedsImprovement = "Needs Improvement"
	VerdictOffTrack         = "Off Track"
)

// DailyLog holds everything recorded for one calendar day.
// At most one DailyLog exists per date per user.
type DailyLog struct {
	Date     string         `json:"date"` // YYYY-MM-DD
	Entries  []FoodEntry    `json:"entries"`
	Weight   *float64       `json:"weight,omitempty"`
	Notes    string         `json:"notes,omitempty"`
	Analysis *DailyAnalysis `json:"analysis,omitempty"`
}

// TotalMacros sums the macros of every entry in the log.
func (l *DailyLog) TotalMacros() MacroNutrients {
	var total MacroNutrients
	for _, e := range l.Entries {
		total = total.Add(e.Macros)
	}
	return total
}

// TotalCalories sums the calories of every entry in the log.
func (l *DailyLog) TotalCalories() float64 {
	return l.TotalMacros().Calories
}

// clone returns a deep copy so callers cannot mutate store state.
func (l *DailyLog) clone() *DailyLog {
	c := &DailyLog{
		Date:    l.Date,
		Entries: append([]FoodEntry{}, l.Entries...),
		Notes:   l.Notes,
	}
	if l.Weight != nil {
		w := *l.Weight
		c.Weight = &w
	}
	if l.Analysis != nil {
		a := *l.Analysis
		a.Dos = append([]string(nil), l.Analysis.Dos...)
		a.Donts = append([]string(nil), l.Analysis.Donts...)
		c.Analysis = &a
	}
	return c
}

// Gender selects the Mifflin-St Jeor constant.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// ParseGender accepts "male" or "female".
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case Male, Female:
		return Gender(s), nil
	default:
		return "", invalid("gender", "must be male or female")
	}
}

// ActivitySedentary is the only supported activity level.
const ActivitySedentary = "sedentary"

// UserProfile is the per-user record created at sign-up.
// DailyCalorieLimit is fixed at sign-up; check-ins only amend CurrentWeight.
type UserProfile struct {
	Username          string  `json:"username"`
	Age               int     `json:"age"`
	Gender            Gender  `json:"gender"`
	HeightCm          float64 `json:"heightCm"`
	CurrentWeight     float64 `json:"currentWeight"`
	TargetWeight      float64 `json:"targetWeight"`
	DailyCalorieLimit int     `json:"dailyCalorieLimit"`
	ActivityLevel     string  `json:"activityLevel"`
}

// Account is a credential-store record.
type Account struct {
	Username     string
	PasswordHash string
	Profile      UserProfile
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
