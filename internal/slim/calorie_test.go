package slim_test

import (
	"errors"
	"math"
	"testing"

	"slimlog/internal/slim"
)

func TestCalorieTarget(t *testing.T) {
	tests := []struct {
		name      string
		weightLbs float64
		heightCm  float64
		age       int
		gender    slim.Gender
		want      int
	}{
		{name: "male above floor", weightLbs: 180, heightCm: 170, age: 30, gender: slim.Male, want: 1581},
		{name: "female clamped to floor", weightLbs: 100, heightCm: 150, age: 25, gender: slim.Female, want: 1200},
		{name: "female above floor", weightLbs: 200, heightCm: 175, age: 40, gender: slim.Female, want: 1468},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := slim.CalorieTarget(tt.weightLbs, tt.heightCm, tt.age, tt.gender)
			if err != nil {
				t.Fatalf("CalorieTarget() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CalorieTarget() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalorieTarget_NeverBelowFloor(t *testing.T) {
	for _, gender := range []slim.Gender{slim.Male, slim.Female} {
		for weight := 60.0; weight <= 400; weight += 20 {
			for height := 120.0; height <= 210; height += 15 {
				for age := 18; age <= 90; age += 8 {
					got, err := slim.CalorieTarget(weight, height, age, gender)
					if err != nil {
						t.Fatalf("CalorieTarget(%v, %v, %d, %s) error = %v", weight, height, age, gender, err)
					}
					if got < slim.MinimumCalorieGoal {
						t.Fatalf("CalorieTarget(%v, %v, %d, %s) = %d, below %d", weight, height, age, gender, got, slim.MinimumCalorieGoal)
					}
				}
			}
		}
	}
}

func TestCalorieTarget_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		weightLbs float64
		heightCm  float64
		age       int
		gender    slim.Gender
		field     string
	}{
		{name: "zero weight", weightLbs: 0, heightCm: 170, age: 30, gender: slim.Male, field: "weight"},
		{name: "NaN weight", weightLbs: math.NaN(), heightCm: 170, age: 30, gender: slim.Male, field: "weight"},
		{name: "negative height", weightLbs: 150, heightCm: -1, age: 30, gender: slim.Male, field: "height"},
		{name: "infinite height", weightLbs: 150, heightCm: math.Inf(1), age: 30, gender: slim.Male, field: "height"},
		{name: "zero age", weightLbs: 150, heightCm: 170, age: 0, gender: slim.Female, field: "age"},
		{name: "unknown gender", weightLbs: 150, heightCm: 170, age: 30, gender: "other", field: "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := slim.CalorieTarget(tt.weightLbs, tt.heightCm, tt.age, tt.gender)
			var verr *slim.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("CalorieTarget() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestParseGender(t *testing.T) {
	if g, err := slim.ParseGender("female"); err != nil || g != slim.Female {
		t.Errorf("ParseGender(female) = %q, %v", g, err)
	}
	if _, err := slim.ParseGender("Female"); err == nil {
		t.Error("ParseGender(Female) expected error")
	}
}

func TestDefaultTargetWeight(t *testing.T) {
	if got := slim.DefaultTargetWeight(180); got != 170 {
		t.Errorf("DefaultTargetWeight(180) = %v, want 170", got)
	}
}
