package slim

import "math"

const (
	poundsToKg         = 0.453592
	sedentaryFactor    = 1.2
	weightLossDeficit  = 500
	MinimumCalorieGoal = 1200
	defaultLossTarget  = 10
)

// CalorieTarget computes the daily calorie goal using the Mifflin-St Jeor
// equation, a sedentary activity multiplier and a 500 kcal deficit.
// The result never drops below MinimumCalorieGoal.
func CalorieTarget(weightLbs, heightCm float64, age int, gender Gender) (int, error) {
	if !(weightLbs > 0) || math.IsInf(weightLbs, 0) {
		return 0, invalid("weight", "must be a positive number")
	}
	if !(heightCm > 0) || math.IsInf(heightCm, 0) {
		return 0, invalid("height", "must be a positive number")
	}
	if age <= 0 {
		return 0, invalid("age", "must be a positive number")
	}

	weightKg := weightLbs * poundsToKg
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch gender {
	case Male:
		bmr += 5
	case Female:
		bmr -= 161
	default:
		return 0, invalid("gender", "must be male or female")
	}

	tdee := bmr * sedentaryFactor
	// Round half up, matching the way the goal has always been displayed.
	target := int(math.Floor(tdee - weightLossDeficit + 0.5))
	if target < MinimumCalorieGoal {
		return MinimumCalorieGoal, nil
	}
	return target, nil
}

// DefaultTargetWeight is the goal weight assigned at sign-up.
func DefaultTargetWeight(currentWeight float64) float64 {
	return currentWeight - defaultLossTarget
}
