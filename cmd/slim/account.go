package main

import (
	"errors"
	"fmt"

	"slimlog/internal/app"
	"slimlog/internal/slim"

	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup USERNAME",
	Short: "Create an account and compute your daily calorie goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetInt("age")
		genderFlag, _ := cmd.Flags().GetString("gender")
		height, _ := cmd.Flags().GetFloat64("height")
		weight, _ := cmd.Flags().GetFloat64("weight")

		gender, err := slim.ParseGender(genderFlag)
		if err != nil {
			return err
		}

		return withApp(cmd, "signup", func(a *app.SlimApp) error {
			password, err := readNewSecret("Password")
			if err != nil {
				return err
			}

			profile, err := a.Session().SignUp(slim.SignUpRequest{
				Username:  args[0],
				Password:  password,
				Age:       age,
				Gender:    gender,
				HeightCm:  height,
				WeightLbs: weight,
			})
			if errors.Is(err, slim.ErrDuplicateUser) {
				return fmt.Errorf("username %q is taken", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Printf("Welcome, %s!\n", profile.Username)
			fmt.Printf("Daily calorie goal: %d kcal\n", profile.DailyCalorieLimit)
			fmt.Printf("Target weight:      %.1f lbs\n", profile.TargetWeight)
			return nil
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "login", func(a *app.SlimApp) error {
			password, err := readSecret("Password: ")
			if err != nil {
				return err
			}

			profile, err := a.Session().LogIn(args[0], password)
			switch {
			case errors.Is(err, slim.ErrUserNotFound), errors.Is(err, slim.ErrBadCredential):
				return fmt.Errorf("login failed: %w", err)
			case err != nil:
				return err
			}

			fmt.Printf("Logged in as %s (goal %d kcal)\n", profile.Username, profile.DailyCalorieLimit)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "logout", func(a *app.SlimApp) error {
			if err := a.Session().LogOut(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "whoami", func(a *app.SlimApp) error {
			p, err := a.Session().Current()
			if err != nil {
				return err
			}
			fmt.Printf("User:           %s\n", p.Username)
			fmt.Printf("Age:            %d\n", p.Age)
			fmt.Printf("Gender:         %s\n", p.Gender)
			fmt.Printf("Height:         %.0f cm\n", p.HeightCm)
			fmt.Printf("Current weight: %.1f lbs\n", p.CurrentWeight)
			fmt.Printf("Target weight:  %.1f lbs\n", p.TargetWeight)
			fmt.Printf("Daily goal:     %d kcal (%s)\n", p.DailyCalorieLimit, p.ActivityLevel)
			return nil
		})
	},
}

func init() {
	signupCmd.Flags().Int("age", 0, "Age in years")
	signupCmd.Flags().String("gender", "", "male or female")
	signupCmd.Flags().Float64("height", 0, "Height in cm")
	signupCmd.Flags().Float64("weight", 0, "Current weight in lbs")
	for _, name := range []string{"age", "gender", "height", "weight"} {
		signupCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
