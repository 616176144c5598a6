package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"slimlog/internal/app"
	"slimlog/internal/slim"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [QUESTION...]",
	Short: "Chat with the nutrition advisor",
	Long: `Chat with the nutrition advisor. With a question, prints one answer.
Without one, starts a conversation; type "exit" or press Ctrl-D to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "ask", func(a *app.SlimApp) error {
			ctx := context.Background()
			t := a.Tracker()

			if len(args) > 0 {
				reply, err := t.Ask(ctx, nil, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Println(reply)
				return nil
			}

			greeting, err := t.Greeting()
			if err != nil {
				return err
			}
			fmt.Println(greeting)

			var history []slim.ChatTurn
			for {
				msg, err := readLine("> ")
				if errors.Is(err, errAborted) {
					fmt.Println()
					return nil
				}
				if err != nil {
					return err
				}
				if msg == "" {
					continue
				}
				if msg == "exit" || msg == "quit" {
					return nil
				}

				reply, err := t.Ask(ctx, history, msg)
				if err != nil {
					if slim.IsCollaboratorFailure(err) {
						fmt.Println("The advisor is unavailable right now. Try again in a moment.")
						continue
					}
					return err
				}
				fmt.Println(reply)
				history = append(history,
					slim.ChatTurn{Role: slim.RoleUser, Text: msg},
					slim.ChatTurn{Role: slim.RoleModel, Text: reply},
				)
			}
		})
	},
}

var eatCmd = &cobra.Command{
	Use:   "eat DESCRIPTION...",
	Short: "Ask whether you should eat something",
	RunE: func(cmd *cobra.Command, args []string) error {
		photoPath, _ := cmd.Flags().GetString("photo")
		if len(args) == 0 && photoPath == "" {
			return fmt.Errorf("describe the food or pass --photo")
		}

		return withApp(cmd, "eat", func(a *app.SlimApp) error {
			photo, err := a.LoadPhoto(photoPath)
			if err != nil {
				return err
			}
			eval, err := a.Tracker().ShouldIEat(context.Background(), strings.Join(args, " "), photo)
			if err != nil {
				return err
			}
			fmt.Printf("%s. %s\n", eval.Recommendation, eval.Reason)
			return nil
		})
	},
}

var swapCmd = &cobra.Command{
	Use:   "swap PHOTO",
	Short: "Suggest a healthier alternative for a pictured food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		return withApp(cmd, "swap", func(a *app.SlimApp) error {
			photo, err := a.LoadPhoto(args[0])
			if err != nil {
				return err
			}
			res, err := a.Tracker().SuggestSwap(context.Background(), *photo)
			if err != nil {
				return err
			}

			alt := res.Alternative
			fmt.Printf("Instead of %s, try %s.\n", alt.OriginalFood, alt.HealthierAlternative)
			fmt.Println(alt.WhyItIsBetter)
			fmt.Printf("Saves about %.0f kcal.\n", alt.CalorieDifference)

			switch {
			case res.Image == nil:
				fmt.Println("(no picture available)")
			case out == "":
				fmt.Println("Pass --out to save a picture of it.")
			default:
				if err := a.SavePhoto(res.Image, out); err != nil {
					return err
				}
				fmt.Printf("Picture saved to %s\n", out)
			}
			return nil
		})
	},
}

var fixCmd = &cobra.Command{
	Use:   "fix PHOTO INSTRUCTION...",
	Short: "Edit a meal photo, e.g. \"swap the fries for a salad\"",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			return fmt.Errorf("--out is required")
		}

		return withApp(cmd, "fix", func(a *app.SlimApp) error {
			photo, err := a.LoadPhoto(args[0])
			if err != nil {
				return err
			}
			img, err := a.Tracker().FixMeal(context.Background(), *photo, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if err := a.SavePhoto(img, out); err != nil {
				return err
			}
			fmt.Printf("Edited meal saved to %s\n", out)
			return nil
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Weekly calories and weight with an AI summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "report", func(a *app.SlimApp) error {
			r, err := a.Tracker().WeeklyReport(context.Background())
			if err != nil {
				return err
			}
			if len(r.Points) == 0 {
				fmt.Println("No logged days yet.")
				return nil
			}

			var peak float64
			for _, p := range r.Points {
				peak = max(peak, p.Calories)
			}
			for _, p := range r.Points {
				bar := 0
				if peak > 0 {
					bar = int(p.Calories / peak * 40)
				}
				weight := ""
				if p.Weight != nil {
					weight = fmt.Sprintf("  %.1f lbs", *p.Weight)
				}
				fmt.Printf("%s %5.0f %s%s\n", p.Date, p.Calories, strings.Repeat("#", bar), weight)
			}

			fmt.Println()
			fmt.Println(r.Summary)
			return nil
		})
	},
}

var photoCmd = &cobra.Command{
	Use:   "photo ID PATH",
	Short: "Save the stored photo of a logged food",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "photo", func(a *app.SlimApp) error {
			if err := a.WriteFoodPhoto(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Saved to %s\n", args[1])
			return nil
		})
	},
}

func init() {
	eatCmd.Flags().String("photo", "", "Path to a photo of the food")
	swapCmd.Flags().StringP("out", "o", "", "Write the picture of the alternative here")
	fixCmd.Flags().StringP("out", "o", "", "Write the edited photo here")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(eatCmd)
	rootCmd.AddCommand(swapCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(photoCmd)
}
