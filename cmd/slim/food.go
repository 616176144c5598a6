package main

import (
	"context"
	"fmt"
	"strings"

	"slimlog/internal/app"
	"slimlog/internal/slim"

	"github.com/spf13/cobra"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's calories, macros and entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "today", func(a *app.SlimApp) error {
			d, err := a.Tracker().Dashboard()
			if err != nil {
				return err
			}

			fmt.Printf("%s  %s\n\n", d.Date, d.Profile.Username)
			status := "left"
			if d.OverLimit {
				status = "over"
			}
			fmt.Printf("Calories  %.0f / %d  (%d%%, %.0f %s)\n",
				d.Consumed, d.Profile.DailyCalorieLimit, d.PercentConsumed, overOrLeft(d), status)
			fmt.Printf("Protein   %.0fg   Carbs %.0fg   Fats %.0fg\n", d.Totals.Protein, d.Totals.Carbs, d.Totals.Fats)
			fmt.Printf("Sat. fat  %.0fg   Sugars %.0fg\n", d.Totals.SaturatedFats, d.Totals.Sugars)
			if d.Weight != nil {
				fmt.Printf("Weight    %.1f lbs\n", *d.Weight)
			}
			if d.Notes != "" {
				fmt.Printf("Notes     %s\n", d.Notes)
			}

			if len(d.Entries) == 0 {
				fmt.Println("\nNothing logged yet.")
				return nil
			}
			fmt.Println()
			for _, e := range d.Entries {
				printEntry(e)
			}
			return nil
		})
	},
}

func overOrLeft(d *slim.Dashboard) float64 {
	if d.OverLimit {
		return d.Consumed - float64(d.Profile.DailyCalorieLimit)
	}
	return d.Remaining
}

func printEntry(e slim.FoodEntry) {
	photo := ""
	if e.ImageRef != "" {
		photo = "  [photo]"
	}
	fmt.Printf("%s  %s  %-30s %5.0f kcal%s\n", e.ID, e.Timestamp.Format("15:04"), e.Name, e.Macros.Calories, photo)
	if e.Verdict != "" {
		fmt.Printf("    %s\n", e.Verdict)
	}
}

func printMacros(m *slim.MacroNutrients) {
	fmt.Printf("  %.0f kcal  protein %.0fg  carbs %.0fg  fats %.0fg  sat. fat %.0fg  sugars %.0fg\n",
		m.Calories, m.Protein, m.Carbs, m.Fats, m.SaturatedFats, m.Sugars)
}

var addCmd = &cobra.Command{
	Use:   "add DESCRIPTION...",
	Short: "Log a food, answering follow-up questions until it is specific",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		photoPath, _ := cmd.Flags().GetString("photo")
		yes, _ := cmd.Flags().GetBool("yes")
		description := strings.Join(args, " ")

		return withApp(cmd, "add", func(a *app.SlimApp) error {
			photo, err := a.LoadPhoto(photoPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			req := slim.AssessFoodRequest{Description: description, Image: photo}
			assessment, err := a.Tracker().AssessFood(ctx, req)
			if err != nil {
				return err
			}

			for !assessment.Ready() {
				if len(assessment.ClarifyingQuestions) == 0 {
					return fmt.Errorf("could not identify the food; try a more detailed description")
				}
				fmt.Println("Need a bit more detail:")
				answers := make([]string, len(assessment.ClarifyingQuestions))
				for i, q := range assessment.ClarifyingQuestions {
					answer, err := readLine(fmt.Sprintf("  %s ", q))
					if err != nil {
						return err
					}
					if answer == "" {
						return errAborted
					}
					answers[i] = answer
				}
				req.PreviousQuestions = assessment.ClarifyingQuestions
				req.Answers = answers
				if assessment, err = a.Tracker().AssessFood(ctx, req); err != nil {
					return err
				}
			}

			fmt.Println(assessment.FoodName)
			printMacros(assessment.EstimatedMacros)
			if !yes {
				ok, err := confirm("Log it?", true)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			entry, err := a.Tracker().ConfirmFood(ctx, assessment, photo)
			if err != nil {
				return err
			}
			printEntry(*entry)
			return nil
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Delete a logged food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		return withApp(cmd, "remove", func(a *app.SlimApp) error {
			if !yes {
				ok, err := confirm(fmt.Sprintf("Delete entry %s?", args[0]), false)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			removed, err := a.Tracker().RemoveFood(args[0])
			if err != nil {
				return err
			}
			if removed {
				fmt.Println("Removed.")
			} else {
				fmt.Println("No such entry.")
			}
			return nil
		})
	},
}

var weighCmd = &cobra.Command{
	Use:   "weigh WEIGHT",
	Short: "Record today's weight in lbs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var weight float64
		if _, err := fmt.Sscanf(args[0], "%g", &weight); err != nil {
			return fmt.Errorf("invalid weight %q", args[0])
		}

		return withApp(cmd, "weigh", func(a *app.SlimApp) error {
			res, err := a.Tracker().CheckIn(weight)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %.1f lbs", res.Weight)
			if res.HasPrevious {
				fmt.Printf(" (%+.1f since last check-in)", res.Change)
			}
			fmt.Println()
			return nil
		})
	},
}

var noteCmd = &cobra.Command{
	Use:   "note TEXT...",
	Short: "Replace today's notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "note", func(a *app.SlimApp) error {
			return a.Tracker().SetNotes(strings.Join(args, " "))
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List logged days, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		showEntries, _ := cmd.Flags().GetBool("entries")

		return withApp(cmd, "history", func(a *app.SlimApp) error {
			days, err := a.Tracker().History()
			if err != nil {
				return err
			}
			if len(days) == 0 {
				fmt.Println("No history yet.")
				return nil
			}

			for _, d := range days {
				weight := ""
				if d.Weight != nil {
					weight = fmt.Sprintf("%.1f lbs", *d.Weight)
				}
				flag := ""
				if d.OverLimit {
					flag = "  OVER"
				}
				analyzed := ""
				if d.Analysis != nil {
					analyzed = "  " + d.Analysis.Verdict
				}
				fmt.Printf("%s  %2d items  %5.0f kcal  %-10s%s%s\n", d.Date, d.EntryCount, d.Calories, weight, flag, analyzed)
				if showEntries {
					for _, e := range d.Entries {
						fmt.Print("    ")
						printEntry(e)
					}
				}
			}
			return nil
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [DATE]",
	Short: "AI review of a day (YYYY-MM-DD, default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "analyze", func(a *app.SlimApp) error {
			date := ""
			if len(args) == 1 {
				date = args[0]
			} else {
				d, err := a.Tracker().Dashboard()
				if err != nil {
					return err
				}
				date = d.Date
			}

			analysis, err := a.Tracker().AnalyzeDay(context.Background(), date)
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n\n%s\n", date, analysis.Verdict, analysis.Summary)
			if len(analysis.Dos) > 0 {
				fmt.Println("\nDo:")
				for _, s := range analysis.Dos {
					fmt.Printf("  + %s\n", s)
				}
			}
			if len(analysis.Donts) > 0 {
				fmt.Println("\nDon't:")
				for _, s := range analysis.Donts {
					fmt.Printf("  - %s\n", s)
				}
			}
			return nil
		})
	},
}

func init() {
	addCmd.Flags().String("photo", "", "Path to a photo of the food")
	addCmd.Flags().BoolP("yes", "y", false, "Log without asking for confirmation")
	removeCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")
	historyCmd.Flags().BoolP("entries", "e", false, "Show each day's entries")

	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(weighCmd)
	rootCmd.AddCommand(noteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(analyzeCmd)
}
