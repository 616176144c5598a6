package main

import (
	"fmt"

	"slimlog/internal/app"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Write your logs to a passphrase-encrypted file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "export", func(a *app.SlimApp) error {
			if _, err := a.Session().Current(); err != nil {
				return err
			}
			passphrase, err := readNewSecret("Passphrase")
			if err != nil {
				return err
			}
			n, err := a.ExportTo(args[0], passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d days to %s\n", n, args[0])
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Replace your logs with an encrypted export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		return withApp(cmd, "import", func(a *app.SlimApp) error {
			profile, err := a.Session().Current()
			if err != nil {
				return err
			}
			if !yes {
				ok, err := confirm(fmt.Sprintf("This replaces every log of %s. Continue?", profile.Username), false)
				if err != nil {
					return err
				}
				if !ok {
					return errAborted
				}
			}
			passphrase, err := readSecret("Passphrase: ")
			if err != nil {
				return err
			}
			n, err := a.ImportFrom(args[0], passphrase)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d days\n", n)
			return nil
		})
	},
}

func init() {
	importCmd.Flags().BoolP("yes", "y", false, "Replace without asking for confirmation")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
