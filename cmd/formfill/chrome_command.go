package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/formfill/internal/browser"
)

var chromeCommand = &cobra.Command{
	Use:   "chrome-command",
	Short: "Print the command that starts Chrome with remote debugging",
	Long: `Prints a shell command that starts Chrome on your normal profile with remote
debugging enabled, so fill can use the browser you are already signed in to.
Close every Chrome window before running it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		execPath := settings.Browser.ExecPath
		if execPath == "" {
			execPath = browser.FindChrome()
		}
		userDataDir := settings.Browser.UserDataDir
		if userDataDir == "" && settings.Browser.UseExistingProfile {
			userDataDir = browser.DefaultUserDataDir()
		}

		out := cmd.OutOrStdout()
		if execPath == "" {
			_, _ = fmt.Fprintln(out, "# Chrome was not found; replace google-chrome with its path")
		}
		_, _ = fmt.Fprintln(out, browser.ChromeCommand(execPath, browser.DebugPort(settings.Browser.DebugURL), userDataDir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chromeCommand)
}
