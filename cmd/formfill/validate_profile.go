package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/formfill/internal/profile"
	"github.com/jonathan/formfill/internal/schemas"
)

var validateProfileCommand = &cobra.Command{
	Use:   "validate-profile",
	Short: "Check a profile document against the profile schema",
	Long: `Validates the profile (JSON or YAML) against the embedded profile schema and
the field rules, and optionally against an extra JSON Schema file.`,
	Args: cobra.NoArgs,
	RunE: runValidateProfile,
}

var (
	validateIn     string
	validateSchema string
)

func init() {
	validateProfileCommand.Flags().StringVarP(&validateIn, "in", "i", "", "Profile to validate (defaults to --profile)")
	validateProfileCommand.Flags().StringVar(&validateSchema, "schema", "", "Additional JSON Schema file to check a JSON profile against")

	rootCmd.AddCommand(validateProfileCommand)
}

func runValidateProfile(cmd *cobra.Command, _ []string) error {
	path := validateIn
	if path == "" {
		path = settings.Profile
	}
	out := cmd.OutOrStdout()

	if validateSchema != "" {
		if profile.FormatFor(path) != profile.FormatJSON {
			return fmt.Errorf("--schema only applies to JSON profiles")
		}
		if err := schemas.ValidateJSON(validateSchema, path); err != nil {
			_, _ = fmt.Fprintf(out, "Validation failed: %s\n", path)
			return err
		}
	}

	p, err := profile.Load(path)
	if err != nil {
		var verr *profile.ValidationError
		if errors.As(err, &verr) {
			_, _ = fmt.Fprintf(out, "Validation failed: %s\n", path)
			for _, f := range verr.Fields {
				_, _ = fmt.Fprintf(out, "  - %s\n", f)
			}
		}
		return err
	}

	_, _ = fmt.Fprintf(out, "Validation passed: %s (%s, %d positions, %d projects)\n",
		path, p.FullName(), len(p.WorkExperience), len(p.Projects))
	return nil
}
