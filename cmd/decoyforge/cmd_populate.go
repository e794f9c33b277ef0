// Package main implements the populate command: deploying a full decoy
// filesystem from a profile.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"decoyforge/internal/populate"
	"decoyforge/internal/service"
)

var populateProfileName string

// populateCmd fills a decoy filesystem from a profile
var populateCmd = &cobra.Command{
	Use:   "populate <decoy-id>",
	Short: "Populate a decoy filesystem from a profile",
	Long: `Generates every file a profile asks for and deploys the results under
the configured output path with believable permissions and timestamps.

File-level failures do not abort the job; the report lists every outcome.

Example:
  decoyforge populate web-07 --profile web-server`,
	Args: cobra.ExactArgs(1),
	RunE: runPopulate,
}

func init() {
	populateCmd.Flags().StringVarP(&populateProfileName, "profile", "p", "developer-workstation", "Profile to deploy")
}

func runPopulate(cmd *cobra.Command, args []string) error {
	decoyID := args[0]

	svc, err := service.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	report, err := svc.PopulateDecoy(cmd.Context(), decoyID, populateProfileName)
	if err != nil {
		return err
	}

	fmt.Printf("🎭 Population Report: %s (%s)\n", report.DecoyID, report.Profile)
	fmt.Println(strings.Repeat("─", 60))
	for _, f := range report.Files {
		switch f.Status {
		case populate.FileDeployed:
			line := fmt.Sprintf("  ✓ %s (%#o, %s)", f.Path, f.Mode, f.ModTime.Format("2006-01-02 15:04"))
			if f.TokenID != "" {
				line += "  token=" + f.TokenID
			}
			fmt.Println(line)
		case populate.FileFailed:
			fmt.Printf("  ✗ %s: %s\n", f.Path, f.Error)
		default:
			fmt.Printf("  - %s: %s\n", f.Path, f.Status)
		}
	}
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Status: %s | deployed %d/%d | job %s | %s\n",
		report.Status, report.Deployed(), len(report.Files), report.JobID,
		report.Finished.Sub(report.Started).Round(10*time.Millisecond))
	fmt.Printf("Root: %s\n", report.Root)

	if report.Status == populate.StatusFailed {
		return fmt.Errorf("population failed: no files deployed")
	}
	return nil
}
