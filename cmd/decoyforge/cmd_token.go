// Package main implements honeytoken ledger commands.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"decoyforge/internal/service"
	"decoyforge/internal/token"
)

var (
	tokenListDecoy string
	tokenListState string
	tokenListType  string
	tokenListJob   string
	tokenListLimit int
)

// tokenCmd manages the honeytoken ledger
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Inspect and manage the honeytoken ledger",
	Long: `Resolve observed credential values, list planted tokens, and drive the
token lifecycle.

Subcommands:
  lookup     - Resolve a credential value to its ledger record
  trigger    - Mark a token as triggered (first confirmed external use)
  deactivate - Retire a token, e.g. when its decoy is torn down
  list       - List tokens matching filters`,
}

var tokenLookupCmd = &cobra.Command{
	Use:   "lookup <value>",
	Short: "Resolve a credential value to its ledger record",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenLookup,
}

var tokenTriggerCmd = &cobra.Command{
	Use:   "trigger <token-id>",
	Short: "Mark a token as triggered",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenTrigger,
}

var tokenDeactivateCmd = &cobra.Command{
	Use:   "deactivate <token-id>",
	Short: "Deactivate a token",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenDeactivate,
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tokens matching filters",
	RunE:  runTokenList,
}

func init() {
	tokenListCmd.Flags().StringVar(&tokenListDecoy, "decoy", "", "Filter by decoy ID")
	tokenListCmd.Flags().StringVar(&tokenListState, "state", "", "Filter by state: active, deactivated, triggered")
	tokenListCmd.Flags().StringVar(&tokenListType, "type", "", "Filter by token type")
	tokenListCmd.Flags().StringVar(&tokenListJob, "job", "", "Filter by population job ID")
	tokenListCmd.Flags().IntVar(&tokenListLimit, "limit", 100, "Maximum records to return")

	tokenCmd.AddCommand(tokenLookupCmd)
	tokenCmd.AddCommand(tokenTriggerCmd)
	tokenCmd.AddCommand(tokenDeactivateCmd)
	tokenCmd.AddCommand(tokenListCmd)
}

func runTokenLookup(cmd *cobra.Command, args []string) error {
	svc, err := service.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	rec, err := svc.LookupHoneytoken(cmd.Context(), args[0])
	if errors.Is(err, token.ErrNotFound) {
		fmt.Println("No ledger record matches that value.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("🔑 Honeytoken")
	fmt.Println(strings.Repeat("─", 50))
	printRecord(rec)
	return nil
}

func runTokenTrigger(cmd *cobra.Command, args []string) error {
	svc, err := service.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.MarkHoneytokenTriggered(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Token %s marked triggered.\n", args[0])
	return nil
}

func runTokenDeactivate(cmd *cobra.Command, args []string) error {
	svc, err := service.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.DeactivateHoneytoken(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Token %s deactivated.\n", args[0])
	return nil
}

func runTokenList(cmd *cobra.Command, args []string) error {
	svc, err := service.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	records, err := svc.ListHoneytokens(cmd.Context(), token.Filter{
		Type:    token.Type(tokenListType),
		State:   token.State(tokenListState),
		DecoyID: tokenListDecoy,
		JobID:   tokenListJob,
		Limit:   tokenListLimit,
	})
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No tokens match.")
		return nil
	}

	fmt.Printf("🔑 Honeytokens (%d)\n", len(records))
	fmt.Println(strings.Repeat("─", 50))
	for i := range records {
		printRecord(&records[i])
		fmt.Println(strings.Repeat("─", 50))
	}
	return nil
}

func printRecord(rec *token.Record) {
	fmt.Printf("  ID:      %s\n", rec.ID)
	fmt.Printf("  Type:    %s\n", rec.Type)
	fmt.Printf("  State:   %s\n", rec.State)
	fmt.Printf("  Decoy:   %s\n", rec.DecoyID)
	fmt.Printf("  Path:    %s\n", rec.Path)
	fmt.Printf("  Job:     %s\n", rec.JobID)
	fmt.Printf("  Created: %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
	if rec.AccessedAt != nil {
		fmt.Printf("  Accessed: %s (%d lookups)\n", rec.AccessedAt.Format("2006-01-02 15:04:05"), rec.AccessCount)
	}
}
