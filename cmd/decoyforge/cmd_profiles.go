// Package main implements profile inspection commands.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"decoyforge/internal/populate"
)

// profilesCmd inspects population profiles
var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List and inspect population profiles",
	RunE:  runProfilesList,
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a profile's file plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesShow,
}

func init() {
	profilesCmd.AddCommand(profilesShowCmd)
}

// newRegistry loads builtins plus the configured profile directory. The
// profile commands do not need a provider client or store.
func newRegistry() (*populate.Registry, error) {
	r, err := populate.NewRegistry()
	if err != nil {
		return nil, err
	}
	if dir := cfg.Populate.ProfileDir; dir != "" {
		if err := r.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	r, err := newRegistry()
	if err != nil {
		return err
	}

	fmt.Println("📋 Population Profiles")
	fmt.Println(strings.Repeat("─", 50))
	for _, name := range r.Names() {
		p, err := r.Get(name)
		if err != nil {
			return err
		}
		fmt.Printf("  %-24s %2d files  %s\n", name, len(p.Files), p.Description)
	}
	fmt.Println(strings.Repeat("─", 50))
	fmt.Println("\nUse: decoyforge profiles show <name>")
	return nil
}

func runProfilesShow(cmd *cobra.Command, args []string) error {
	r, err := newRegistry()
	if err != nil {
		return err
	}
	p, err := r.Get(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("📋 %s\n", p.Name)
	if p.Description != "" {
		fmt.Println(p.Description)
	}
	fmt.Println(strings.Repeat("─", 60))
	for _, e := range p.Files {
		line := fmt.Sprintf("  %-36s %s", e.Path, e.ContentType)
		if e.ContentType == "honeytoken" {
			line += "/" + string(e.TokenType)
		} else if e.FileType != "" {
			line += "/" + e.FileType
		}
		if e.After != "" {
			line += "  (after " + e.After + ")"
		}
		fmt.Println(line)
	}
	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("Total: %d files\n", len(p.Files))
	return nil
}
