// Package main implements the generate command: producing a single validated
// artifact outside any population job.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"decoyforge/internal/generate"
	"decoyforge/internal/service"
	"decoyforge/internal/token"
)

var (
	genDecoyID     string
	genContentType string
	genFileType    string
	genPurpose     string
	genTokenType   string
	genOutput      string
)

// generateCmd produces one artifact
var generateCmd = &cobra.Command{
	Use:   "generate <path>",
	Short: "Generate a single validated decoy artifact",
	Long: `Runs one content request through the full generate-validate loop and
prints the accepted artifact to stdout (or writes it with --output).

The path argument is the pretended deployment path; it shapes the prompt
and, for honeytokens, is recorded in the ledger.

Examples:
  decoyforge generate /opt/app/sync.py --content-type source-code --file-type python
  decoyforge generate /home/dev/.aws/credentials --content-type honeytoken --token-type access-key`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genDecoyID, "decoy", "adhoc", "Decoy ID to attribute the artifact to")
	generateCmd.Flags().StringVar(&genContentType, "content-type", generate.ContentSourceCode, "Content type: source-code, config, log, document, honeytoken")
	generateCmd.Flags().StringVar(&genFileType, "file-type", "", "File type hint, e.g. python, nginx-config, application-log")
	generateCmd.Flags().StringVar(&genPurpose, "purpose", "", "Free-form purpose for the prompt")
	generateCmd.Flags().StringVar(&genTokenType, "token-type", "", "Honeytoken type when content-type is honeytoken")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write the artifact to this file instead of stdout")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	svc, err := service.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.GenerateArtifact(cmd.Context(), genDecoyID, generate.Request{
		ContentType: genContentType,
		FileType:    genFileType,
		Path:        args[0],
		Purpose:     genPurpose,
		TokenType:   token.Type(genTokenType),
	})
	if err != nil {
		return err
	}

	if genOutput != "" {
		if err := os.WriteFile(genOutput, []byte(res.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Printf("Wrote %d bytes to %s (%d attempt(s))\n", len(res.Content), genOutput, res.Attempts)
	} else {
		fmt.Print(res.Content)
		if res.Content != "" && res.Content[len(res.Content)-1] != '\n' {
			fmt.Println()
		}
	}

	if res.Token != nil {
		fmt.Fprintf(os.Stderr, "Minted honeytoken %s (%s)\n", res.Token.ID, res.Token.Type)
	}
	return nil
}
