package cmd

import (
	"context"
	"fmt"

	"github.com/ortelius/scec-spog/database"
	"github.com/ortelius/scec-spog/vex"
	"github.com/spf13/cobra"
)

var vexFile string

// vexCmd groups the VEX document commands
var vexCmd = &cobra.Command{
	Use:   "vex",
	Short: "Manage the VEX documents stored in ArangoDB",
}

// vexImportCmd represents the vex import command
var vexImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import VEX documents from a YAML or JSON file",
	Long: `Reads VEX documents from a file and upserts them into the vex collection,
keyed by advisory. Connection settings come from ARANGO_* environment variables.`,
	RunE: runVexImport,
}

// vexLookupCmd represents the vex lookup command
var vexLookupCmd = &cobra.Command{
	Use:   "lookup [purl]",
	Short: "List the stored advisories affecting a package URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runVexLookup,
}

func init() {
	rootCmd.AddCommand(vexCmd)
	vexCmd.AddCommand(vexImportCmd)
	vexCmd.AddCommand(vexLookupCmd)

	vexImportCmd.Flags().StringVarP(&vexFile, "file", "f", "", "Path to VEX documents file (required)")
	vexImportCmd.MarkFlagRequired("file")
}

func runVexImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	docs, err := vex.FileLoader{Path: vexFile}.Documents(ctx)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d VEX document(s) from %s\n", len(docs), vexFile)
	}

	conn, err := database.InitializeDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to ArangoDB: %w", err)
	}

	if err := (database.VexStore{Conn: conn}).SaveDocuments(ctx, docs); err != nil {
		return fmt.Errorf("failed to save VEX documents: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d VEX document(s)\n", len(docs))
	return nil
}

func runVexLookup(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	conn, err := database.InitializeDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to ArangoDB: %w", err)
	}

	advisories, err := (database.VexStore{Conn: conn}).FindAdvisoriesByPurl(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Found %d advisory(ies) affecting %s\n", len(advisories), args[0])
	for _, advisory := range advisories {
		fmt.Fprintln(cmd.OutOrStdout(), advisory)
	}
	return nil
}
