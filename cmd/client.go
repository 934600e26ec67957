package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/ortelius/scec-spog/model"
	"github.com/spf13/cobra"
)

var (
	searchOffset int
	searchLimit  int
	outputFile   string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search packages through the gateway",
	Long:  `Lists the packages matching the query with their dependents and vulnerabilities.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Fetch an SBOM document through the gateway",
	Long:  `Downloads the SBOM document with the given id and writes it to stdout or a file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(getCmd)

	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Number of backend results to skip")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of backend results")
	getCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write SBOM to file (optional)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	q := ""
	if len(args) == 1 {
		q = args[0]
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("offset", strconv.Itoa(searchOffset))
	params.Set("limit", strconv.Itoa(searchLimit))

	resp, err := http.Get(serverURL + "/api/v1/package/search?" + params.Encode())
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var result model.SearchResult[[]model.PackageSummary]
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printPackages(cmd.OutOrStdout(), result.Result)
	return nil
}

func printPackages(w io.Writer, packages []model.PackageSummary) {
	fmt.Fprintf(w, "Found %d package(s):\n\n", len(packages))
	fmt.Fprintf(w, "%-60s %-10s %s\n", "PURL", "USED BY", "VULNERABILITIES")
	fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, pkg := range packages {
		vulns := strings.Join(pkg.Vulnerabilities, ", ")
		if vulns == "" {
			vulns = "-"
		}
		fmt.Fprintf(w, "%-60s %-10d %s\n", pkg.Purl, len(pkg.Dependents), vulns)
		if verbose {
			fmt.Fprintf(w, "    dependents: %s\n", strings.Join(pkg.Dependents, ", "))
		}
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	params := url.Values{}
	params.Set("id", args[0])

	resp, err := http.Get(serverURL + "/api/v1/package?" + params.Encode())
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("SBOM not found: %s", args[0])
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	out := cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write SBOM: %w", err)
	}
	if outputFile != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "SBOM written to: %s\n", outputFile)
	}
	return nil
}
