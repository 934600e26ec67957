// package main provides the entry point for the scec-spog gateway, which aggregates
// SBOM package search results and enriches them with VEX vulnerability data.
package main

import "github.com/ortelius/scec-spog/cmd"

func main() {
	cmd.Execute()
}
