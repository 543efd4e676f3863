// Command geofix is the CLI entry point: detect, fix, and audit
// subcommands over internal/cmd's cobra command tree.
package main

import "github.com/geofix-project/geofix-core/internal/cmd"

func main() {
	cmd.Execute()
}
