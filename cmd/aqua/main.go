// Command aqua is the CLI surface over the coordination kernel (spec.md
// §1 "Out of scope: the CLI surface and terminal rendering" is the core's
// framing — this binary is the external collaborator that framing refers
// to). It opens the store lazily per invocation and closes it at exit,
// never holding a long-lived daemon (spec.md §2 "there is no long-lived
// coordinator process").
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/debug"
	"github.com/aquacoord/aqua/internal/render"
)

// version is set via -ldflags at release build time; "dev" otherwise,
// matching the teacher's cmd/bd Version var convention.
var version = "dev"

var (
	dbFlag      string
	verboseFlag bool
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "aqua",
	Short: "aqua - a local coordinator for multiple CLI AI agents sharing one codebase",
	Long: `Aqua lets several independently-running CLI AI agent processes share a
single codebase by serializing access to a work queue, electing a leader,
and recovering from crashes. All coordination state lives in one embedded
database inside the project's .aqua/ directory; no coordinator daemon is
required ("aqua daemon" is only an optional recovery loop).`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("aqua version %s\n", version)
			return
		}
		_ = cmd.Help()
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
		render.JSONMode = jsonOutput
		render.QuietMode = quietFlag
	},
}

var jsonOutput bool

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to the .aqua directory (default: auto-discover upward from cwd)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit structured JSON output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug diagnostics")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "suppress non-essential output")
	rootCmd.Flags().BoolP("version", "V", false, "print version information")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
