package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"apidrift/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "apidrift",
	Short: "API surface comparison tool",
	Long:  `apidrift compares two versions of an API surface and reports classified differences`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the --color flag against the output terminal.
func colorEnabled(mode string, out *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(out)
}
