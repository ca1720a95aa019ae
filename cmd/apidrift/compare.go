package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"apidrift/internal/archive"
	"apidrift/internal/basic"
	"apidrift/internal/engine"
	"apidrift/internal/ext"
	"apidrift/internal/jsondoc"
	"apidrift/internal/match"
	"apidrift/internal/pipeline"
	"apidrift/internal/report"
	"apidrift/internal/transform"
)

var compareCmd = &cobra.Command{
	Use:   "compare [flags]",
	Short: "Compare two sets of API artifacts",
	Long:  `Compare the old and new artifact sets and report classified differences between their API surfaces`,
	Args:  cobra.NoArgs,
	RunE:  runCompare,
}

func init() {
	compareCmd.Flags().StringArray("old", nil, "old-side artifact (repeatable)")
	compareCmd.Flags().StringArray("new", nil, "new-side artifact (repeatable)")
	compareCmd.Flags().StringArray("old-supplementary", nil, "old-side supplementary artifact (repeatable)")
	compareCmd.Flags().StringArray("new-supplementary", nil, "new-side supplementary artifact (repeatable)")
	compareCmd.Flags().String("config", "", "pipeline configuration file (json|yaml|toml)")
	compareCmd.Flags().String("format", "text", "output format (text|json|msgpack)")
	compareCmd.Flags().String("output", "", "write the report to a file instead of stdout")
	compareCmd.Flags().String("fail-at", "error", "lowest criticality that fails the run (empty=never)")
	compareCmd.Flags().Bool("prune", false, "prune supplementary elements unreachable from the API")
	compareCmd.Flags().Bool("ui", false, "show live progress while comparing")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	oldPaths, err := cmd.Flags().GetStringArray("old")
	if err != nil {
		return fmt.Errorf("failed to get old flag: %w", err)
	}
	newPaths, err := cmd.Flags().GetStringArray("new")
	if err != nil {
		return fmt.Errorf("failed to get new flag: %w", err)
	}
	if len(oldPaths) == 0 || len(newPaths) == 0 {
		return fmt.Errorf("both --old and --new artifacts are required")
	}
	oldSupp, _ := cmd.Flags().GetStringArray("old-supplementary")
	newSupp, _ := cmd.Flags().GetStringArray("new-supplementary")
	configPath, _ := cmd.Flags().GetString("config")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	failAt, _ := cmd.Flags().GetString("fail-at")
	prune, _ := cmd.Flags().GetBool("prune")
	showUI, _ := cmd.Flags().GetBool("ui")
	colorMode, _ := cmd.Root().PersistentFlags().GetString("color")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	timings, _ := cmd.Root().PersistentFlags().GetBool("timings")

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	cfg := pipeline.New()
	cfg.Analyzers = []func() archive.APIAnalyzer{
		func() archive.APIAnalyzer { return jsondoc.NewAnalyzer() },
	}
	cfg.Matchers = []func() ext.Matcher{
		func() ext.Matcher { return match.PatternMatcher{} },
	}
	cfg.Transforms = []func() transform.Transform{
		func() transform.Transform { return basic.NewDifferences() },
	}
	cfg.FilterProviders = []func() ext.FilterProvider{
		func() ext.FilterProvider { return basic.NewElementFilter() },
	}
	rep, err := buildReporter(format, out, colorEnabled(colorMode, out), quiet)
	if err != nil {
		return err
	}
	cfg.Reporters = []func() report.Reporter{func() report.Reporter { return rep }}

	if configPath != "" {
		data, err := pipeline.Load(configPath)
		if err != nil {
			return err
		}
		if err := data.ApplyTo(cfg); err != nil {
			return err
		}
	}
	cfg.PruneForests = cfg.PruneForests || prune

	var threshold, thresholdKnown = cfg.CriticalityByName(failAt)
	if failAt != "" && !thresholdKnown {
		return fmt.Errorf("unknown criticality %q for --fail-at", failAt)
	}

	driver := engine.NewDriver(cfg, archiveSet(oldPaths, oldSupp), archiveSet(newPaths, newSupp))
	defer driver.Close()
	if err := driver.Open(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var res *engine.Result
	if showUI {
		res, err = runWithUI(ctx, driver)
	} else {
		res, err = driver.Run(ctx)
	}
	if cerr := driver.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if timings {
		fmt.Fprint(os.Stderr, driver.Timer().Summary())
	}
	for _, rerr := range res.ReporterFailures {
		fmt.Fprintf(os.Stderr, "warning: %v\n", rerr)
	}

	if thresholdKnown && res.ExceedsThreshold(threshold) {
		return fmt.Errorf("differences at or above criticality %q were found", threshold.Name)
	}
	return nil
}

func archiveSet(primary, supplementary []string) archive.Set {
	var set archive.Set
	for _, p := range primary {
		set.Primary = append(set.Primary, archive.File{Path: p})
	}
	for _, p := range supplementary {
		set.Supplementary = append(set.Supplementary, archive.File{Path: p})
	}
	return set
}

func buildReporter(format string, out io.Writer, color, quiet bool) (report.Reporter, error) {
	switch format {
	case "text":
		return report.NewText(out, report.TextOptions{Color: color, Quiet: quiet}), nil
	case "json":
		return report.NewJSON(out), nil
	case "msgpack":
		return report.NewMsgpack(out), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
