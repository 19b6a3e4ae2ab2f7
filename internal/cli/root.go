package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/releasestats/pkg/pipeline"
	"github.com/matzehuels/releasestats/pkg/report"
)

// runReport fetches, transforms and writes the report for args[0]/args[1].
func (c *CLI) runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	// The token is checked before anything touches the network.
	if _, err := c.token(); err != nil {
		return err
	}

	opts := pipeline.Options{
		Owner:   args[0],
		Repo:    args[1],
		Formats: pipeline.ParseFormats(c.opts.formats),
		Output:  c.opts.output,
		MinDays: c.opts.minDays,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if len(args) > 2 {
		logger.Debug("ignoring extra arguments", "args", args[2:])
	}

	var sinks []pipeline.Sink
	if c.opts.mongoURI != "" {
		sink, err := report.NewMongoSink(ctx, c.opts.mongoURI, c.opts.mongoDatabase, "")
		if err != nil {
			return err
		}
		defer sink.Close(ctx)
		sinks = append(sinks, sink)
	}

	runner, closeRunner, err := c.newRunner(ctx, sinks...)
	if err != nil {
		return err
	}
	defer closeRunner()

	prog := newProgress(logger)
	stop := c.startSpinner(ctx, fmt.Sprintf("Fetching releases of %s/%s", opts.Owner, opts.Repo))
	result, err := runner.Execute(ctx, opts)
	stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Processed %s/%s", opts.Owner, opts.Repo))

	printReportResult(result, opts)
	if c.opts.print {
		fmt.Fprintln(cmd.OutOrStdout(), report.Render(result.Records))
	}
	return nil
}

// printReportResult prints a summary of the written outputs.
func printReportResult(result *pipeline.Result, opts pipeline.Options) {
	printSuccess("Saved %s releases of %s/%s",
		StyleNumber.Render(fmt.Sprint(len(result.Records))), result.Owner, result.Repo)
	printStats(result.Stats.Pages, result.Stats.Releases-len(result.Records))
	for _, format := range opts.Formats {
		printFile(result.Files[format])
	}
	for name, n := range result.Sinks {
		printDetail("%s: %d documents upserted", name, n)
	}
}
