package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"workerscope/pkg/config"
	"workerscope/pkg/constants"
	"workerscope/pkg/render"
)

type reportOptions struct {
	output         string
	top            int
	jobNameSource  string
	strictShortIDs bool
	noCache        bool
}

func reportCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report <bosh_deployment_name> <fly_target>",
		Short: "Print the busiest workers and their running builds",
		Long: `Rank the deployment's worker VMs by cpu_sys + cpu_user + cpu_wait and show,
for each of the top workers, the started builds whose containers run on it.

Examples:
  # Text report for the concourse deployment and the ci target
  workerscope report concourse ci

  # Top 5 as JSON, job names taken from the containers
  workerscope report concourse ci -o json --top 5 --job-name-source container`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 || args[0] == "" || args[1] == "" {
				return fmt.Errorf("usage: %s", cmd.UseLine())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "Output format: text, json, yaml")
	cmd.Flags().IntVar(&opts.top, "top", 0, "Number of workers to show (default report.top_n)")
	cmd.Flags().StringVar(&opts.jobNameSource, "job-name-source", "", "Authoritative job_name side: build or container")
	cmd.Flags().BoolVar(&opts.strictShortIDs, "strict-short-ids", false, "Fail sections whose short id is shared by several workers")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Always run bosh and fly, ignoring cached output")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration
func (o *reportOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("top") {
		cfg.Report.TopN = o.top
	}
	if cmd.Flags().Changed("job-name-source") {
		source := constants.JobNameSource(o.jobNameSource)
		if !source.Valid() {
			return fmt.Errorf("invalid --job-name-source %q, want build or container", o.jobNameSource)
		}
		cfg.Report.JobNameSource = source
	}
	if cmd.Flags().Changed("strict-short-ids") {
		cfg.Report.StrictShortIDs = o.strictShortIDs
	}
	if o.noCache {
		cfg.Cache.TTL = 0
	}
	if cfg.Report.TopN <= 0 {
		cfg.Report.TopN = constants.DefaultTopN
	}
	return nil
}

func runReport(cmd *cobra.Command, opts *reportOptions, deployment, target string) error {
	format, err := render.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := NewApplication(configPath)
	app.overrides = func(cfg *config.Config) error { return opts.apply(cmd, cfg) }
	defer app.Close()

	if err := app.Initialize(app.reportSteps()); err != nil {
		return err
	}

	report, err := app.reportService.Generate(ctx, deployment, target)
	if err != nil {
		return err
	}
	return render.Write(cmd.OutOrStdout(), report, format)
}
