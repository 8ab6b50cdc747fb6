package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"workerscope/internal/model"
)

// Per-worker section messages
const (
	msgNoContainers   = "No containers found for worker"
	msgNoActiveBuilds = "No started builds found for this worker."
)

// WriteText renders the report in the terminal layout: the top-N table,
// then one section per worker in rank order.
func WriteText(w io.Writer, report *model.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Top %d Busiest Workers:\n", report.TopN)

	if len(report.TopWorkers) == 0 {
		if report.Termination != nil {
			fmt.Fprintln(bw, report.Termination.Message)
		}
		writeWarnings(bw, report.Warnings)
		return bw.Flush()
	}

	tw := newTable(bw)
	fmt.Fprintln(tw, "INSTANCE\tCPU_TOTAL")
	for _, worker := range report.TopWorkers {
		fmt.Fprintf(tw, "%s\t%.2f\n", worker.Instance, worker.CPUTotal)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprint(bw, "\nWorker Details:\n\n")

	if report.Termination != nil {
		fmt.Fprintln(bw, report.Termination.Message)
		writeWarnings(bw, report.Warnings)
		return bw.Flush()
	}

	for _, section := range report.Sections {
		if err := writeSection(bw, section); err != nil {
			return err
		}
	}
	writeWarnings(bw, report.Warnings)
	return bw.Flush()
}

func writeSection(w io.Writer, section model.WorkerSection) error {
	switch section.Outcome {
	case model.OutcomeNoContainers:
		_, err := fmt.Fprintf(w, "%s %s\n", section.Instance, msgNoContainers)
		return err
	case model.OutcomeNoActiveBuilds:
		_, err := fmt.Fprintf(w, "%s %s\n", section.Instance, msgNoActiveBuilds)
		return err
	case model.OutcomeError:
		msg := "unknown error"
		if section.Error != nil {
			msg = section.Error.Kind + ": " + section.Error.Message
		}
		_, err := fmt.Fprintf(w, "%s attribution failed: %s\n", section.Instance, msg)
		return err
	}

	fmt.Fprintf(w, "%s builds:\n\n", section.Instance)
	tw := newTable(w)
	fmt.Fprintln(tw, "TEAM_NAME\tPIPELINE_NAME\tJOB_NAME\tSTEP_NAME\tBUILD_NUMBER\tSTATUS")
	for _, r := range section.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			cell(r.TeamName), cell(r.PipelineName), cell(r.JobName), cell(r.StepName), cell(r.BuildNumber), cell(r.Status))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\n\n")
	return err
}

func writeWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(w, "\nWarnings:")
	for _, warning := range warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// cell keeps empty values visible in the aligned table
func cell(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
