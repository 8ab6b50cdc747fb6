package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"

	"workerscope/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		ID:          "3f0c1c1e-7d1a-4a47-9b63-2f5a0f0e2b10",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Deployment:  "concourse",
		Target:      "ci",
		TopN:        10,
		TopWorkers: []model.WorkerVital{
			{Instance: "worker/abcdef1234", CPUTotal: 55.5},
			{Instance: "worker/11111111aa", CPUTotal: 20},
			{Instance: "worker/22222222bb", CPUTotal: 10},
			{Instance: "worker-bad", CPUTotal: 5},
		},
		Sections: []model.WorkerSection{
			{
				Instance: "worker/abcdef1234",
				ShortID:  "abcdef12",
				Outcome:  model.OutcomeAttributed,
				Records: []model.AttributedBuildRecord{
					{TeamName: "main", PipelineName: "app", JobName: "unit", StepName: "test", BuildNumber: "12", Status: "started", BuildID: 7},
				},
			},
			{Instance: "worker/11111111aa", ShortID: "11111111", Outcome: model.OutcomeNoContainers},
			{Instance: "worker/22222222bb", ShortID: "22222222", Outcome: model.OutcomeNoActiveBuilds},
			{
				Instance: "worker-bad",
				Outcome:  model.OutcomeError,
				Error:    &model.SectionError{Kind: "MalformedInstanceId", Message: `malformed instance id: "worker-bad" has no id component`},
			},
		},
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Top 10 Busiest Workers:\n"))
	assert.Contains(t, out, "worker/abcdef1234  55.50")
	assert.Contains(t, out, "worker/abcdef1234 builds:")
	assert.Contains(t, out, "TEAM_NAME")
	assert.Contains(t, out, "main")
	assert.Contains(t, out, "worker/11111111aa No containers found for worker\n")
	assert.Contains(t, out, "worker/22222222bb No started builds found for this worker.\n")
	assert.Contains(t, out, "worker-bad attribution failed: MalformedInstanceId")
	assert.Less(t, strings.Index(out, "worker/11111111aa No"), strings.Index(out, "worker/22222222bb No"))
}

func TestWriteText_Terminations(t *testing.T) {
	noWorkers := &model.Report{
		TopN:        10,
		Termination: &model.Termination{Reason: model.TerminationNoWorkerData, Message: "No worker data available."},
		Warnings:    []string{"bosh vitals: BOSH deployment not found [NOT_FOUND_DEPLOYMENT]"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, noWorkers))
	assert.Equal(t, "Top 10 Busiest Workers:\nNo worker data available.\n\nWarnings:\n  - bosh vitals: BOSH deployment not found [NOT_FOUND_DEPLOYMENT]\n", buf.String())

	insufficient := sampleReport()
	insufficient.Sections = nil
	insufficient.Termination = &model.Termination{
		Reason:  model.TerminationInsufficientData,
		Message: "No sufficient build or container data available via fly/concourse. Not busy?!",
	}
	buf.Reset()
	require.NoError(t, WriteText(&buf, insufficient))
	out := buf.String()
	assert.Contains(t, out, "worker/abcdef1234")
	assert.True(t, strings.HasSuffix(out, "Not busy?!\n"))
	assert.NotContains(t, out, "builds:")
}

func TestWriteText_EmptyCells(t *testing.T) {
	report := sampleReport()
	report.Sections = report.Sections[:1]
	report.Sections[0].Records[0].StepName = ""

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, report))
	assert.Contains(t, buf.String(), " - ")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatJSON))

	var decoded model.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleReport(), &decoded)
	assert.Contains(t, buf.String(), "\n  \"id\"")
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleReport(), FormatYAML))
	assert.Contains(t, buf.String(), "deployment: concourse")

	var decoded model.Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "worker/abcdef1234", decoded.Sections[0].Instance)
	assert.Equal(t, model.OutcomeNoActiveBuilds, decoded.Sections[2].Outcome)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Error(t, Write(&bytes.Buffer{}, sampleReport(), Format("xml")))
	assert.Equal(t, "application/json; charset=utf-8", FormatJSON.ContentType())
}
