// Package pipeline runs deponpm audits end to end.
//
// A [Runner] wires the source resolver, the registry checker and the
// organization crawler from one [config.Config]. Each mode is a sequence of
// named stages; every stage reports start and completion through
// observability.Pipeline().
//
//	single         load → check → report
//	batch          read-batch → load (per location) → check → report
//	org            collect-repos → scan-manifests → check → report
//	comprehensive  collect-repos → analyze-history → report (no checks)
//	complete       collect-repos → collect-commits → restore-deleted →
//	               analyze-dependencies → check-claims → summarize
//
// Every mode funnels its names into one provenance index before the checker
// runs, so a name is looked up at most once per run regardless of how many
// sources or commits mention it.
//
// # Usage
//
//	runner := pipeline.NewRunner(cfg, cache, logger)
//	out, err := runner.Run(ctx, pipeline.Options{Mode: report.ModeSingle, Input: "package.json"})
//	if err != nil {
//	    return err
//	}
//	out.Write(os.Stdout, report.FormatText)
//	os.Exit(out.ExitCode())
package pipeline

import (
	"io"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/report"
)

// Stage names reported to pipeline hooks.
const (
	StageLoad                = "load"
	StageReadBatch           = "read-batch"
	StageCheck               = "check"
	StageCollectRepos        = "collect-repos"
	StageScanManifests       = "scan-manifests"
	StageAnalyzeHistory      = "analyze-history"
	StageCollectCommits      = "collect-commits"
	StageRestoreDeleted      = "restore-deleted"
	StageAnalyzeDependencies = "analyze-dependencies"
	StageCheckClaims         = "check-claims"
	StageSummarize           = "summarize"
)

// Options selects what a run audits.
type Options struct {
	Mode  report.Mode
	Input string // location, batch file path, or organization name
}

// Validate checks that the mode is known and an input was given.
func (o Options) Validate() error {
	switch o.Mode {
	case report.ModeSingle, report.ModeBatch, report.ModeOrg, report.ModeComprehensive, report.ModeComplete:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown mode %q", o.Mode)
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "%s mode requires an input", o.Mode)
	}
	return nil
}

// Output holds the report of a run. Exactly one field is set.
type Output struct {
	Result  *report.Result
	History *report.HistoryReport
}

// ExitCode is the process exit status the report implies.
func (o *Output) ExitCode() int {
	if o.History != nil {
		return o.History.ExitCode()
	}
	return o.Result.ExitCode()
}

// Write renders the report in the given format.
func (o *Output) Write(w io.Writer, format report.Format) error {
	if o.History != nil {
		return report.WriteHistory(w, format, o.History)
	}
	return report.Write(w, format, o.Result)
}
