package pipeline

import (
	"context"

	"github.com/0xs3fo/ddeponpm/pkg/audit"
	"github.com/0xs3fo/ddeponpm/pkg/deps/javascript"
	"github.com/0xs3fo/ddeponpm/pkg/errors"
	"github.com/0xs3fo/ddeponpm/pkg/provenance"
	"github.com/0xs3fo/ddeponpm/pkg/report"
	"github.com/0xs3fo/ddeponpm/pkg/source"
)

// NoticeNoSources is set when no location of a batch file could be loaded.
const NoticeNoSources = "no valid sources could be loaded"

// Single audits one manifest location. Every error is fatal.
func (r *Runner) Single(ctx context.Context, location string) (*report.Result, error) {
	var src *source.Source
	err := r.stage(ctx, StageLoad, func() error {
		var err error
		src, err = r.Resolver.Load(ctx, location)
		return err
	})
	if err != nil {
		return nil, err
	}

	names := javascript.Extract(src.Manifest)
	r.Logger.Info("Loaded manifest", "source", src.Label, "name", src.Manifest.Name, "dependencies", len(names))

	idx := provenance.New()
	idx.RecordAll(names, provenance.Label(src.Label))

	verdicts, err := r.check(ctx, StageCheck, idx)
	if err != nil {
		return nil, err
	}

	res := report.Build(report.ModeSingle, location, verdicts, idx)
	res.Stats.Sources = 1
	return res, nil
}

// loaded is the dependency list of one successfully loaded batch source.
type loaded struct {
	label string
	names []string
}

// Batch audits every location listed in the batch file at path. Locations
// that fail to load are logged and skipped; the names of all loaded sources
// are checked together and merged under the source-union policy.
func (r *Runner) Batch(ctx context.Context, path string) (*report.Result, error) {
	var locations []string
	err := r.stage(ctx, StageReadBatch, func() error {
		var err error
		locations, err = source.ReadBatchFile(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.Logger.Infof("Processing %d sources from %s", len(locations), path)

	idx := provenance.New()
	var sources []loaded
	err = r.stage(ctx, StageLoad, func() error {
		for i, loc := range locations {
			r.Logger.Infof("[%d/%d] Processing: %s", i+1, len(locations), loc)
			src, err := r.Resolver.Load(ctx, loc)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.Logger.Warn("Skipping source", "location", loc, "err", errors.UserMessage(err))
				continue
			}
			names := javascript.Extract(src.Manifest)
			idx.RecordAll(names, provenance.Label(src.Label))
			sources = append(sources, loaded{label: src.Label, names: names})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		res := report.New(report.ModeBatch, path)
		res.Notice = NoticeNoSources
		return res, nil
	}

	verdicts, err := r.check(ctx, StageCheck, idx)
	if err != nil {
		return nil, err
	}

	views := make([]report.SourceResult, len(sources))
	for i, s := range sources {
		view := make(map[string]audit.Verdict, len(s.names))
		for _, name := range s.names {
			view[name] = verdicts[name]
		}
		views[i] = report.SourceResult{Label: s.label, Verdicts: view}
	}
	return report.Merge(report.ModeBatch, path, views), nil
}
