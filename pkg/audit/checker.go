// Package audit decides, once per unique name, whether dependency names are
// claimed on the registry.
package audit

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of registry lookups in flight at once.
const DefaultConcurrency = 4

// Registry answers whether a single name exists. Implementations fold every
// failure into the returned Verdict.
type Registry interface {
	Check(ctx context.Context, name string) Verdict
}

// Checker fans registry lookups out with bounded concurrency.
type Checker struct {
	Registry    Registry
	Concurrency int
	Logger      *log.Logger
}

// NewChecker creates a Checker. A concurrency below 1 selects
// [DefaultConcurrency]; a nil logger selects log.Default().
func NewChecker(reg Registry, concurrency int, logger *log.Logger) *Checker {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Checker{Registry: reg, Concurrency: concurrency, Logger: logger}
}

// CheckAll looks up every unique name in names exactly once and returns the
// verdict per name. Duplicates in the input are collapsed first.
//
// When ctx is cancelled no further lookups are started; verdicts gathered so
// far are returned with ctx.Err().
func (c *Checker) CheckAll(ctx context.Context, names []string) (map[string]Verdict, error) {
	unique := dedupe(names)
	total := len(unique)
	verdicts := make([]Verdict, total)
	done := make([]bool, total)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)

	for i, name := range unique {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := c.Registry.Check(gctx, name)
			verdicts[i], done[i] = v, true

			progress := fmt.Sprintf("[%d/%d]", i+1, total)
			if v.Exists {
				c.Logger.Info("claimed", "progress", progress, "name", name)
			} else {
				c.Logger.Warn("unclaimed", "progress", progress, "name", name, "status", v.Status)
			}
			return nil
		})
	}
	err := g.Wait()

	out := make(map[string]Verdict, total)
	for i, name := range unique {
		if done[i] {
			out[name] = verdicts[i]
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	return out, err
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
