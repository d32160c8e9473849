// Package provenance records where each dependency name was seen.
//
// An [Index] maps a name to the ordered list of [Origin] labels under which
// it was discovered. Insertion order is discovery order and entries only
// ever grow during a run.
package provenance

import (
	"fmt"
	"slices"
)

// Origin is a human-readable label for one sighting of a dependency name.
type Origin string

const shortSHALen = 8

// Label is the origin for a file or URL source.
func Label(s string) Origin { return Origin(s) }

// Current is the origin for a repository's current default-branch manifest.
func Current(repo string) Origin { return Origin(fmt.Sprintf("%s (current)", repo)) }

// InCommit is the origin for a name added in a commit on the collected history.
func InCommit(repo, sha string) Origin {
	return Origin(fmt.Sprintf("%s (commit: %s)", repo, shortSHA(sha)))
}

// Deleted is the origin for a name added in a commit that is only reachable
// from a non-default branch.
func Deleted(repo, sha string) Origin {
	return Origin(fmt.Sprintf("%s (deleted: %s)", repo, shortSHA(sha)))
}

func shortSHA(sha string) string {
	if len(sha) > shortSHALen {
		return sha[:shortSHALen]
	}
	return sha
}

// Index maps dependency names to their origins. The zero value is not
// usable; call [New]. An Index is not safe for concurrent use.
type Index struct {
	origins map[string][]Origin
	order   []string
}

// New returns an empty Index.
func New() *Index {
	return &Index{origins: make(map[string][]Origin)}
}

// Record appends origin to name's list, creating the entry on first sight.
// Repeated origins are kept.
func (x *Index) Record(name string, origin Origin) {
	if _, ok := x.origins[name]; !ok {
		x.order = append(x.order, name)
	}
	x.origins[name] = append(x.origins[name], origin)
}

// RecordAll records every name under the same origin.
func (x *Index) RecordAll(names []string, origin Origin) {
	for _, name := range names {
		x.Record(name, origin)
	}
}

// Merge appends other's entries in other's discovery order.
func (x *Index) Merge(other *Index) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		for _, o := range other.origins[name] {
			x.Record(name, o)
		}
	}
}

// Has reports whether name has been recorded.
func (x *Index) Has(name string) bool {
	_, ok := x.origins[name]
	return ok
}

// Origins returns a copy of name's origins in discovery order.
func (x *Index) Origins(name string) []Origin {
	return slices.Clone(x.origins[name])
}

// Names returns every recorded name, sorted.
func (x *Index) Names() []string {
	names := slices.Clone(x.order)
	slices.Sort(names)
	return names
}

// Discovered returns every recorded name in first-seen order.
func (x *Index) Discovered() []string {
	return slices.Clone(x.order)
}

// Len returns the number of distinct names.
func (x *Index) Len() int { return len(x.order) }
