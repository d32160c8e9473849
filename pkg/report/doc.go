// Package report partitions verdicts into claimed and unclaimed names and
// renders the result.
//
// [Build] is used when every name was checked against one provenance index.
// [Merge] combines per-source verdict views under the source-union policy:
// a name is claimed if any source that referenced it says it exists,
// otherwise its status comes from the first source that referenced it.
// This is a reporting policy, not an intersection of results.
//
// Reports render as styled text, JSON, or YAML (see [Write] and
// [WriteHistory]). Every report carries a run ID, the mode and the input.
package report
