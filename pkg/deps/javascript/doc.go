// Package javascript extracts npm dependency names from package.json
// manifests and from package.json diffs.
//
// # Manifests
//
//	m, err := javascript.Parse(data)
//	names := javascript.Extract(m) // sorted, unique
//
// Names come from the keys of dependencies, devDependencies, and
// peerDependencies. They are never normalized: "@scope/pkg" stays scoped and
// "Lodash" stays capitalised, because the registry lookup must see exactly
// what npm install would.
//
// # Patches
//
// [ExtractFromPatch] applies a line heuristic to unified diffs taken from
// commit details. It skips scoped names and only recognises the four-space
// indentation npm writes by default.
package javascript
