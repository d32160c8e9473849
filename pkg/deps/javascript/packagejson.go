package javascript

import (
	"encoding/json"
	"slices"

	"github.com/0xs3fo/ddeponpm/pkg/errors"
)

// sectionKeys are the manifest sections whose keys are dependency names.
var sectionKeys = []string{"dependencies", "devDependencies", "peerDependencies"}

// PackageJSON is a parsed package.json. Only the dependency section keys are
// ever read; version specifiers are kept raw and ignored.
type PackageJSON struct {
	Name             string
	Version          string
	Dependencies     json.RawMessage
	DevDependencies  json.RawMessage
	PeerDependencies json.RawMessage
}

// Parse decodes a manifest. The document must be a JSON object; name and
// version are read leniently and left empty when they are not strings.
func Parse(data []byte) (*PackageJSON, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "invalid package.json")
	}

	m := &PackageJSON{
		Name:             stringField(doc["name"]),
		Version:          stringField(doc["version"]),
		Dependencies:     doc["dependencies"],
		DevDependencies:  doc["devDependencies"],
		PeerDependencies: doc["peerDependencies"],
	}
	return m, nil
}

// Extract returns the sorted, de-duplicated dependency names declared in
// dependencies, devDependencies, and peerDependencies. A section that is
// missing, null, or not an object contributes nothing. Names are returned
// exactly as written.
func Extract(m *PackageJSON) []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, raw := range m.sections() {
		for name := range sectionNames(raw) {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (m *PackageJSON) sections() []json.RawMessage {
	return []json.RawMessage{m.Dependencies, m.DevDependencies, m.PeerDependencies}
}

func sectionNames(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var section map[string]json.RawMessage
	if err := json.Unmarshal(raw, &section); err != nil {
		return nil
	}
	return section
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
