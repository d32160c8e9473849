package javascript

import "strings"

// ManifestFile is the manifest name deponpm audits.
const ManifestFile = "package.json"

var dependencyFileSuffixes = []string{"package.json", "package-lock.json", "yarn.lock"}

// IsManifestPath reports whether a changed file path is a package.json
// (at any depth).
func IsManifestPath(filename string) bool {
	return strings.HasSuffix(filename, ManifestFile)
}

// IsDependencyFile reports whether a changed file path touches npm
// dependency state: package.json, package-lock.json, or yarn.lock.
func IsDependencyFile(filename string) bool {
	for _, suffix := range dependencyFileSuffixes {
		if strings.HasSuffix(filename, suffix) {
			return true
		}
	}
	return false
}
