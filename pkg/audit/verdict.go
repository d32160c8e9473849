package audit

// Status strings reported by registry lookups.
const (
	StatusExists   = "Package exists"
	StatusNotFound = "Package not found"
)

// Verdict is the registry's answer for one dependency name.
type Verdict struct {
	Exists bool   `json:"exists" yaml:"exists"`
	Status string `json:"status" yaml:"status"`
}

// Exists returns the verdict for a name the registry knows.
func Exists() Verdict { return Verdict{Exists: true, Status: StatusExists} }

// NotFound returns the verdict for an unclaimed name.
func NotFound() Verdict { return Verdict{Status: StatusNotFound} }
