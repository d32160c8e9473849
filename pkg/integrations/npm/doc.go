// Package npm checks dependency names against the npm registry.
//
// # Usage
//
//	client := npm.NewClient("", 0) // https://registry.npmjs.com, 10s timeout
//	v := client.Check(ctx, "left-pad")
//	if !v.Exists {
//	    fmt.Println("unclaimed:", v.Status)
//	}
//
// # Semantics
//
// Each [Client.Check] issues exactly one GET of <registry>/<name>:
//
//   - 200: the name is claimed ("Package exists")
//   - 404: the name is unclaimed ("Package not found")
//   - any other status: "Unexpected status: <code>", treated as not existing
//   - transport failure: "Request failed: <error>", treated as not existing
//
// Lookups are never retried and never cached; a verdict reflects the
// registry at the moment of the run.
package npm
