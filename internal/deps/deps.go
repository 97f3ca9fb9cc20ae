// Package deps reports the availability of external binaries sb3slim drives.
package deps

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}
