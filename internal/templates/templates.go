// Package templates holds the embedded template files used by testgen.
// All templates are compiled into the binary at build time via //go:embed.
//
// init/ holds the instruction documents stamped into a project by
// `testgen init`. They are copied as-is with no filename transformations.
package templates

import "embed"

// Init holds files copied to the target project by `testgen init`.
//
//go:embed init
var Init embed.FS
