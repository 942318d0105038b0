//go:build !release

// Package assert checks internal invariants of the ECS storage. A failed assertion is a bug in this
// module, never a caller error, so it panics with the formatted message. Building with the
// `release` tag compiles every check away.
package assert

import "fmt"

// That panics with the formatted message when cond is false.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}
