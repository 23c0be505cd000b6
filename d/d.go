// Package d is the one place in ugit that still panics on purpose. It
// exists only to give the CLI entry point (cmd/ugit) a single recovery
// boundary for programmer errors that slip past the typed ugiterr
// taxonomy — an assertion failing, a nil dereference deep in a library
// call, that kind of thing.
//
// This is a deliberately narrowed descendant of the teacher's own `d`
// package (github.com/attic-labs/noms/go/d), which the rest of that
// codebase uses pervasively: d.Chk.NoError(err) and d.Exp.* convert
// ordinary, expected failures into panics, relying on every caller
// eventually running under d.Try. spec.md §9 names that pattern
// directly as something to redesign away from. Every ugit package
// below cmd/ugit returns plain `error` values instead; d.Try is called
// exactly once, around command dispatch.
package d

import "fmt"

// Try runs f and recovers any panic, returning it as an error instead.
// A panic with a string or error value preserves Error(); anything else
// is rendered with fmt.Sprintf("%v", ...).
func Try(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			case string:
				err = fmt.Errorf("%s", v)
			default:
				err = fmt.Errorf("%v", v)
			}
		}
	}()
	f()
	return nil
}

// PanicIfError panics if err is non-nil. Used only inside code paths
// that Try wraps — i.e. inside cmd/ugit itself, never inside the L1-L6
// engine packages, which must return errors instead.
func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}
