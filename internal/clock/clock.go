// Package clock provides a stubbable time source so that date-derived
// artifact names stay deterministic in tests.
package clock

import "time"

// NowFunc returns the current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }
