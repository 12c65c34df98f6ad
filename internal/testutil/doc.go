// Package testutil holds fakes shared by the store, CLI and harness tests:
// an in-memory write-through cache and a deterministic clock.
package testutil
