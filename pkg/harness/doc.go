// Package harness connects a lifecycle.Scope to the Go test runners.
//
// Three adapters cover the usual scopes:
//
//   - RunTestMain wraps testing.M for a whole test binary.
//   - Attach ties a scope to a single test or subtest through t.Cleanup.
//   - Suite is a testify suite that brings the scope up in SetupSuite and
//     tears it down in TearDownSuite.
//
// Adapters hold no policy. They call Bootstrap when the scope starts,
// MarkFailed when a test in it fails, and TearDown when it ends. A nil scope
// makes every adapter a pass-through.
package harness
