// Package lifecycle coordinates containerized test dependencies for a single
// test scope.
//
// A Coordinator owns one Environment (typically a *compose.Setup) and drives
// it through exactly one scope:
//
//	Bootstrap -> zero or more MarkFailed -> TearDown
//
// Bootstrap brings the environment up within the configured startup timeout.
// If bring-up fails, the coordinator removes whatever was started before it
// reports a *SetupError, so a failed start never leaves containers behind.
//
// TearDown reads the failure flag once. When a test failed and a log dump
// target is configured, the environment's logs are archived (best effort,
// failures are only logged). The retention policy then decides whether the
// containers are removed or intentionally left running for inspection:
//
//	keep = (KeepOnSuccess && !failed) || (KeepOnFailure && failed)
//
// Removal failures are fatal and surface as a *SetupError naming the
// environment.
//
// Coordinators are single use. A nil Environment produces a coordinator on
// which every operation is a no-op, which lets callers disable the whole
// mechanism without branching. Framework-specific glue lives in pkg/harness.
package lifecycle
