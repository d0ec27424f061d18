// Package compose drives a docker compose project as a test environment.
//
// A Setup runs the docker CLI for lifecycle commands (up, down, config,
// logs, port) and uses the Docker Engine API for container queries, health
// polling and log capture:
//
//	api, err := compose.NewAPIClient(ctx)
//	...
//	setup := compose.New("orders", []string{"testdata/compose.yaml"}, ".", nil,
//		compose.WithAPIClient(api))
//	coord := lifecycle.New(setup, lifecycle.WithKeepOnFailure(true))
//
// Up holds a file lock on the project name until Down, so two test binaries
// sharing a project name run one after the other. Use UniqueProjectName to
// run them side by side instead.
package compose
