package compose

import (
	"context"
	"fmt"

	"github.com/moby/moby/client"
)

// APIClient is the subset of the Docker Engine API a Setup uses.
// *client.Client satisfies it.
type APIClient interface {
	ContainerList(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error)
	ContainerInspect(ctx context.Context, container string, options client.ContainerInspectOptions) (client.ContainerInspectResult, error)
	ContainerLogs(ctx context.Context, container string, options client.ContainerLogsOptions) (client.ContainerLogsResult, error)
	Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error)
	Close() error
}

var _ APIClient = (*client.Client)(nil)

// NewAPIClient connects to the daemon configured by the DOCKER_* environment.
func NewAPIClient(ctx context.Context) (*client.Client, error) {
	cli, err := client.New(client.FromEnv)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	if _, err := cli.Ping(ctx, client.PingOptions{}); err != nil {
		_ = cli.Close()
		return nil, &ComposeError{
			Op:      "connect",
			Err:     err,
			Message: "Cannot connect to Docker daemon",
			NextSteps: []string{
				"Ensure Docker is installed and running",
				"Check DOCKER_HOST if you use a remote daemon",
			},
		}
	}
	return cli, nil
}

// Compose label keys set by docker compose on every container it creates.
const (
	LabelProject = "com.docker.compose.project"
	LabelService = "com.docker.compose.service"
	LabelNumber  = "com.docker.compose.container-number"
)

func projectFilter(project string) client.Filters {
	return client.Filters{}.Add("label", LabelProject+"="+project)
}

func serviceFilter(project, service string) client.Filters {
	return projectFilter(project).Add("label", LabelService+"="+service)
}
