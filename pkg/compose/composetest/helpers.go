package composetest

import (
	"bytes"
	"context"
	"io"
	"net/netip"
	"strings"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/network"
	"github.com/moby/moby/client"

	"github.com/schmitthub/cosytest/pkg/compose"
)

// Container describes a fake project container.
type Container struct {
	ID      string
	Name    string
	Service string
	// State is the docker state ("running", "exited", ...). Defaults to running.
	State    string
	ExitCode int
	// Health is the health check status. Empty means no health check.
	Health string
	// Logs is returned by ContainerLogs, framed as stdout.
	Logs string
	// IPs maps network names to the container's address on them.
	IPs map[string]string
	// Ports maps private ports ("8080/tcp") to published host ports.
	Ports map[string]string
}

// Summary converts c into the list item docker compose containers carry.
func (c Container) Summary(project string) container.Summary {
	return container.Summary{
		ID:    c.ID,
		Names: []string{"/" + c.Name},
		State: container.ContainerState(c.state()),
		Labels: map[string]string{
			compose.LabelProject: project,
			compose.LabelService: c.Service,
		},
	}
}

func (c Container) state() string {
	if c.State == "" {
		return "running"
	}
	return c.State
}

// Inspect converts c into an inspect response.
func (c Container) Inspect(project string) container.InspectResponse {
	st := &container.State{
		Status:   container.ContainerState(c.state()),
		Running:  c.state() == "running",
		ExitCode: c.ExitCode,
	}
	if c.Health != "" {
		st.Health = &container.Health{Status: container.HealthStatus(c.Health)}
	}
	return container.InspectResponse{
		ID:    c.ID,
		Name:  "/" + c.Name,
		State: st,
		Config: &container.Config{
			Labels: map[string]string{
				compose.LabelProject: project,
				compose.LabelService: c.Service,
			},
		},
		NetworkSettings: c.networkSettings(),
	}
}

func (c Container) networkSettings() *container.NetworkSettings {
	ns := &container.NetworkSettings{
		Networks: make(map[string]*network.EndpointSettings, len(c.IPs)),
		Ports:    make(network.PortMap, len(c.Ports)),
	}
	for name, ip := range c.IPs {
		ns.Networks[name] = &network.EndpointSettings{IPAddress: netip.MustParseAddr(ip)}
	}
	for private, host := range c.Ports {
		ns.Ports[network.MustParsePort(private)] = []network.PortBinding{
			{HostIP: netip.IPv4Unspecified(), HostPort: host},
			{HostIP: netip.IPv6Unspecified(), HostPort: host},
		}
	}
	return ns
}

// SetupContainers configures list, inspect and logs on f to serve the given
// containers. ContainerList honors the service label filter.
func (f *FakeAPIClient) SetupContainers(project string, containers ...Container) {
	byID := make(map[string]Container, len(containers))
	for _, c := range containers {
		byID[c.ID] = c
	}

	f.ContainerListFn = func(_ context.Context, opts client.ContainerListOptions) (client.ContainerListResult, error) {
		var items []container.Summary
		for _, c := range containers {
			if matchesFilters(opts.Filters, project, c.Service) {
				items = append(items, c.Summary(project))
			}
		}
		return client.ContainerListResult{Items: items}, nil
	}
	f.ContainerInspectFn = func(_ context.Context, id string, _ client.ContainerInspectOptions) (client.ContainerInspectResult, error) {
		c, ok := byID[id]
		if !ok {
			return client.ContainerInspectResult{}, NotFoundError(id)
		}
		return client.ContainerInspectResult{Container: c.Inspect(project)}, nil
	}
	f.ContainerLogsFn = func(_ context.Context, id string, _ client.ContainerLogsOptions) (client.ContainerLogsResult, error) {
		c, ok := byID[id]
		if !ok {
			return nil, NotFoundError(id)
		}
		return io.NopCloser(bytes.NewReader(MultiplexedLogs(c.Logs, ""))), nil
	}
}

// matchesFilters applies the label filters compose.Setup builds.
func matchesFilters(filters client.Filters, project, service string) bool {
	for want := range filters["label"] {
		switch want {
		case compose.LabelProject + "=" + project,
			compose.LabelService + "=" + service:
		default:
			if strings.HasPrefix(want, compose.LabelProject+"=") || strings.HasPrefix(want, compose.LabelService+"=") {
				return false
			}
		}
	}
	return true
}

// MultiplexedLogs frames stdout and stderr the way the daemon does for
// containers without a TTY.
func MultiplexedLogs(stdout, stderr string) []byte {
	var buf bytes.Buffer
	if stdout != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stdout).Write([]byte(stdout))
	}
	if stderr != "" {
		_, _ = stdcopy.NewStdWriter(&buf, stdcopy.Stderr).Write([]byte(stderr))
	}
	return buf.Bytes()
}

// NotFoundError returns an error that satisfies errdefs.IsNotFound.
func NotFoundError(ref string) error {
	return errNotFound{msg: "No such container: " + ref}
}

type errNotFound struct {
	msg string
}

func (e errNotFound) Error() string { return e.msg }
func (e errNotFound) NotFound()     {}
