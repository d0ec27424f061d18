package compose

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
)

// ContainerInfo summarizes one container of the project.
type ContainerInfo struct {
	ID      string
	Name    string
	Service string
	State   string
	Health  string
}

func (s *Setup) apiClient() (APIClient, error) {
	if s.api == nil {
		return nil, &ComposeError{
			Op:      "connect",
			Message: "No Docker API client configured",
			NextSteps: []string{
				"Pass compose.WithAPIClient when creating the setup",
			},
		}
	}
	return s.api, nil
}

// inspect returns the container's inspect data. A missing container is a
// ComposeError with next steps.
func (s *Setup) inspect(ctx context.Context, id string) (container.InspectResponse, error) {
	api, err := s.apiClient()
	if err != nil {
		return container.InspectResponse{}, err
	}
	info, err := api.ContainerInspect(ctx, id, client.ContainerInspectOptions{})
	if err != nil {
		if isNotFound(err) {
			return container.InspectResponse{}, errContainerNotFound(id, err)
		}
		return container.InspectResponse{}, fmt.Errorf("inspecting container %s: %w", id, err)
	}
	return info.Container, nil
}

// Services returns the service names declared by the compose files.
func (s *Setup) Services(ctx context.Context) ([]string, error) {
	out, err := s.compose(ctx, "config", "--services")
	if err != nil {
		return nil, err
	}
	services := splitLines(out)
	sort.Strings(services)
	return services, nil
}

// ContainerIDs returns the IDs of every container in the project, running
// or not.
func (s *Setup) ContainerIDs(ctx context.Context) ([]string, error) {
	return s.listIDs(ctx, projectFilter(s.name))
}

// ServiceContainerIDs returns the IDs of the containers of service.
func (s *Setup) ServiceContainerIDs(ctx context.Context, service string) ([]string, error) {
	return s.listIDs(ctx, serviceFilter(s.name, service))
}

func (s *Setup) listIDs(ctx context.Context, filters client.Filters) ([]string, error) {
	api, err := s.apiClient()
	if err != nil {
		return nil, err
	}
	list, err := api.ContainerList(ctx, client.ContainerListOptions{All: true, Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("listing containers for %s: %w", s.name, err)
	}
	ids := make([]string, 0, len(list.Items))
	for _, c := range list.Items {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// Containers returns a summary of every container in the project, sorted by
// service and name.
func (s *Setup) Containers(ctx context.Context) ([]ContainerInfo, error) {
	api, err := s.apiClient()
	if err != nil {
		return nil, err
	}
	list, err := api.ContainerList(ctx, client.ContainerListOptions{All: true, Filters: projectFilter(s.name)})
	if err != nil {
		return nil, fmt.Errorf("listing containers for %s: %w", s.name, err)
	}

	infos := make([]ContainerInfo, 0, len(list.Items))
	for _, c := range list.Items {
		info := ContainerInfo{
			ID:      c.ID,
			Name:    containerName(c.Names, c.ID),
			Service: c.Labels[LabelService],
			State:   string(c.State),
		}
		health, err := s.ContainerHealth(ctx, c.ID)
		switch {
		case err == nil:
			info.Health = health
		case errors.Is(err, ErrNotRunning):
			info.Health = "-"
		default:
			return nil, err
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Service != infos[j].Service {
			return infos[i].Service < infos[j].Service
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// ContainerIPs returns the container's address on each attached network,
// ordered by network name.
func (s *Setup) ContainerIPs(ctx context.Context, id string) ([]string, error) {
	ctr, err := s.inspect(ctx, id)
	if err != nil {
		return nil, err
	}
	if ctr.NetworkSettings == nil {
		return nil, nil
	}

	names := make([]string, 0, len(ctr.NetworkSettings.Networks))
	for name := range ctr.NetworkSettings.Networks {
		names = append(names, name)
	}
	sort.Strings(names)

	var ips []string
	for _, name := range names {
		ep := ctr.NetworkSettings.Networks[name]
		if ep != nil && ep.IPAddress.IsValid() {
			ips = append(ips, ep.IPAddress.String())
		}
	}
	return ips, nil
}

// ServiceIPs returns the addresses of every container of service.
func (s *Setup) ServiceIPs(ctx context.Context, service string) ([]string, error) {
	ids, err := s.ServiceContainerIDs(ctx, service)
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, id := range ids {
		cips, err := s.ContainerIPs(ctx, id)
		if err != nil {
			return nil, err
		}
		ips = append(ips, cips...)
	}
	return ips, nil
}

// ContainerMappedPort returns the host port published for the container's
// private TCP port.
func (s *Setup) ContainerMappedPort(ctx context.Context, id string, port int) (string, error) {
	p, err := nat.NewPort("tcp", strconv.Itoa(port))
	if err != nil {
		return "", err
	}
	return s.containerMappedPort(ctx, id, p)
}

// ServiceMappedPort returns the host ports published for the private TCP
// port by each container of service.
func (s *Setup) ServiceMappedPort(ctx context.Context, service string, port int) ([]string, error) {
	return s.ServiceMappedPortSpec(ctx, service, strconv.Itoa(port))
}

// ServiceMappedPortSpec is ServiceMappedPort for a "PORT[/PROTO]" spec such
// as "5432" or "53/udp".
func (s *Setup) ServiceMappedPortSpec(ctx context.Context, service, spec string) ([]string, error) {
	p, err := ParsePort(spec)
	if err != nil {
		return nil, err
	}
	ids, err := s.ServiceContainerIDs(ctx, service)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("service %s: %w", service, ErrNoContainers)
	}
	ports := make([]string, 0, len(ids))
	for _, id := range ids {
		hp, err := s.containerMappedPort(ctx, id, p)
		if err != nil {
			return nil, err
		}
		ports = append(ports, hp)
	}
	return ports, nil
}

func (s *Setup) containerMappedPort(ctx context.Context, id string, p nat.Port) (string, error) {
	ctr, err := s.inspect(ctx, id)
	if err != nil {
		return "", err
	}
	if ctr.NetworkSettings != nil {
		for port, bindings := range ctr.NetworkSettings.Ports {
			if port.String() != string(p) {
				continue
			}
			for _, b := range bindings {
				if b.HostPort != "" {
					return b.HostPort, nil
				}
			}
		}
	}
	return "", fmt.Errorf("container %s does not publish port %s", id, p)
}

// ParsePort parses "PORT[/PROTO]"; the protocol defaults to tcp.
func ParsePort(spec string) (nat.Port, error) {
	proto, port := nat.SplitProtoPort(spec)
	if port == "" {
		return "", fmt.Errorf("invalid port %q", spec)
	}
	if _, err := nat.ParsePort(port); err != nil {
		return "", fmt.Errorf("invalid port %q: %w", spec, err)
	}
	return nat.NewPort(proto, port)
}

// ContainerLogs returns the container's stdout and stderr interleaved as
// written.
func (s *Setup) ContainerLogs(ctx context.Context, id string) (string, error) {
	api, err := s.apiClient()
	if err != nil {
		return "", err
	}
	rc, err := api.ContainerLogs(ctx, id, client.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		if isNotFound(err) {
			return "", errContainerNotFound(id, err)
		}
		return "", fmt.Errorf("reading logs of %s: %w", id, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("reading logs of %s: %w", id, err)
	}
	return demux(raw), nil
}

// ServiceLogs returns the combined logs of service as printed by
// docker compose logs.
func (s *Setup) ServiceLogs(ctx context.Context, service string) (string, error) {
	out, err := s.compose(ctx, "logs", "--no-color", "--no-log-prefix", service)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// demux strips the multiplexing headers from non-TTY log streams. TTY
// containers produce raw output, which is returned unchanged.
func demux(raw []byte) string {
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, bytes.NewReader(raw)); err != nil {
		return string(raw)
	}
	return buf.String()
}

func splitLines(out []byte) []string {
	var lines []string
	for _, l := range strings.Split(string(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
