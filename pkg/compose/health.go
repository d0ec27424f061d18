package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moby/moby/client"
)

// Health values reported by ContainerHealth.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthStarting  = "starting"
	// HealthNone is reported for running containers without a health check.
	HealthNone = "none"
)

// ContainerHealth returns the health status of a running container.
// Containers without a health check report HealthNone. A stopped container
// returns ErrNotRunning.
func (s *Setup) ContainerHealth(ctx context.Context, id string) (string, error) {
	ctr, err := s.inspect(ctx, id)
	if err != nil {
		return "", err
	}

	state := ctr.State
	if state == nil || !state.Running {
		return "", fmt.Errorf("container %s: %w", id, ErrNotRunning)
	}
	if state.Health == nil || state.Health.Status == "" {
		return HealthNone, nil
	}
	return string(state.Health.Status), nil
}

// CheckServiceHealth reports whether every container of service is running
// and, where a health check is defined, healthy.
func (s *Setup) CheckServiceHealth(ctx context.Context, service string) (bool, error) {
	ids, err := s.ServiceContainerIDs(ctx, service)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return false, fmt.Errorf("service %s: %w", service, ErrNoContainers)
	}
	for _, id := range ids {
		health, err := s.ContainerHealth(ctx, id)
		if err != nil {
			return false, err
		}
		if health != HealthHealthy && health != HealthNone {
			return false, nil
		}
	}
	return true, nil
}

// WaitForServiceHealth polls CheckServiceHealth until it succeeds or timeout
// elapses.
func (s *Setup) WaitForServiceHealth(ctx context.Context, service string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := s.CheckServiceHealth(ctx, service)
		if ok {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for service %s to become healthy: %w", service, lastErr)
			}
			return fmt.Errorf("timeout waiting for service %s to become healthy: %w", service, ctx.Err())
		case <-ticker.C:
		}
	}
}

// waitHealthy polls every container matching filters until all are running
// and healthy. Containers that exited with code 0 count as done; any other
// exit fails immediately.
func (s *Setup) waitHealthy(ctx context.Context, filters client.Filters) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		pending, err := s.pendingContainers(ctx, filters)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}
		s.logger().Debug().Strs("pending", pending).Msg("waiting for containers")

		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s: %w", strings.Join(pending, ", "), ctx.Err())
		case <-ticker.C:
		}
	}
}

// pendingContainers returns the names of containers that are not ready yet.
func (s *Setup) pendingContainers(ctx context.Context, filters client.Filters) ([]string, error) {
	list, err := s.api.ContainerList(ctx, client.ContainerListOptions{All: true, Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	var pending []string
	for _, c := range list.Items {
		info, err := s.api.ContainerInspect(ctx, c.ID, client.ContainerInspectOptions{})
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("inspecting container %s: %w", c.ID, err)
		}
		name := containerName(c.Names, c.ID)

		state := info.Container.State
		switch {
		case state == nil:
			pending = append(pending, name)
		case !state.Running:
			if state.Status == "exited" && state.ExitCode == 0 {
				continue
			}
			if state.Status == "exited" || state.Status == "dead" {
				return nil, fmt.Errorf("container %s exited with code %d", name, state.ExitCode)
			}
			pending = append(pending, name)
		case state.Health != nil && state.Health.Status != "" && string(state.Health.Status) != HealthHealthy:
			pending = append(pending, name)
		}
	}
	return pending, nil
}

func containerName(names []string, id string) string {
	if len(names) > 0 {
		return strings.TrimPrefix(names[0], "/")
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
