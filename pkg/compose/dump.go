package compose

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
)

// PartialDumpError is returned by DumpLogs when the archive was written but
// some containers were left out because their logs could not be read.
type PartialDumpError struct {
	Path    string
	Skipped []error
}

func (e *PartialDumpError) Error() string {
	return fmt.Sprintf("log dump %s is missing %d container(s): %v", e.Path, len(e.Skipped), errors.Join(e.Skipped...))
}

func (e *PartialDumpError) Unwrap() []error { return e.Skipped }

// DumpLogs writes dir/fileName as a gzip-compressed tar archive holding one
// "<service>/<container>.log" entry per project container. Containers whose
// logs cannot be read are skipped and reported as a *PartialDumpError; the
// archive is still written.
func (s *Setup) DumpLogs(ctx context.Context, fileName, dir string) error {
	api, err := s.apiClient()
	if err != nil {
		return err
	}
	list, err := api.ContainerList(ctx, client.ContainerListOptions{All: true, Filters: projectFilter(s.name)})
	if err != nil {
		return fmt.Errorf("listing containers for %s: %w", s.name, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dump directory: %w", err)
	}
	path := filepath.Join(dir, fileName)

	// The archive is built next to path and renamed into place, so a failed
	// write never leaves a truncated dump behind.
	tmp, err := os.CreateTemp(dir, "."+fileName+"-*")
	if err != nil {
		return fmt.Errorf("creating log dump %s: %w", path, err)
	}
	skipped, err := s.writeLogArchive(ctx, tmp, list.Items)
	if err == nil {
		err = tmp.Chmod(0o644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.logger().Debug().Err(rmErr).Str("path", tmp.Name()).Msg("failed to remove partial log dump")
		}
		return fmt.Errorf("writing log dump %s: %w", path, err)
	}

	s.logger().Debug().
		Str("path", path).
		Int("containers", len(list.Items)).
		Msg("log dump written")
	if len(skipped) > 0 {
		return &PartialDumpError{Path: path, Skipped: skipped}
	}
	return nil
}

// writeLogArchive streams the logs of items to w as a gzip-compressed tar.
// Containers whose logs cannot be read are returned in skipped. err is set
// only when the archive itself could not be written.
func (s *Setup) writeLogArchive(ctx context.Context, w io.Writer, items []container.Summary) (skipped []error, err error) {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)
	defer func() {
		if twErr := tw.Close(); err == nil {
			err = twErr
		}
		if gzErr := gz.Close(); err == nil {
			err = gzErr
		}
	}()

	now := time.Now()
	for _, c := range items {
		name := containerName(c.Names, c.ID)
		service := c.Labels[LabelService]
		if service == "" {
			service = "unknown"
		}

		logs, lerr := s.ContainerLogs(ctx, c.ID)
		if lerr != nil {
			skipped = append(skipped, fmt.Errorf("container %s: %w", name, lerr))
			continue
		}

		hdr := &tar.Header{
			Name:    service + "/" + name + ".log",
			Mode:    0o644,
			Size:    int64(len(logs)),
			ModTime: now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return skipped, err
		}
		if _, err := io.WriteString(tw, logs); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}
