package compose_test

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/moby/moby/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cosytest/pkg/compose"
)

func readArchive(t *testing.T, path string) map[string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	entries := map[string]string{}
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		entries[hdr.Name] = string(data)
	}
	return entries
}

func TestSetup_DumpLogs(t *testing.T) {
	s, _ := queryFixture(t, nil)
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	require.NoError(t, s.DumpLogs(context.Background(), "orders.tar.gz", dir))

	entries := readArchive(t, filepath.Join(dir, "orders.tar.gz"))
	assert.Equal(t, map[string]string{
		"db/orders-db-1.log":   "database ready\n",
		"api/orders-api-1.log": "listening on :8080\n",
		"api/orders-api-2.log": "",
		"job/orders-job-1.log": "",
	}, entries)
}

func TestSetup_DumpLogsPartialFailure(t *testing.T) {
	s, api := queryFixture(t, nil)
	base := api.ContainerLogsFn
	api.ContainerLogsFn = func(ctx context.Context, id string, opts client.ContainerLogsOptions) (client.ContainerLogsResult, error) {
		if id == "api2" {
			return nil, errors.New("log driver does not support reading")
		}
		return base(ctx, id, opts)
	}
	dir := t.TempDir()

	err := s.DumpLogs(context.Background(), "orders.tar.gz", dir)
	var partial *compose.PartialDumpError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, filepath.Join(dir, "orders.tar.gz"), partial.Path)
	require.Len(t, partial.Skipped, 1)
	assert.Contains(t, err.Error(), "orders-api-2")

	entries := readArchive(t, filepath.Join(dir, "orders.tar.gz"))
	assert.Len(t, entries, 3)
	assert.NotContains(t, entries, "api/orders-api-2.log")
}

func TestSetup_DumpLogsListFailure(t *testing.T) {
	s, api := queryFixture(t, nil)
	api.ContainerListFn = func(context.Context, client.ContainerListOptions) (client.ContainerListResult, error) {
		return client.ContainerListResult{}, errors.New("daemon gone")
	}
	dir := t.TempDir()

	require.Error(t, s.DumpLogs(context.Background(), "orders.tar.gz", dir))
	_, statErr := os.Stat(filepath.Join(dir, "orders.tar.gz"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSetup_DumpLogsWriteFailureLeavesNoPartialFile(t *testing.T) {
	s, _ := queryFixture(t, nil)
	dir := t.TempDir()
	// A non-empty directory at the target path makes the final rename fail.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "orders.tar.gz", "keep"), 0o755))

	err := s.DumpLogs(context.Background(), "orders.tar.gz", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing log dump")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "orders.tar.gz", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}
