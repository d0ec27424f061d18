package factory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schmitthub/cosytest/internal/cmdutil"
	"github.com/schmitthub/cosytest/internal/config"
)

func TestNew(t *testing.T) {
	f := New("1.0.0", "abc123")

	assert.Equal(t, "1.0.0", f.Version)
	assert.Equal(t, "abc123", f.Commit)
	require.NotNil(t, f.IOStreams)
	assert.NotNil(t, f.IOStreams.Logger)
	assert.NotNil(t, f.Config)
	assert.NotNil(t, f.Setup)

	// Nothing was created yet, so closing is a no-op.
	f.CloseSetup()
}

func TestFactory_ConfigIsCached(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("project: orders\n"), 0o644))

	f := New("dev", "none")
	f.ConfigPath = dir

	first, err := f.Config()
	require.NoError(t, err)
	assert.Equal(t, "orders", first.Project)

	require.NoError(t, os.WriteFile(path, []byte("project: changed\n"), 0o644))
	second, err := f.Config()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestFactory_SetupMissingConfig(t *testing.T) {
	f := New("dev", "none")
	f.ConfigPath = t.TempDir()

	_, err := f.Setup(context.Background())
	assert.True(t, config.IsConfigNotFound(err))
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		name     string
		override string
		cfg      *config.Config
		want     string
		wantErr  bool
	}{
		{name: "from config", cfg: &config.Config{Project: "orders"}, want: "orders"},
		{name: "override", override: "Orders Dev", cfg: &config.Config{Project: "orders"}, want: "orders-dev"},
		{name: "unique needs override", cfg: &config.Config{Project: "orders", UniqueProject: true}, wantErr: true},
		{name: "unique with override", override: "orders-1a2b", cfg: &config.Config{UniqueProject: true}, want: "orders-1a2b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &cmdutil.Factory{Project: tt.override}
			got, err := projectName(f, tt.cfg)
			if tt.wantErr {
				var flagErr *cmdutil.FlagError
				assert.ErrorAs(t, err, &flagErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
