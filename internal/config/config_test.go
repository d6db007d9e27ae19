package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "output", cfg.Output.Directory)
	require.Equal(t, "input/api_members.xml", cfg.Inputs.TypeListings)
	require.Equal(t, "info", cfg.Logging.Level)
	require.True(t, cfg.RunStore.Enabled)
}

func TestLoad_YAMLFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
output:
  directory: /srv/docs
  xmldoc_dir: intellisense
links:
  base_url: https://help.vendor.example/api/
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/srv/docs", cfg.Output.Directory)
	require.Equal(t, "intellisense", cfg.Output.XMLDocDir)
	require.Equal(t, "https://help.vendor.example/api/", cfg.Links.BaseURL)
	require.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep defaults.
	require.Equal(t, "report.json", cfg.Output.ReportFile)
}

func TestLoad_EnvVariables_WinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  directory: from_file\n"), 0o644))

	t.Setenv("APIFORGE_OUTPUT_DIR", "from_env")
	t.Setenv("APIFORGE_RUN_STORE_DISABLED", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from_env", cfg.Output.Directory)
	require.False(t, cfg.RunStore.Enabled)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestWriteDefault_CreatesLoadableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiforge.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Defaults().Output, cfg.Output)

	// Refuses to clobber an existing file.
	require.Error(t, WriteDefault(path))
}
