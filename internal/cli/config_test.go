package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/nifrel/internal/model"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "NIFREL_ENDPOINT_URL", envVar("endpoint.url"))
	assert.Equal(t, "NIFREL_CACHE_AUTO_FLUSH", envVar("cache.auto_flush"))
}

func TestRenderConfig_LoadsBack(t *testing.T) {
	want := model.DefaultConfig()
	data, err := renderConfig(want)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "# "+sectionNotes["endpoint"])
	assert.Contains(t, text, "# "+sectionNotes["cache"])

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(data)))

	got := &model.Config{}
	require.NoError(t, v.Unmarshal(got))
	assert.Equal(t, want, got)
}

func TestWriteConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := model.DefaultConfig()

	require.NoError(t, writeConfigFile(path, cfg, false))
	_, err := os.Stat(path)
	require.NoError(t, err)

	err = writeConfigFile(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg.Endpoint.URL = "http://localhost:8890/sparql"
	require.NoError(t, writeConfigFile(path, cfg, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://localhost:8890/sparql")
}

func TestPrintEnvKeys_Sorted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printEnvKeys(&buf, []string{"log.level", "cache.path"}))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "NIFREL_CACHE_PATH")
	assert.Contains(t, string(lines[1]), "NIFREL_LOG_LEVEL")
}
