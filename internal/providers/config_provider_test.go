package providers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"birdsong/internal/structures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYaml = `
api:
  baseUrl: http://backend.local:8000
preferences:
  backend: file
  path: /tmp/birdsong/preferences.json
timeline:
  pageSize: 6
  staleTime: 30s
logger:
  dir: /tmp
`

func TestNewConfigProvider_ReadsFileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYaml), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, AppName, conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, "http://backend.local:8000", conf.Api.BaseUrl)
	assert.Equal(t, 10*time.Second, conf.Api.Timeout)
	assert.Equal(t, 6, conf.Timeline.PageSize)
	assert.Equal(t, 30*time.Second, conf.Timeline.StaleTime)
	assert.Equal(t, []int{5, 10, 20, 30, 60}, conf.Timeline.AllowedBuckets)
	assert.Equal(t, "birdsong:user-preferences", conf.Preferences.Key)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYaml), 0644))
	t.Setenv("BIRDSONG_API_BASE_URL", "http://override.local:9000")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "http://override.local:9000", conf.Api.BaseUrl)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}
