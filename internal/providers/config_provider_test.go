package providers

import (
	"os"
	"path/filepath"
	"srtrack/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalConfig = `
webServer:
  host: 127.0.0.1
  port: 8090
logger:
  level: info
  mode: 420
  dir: /tmp
tracking:
  interval: 9s
`

func TestNewConfigProvider_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0644))

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path, DebugMode: true})
	require.NoError(t, err)

	assert.Equal(t, "SrTrack", conf.AppName)
	assert.True(t, conf.Debug)
	assert.Equal(t, 9*time.Second, conf.Tracking.Interval)
	assert.Equal(t, 1024, conf.Tracking.QueueSize)
	assert.Len(t, conf.Endpoints.RankingCandidates, 2)
	assert.Equal(t, []string{"room_id", "id", "room.room_id", "room.id"}, conf.Aliases.RoomID)
	assert.Equal(t, 5*time.Minute, conf.Ranking.LiveTTL)
}

func TestNewConfigProvider_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalConfig), 0644))
	t.Setenv("SRT_TRACKING_INTERVAL", "10s")

	conf, err := NewConfigProvider(&structures.CliFlags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, conf.Tracking.Interval)
}

func TestNewConfigProvider_MissingFile(t *testing.T) {
	_, err := NewConfigProvider(&structures.CliFlags{ConfigPath: "/nonexistent/config.yaml"})
	assert.Error(t, err)
}
