package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	os.Unsetenv("VOXEL_CONFIG")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, int64(1), cfg.World.Seed)
	assert.Equal(t, 2, cfg.Stream.Workers)
	assert.Equal(t, 6, cfg.Stream.RenderDistance)
	assert.Equal(t, 512, cfg.Solver.CollapseMaxCollapsed)
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yml")
	data := []byte("world:\n  seed: 42\nstream:\n  workers: 4\n  render_distance: 3\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(42), cfg.World.Seed)
	assert.Equal(t, 4, cfg.Stream.Workers)
	assert.Equal(t, 3, cfg.Stream.RenderDistance)
	// Незаданные поля остаются дефолтными
	assert.Equal(t, 6, cfg.Stream.LoadsPerUpdate)
}

func TestLoadNormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yml")
	data := []byte("stream:\n  workers: 0\n  render_distance: -5\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Stream.Workers, "Размер пула не может быть меньше 1")
	assert.Equal(t, 1, cfg.Stream.RenderDistance, "Радиус не может быть меньше 1")
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/engine.yml")
	assert.Error(t, err)
}

func TestRESTPortFallback(t *testing.T) {
	os.Unsetenv("VOXEL_REST_PORT")

	s := ServerConfig{}
	assert.Equal(t, 8090, s.GetRESTPort(), "Без конфига и окружения берётся порт по умолчанию")

	s.RESTPort = 9000
	assert.Equal(t, 9000, s.GetRESTPort(), "Конфиг имеет приоритет")

	os.Setenv("VOXEL_REST_PORT", "9100")
	defer os.Unsetenv("VOXEL_REST_PORT")
	s.RESTPort = 0
	assert.Equal(t, 9100, s.GetRESTPort(), "Окружение имеет приоритет над умолчанием")
}
