package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roller.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[accretion]
growth_rate = 0.1
max_attached_objects = 5
detach_delay = "250ms"

[logging]
level = "debug"
`)
	cfg, notes, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, notes)

	assert.Equal(t, 0.1, cfg.Accretion.GrowthRate)
	assert.Equal(t, 5, cfg.Accretion.MaxAttachedObjects)
	assert.Equal(t, 250*time.Millisecond, cfg.Accretion.DetachDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.Accretion.GrowDelay, "untouched keys keep defaults")
	assert.Equal(t, 40.0, cfg.Accretion.SizeThresholdPercent)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadClampsRanges(t *testing.T) {
	path := writeConfig(t, `
[accretion]
size_threshold_percent = 250
max_attached_objects = 0
growth_rate = -1
`)
	cfg, notes, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
	assert.Equal(t, 100.0, cfg.Accretion.SizeThresholdPercent)
	assert.Equal(t, 1, cfg.Accretion.MaxAttachedObjects)
	assert.Equal(t, 0.0, cfg.Accretion.GrowthRate)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultsNeedNoClamping(t *testing.T) {
	assert.Empty(t, Defaults().Clamp())
}
