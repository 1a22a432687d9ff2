package utils

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Overlay(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "ragoo.yaml")
	text := "min_anchor_len: 5000\nlocation: 0.3\ninfer_gaps: true\nskip:\n  - ctg7\n"
	require.NoError(t, os.WriteFile(fn, []byte(text), 0644))

	cfg := DefaultConfig()
	cfg.GapSize = 250
	require.NoError(t, LoadConfig(fn, &cfg))
	assert.Equal(t, 5000, cfg.MinAnchorLen)
	assert.Equal(t, 0.3, cfg.LocationThresh)
	assert.True(t, cfg.InferGaps)
	assert.Equal(t, []string{"ctg7"}, cfg.Skip)
	assert.Equal(t, 250, cfg.GapSize, "keys missing from the file keep the flag value")
	assert.Equal(t, "_SCAFFOLDED", cfg.Suffix)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Errors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), &cfg))

	fn := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("gap_size: [1, 2\n"), 0644))
	assert.Error(t, LoadConfig(fn, &cfg))
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"mapq":        func(c *Config) { c.MinMapQ = -1 },
		"anchor":      func(c *Config) { c.MinAnchorLen = -1 },
		"gap":         func(c *Config) { c.GapSize = -5 },
		"clusterDist": func(c *Config) { c.ClusterDist = -1 },
		"grouping":    func(c *Config) { c.GroupingThresh = math.NaN() },
		"location":    func(c *Config) { c.LocationThresh = math.NaN() },
	}
	for name, set := range cases {
		cfg := DefaultConfig()
		set(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	// out of range thresholds place everything or nothing
	cfg.GroupingThresh, cfg.LocationThresh, cfg.OrientationThresh = 1.5, -0.1, 1
	assert.NoError(t, cfg.Validate())
}

func TestLoadBlacklists(t *testing.T) {
	dir := t.TempDir()
	skipFn := filepath.Join(dir, "skip.txt")
	excludeFn := filepath.Join(dir, "exclude.txt")
	require.NoError(t, os.WriteFile(skipFn, []byte("ctg1\n\nctg2 \r\n"), 0644))
	require.NoError(t, os.WriteFile(excludeFn, []byte("chrUn\n"), 0644))

	cfg := DefaultConfig()
	cfg.Skip = []string{"ctg0"}
	cfg.SkipFn, cfg.ExcludeFn = skipFn, excludeFn
	require.NoError(t, cfg.LoadBlacklists())
	assert.Equal(t, []string{"ctg0", "ctg1", "ctg2"}, cfg.Skip)
	assert.Equal(t, []string{"chrUn"}, cfg.Exclude)

	cfg.SkipFn = filepath.Join(dir, "missing.txt")
	assert.Error(t, cfg.LoadBlacklists())
}

func TestMinMaxInt(t *testing.T) {
	assert.Equal(t, 3, MinInt(3, 7))
	assert.Equal(t, 7, MaxInt(3, 7))
	assert.Equal(t, -2, MinInt(-2, -2))
}
