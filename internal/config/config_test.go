package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsNonPositiveEnergy(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.EnergyMin = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "energy_min")
}

func TestValidateRejectsBadElevation(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.ElevationAngle = 10
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elevation_angle")
}

func TestLoadJSONOverridesDefaultsPartially(t *testing.T) {
	t.Parallel()
	r := strings.NewReader(`{"trigr_clustr": 9}`)
	cfg, err := LoadJSON(r)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.TrigrClustr)
	assert.Equal(t, Default().MirrorRadius, cfg.MirrorRadius)
}

func TestLoadJSONRejectsInvalidResult(t *testing.T) {
	t.Parallel()
	r := strings.NewReader(`{"mirror_radius": -1}`)
	_, err := LoadJSON(r)
	require.Error(t, err)
}

func TestLoadJSONWithNoOverridesMatchesDefault(t *testing.T) {
	t.Parallel()
	cfg, err := LoadJSON(strings.NewReader(`{}`))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
