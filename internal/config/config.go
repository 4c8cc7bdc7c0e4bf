// Package config defines the typed configuration tree consumed by the
// Monte Carlo generator, Simulator and Reconstructor. Parsing an on-disk
// XML or JSON tree into this struct is a harness concern (spec.md Non-goal);
// this package only defines the struct, its defaults, and validation,
// mirroring the teacher's internal/config.TuningConfig pattern.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Config is the full set of tunables named in spec.md §6. All fields use
// cgs units unless the name says otherwise.
type Config struct {
	// Detector geometry.
	MirrorRadius      float64 `json:"mirror_radius"`
	StopDiameter      float64 `json:"stop_diameter"`
	MainMirrorSize    float64 `json:"mainmirr_size"`
	PMTClusterSize    float64 `json:"pmtclust_size"`
	NPMTAcross        int     `json:"n_pmt_across"`
	PMTAngularSize    float64 `json:"pmt_angular_size"`
	PMTLinearSize     float64 `json:"pmt_linear_size"`
	ElevationAngle    float64 `json:"elevation_angle"`
	DetectorPositionX float64 `json:"detector_position_x"`
	DetectorPositionY float64 `json:"detector_position_y"`
	DetectorPositionZ float64 `json:"detector_position_z"`

	// Atmosphere / physics.
	ScaleHeight   float64 `json:"scale_height"`
	RhoSea        float64 `json:"rho_sea"`
	RefracSea     float64 `json:"refrac_sea"`
	XMax1         float64 `json:"x_max_1"`
	XMax2         float64 `json:"x_max_2"`
	XMax3         float64 `json:"x_max_3"`
	NMaxRatio     float64 `json:"n_max_ratio"`
	EnergyPow     float64 `json:"energy_pow"`
	CherenkovA    float64 `json:"chkv_yield_a"`
	CherenkovB    float64 `json:"chkv_yield_b"`
	EnergyThresMeV float64 `json:"chkv_energy_threshold_mev"`
	EnergyMaxMeV   float64 `json:"chkv_energy_max_mev"`
	FlorYieldA    float64 `json:"flor_yield_a"`
	FlorYieldB    float64 `json:"flor_yield_b"`
	OpticalEfficiency float64 `json:"optical_efficiency"`

	// Noise / trigger.
	SkyNoise     float64 `json:"sky_noise"`
	GndNoise     float64 `json:"gnd_noise"`
	TrigrThresh  float64 `json:"trigr_thresh"`
	NoiseThresh  float64 `json:"noise_thresh"`
	PlaneThresh  float64 `json:"plane_thresh"`
	ImpactBuffr  float64 `json:"impact_buffr"`
	TrigrClustr  int     `json:"trigr_clustr"`

	// Simulation.
	DepthStep     float64 `json:"depth_step"`
	FlorThin      int     `json:"flor_thin"`
	ChkvThin      int     `json:"chkv_thin"`
	BackToler     float64 `json:"back_toler"`
	StartTracking float64 `json:"start_tracking"`
	TimeBin       float64 `json:"time_bin"`
	TimeJitter    float64 `json:"time_jitter"`
	CheckBackCollision bool `json:"check_back_collision"`
	CherenkovSpecularGround bool `json:"chkv_specular_ground"`

	// Monte Carlo.
	EnergyMin    float64 `json:"energy_min"`
	EnergyMax    float64 `json:"energy_max"`
	CosineMin    float64 `json:"cosine_min"`
	CosineMax    float64 `json:"cosine_max"`
	ImpactMax    float64 `json:"impact_max"`
	RNGSeed      uint64  `json:"rng_seed"`
}

// Default returns the configuration's defaults, taken from
// original_source/cherenkov_lib/MonteCarlo.h and Simulator.h where the
// original hard-coded constants (documented in SPEC_FULL.md §4.3).
func Default() Config {
	return Config{
		MirrorRadius:   600,
		StopDiameter:   200,
		MainMirrorSize: 600,
		PMTClusterSize: 100,
		NPMTAcross:     20,
		PMTAngularSize: 0.02,
		PMTLinearSize:  4.0,
		ElevationAngle: 0.17,

		ScaleHeight: 841300,
		RhoSea:      0.001225,
		RefracSea:   1.00029,
		XMax1:       725.0,
		XMax2:       55.0,
		XMax3:       18.0,
		NMaxRatio:   1.39e9,
		EnergyPow:   3.0,
		CherenkovA:  1,
		CherenkovB:  1,
		EnergyThresMeV: 0.26,
		EnergyMaxMeV:   1e6,
		FlorYieldA:        4.5,
		FlorYieldB:        1.0,
		OpticalEfficiency: 0.1,

		SkyNoise:    1e6,
		GndNoise:    1e7,
		TrigrThresh: 5,
		NoiseThresh: 3,
		PlaneThresh: 0.05,
		ImpactBuffr: 3,
		TrigrClustr: 5,

		DepthStep:     10,
		FlorThin:      100,
		ChkvThin:      100,
		BackToler:     1e-6,
		StartTracking: 200,
		TimeBin:       1e-7,
		TimeJitter:    2e-9,

		EnergyMin: 1e17,
		EnergyMax: 1e21,
		CosineMin: 0.5,
		CosineMax: 1.0,
		ImpactMax: 2e6,
		RNGSeed:   1,
	}
}

// Validate rejects configurations with non-physical parameters: non-positive
// geometry or energy ranges, out-of-range angles, or zero bin widths. A
// Config failing Validate is a configuration error (spec.md §7): fatal at
// construction, never recovered locally.
func (c Config) Validate() error {
	type check struct {
		ok  bool
		msg string
	}
	checks := []check{
		{c.MirrorRadius > 0, "mirror_radius must be positive"},
		{c.StopDiameter > 0, "stop_diameter must be positive"},
		{c.MainMirrorSize > 0, "mainmirr_size must be positive"},
		{c.PMTClusterSize > 0, "pmtclust_size must be positive"},
		{c.NPMTAcross > 0, "n_pmt_across must be positive"},
		{c.PMTAngularSize > 0, "pmt_angular_size must be positive"},
		{c.ElevationAngle > -math.Pi/2 && c.ElevationAngle < math.Pi/2, "elevation_angle out of range"},
		{c.ScaleHeight > 0, "scale_height must be positive"},
		{c.RhoSea > 0, "rho_sea must be positive"},
		{c.RefracSea >= 1, "refrac_sea must be >= 1"},
		{c.NMaxRatio > 0, "n_max_ratio must be positive"},
		{c.EnergyPow > 0, "energy_pow must be positive"},
		{c.TrigrThresh > 0, "trigr_thresh must be positive"},
		{c.NoiseThresh > 0, "noise_thresh must be positive"},
		{c.TrigrClustr > 0, "trigr_clustr must be positive"},
		{c.DepthStep > 0, "depth_step must be positive"},
		{c.FlorThin > 0, "flor_thin must be positive"},
		{c.ChkvThin > 0, "chkv_thin must be positive"},
		{c.TimeBin > 0, "time_bin must be positive"},
		{c.EnergyMin > 0 && c.EnergyMax > c.EnergyMin, "energy_min/energy_max must form a positive range"},
		{c.CosineMin >= 0 && c.CosineMax <= 1 && c.CosineMax > c.CosineMin, "cosine_min/cosine_max out of range"},
		{c.ImpactMax > 0, "impact_max must be positive"},
		{c.FlorYieldB > 0, "flor_yield_b must be positive"},
		{c.OpticalEfficiency > 0 && c.OpticalEfficiency <= 1, "optical_efficiency must be in (0, 1]"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("config: %s", chk.msg)
		}
	}
	return nil
}

// LoadJSON decodes a Config from an already-open reader, starting from
// Default() so that a partial document only overrides the fields it sets.
// No filesystem access happens here; opening the file is the harness's job.
func LoadJSON(r io.Reader) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
