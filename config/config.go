// Package config loads the application settings of farfield from a config file, FARFIELD_*
// environment variables and built-in defaults, in decreasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/wiless/farfield"
	"github.com/wiless/farfield/antenna"
	"github.com/wiless/farfield/deployment"
	"github.com/wiless/farfield/dispatch"
)

const EnvPrefix = "FARFIELD"

type PatchConfig struct {
	Er float64 `mapstructure:"er"`
	H  float64 `mapstructure:"h"`
	W  float64 `mapstructure:"w"`
	L  float64 `mapstructure:"l"`
}

type HornConfig struct {
	Q float64 `mapstructure:"q"`
}

// ArrayConfig describes a rectangular array, spacing 0 meaning lambda/2.
// Steering angles are in degree.
type ArrayConfig struct {
	XCount     int     `mapstructure:"x_count"`
	YCount     int     `mapstructure:"y_count"`
	Spacing    float64 `mapstructure:"spacing"`
	SteerTheta float64 `mapstructure:"steer_theta"`
	SteerPhi   float64 `mapstructure:"steer_phi"`
}

// AppConfig is the complete configuration of a run.
type AppConfig struct {
	FreqHz       float64              `mapstructure:"freq_hz"`
	Pattern      string               `mapstructure:"pattern"`
	Patch        PatchConfig          `mapstructure:"patch"`
	Horn         HornConfig           `mapstructure:"horn"`
	Array        ArrayConfig          `mapstructure:"array"`
	Workers      int                  `mapstructure:"workers"`
	OutputDir    string               `mapstructure:"output_dir"`
	KeepElements bool                 `mapstructure:"keep_elements"`
	LogLevel     string               `mapstructure:"log_level"`
	Redis        dispatch.RedisConfig `mapstructure:"redis"`
}

// SetDefaults registers a default for every key, which also makes every key visible to the
// environment override.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("freq_hz", 14e9)
	v.SetDefault("pattern", antenna.PatchPattern.String())
	v.SetDefault("patch.er", 3.66)
	v.SetDefault("patch.h", 0.101e-3)
	v.SetDefault("patch.w", 0.0)
	v.SetDefault("patch.l", 0.0)
	v.SetDefault("horn.q", antenna.HornTaperExponent)
	v.SetDefault("array.x_count", 2)
	v.SetDefault("array.y_count", 1)
	v.SetDefault("array.spacing", 0.0)
	v.SetDefault("array.steer_theta", 0.0)
	v.SetDefault("array.steer_phi", 0.0)
	v.SetDefault("workers", 0)
	v.SetDefault("output_dir", ".")
	v.SetDefault("keep_elements", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", dispatch.DefaultPrefix)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.timeout", dispatch.DefaultTimeout)
}

// Load reads file, or farfield.{yaml,json,toml} from . and /etc/farfield when file is empty.
// A missing default config file is not an error.
func Load(v *viper.Viper, file string) (AppConfig, error) {
	var cfg AppConfig
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("farfield")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/farfield")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		log.Debug("No config file found, using defaults")
	} else {
		log.Debugf("Using config %s", v.ConfigFileUsed())
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (c AppConfig) Level() (log.Level, error) {
	return log.ParseLevel(c.LogLevel)
}

// PatternSetting returns the element pattern selected by Pattern with the parameters of its
// section, horn.* or patch.*.
func (c AppConfig) PatternSetting() (antenna.PatternSetting, error) {
	params := map[string]interface{}{}
	switch strings.ToLower(strings.TrimSpace(c.Pattern)) {
	case antenna.HornPattern.String():
		params["q"] = c.Horn.Q
	case antenna.PatchPattern.String():
		params["er"], params["h"], params["w"], params["l"] = c.Patch.Er, c.Patch.H, c.Patch.W, c.Patch.L
	}
	return antenna.DecodePatternSetting(map[string]interface{}{
		"type":   c.Pattern,
		"params": params,
	})
}

func (c AppConfig) Job() (farfield.Job, error) {
	s, err := c.PatternSetting()
	if err != nil {
		return farfield.Job{}, err
	}
	job := farfield.Job{FreqHz: c.FreqHz, Pattern: s}
	if _, err := job.NewPattern(); err != nil {
		return job, err
	}
	return job, nil
}

// Spacing is the element spacing in meters.
func (c AppConfig) Spacing() float64 {
	if c.Array.Spacing > 0 {
		return c.Array.Spacing
	}
	return antenna.Wavelength(c.FreqHz) / 2
}

// Elements generates the configured array, steered when a steering angle is set.
func (c AppConfig) Elements() (deployment.ElementArray, error) {
	arr, err := deployment.GenerateRectangularArray(c.Array.XCount, c.Array.YCount, c.Spacing())
	if err != nil {
		return nil, err
	}
	if c.Array.SteerTheta != 0 || c.Array.SteerPhi != 0 {
		arr = arr.Steer(antenna.Wavelength(c.FreqHz), c.Array.SteerTheta, c.Array.SteerPhi)
	}
	return arr, nil
}
