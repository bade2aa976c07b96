package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	mandelgif "github.com/fractalview/mandelgif"
)

// config carries the server settings and the default render parameters.
// Request query parameters override the render defaults per request.
type config struct {
	Listen  string         `yaml:"listen"`
	Workers int            `yaml:"workers"`
	Render  renderDefaults `yaml:"render"`
}

type renderDefaults struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Left       float64 `yaml:"left"`
	Right      float64 `yaml:"right"`
	Top        float64 `yaml:"top"`
	Bottom     float64 `yaml:"bottom"`
	Iterations int     `yaml:"iterations"`
	StartZ0    float64 `yaml:"start_z0"`
	EndZ0      float64 `yaml:"end_z0"`
	StepZ0     float64 `yaml:"step_z0"`
	DelayMS    int     `yaml:"delay_ms"`
	Palette    string  `yaml:"palette"`
}

func defaultConfig() *config {
	s := mandelgif.DefaultSweep()
	return &config{
		Listen:  ":8080",
		Workers: mandelgif.DefaultWorkers,
		Render: renderDefaults{
			Width:      s.Width,
			Height:     s.Height,
			Left:       s.Left,
			Right:      s.Right,
			Top:        s.Top,
			Bottom:     s.Bottom,
			Iterations: s.Iterations,
			StartZ0:    s.StartZ0,
			EndZ0:      s.EndZ0,
			StepZ0:     s.StepZ0,
			DelayMS:    int(s.Delay / time.Millisecond),
			Palette:    "gray",
		},
	}
}

// loadConfig returns the built-in defaults overlaid with the YAML file at
// path, if one is given.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *config) sweep() mandelgif.Sweep {
	r := c.Render
	return mandelgif.Sweep{
		Width:      r.Width,
		Height:     r.Height,
		Left:       r.Left,
		Right:      r.Right,
		Top:        r.Top,
		Bottom:     r.Bottom,
		Iterations: r.Iterations,
		StartZ0:    r.StartZ0,
		EndZ0:      r.EndZ0,
		StepZ0:     r.StepZ0,
		Delay:      time.Duration(r.DelayMS) * time.Millisecond,
	}
}
