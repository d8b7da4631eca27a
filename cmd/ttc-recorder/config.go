// ttc-recorder - estimate time-to-contact from forward camera video
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"errors"
	"io/ioutil"

	goconfig "github.com/TheCacophonyProject/go-config"
	yaml "gopkg.in/yaml.v2"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
	"github.com/TheCacophonyProject/ttc-recorder/location"
	"github.com/TheCacophonyProject/ttc-recorder/recorder"
	"github.com/TheCacophonyProject/ttc-recorder/throttle"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

// Config is the recorder's own YAML settings plus the sections it
// shares with the other device services through go-config.
type Config struct {
	FrameInput   string         `yaml:"frame-input"`
	OutputDir    string         `yaml:"output-dir"`
	MinDiskSpace uint64         `yaml:"min-disk-space"`
	WebListen    string         `yaml:"web-listen"`
	TTC          TTCConfig      `yaml:"ttc"`
	Contact      contact.Config `yaml:"contact"`

	DeviceID   int                       `yaml:"-"`
	DeviceName string                    `yaml:"-"`
	Recorder   recorder.RecorderConfig   `yaml:"-"`
	Throttler  goconfig.ThermalThrottler `yaml:"-"`
	Location   goconfig.Location         `yaml:"-"`
}

// sharedConfig is what the recorder reads from the device config
// directory.
type sharedConfig struct {
	Device    goconfig.Device
	Location  goconfig.Location
	Recorder  recorder.RecorderConfig
	Throttler goconfig.ThermalThrottler
}

func readSharedConfig(dir string) (*sharedConfig, error) {
	configRW, err := goconfig.New(dir)
	if err != nil {
		return nil, err
	}

	var device goconfig.Device
	if err := configRW.Unmarshal(goconfig.DeviceKey, &device); err != nil {
		return nil, err
	}
	loc, err := location.New(configRW)
	if err != nil {
		return nil, err
	}
	rec, err := recorder.NewConfig(configRW)
	if err != nil {
		return nil, err
	}
	throttler, err := throttle.NewConfig(configRW)
	if err != nil {
		return nil, err
	}
	return &sharedConfig{
		Device:    device,
		Location:  *loc,
		Recorder:  *rec,
		Throttler: *throttler,
	}, nil
}

// TTCConfig is the pipeline configuration apart from the frame
// dimensions, which come from the camera.
type TTCConfig struct {
	Mode       string               `yaml:"mode"`
	FrameRate  float64              `yaml:"frame-rate"`
	CannyLow   float64              `yaml:"canny-low"`
	CannyHigh  float64              `yaml:"canny-high"`
	SparseFlow ttc.SparseFlowConfig `yaml:"sparse"`
	DenseFlow  ttc.DenseFlowConfig  `yaml:"dense"`
}

func defaultTTCConfig() TTCConfig {
	def := ttc.DefaultConfig(0, 0)
	return TTCConfig{
		Mode:       def.Mode.String(),
		FrameRate:  def.FrameRate,
		CannyLow:   def.CannyLow,
		CannyHigh:  def.CannyHigh,
		SparseFlow: def.SparseFlow,
		DenseFlow:  def.DenseFlow,
	}
}

// Pipeline returns the pipeline configuration for a width x height
// camera.
func (conf *TTCConfig) Pipeline(width, height int) (ttc.Config, error) {
	mode, err := ttc.ParseMode(conf.Mode)
	if err != nil {
		return ttc.Config{}, err
	}
	pc := ttc.Config{
		Width:      width,
		Height:     height,
		FrameRate:  conf.FrameRate,
		Mode:       mode,
		CannyLow:   conf.CannyLow,
		CannyHigh:  conf.CannyHigh,
		SparseFlow: conf.SparseFlow,
		DenseFlow:  conf.DenseFlow,
	}
	return pc, pc.Validate()
}

func (conf *TTCConfig) Validate() error {
	// Any camera size will do for checking the rest of the settings.
	_, err := conf.Pipeline(1, 1)
	return err
}

func (conf *Config) Validate() error {
	if conf.FrameInput == "" {
		return errors.New("frame-input must be set")
	}
	if err := conf.TTC.Validate(); err != nil {
		return err
	}
	if err := conf.Contact.Validate(); err != nil {
		return err
	}
	if err := conf.Recorder.Validate(); err != nil {
		return err
	}
	if err := throttle.Validate(&conf.Throttler); err != nil {
		return err
	}
	return location.Validate(conf.Location)
}

var defaultConfig = Config{
	FrameInput:   "/var/run/camera-frames",
	OutputDir:    "/var/spool/cptv",
	MinDiskSpace: 200,
	TTC:          defaultTTCConfig(),
	Contact:      contact.DefaultConfig(),
}

func ParseConfigFiles(configFile, configDir string) (*Config, error) {
	buf, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, err
	}
	shared, err := readSharedConfig(configDir)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf, shared)
}

func ParseConfig(buf []byte, shared *sharedConfig) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	conf.DeviceID = shared.Device.ID
	conf.DeviceName = shared.Device.Name
	conf.Location = shared.Location
	conf.Recorder = shared.Recorder
	conf.Throttler = shared.Throttler

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
