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

	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Device      int    `yaml:"device"`
	ResX        int    `yaml:"res-x"`
	ResY        int    `yaml:"res-y"`
	FPS         int    `yaml:"fps"`
	Brand       string `yaml:"brand"`
	Model       string `yaml:"model"`
	PowerPin    string `yaml:"power-pin"`
	FrameOutput string `yaml:"frame-output"`
}

var defaultConfig = Config{
	Device:      0,
	ResX:        320,
	ResY:        240,
	FPS:         30,
	Brand:       "generic",
	Model:       "uvc",
	PowerPin:    "",
	FrameOutput: "/var/run/camera-frames",
}

func (conf *Config) Validate() error {
	if conf.ResX <= 0 || conf.ResY <= 0 {
		return errors.New("res-x and res-y should be positive")
	}
	if conf.ResX%2 != 0 {
		return errors.New("res-x should be even for UYVY frames")
	}
	if conf.FPS <= 0 {
		return errors.New("fps should be positive")
	}
	if conf.FrameOutput == "" {
		return errors.New("frame-output must be set")
	}
	return nil
}

func ParseConfigFile(filename string) (*Config, error) {
	buf, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

func ParseConfig(buf []byte) (*Config, error) {
	conf := defaultConfig
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}
