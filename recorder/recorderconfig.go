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

package recorder

import (
	"errors"

	config "github.com/TheCacophonyProject/go-config"
	"github.com/TheCacophonyProject/window"
)

// alwaysOn is used for both ends of the window when none is set.
const alwaysOn = "00:00"

type RecorderConfig struct {
	MinSecs     int
	MaxSecs     int
	PreviewSecs int
	Window      window.Window
}

// NewConfig reads the thermal-recorder, location and windows sections
// shared with the other device services.
func NewConfig(conf *config.Config) (*RecorderConfig, error) {
	thermalRecorderConfig := config.DefaultThermalRecorder()
	if err := conf.Unmarshal(config.ThermalRecorderKey, &thermalRecorderConfig); err != nil {
		return nil, err
	}
	windowLocationConfig := config.DefaultWindowLocation()
	if err := conf.Unmarshal(config.LocationKey, &windowLocationConfig); err != nil {
		return nil, err
	}
	windowsConfig := config.DefaultWindows()
	if err := conf.Unmarshal(config.WindowsKey, &windowsConfig); err != nil {
		return nil, err
	}
	return FromSections(thermalRecorderConfig, windowsConfig, windowLocationConfig)
}

// FromSections builds the recorder configuration from already decoded
// sections. Window start and stop may be relative to sunrise and
// sunset at loc.
func FromSections(rec config.ThermalRecorder, windows config.Windows, loc config.Location) (*RecorderConfig, error) {
	start, stop := windows.StartRecording, windows.StopRecording
	if start == "" && stop == "" {
		start, stop = alwaysOn, alwaysOn
	}
	w, err := window.New(
		start,
		stop,
		float64(loc.Latitude),
		float64(loc.Longitude))
	if err != nil {
		return nil, err
	}

	recorderConfig := RecorderConfig{
		MinSecs:     rec.MinSecs,
		MaxSecs:     rec.MaxSecs,
		PreviewSecs: rec.PreviewSecs,
		Window:      *w,
	}

	if err := recorderConfig.Validate(); err != nil {
		return nil, err
	}
	return &recorderConfig, nil
}

func (conf *RecorderConfig) Validate() error {
	if conf.MaxSecs < conf.MinSecs {
		return errors.New("max-secs should be larger than min-secs")
	}
	if conf.MinSecs < 0 || conf.PreviewSecs < 0 {
		return errors.New("min-secs and preview-secs can't be negative")
	}
	return nil
}
