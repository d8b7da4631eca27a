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

package contact

import (
	"errors"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

type Config struct {
	// TTCThreshold is the time-to-contact in seconds below which a frame
	// counts as a near contact.
	TTCThreshold  float64 `yaml:"ttc-threshold"`
	TriggerFrames int     `yaml:"trigger-frames"`
	Verbose       bool    `yaml:"verbose"`
}

func DefaultConfig() Config {
	return Config{
		TTCThreshold:  1.5,
		TriggerFrames: 3,
	}
}

func (conf *Config) Validate() error {
	if conf.TTCThreshold <= 0 || conf.TTCThreshold >= ttc.NoContact {
		return errors.New("ttc-threshold should be positive and below the no-contact value")
	}
	if conf.TriggerFrames < 1 {
		return errors.New("trigger-frames should be at least 1")
	}
	return nil
}
