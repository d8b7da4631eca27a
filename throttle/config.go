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

package throttle

import (
	"errors"

	config "github.com/TheCacophonyProject/go-config"
)

// NewConfig reads the thermal-throttler section shared with the other
// device services.
func NewConfig(conf *config.Config) (*config.ThermalThrottler, error) {
	throttlerConfig := config.DefaultThermalThrottler()
	if err := conf.Unmarshal(config.ThermalThrottlerKey, &throttlerConfig); err != nil {
		return nil, err
	}
	if err := Validate(&throttlerConfig); err != nil {
		return nil, err
	}
	return &throttlerConfig, nil
}

func Validate(conf *config.ThermalThrottler) error {
	if !conf.Activate {
		return nil
	}
	if conf.BucketSize <= 0 || conf.MinRefill <= 0 {
		return errors.New("throttler bucket-size and min-refill should be positive")
	}
	return nil
}
