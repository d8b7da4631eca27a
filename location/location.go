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

// Package location reads the device location, which recording windows
// relative to sunrise and sunset need.
package location

import (
	"errors"

	config "github.com/TheCacophonyProject/go-config"
)

const (
	maxLatitude  = 90
	maxLongitude = 180
)

// New reads the location section. A device that has never been given
// a location, or one placed at (0, 0), gets the default.
func New(conf *config.Config) (*config.Location, error) {
	loc := config.DefaultWindowLocation()
	if err := conf.Unmarshal(config.LocationKey, &loc); err != nil {
		return nil, err
	}
	return Resolve(loc)
}

// Resolve substitutes the default for an empty location and checks
// the coordinates are in range.
func Resolve(loc config.Location) (*config.Location, error) {
	if IsEmpty(loc) {
		def := config.DefaultWindowLocation()
		loc.Latitude = def.Latitude
		loc.Longitude = def.Longitude
	}
	if err := Validate(loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func IsEmpty(loc config.Location) bool {
	return loc.Latitude == 0 && loc.Longitude == 0
}

func Validate(loc config.Location) error {
	if loc.Latitude < -maxLatitude || loc.Latitude > maxLatitude {
		return errors.New("latitude outside of normal range")
	}
	if loc.Longitude < -maxLongitude || loc.Longitude > maxLongitude {
		return errors.New("longitude outside of normal range")
	}
	return nil
}
