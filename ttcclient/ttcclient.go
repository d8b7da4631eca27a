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

// Package ttcclient calls the ttc-recorder service over D-Bus.
package ttcclient

import (
	"github.com/godbus/dbus"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

const (
	dbusPath   = "/org/cacophony/ttcrecorder"
	dbusDest   = "org.cacophony.ttcrecorder"
	methodBase = "org.cacophony.ttcrecorder"
)

func getDbusObj() (dbus.BusObject, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	obj := conn.Object(dbusDest, dbusPath)
	return obj, nil
}

// GetSectorMinima returns the sector minima of the most recently
// processed frame.
func GetSectorMinima() (ttc.SectorMinima, error) {
	obj, err := getDbusObj()
	if err != nil {
		return ttc.SectorMinima{}, err
	}
	var m ttc.SectorMinima
	err = obj.Call(methodBase+".GetSectorMinima", 0).Store(&m.Left, &m.Center, &m.Right)
	return m, err
}

// TakeSnapshot asks the recorder to save the next edge map as a still.
func TakeSnapshot() error {
	obj, err := getDbusObj()
	if err != nil {
		return err
	}
	return obj.Call(methodBase+".TakeSnapshot", 0).Store()
}
