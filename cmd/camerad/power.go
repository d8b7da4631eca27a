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
	"fmt"
	"log"
	"time"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
)

const (
	powerOffTime = 2 * time.Second
	startupTime  = 8 * time.Second
)

type powerPin interface {
	Out(l gpio.Level) error
}

// powerCycler switches the camera off and on again through a GPIO
// pin. A nil pin means camera power isn't switchable.
type powerCycler struct {
	pin   powerPin
	sleep func(time.Duration)
}

func newPowerCycler(pinName string) (*powerCycler, error) {
	pc := &powerCycler{sleep: time.Sleep}
	if pinName == "" {
		return pc, nil
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("unknown camera power pin %q", pinName)
	}
	pc.pin = pin
	return pc, nil
}

func (pc *powerCycler) cycle() error {
	if pc.pin == nil {
		return nil
	}

	log.Print("turning camera power off")
	if err := pc.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to set camera power pin low: %v", err)
	}
	pc.sleep(powerOffTime)

	log.Print("turning camera power on")
	if err := pc.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to set camera power pin high: %v", err)
	}

	log.Print("waiting for camera startup")
	pc.sleep(startupTime)
	return nil
}
