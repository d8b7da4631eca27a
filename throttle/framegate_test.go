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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameGateAllowsBurstThenRate(t *testing.T) {
	clock := new(testClock)
	gate := NewFrameGateWithClock(10, clock)

	assert.True(t, gate.Allow())
	assert.True(t, gate.Allow())
	assert.False(t, gate.Allow())
	assert.Equal(t, 1, gate.Dropped())

	clock.Sleep(100 * time.Millisecond)
	assert.True(t, gate.Allow())
	assert.False(t, gate.Allow())
	assert.Equal(t, 2, gate.Dropped())
}

func TestFrameGateAtCameraRateDropsNothing(t *testing.T) {
	clock := new(testClock)
	gate := NewFrameGateWithClock(30, clock)

	for i := 0; i < 300; i++ {
		assert.True(t, gate.Allow(), "frame %d", i)
		clock.Sleep(time.Second / 30)
	}
	assert.Equal(t, 0, gate.Dropped())
}

func TestFrameGateDropsFastCamera(t *testing.T) {
	clock := new(testClock)
	gate := NewFrameGateWithClock(15, clock)

	allowed := 0
	for i := 0; i < 300; i++ {
		if gate.Allow() {
			allowed++
		}
		clock.Sleep(time.Second / 30)
	}
	assert.InDelta(t, 150, allowed, 3)
	assert.Equal(t, 300-allowed, gate.Dropped())
}
