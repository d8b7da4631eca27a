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
	"github.com/juju/ratelimit"
)

// FrameGate drops frames arriving faster than the rate the pipeline's
// estimates are scaled for.
type FrameGate struct {
	bucket  *ratelimit.Bucket
	dropped int
}

// NewFrameGate lets through at most rate frames per second, with a
// burst of two to absorb delivery jitter.
func NewFrameGate(rate float64) *FrameGate {
	return NewFrameGateWithClock(rate, new(realClock))
}

func NewFrameGateWithClock(rate float64, clock ratelimit.Clock) *FrameGate {
	return &FrameGate{
		bucket: ratelimit.NewBucketWithRateAndClock(rate, 2, clock),
	}
}

// Allow reports whether the next frame should be processed.
func (g *FrameGate) Allow() bool {
	if g.bucket.TakeAvailable(1) == 1 {
		return true
	}
	g.dropped++
	return false
}

// Dropped returns the number of frames refused so far.
func (g *FrameGate) Dropped() int {
	return g.dropped
}
