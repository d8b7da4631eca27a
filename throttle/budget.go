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
	"fmt"
	"time"

	config "github.com/TheCacophonyProject/go-config"
	"github.com/juju/ratelimit"
)

// Budget is the footage a device may record, counted in frames at the
// rate they reach the recorder. That is the pipeline rate, which can be
// well below the camera rate. Recording spends the budget and it
// refills by one minimum length clip every MinRefill.
type Budget struct {
	bucket  *ratelimit.Bucket
	minClip int64
}

// NewBudget sizes a budget for clips of at least minClipSecs recorded
// at fps.
func NewBudget(conf *config.ThermalThrottler, minClipSecs, fps int) (*Budget, error) {
	return NewBudgetWithClock(conf, minClipSecs, fps, new(realClock))
}

func NewBudgetWithClock(conf *config.ThermalThrottler, minClipSecs, fps int, clock ratelimit.Clock) (*Budget, error) {
	if err := Validate(conf); err != nil {
		return nil, err
	}
	if fps < 1 {
		return nil, fmt.Errorf("recording rate of %d fps is too low", fps)
	}
	capacity := int64(conf.BucketSize.Seconds() * float64(fps))
	minClip := int64(minClipSecs * fps)
	if minClip > capacity {
		return nil, fmt.Errorf("throttle bucket of %d frames can't hold a %d frame clip", capacity, minClip)
	}
	if minClip < 1 {
		minClip = 1
	}
	refill := float64(minClip) / conf.MinRefill.Seconds()
	return &Budget{
		bucket:  ratelimit.NewBucketWithRateAndClock(refill, capacity, clock),
		minClip: minClip,
	}, nil
}

// CanStart reports whether a minimum length clip is affordable.
func (b *Budget) CanStart() bool {
	return b.bucket.Available() >= b.minClip
}

// Spend takes one frame from the budget, reporting false when it is
// exhausted.
func (b *Budget) Spend() bool {
	return b.bucket.TakeAvailable(1) == 1
}

// Available returns the number of frames left.
func (b *Budget) Available() int64 {
	return b.bucket.Available()
}

// realClock implements ratelimit.Clock in terms of standard time functions.
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(d time.Duration) {
	time.Sleep(d)
}
