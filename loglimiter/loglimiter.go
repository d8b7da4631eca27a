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

package loglimiter

import (
	"fmt"
	"log"
	"time"
)

// maxEntries bounds how many distinct messages are remembered.
const maxEntries = 64

// New returns a new LogLimiter with the configured minimum log interval.
func New(interval time.Duration) *LogLimiter {
	return &LogLimiter{
		interval: interval,
		nowFunc:  time.Now,
		entries:  make(map[string]*entry),
	}
}

// LogLimiter suppresses a log message if the same message was logged
// within some time interval. Several messages can be limited at once,
// so per-frame errors that alternate are still held back. When a
// message is let through again the number of suppressed copies is
// appended.
type LogLimiter struct {
	interval time.Duration
	nowFunc  func() time.Time
	entries  map[string]*entry
}

type entry struct {
	logged     time.Time
	suppressed int
}

func (limiter *LogLimiter) Printf(format string, v ...interface{}) {
	limiter.Print(fmt.Sprintf(format, v...))
}

func (limiter *LogLimiter) Print(s string) {
	now := limiter.nowFunc()
	e := limiter.entries[s]
	if e != nil && now.Sub(e.logged) < limiter.interval {
		e.suppressed++
		return
	}

	if e == nil {
		limiter.prune(now)
		e = new(entry)
		limiter.entries[s] = e
	}
	if e.suppressed > 0 {
		log.Printf("%s (suppressed %d times)", s, e.suppressed)
	} else {
		log.Print(s)
	}
	e.logged = now
	e.suppressed = 0
}

// prune forgets messages whose interval has passed once the limiter
// holds too many.
func (limiter *LogLimiter) prune(now time.Time) {
	if len(limiter.entries) < maxEntries {
		return
	}
	for s, e := range limiter.entries {
		if now.Sub(e.logged) >= limiter.interval {
			delete(limiter.entries, s)
		}
	}
}
