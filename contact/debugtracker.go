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
	"fmt"
	"math"
	"strings"
)

// debugTracker summarises per-frame values between verbose log lines.
// A nil tracker ignores everything.
type debugTracker struct {
	values map[string]*stat
}

func newDebugTracker() *debugTracker {
	return &debugTracker{
		values: make(map[string]*stat),
	}
}

func (d *debugTracker) update(name string, x float64) {
	if d == nil {
		return
	}
	s := d.values[name]
	if s == nil {
		s = new(stat)
		s.reset()
		d.values[name] = s
	}
	s.add(x)
}

func (d *debugTracker) reset() {
	if d == nil {
		return
	}
	for _, s := range d.values {
		s.reset()
	}
}

// string renders the tracked values selected by format, which looks
// like "tracked:avg ttc:min". Styles are n, min, max, avg and all.
func (d *debugTracker) string(format string) string {
	if d == nil {
		return ""
	}
	var out []string
	for _, field := range strings.Fields(format) {
		parts := strings.SplitN(field, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if s := d.values[parts[0]]; s != nil && s.n > 0 {
			out = append(out, fmt.Sprintf("%s: %s", parts[0], s.format(parts[1])))
		}
	}
	return strings.Join(out, "; ")
}

type stat struct {
	n   int
	min float64
	max float64
	avg float64
}

func (s *stat) reset() {
	s.n = 0
	s.min = math.Inf(1)
	s.max = math.Inf(-1)
	s.avg = 0
}

func (s *stat) add(x float64) {
	s.n++
	s.min = math.Min(s.min, x)
	s.max = math.Max(s.max, x)
	s.avg += (x - s.avg) / float64(s.n)
}

func (s *stat) format(style string) string {
	switch style {
	case "n":
		return fmt.Sprint(s.n)
	case "min":
		return fmt.Sprintf("%.2f(min)", s.min)
	case "max":
		return fmt.Sprintf("%.2f(max)", s.max)
	case "avg":
		return fmt.Sprintf("%.2f(avg)", s.avg)
	case "all":
		return fmt.Sprintf("%.2f -> %.2f (avg: %.2f)", s.min, s.max, s.avg)
	}
	return "???"
}
