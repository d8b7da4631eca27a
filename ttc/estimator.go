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

package ttc

import "math"

// NoEstimate marks a map location without a time-to-contact.
const NoEstimate = -1

// TimeToContact estimates the time until the camera reaches the point
// that was at position and moved by displacement, assuming the scene is
// static and points flow radially out from the image centre under
// forward motion. It is a relative heuristic, not a physical distance
// over speed. A zero or unusable displacement gives NoEstimate.
func TimeToContact(center, position, displacement Point, frameRate float64) float64 {
	speed := displacement.Norm()
	if !(speed > 0) || math.IsInf(speed, 0) {
		return NoEstimate
	}
	distance := center.Sub(position).Norm()
	return (distance / speed) / frameRate
}

// ImageCenter returns the image centre used by TimeToContact.
func ImageCenter(width, height int) Point {
	return Point{0.5 * float64(width), 0.5 * float64(height)}
}
