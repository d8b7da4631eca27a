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

import "fmt"

// NoContact is the sector minimum before any estimate has been seen.
const NoContact = 1000

type Sector int

const (
	Left Sector = iota
	Center
	Right
)

func (s Sector) String() string {
	switch s {
	case Left:
		return "left"
	case Center:
		return "center"
	case Right:
		return "right"
	}
	return fmt.Sprintf("sector(%d)", int(s))
}

// SectorOf classifies pixel column x of an image width pixels wide.
func SectorOf(x, width int) Sector {
	if x < width/3 {
		return Left
	}
	if x > 2*width/3 {
		return Right
	}
	return Center
}

// SectorMinima is the smallest time-to-contact seen in each third of
// the image during one frame.
type SectorMinima struct {
	Left   float64 `json:"left"`
	Center float64 `json:"center"`
	Right  float64 `json:"right"`
}

func NewSectorMinima() SectorMinima {
	return SectorMinima{NoContact, NoContact, NoContact}
}

func (m *SectorMinima) Get(s Sector) float64 {
	switch s {
	case Left:
		return m.Left
	case Right:
		return m.Right
	}
	return m.Center
}

// Observe lowers the minimum of sector s if ttc is smaller.
func (m *SectorMinima) Observe(s Sector, ttc float64) {
	switch s {
	case Left:
		if ttc < m.Left {
			m.Left = ttc
		}
	case Right:
		if ttc < m.Right {
			m.Right = ttc
		}
	default:
		if ttc < m.Center {
			m.Center = ttc
		}
	}
}

// Closest returns the sector with the smallest minimum. Ties go to the
// centre, then to the left.
func (m SectorMinima) Closest() (Sector, float64) {
	sector, ttc := Center, m.Center
	if m.Left < ttc {
		sector, ttc = Left, m.Left
	}
	if m.Right < ttc {
		sector, ttc = Right, m.Right
	}
	return sector, ttc
}

// Stats counts what happened to the correspondences of one frame.
type Stats struct {
	Tracked   int
	Valid     int
	Estimated int
}

// Aggregate fills ttcMap with NoEstimate, writes the estimate of every
// valid correspondence at its location and returns the per-sector
// minima. NoEstimate values never lower a minimum.
func Aggregate(corrs []Correspondence, width, height int, frameRate float64, ttcMap []float64) (SectorMinima, Stats) {
	for i := range ttcMap {
		ttcMap[i] = NoEstimate
	}

	minima := NewSectorMinima()
	stats := Stats{Tracked: len(corrs)}
	center := ImageCenter(width, height)
	for _, c := range corrs {
		if !c.Valid {
			continue
		}
		stats.Valid++
		t := TimeToContact(center, c.Position, c.Displacement, frameRate)
		ttcMap[c.Location.Y*width+c.Location.X] = t
		if t == NoEstimate {
			continue
		}
		stats.Estimated++
		minima.Observe(SectorOf(c.Location.X, width), t)
	}
	return minima, stats
}
