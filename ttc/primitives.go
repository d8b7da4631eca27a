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

// ColorConverter turns a raw camera buffer into a working image.
type ColorConverter interface {
	ToWorking(raw []byte, width, height int) (*Frame, error)
}

// EdgeDetector extracts a binary edge map from a working image.
type EdgeDetector interface {
	DetectEdges(img *Frame, low, high float64) (*EdgeMap, error)
}

// Track is where the sparse flow followed a seed point to, and whether
// it managed to.
type Track struct {
	Point Point
	Valid bool
}

// SparseFlow follows seed points from prev to curr. The returned slice
// is index aligned with seeds.
type SparseFlow interface {
	TrackPoints(prev, curr *Frame, seeds []Point, conf SparseFlowConfig) ([]Track, error)
}

// DenseFlow computes a displacement for every pixel between two edge maps.
type DenseFlow interface {
	FlowField(prev, curr *EdgeMap, conf DenseFlowConfig) (*FlowField, error)
}

// Encoder writes an edge map back into a raw camera buffer in place.
type Encoder interface {
	Encode(edges *EdgeMap, raw []byte) error
}

// Primitives is the set of vision operations the pipeline is built on.
type Primitives interface {
	ColorConverter
	EdgeDetector
	SparseFlow
	DenseFlow
	Encoder
}
