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

import (
	"fmt"
	"image"
)

// Correspondence links a location in the previous frame to the motion
// observed there. Position is where the point was, Location the map
// cell its estimate belongs to in the current frame.
type Correspondence struct {
	Position     Point
	Displacement Point
	Location     image.Point
	Valid        bool
}

// Frames is what a correspondence builder gets to work with each cycle.
type Frames struct {
	Prev      *Frame
	PrevEdges *EdgeMap
	Curr      *Frame
	CurrEdges *EdgeMap
}

// CorrespondenceBuilder pairs locations between the previous and
// current frame. The returned slice is only valid until the next call.
type CorrespondenceBuilder interface {
	Build(frames Frames) ([]Correspondence, error)
}

// NewCorrespondenceBuilder returns the builder for conf.Mode.
func NewCorrespondenceBuilder(conf Config, prims Primitives) (CorrespondenceBuilder, error) {
	switch conf.Mode {
	case Sparse:
		return &sparseBuilder{flow: prims, conf: conf.SparseFlow}, nil
	case Dense:
		return &denseBuilder{flow: prims, conf: conf.DenseFlow}, nil
	}
	return nil, fmt.Errorf("unknown flow mode %v", conf.Mode)
}

// TrackingPoints returns a point for every edge pixel, scanning columns
// left to right and each column top to bottom.
func TrackingPoints(edges *EdgeMap) []Point {
	if edges == nil {
		return nil
	}
	points := make([]Point, 0, edges.Count())
	for x := 0; x < edges.Width; x++ {
		for y := 0; y < edges.Height; y++ {
			if edges.IsEdge(x, y) {
				points = append(points, Point{float64(x), float64(y)})
			}
		}
	}
	return points
}

type sparseBuilder struct {
	flow  SparseFlow
	conf  SparseFlowConfig
	corrs []Correspondence
}

func (b *sparseBuilder) Build(frames Frames) ([]Correspondence, error) {
	seeds := TrackingPoints(frames.PrevEdges)
	if len(seeds) == 0 {
		return nil, nil
	}
	tracks, err := b.flow.TrackPoints(frames.Prev, frames.Curr, seeds, b.conf)
	if err != nil {
		return nil, fmt.Errorf("sparse flow: %w", err)
	}
	if len(tracks) != len(seeds) {
		return nil, fmt.Errorf("sparse flow returned %d tracks for %d seeds", len(tracks), len(seeds))
	}

	width, height := frames.Curr.Width, frames.Curr.Height
	b.corrs = b.corrs[:0]
	for i, seed := range seeds {
		track := tracks[i]
		loc, inside := cell(track.Point, width, height)
		b.corrs = append(b.corrs, Correspondence{
			Position:     seed,
			Displacement: track.Point.Sub(seed),
			Location:     loc,
			Valid:        track.Valid && inside,
		})
	}
	return b.corrs, nil
}

type denseBuilder struct {
	flow  DenseFlow
	conf  DenseFlowConfig
	corrs []Correspondence
}

func (b *denseBuilder) Build(frames Frames) ([]Correspondence, error) {
	field, err := b.flow.FlowField(frames.PrevEdges, frames.CurrEdges, b.conf)
	if err != nil {
		return nil, fmt.Errorf("dense flow: %w", err)
	}
	if field.Width != frames.CurrEdges.Width || field.Height != frames.CurrEdges.Height {
		return nil, fmt.Errorf("flow field is %dx%d, expected %dx%d",
			field.Width, field.Height, frames.CurrEdges.Width, frames.CurrEdges.Height)
	}

	b.corrs = b.corrs[:0]
	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			b.corrs = append(b.corrs, Correspondence{
				Position:     Point{float64(x), float64(y)},
				Displacement: field.At(x, y),
				Location:     image.Pt(x, y),
				Valid:        true,
			})
		}
	}
	return b.corrs, nil
}

// cell truncates p to the pixel containing it.
func cell(p Point, width, height int) (image.Point, bool) {
	if !(p.X >= 0 && p.Y >= 0) {
		return image.Point{}, false
	}
	loc := image.Pt(int(p.X), int(p.Y))
	return loc, loc.X < width && loc.Y < height
}
