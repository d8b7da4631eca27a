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

// Frame is an 8-bit grayscale working image stored row-major.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

func (f *Frame) Set(x, y int, v uint8) {
	f.Pix[y*f.Width+x] = v
}

// EdgeMap is a binary mask with the dimensions of the frame it was
// extracted from. Edge pixels hold EdgeValue, all others zero.
type EdgeMap struct {
	Width  int
	Height int
	Pix    []uint8
}

const EdgeValue = 255

func NewEdgeMap(width, height int) *EdgeMap {
	return &EdgeMap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (e *EdgeMap) IsEdge(x, y int) bool {
	return e.Pix[y*e.Width+x] != 0
}

func (e *EdgeMap) Mark(x, y int) {
	e.Pix[y*e.Width+x] = EdgeValue
}

// Count returns the number of edge pixels.
func (e *EdgeMap) Count() int {
	n := 0
	for _, v := range e.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Point is an image coordinate, or a displacement between two of them.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// FlowField holds one displacement per pixel, row-major.
type FlowField struct {
	Width  int
	Height int
	V      []Point
}

func NewFlowField(width, height int) *FlowField {
	return &FlowField{
		Width:  width,
		Height: height,
		V:      make([]Point, width*height),
	}
}

func (f *FlowField) At(x, y int) Point {
	return f.V[y*f.Width+x]
}

func (f *FlowField) Set(x, y int, v Point) {
	f.V[y*f.Width+x] = v
}
