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
	"errors"
	"image"

	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

// fakePrims stands in for the vision library. Bright pixels of the
// working image are edges, flow results are scripted by the test.
type fakePrims struct {
	tracks     func(seeds []Point) []Track
	field      *FlowField
	sparseCall int
	denseCall  int
	convertErr error
	encodeErr  error
	// edgeSize, when set, is the size of every edge map returned.
	edgeSize image.Point
}

func (f *fakePrims) ToWorking(raw []byte, width, height int) (*Frame, error) {
	if f.convertErr != nil {
		return nil, f.convertErr
	}
	frame := NewFrame(width, height)
	if err := yuv.Luma(frame.Pix, raw, width, height); err != nil {
		return nil, err
	}
	return frame, nil
}

func (f *fakePrims) DetectEdges(img *Frame, low, high float64) (*EdgeMap, error) {
	if f.edgeSize != (image.Point{}) {
		return NewEdgeMap(f.edgeSize.X, f.edgeSize.Y), nil
	}
	edges := NewEdgeMap(img.Width, img.Height)
	for i, v := range img.Pix {
		if float64(v) >= high {
			edges.Pix[i] = EdgeValue
		}
	}
	return edges, nil
}

func (f *fakePrims) TrackPoints(prev, curr *Frame, seeds []Point, conf SparseFlowConfig) ([]Track, error) {
	f.sparseCall++
	if f.tracks == nil {
		return nil, errors.New("no tracks scripted")
	}
	return f.tracks(seeds), nil
}

func (f *fakePrims) FlowField(prev, curr *EdgeMap, conf DenseFlowConfig) (*FlowField, error) {
	f.denseCall++
	if f.field == nil {
		return NewFlowField(curr.Width, curr.Height), nil
	}
	return f.field, nil
}

func (f *fakePrims) Encode(edges *EdgeMap, raw []byte) error {
	if f.encodeErr != nil {
		return f.encodeErr
	}
	return yuv.PutGray(raw, edges.Pix, edges.Width, edges.Height)
}

// rawWithEdges builds a UYVY buffer whose only bright pixels are pts.
func rawWithEdges(width, height int, pts ...image.Point) []byte {
	gray := make([]uint8, width*height)
	for _, p := range pts {
		gray[p.Y*width+p.X] = 255
	}
	raw := make([]byte, yuv.FrameSize(width, height))
	if err := yuv.PutGray(raw, gray, width, height); err != nil {
		panic(err)
	}
	return raw
}
