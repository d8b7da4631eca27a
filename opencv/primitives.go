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

// Package opencv implements the pipeline's vision operations on top of
// OpenCV through gocv.
package opencv

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

// Primitives satisfies ttc.Primitives. It holds no state and is safe to
// share.
type Primitives struct{}

var _ ttc.Primitives = Primitives{}

func New() Primitives {
	return Primitives{}
}

// ToWorking converts a UYVY camera buffer to a grayscale frame.
func (Primitives) ToWorking(raw []byte, width, height int) (*ttc.Frame, error) {
	if len(raw) != yuv.FrameSize(width, height) {
		return nil, fmt.Errorf("raw frame is %d bytes, expected %d", len(raw), yuv.FrameSize(width, height))
	}
	src, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC2, raw)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorYUVToGRAYUYVY)
	if gray.Empty() {
		return nil, errors.New("colour conversion produced no image")
	}

	frame := ttc.NewFrame(width, height)
	copy(frame.Pix, gray.ToBytes())
	return frame, nil
}

// DetectEdges runs the Canny detector over img.
func (Primitives) DetectEdges(img *ttc.Frame, low, high float64) (*ttc.EdgeMap, error) {
	src, err := frameMat(img.Width, img.Height, img.Pix)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Canny(src, &dst, float32(low), float32(high))
	if dst.Empty() {
		return nil, errors.New("edge detection produced no image")
	}

	edges := ttc.NewEdgeMap(img.Width, img.Height)
	copy(edges.Pix, dst.ToBytes())
	return edges, nil
}

// TrackPoints follows seeds from prev to curr with pyramidal
// Lucas-Kanade flow.
func (Primitives) TrackPoints(prev, curr *ttc.Frame, seeds []ttc.Point, conf ttc.SparseFlowConfig) ([]ttc.Track, error) {
	if len(seeds) == 0 {
		return nil, nil
	}
	prevMat, err := frameMat(prev.Width, prev.Height, prev.Pix)
	if err != nil {
		return nil, err
	}
	defer prevMat.Close()
	currMat, err := frameMat(curr.Width, curr.Height, curr.Pix)
	if err != nil {
		return nil, err
	}
	defer currMat.Close()

	prevPts := gocv.NewMatWithSize(len(seeds), 2, gocv.MatTypeCV32F)
	defer prevPts.Close()
	for i, p := range seeds {
		prevPts.SetFloatAt(i, 0, float32(p.X))
		prevPts.SetFloatAt(i, 1, float32(p.Y))
	}
	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	errMat := gocv.NewMat()
	defer errMat.Close()

	criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, conf.MaxIterations, conf.Epsilon)
	gocv.CalcOpticalFlowPyrLKWithParams(prevMat, currMat, prevPts, nextPts, &status, &errMat,
		image.Pt(conf.WindowSize, conf.WindowSize), conf.MaxLevel, criteria, 0, conf.MinEigThreshold)
	if nextPts.Rows() != len(seeds) || status.Rows() != len(seeds) {
		return nil, fmt.Errorf("optical flow returned %d points for %d seeds", nextPts.Rows(), len(seeds))
	}

	tracks := make([]ttc.Track, len(seeds))
	for i := range tracks {
		tracks[i] = ttc.Track{
			Point: ttc.Point{
				X: float64(nextPts.GetFloatAt(i, 0)),
				Y: float64(nextPts.GetFloatAt(i, 1)),
			},
			Valid: status.GetUCharAt(i, 0) == 1,
		}
	}
	return tracks, nil
}

// FlowField computes Farneback dense flow between two edge maps.
func (Primitives) FlowField(prev, curr *ttc.EdgeMap, conf ttc.DenseFlowConfig) (*ttc.FlowField, error) {
	prevMat, err := frameMat(prev.Width, prev.Height, prev.Pix)
	if err != nil {
		return nil, err
	}
	defer prevMat.Close()
	currMat, err := frameMat(curr.Width, curr.Height, curr.Pix)
	if err != nil {
		return nil, err
	}
	defer currMat.Close()

	flow := gocv.NewMat()
	defer flow.Close()
	gocv.CalcOpticalFlowFarneback(prevMat, currMat, &flow,
		conf.PyramidScale, conf.Levels, conf.WindowSize, conf.Iterations, conf.PolyN, conf.PolySigma, 0)
	if flow.Rows() != curr.Height || flow.Cols() != curr.Width {
		return nil, fmt.Errorf("flow field is %dx%d, expected %dx%d", flow.Cols(), flow.Rows(), curr.Width, curr.Height)
	}

	data, err := flow.DataPtrFloat32()
	if err != nil {
		return nil, err
	}
	field := ttc.NewFlowField(curr.Width, curr.Height)
	for i := range field.V {
		field.V[i] = ttc.Point{X: float64(data[2*i]), Y: float64(data[2*i+1])}
	}
	return field, nil
}

// Encode writes the edge map into the UYVY buffer raw.
func (Primitives) Encode(edges *ttc.EdgeMap, raw []byte) error {
	return yuv.PutGray(raw, edges.Pix, edges.Width, edges.Height)
}

func frameMat(width, height int, pix []uint8) (gocv.Mat, error) {
	if len(pix) != width*height {
		return gocv.NewMat(), fmt.Errorf("image holds %d pixels, expected %d", len(pix), width*height)
	}
	return gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8U, pix)
}
