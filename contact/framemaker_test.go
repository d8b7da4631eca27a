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
	"errors"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

const (
	testWidth  = 32
	testHeight = 24
	testFPS    = 10
)

type TestCamera struct{}

func (cam *TestCamera) ResX() int { return testWidth }
func (cam *TestCamera) ResY() int { return testHeight }
func (cam *TestCamera) FPS() int  { return testFPS }

// approachMarker is the pixel a test frame lights up to make the fake
// flow report fast motion towards the camera.
var approachMarker = struct{ x, y int }{1, 0}

// fakePrims treats saturated pixels as edges. Its dense flow reports a
// large displacement at the left edge whenever the approach marker is
// an edge in the current frame.
type fakePrims struct{}

func (fakePrims) ToWorking(raw []byte, width, height int) (*ttc.Frame, error) {
	frame := ttc.NewFrame(width, height)
	if err := yuv.Luma(frame.Pix, raw, width, height); err != nil {
		return nil, err
	}
	return frame, nil
}

func (fakePrims) DetectEdges(img *ttc.Frame, low, high float64) (*ttc.EdgeMap, error) {
	edges := ttc.NewEdgeMap(img.Width, img.Height)
	for i, v := range img.Pix {
		if v == 255 {
			edges.Pix[i] = ttc.EdgeValue
		}
	}
	return edges, nil
}

func (fakePrims) TrackPoints(prev, curr *ttc.Frame, seeds []ttc.Point, conf ttc.SparseFlowConfig) ([]ttc.Track, error) {
	return nil, errors.New("sparse flow not used")
}

func (fakePrims) FlowField(prev, curr *ttc.EdgeMap, conf ttc.DenseFlowConfig) (*ttc.FlowField, error) {
	field := ttc.NewFlowField(curr.Width, curr.Height)
	if curr.IsEdge(approachMarker.x, approachMarker.y) {
		field.Set(0, curr.Height/2, ttc.Point{X: -100, Y: 0})
	}
	return field, nil
}

func (fakePrims) Encode(edges *ttc.EdgeMap, raw []byte) error {
	return yuv.PutGray(raw, edges.Pix, edges.Width, edges.Height)
}

// TestFrameMaker plays scripted frames through a processor. Each frame
// carries its sequence number in pixel (0, 0).
type TestFrameMaker struct {
	frameCounter uint16
	processor    *Processor
	camera       cptvframe.CameraSpec
}

func MakeTestFrameMaker(processor *Processor, camera cptvframe.CameraSpec) *TestFrameMaker {
	return &TestFrameMaker{
		processor: processor,
		camera:    camera,
	}
}

func (tfm *TestFrameMaker) AddBackgroundFrames(frames int) *TestFrameMaker {
	for i := 0; i < frames; i++ {
		tfm.play(tfm.makeFrame())
	}
	return tfm
}

func (tfm *TestFrameMaker) AddApproachFrames(frames int) *TestFrameMaker {
	for i := 0; i < frames; i++ {
		frame := tfm.makeFrame()
		frame.Pix[approachMarker.y][approachMarker.x] = 255
		tfm.play(frame)
	}
	return tfm
}

func (tfm *TestFrameMaker) play(frame *cptvframe.Frame) {
	if err := tfm.processor.ProcessFrame(frame); err != nil {
		panic(err)
	}
}

func (tfm *TestFrameMaker) makeFrame() *cptvframe.Frame {
	frame := cptvframe.NewFrame(tfm.camera)
	for y, row := range frame.Pix {
		for x := range row {
			frame.Pix[y][x] = 40
		}
	}
	frame.Pix[0][0] = tfm.frameCounter
	tfm.frameCounter++
	return frame
}
