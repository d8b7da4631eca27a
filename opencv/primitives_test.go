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

package opencv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

const (
	width  = 64
	height = 48
)

// squareFrame draws a bright square with its top left corner at (x, y).
func squareFrame(x, y int) *ttc.Frame {
	frame := ttc.NewFrame(width, height)
	for j := y; j < y+12; j++ {
		for i := x; i < x+12; i++ {
			frame.Set(i, j, 220)
		}
	}
	return frame
}

func TestConvertRoundTrip(t *testing.T) {
	frame := squareFrame(10, 10)
	raw := make([]byte, yuv.FrameSize(width, height))
	require.NoError(t, yuv.PutGray(raw, frame.Pix, width, height))

	got, err := New().ToWorking(raw, width, height)
	require.NoError(t, err)
	assert.Equal(t, width, got.Width)
	assert.Equal(t, height, got.Height)
	assert.Equal(t, frame.Pix, got.Pix)
}

func TestConvertRejectsShortBuffer(t *testing.T) {
	_, err := New().ToWorking(make([]byte, 10), width, height)
	assert.Error(t, err)
}

func TestDetectEdgesOutlinesSquare(t *testing.T) {
	edges, err := New().DetectEdges(squareFrame(10, 10), 100, 200)
	require.NoError(t, err)
	assert.NotZero(t, edges.Count())
	assert.False(t, edges.IsEdge(16, 16), "inside the square")
	assert.False(t, edges.IsEdge(50, 40), "background")
}

func TestTrackPointsFollowsShift(t *testing.T) {
	p := New()
	prev := squareFrame(20, 16)
	curr := squareFrame(22, 16)
	seeds := []ttc.Point{{X: 20, Y: 16}, {X: 31, Y: 27}}

	tracks, err := p.TrackPoints(prev, curr, seeds, ttc.DefaultSparseFlowConfig())
	require.NoError(t, err)
	require.Len(t, tracks, len(seeds))
	for i, track := range tracks {
		if !track.Valid {
			continue
		}
		assert.InDelta(t, seeds[i].X+2, track.Point.X, 1, "seed %d", i)
		assert.InDelta(t, seeds[i].Y, track.Point.Y, 1, "seed %d", i)
	}
}

func TestFlowFieldOfStillImageIsSmall(t *testing.T) {
	p := New()
	edges, err := p.DetectEdges(squareFrame(10, 10), 100, 200)
	require.NoError(t, err)

	field, err := p.FlowField(edges, edges, ttc.DefaultDenseFlowConfig())
	require.NoError(t, err)
	assert.Equal(t, width, field.Width)
	assert.Equal(t, height, field.Height)
	for _, v := range field.V {
		require.InDelta(t, 0, v.Norm(), 0.01)
	}
}

func TestEncodeWritesEdges(t *testing.T) {
	edges := ttc.NewEdgeMap(width, height)
	edges.Mark(3, 4)
	raw := make([]byte, yuv.FrameSize(width, height))
	require.NoError(t, New().Encode(edges, raw))

	frame, err := New().ToWorking(raw, width, height)
	require.NoError(t, err)
	assert.Equal(t, uint8(ttc.EdgeValue), frame.At(3, 4))
	assert.Equal(t, uint8(0), frame.At(4, 4))
}
