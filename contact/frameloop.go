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
	"sync"
	"time"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

// Sample is one processed frame as kept for clips and snapshots. Frame
// holds the working luma widened to 16 bits for CPTV.
type Sample struct {
	Frame  *cptvframe.Frame
	Edges  *ttc.EdgeMap
	Minima ttc.SectorMinima
}

func newSample(camera cptvframe.CameraSpec) *Sample {
	return &Sample{
		Frame:  cptvframe.NewFrame(camera),
		Edges:  ttc.NewEdgeMap(camera.ResX(), camera.ResY()),
		Minima: ttc.NewSectorMinima(),
	}
}

func (s *Sample) set(frame *ttc.Frame, edges *ttc.EdgeMap, minima ttc.SectorMinima, timeOn time.Duration) {
	for y, row := range s.Frame.Pix {
		for x := range row {
			row[x] = uint16(frame.At(x, y))
		}
	}
	s.Frame.Status.TimeOn = timeOn
	copy(s.Edges.Pix, edges.Pix)
	s.Minima = minima
}

func (s *Sample) copy() *Sample {
	edges := ttc.NewEdgeMap(s.Edges.Width, s.Edges.Height)
	copy(edges.Pix, s.Edges.Pix)
	return &Sample{
		Frame:  s.Frame.CreateCopy(),
		Edges:  edges,
		Minima: s.Minima,
	}
}

const noOldest = -1

// FrameLoop keeps the last n samples, overwriting the oldest when full.
// The newest sample can be anywhere in the ring and every sample it
// hands out is eventually overwritten.
type FrameLoop struct {
	size          int
	currentIndex  int
	samples       []*Sample
	orderedFrames []*Sample
	bufferFull    bool
	oldest        int
	stored        int
	mu            sync.Mutex
}

func NewFrameLoop(size int, camera cptvframe.CameraSpec) *FrameLoop {
	if size < 2 {
		size = 2
	}
	samples := make([]*Sample, size)
	for i := range samples {
		samples[i] = newSample(camera)
	}
	return &FrameLoop{
		size:          size,
		samples:       samples,
		orderedFrames: make([]*Sample, size),
		oldest:        noOldest,
	}
}

func (fl *FrameLoop) nextIndexAfter(index int) int {
	return (index + 1) % fl.size
}

// Move makes the current sample part of the history and returns the
// slot to fill next.
func (fl *FrameLoop) Move() *Sample {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	fl.currentIndex = fl.nextIndexAfter(fl.currentIndex)
	if fl.currentIndex == 0 {
		fl.bufferFull = true
	}
	if fl.currentIndex == fl.oldest {
		fl.oldest = noOldest
	}
	if fl.stored < fl.size {
		fl.stored++
	}
	return fl.samples[fl.currentIndex]
}

// Current returns the slot being filled.
func (fl *FrameLoop) Current() *Sample {
	return fl.samples[fl.currentIndex]
}

// CopyRecent returns a copy of the last completed sample, or nil if
// there isn't one yet.
func (fl *FrameLoop) CopyRecent() *Sample {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.stored == 0 {
		return nil
	}
	previousIndex := (fl.currentIndex - 1 + fl.size) % fl.size
	return fl.samples[previousIndex].copy()
}

// GetHistory returns the remembered samples from oldest to newest, the
// current one included. The returned slice is reused by the next call.
func (fl *FrameLoop) GetHistory() []*Sample {
	history := fl.fullHistory()
	if fl.oldest == noOldest {
		return history
	}
	n := (fl.currentIndex-fl.oldest+fl.size)%fl.size + 1
	return history[len(history)-n:]
}

func (fl *FrameLoop) fullHistory() []*Sample {
	if !fl.bufferFull {
		n := copy(fl.orderedFrames, fl.samples[:fl.currentIndex+1])
		return fl.orderedFrames[:n]
	}
	next := fl.nextIndexAfter(fl.currentIndex)
	n := copy(fl.orderedFrames, fl.samples[next:])
	copy(fl.orderedFrames[n:], fl.samples[:next])
	return fl.orderedFrames
}

// SetAsOldest marks the current slot as the start of history so that
// samples already written to a clip aren't offered again.
func (fl *FrameLoop) SetAsOldest() {
	fl.oldest = fl.currentIndex
}
