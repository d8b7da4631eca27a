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

package throttle

import (
	"log"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/ttc-recorder/recorder"
)

// Cause says why footage was held back.
type Cause int

const (
	// StartRefused means a clip was wanted but the budget could not
	// cover a minimum length clip.
	StartRefused Cause = iota
	// ClipCut means the budget ran out part way through a clip.
	ClipCut
)

func (c Cause) String() string {
	if c == ClipCut {
		return "clip-cut"
	}
	return "start-refused"
}

// Event describes one throttling.
type Event struct {
	Cause Cause
	// Written is the number of frames of the clip that made it to disk.
	Written int
}

type Listener interface {
	Throttled(Event)
}

type clipState int

const (
	idle clipState = iota
	writing
	// waiting is a clip that was asked for but is held back until the
	// budget recovers.
	waiting
)

// Recorder stops passing clips to its base recorder once the budget is
// spent. A vehicle parked facing a wall would otherwise keep seeing an
// imminent contact and fill the disk with near identical clips.
type Recorder struct {
	base     recorder.Recorder
	budget   *Budget
	listener Listener
	state    clipState
	written  int
}

// NewRecorder throttles base with budget. The listener may be nil.
func NewRecorder(base recorder.Recorder, budget *Budget, listener Listener) *Recorder {
	return &Recorder{
		base:     base,
		budget:   budget,
		listener: listener,
	}
}

func (r *Recorder) CheckCanRecord() error {
	return r.base.CheckCanRecord()
}

func (r *Recorder) StartRecording() error {
	r.state = waiting
	started, err := r.resume()
	if err != nil {
		return err
	}
	if !started {
		log.Printf("clip not started due to throttling, %d frames left", r.budget.Available())
		r.notify(Event{Cause: StartRefused})
	}
	return nil
}

func (r *Recorder) StopRecording() error {
	wasWriting := r.state == writing
	r.state = idle
	if wasWriting {
		return r.base.StopRecording()
	}
	return nil
}

func (r *Recorder) WriteFrame(frame *cptvframe.Frame) error {
	switch r.state {
	case idle:
		return nil
	case waiting:
		started, err := r.resume()
		if err != nil || !started {
			return err
		}
	}

	if r.budget.Spend() {
		r.written++
		return r.base.WriteFrame(frame)
	}

	log.Printf("clip throttled after %d frames", r.written)
	r.notify(Event{Cause: ClipCut, Written: r.written})
	r.state = waiting
	return r.base.StopRecording()
}

// resume starts the base recorder for a waiting clip if the budget
// allows.
func (r *Recorder) resume() (bool, error) {
	if !r.budget.CanStart() {
		return false, nil
	}
	if err := r.base.StartRecording(); err != nil {
		r.state = idle
		return false, err
	}
	r.state = writing
	r.written = 0
	return true, nil
}

func (r *Recorder) notify(ev Event) {
	if r.listener != nil {
		r.listener.Throttled(ev)
	}
}
