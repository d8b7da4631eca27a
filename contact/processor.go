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
	"fmt"
	"sync"
	"time"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	"github.com/TheCacophonyProject/window"

	"github.com/TheCacophonyProject/ttc-recorder/loglimiter"
	"github.com/TheCacophonyProject/ttc-recorder/recorder"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

const (
	minLogInterval = time.Minute
	debugLogSecs   = 10
)

// Listener hears about what the processor sees. Every method is called
// from the goroutine driving the processor.
type Listener interface {
	FrameProcessed(minima ttc.SectorMinima)
	ContactDetected(sector ttc.Sector, seconds float64)
	RecordingStarted()
	RecordingEnded()
}

// Processor runs the time-to-contact pipeline over a camera stream and
// records clips around near contacts. Process and ProcessFrame must be
// called from one goroutine; LatestMinima and GetRecentFrame may be
// called from any.
func NewProcessor(
	pipeline *ttc.Pipeline,
	conf *Config,
	recorderConf *recorder.RecorderConfig,
	listener Listener,
	recorder recorder.Recorder,
	camera cptvframe.CameraSpec,
) *Processor {
	pc := pipeline.Config()
	mp := &Processor{
		pipeline:      pipeline,
		ttcMap:        make([]float64, pipeline.MapSize()),
		raw:           make([]byte, yuv.FrameSize(pc.Width, pc.Height)),
		minFrames:     recorderConf.MinSecs * camera.FPS(),
		maxFrames:     recorderConf.MaxSecs * camera.FPS(),
		frameLoop:     NewFrameLoop(recorderConf.PreviewSecs*camera.FPS()+conf.TriggerFrames, camera),
		window:        recorderConf.Window,
		listener:      listener,
		threshold:     conf.TTCThreshold,
		triggerFrames: conf.TriggerFrames,
		recorder:      recorder,
		debugEvery:    debugLogSecs * camera.FPS(),
		start:         time.Now(),
		log:           loglimiter.New(minLogInterval),
		latest:        ttc.NewSectorMinima(),
	}
	if conf.Verbose {
		mp.debug = newDebugTracker()
	}
	return mp
}

type Processor struct {
	pipeline      *ttc.Pipeline
	state         ttc.State
	ttcMap        []float64
	raw           []byte
	minFrames     int
	maxFrames     int
	framesWritten int
	frameLoop     *FrameLoop
	isRecording   bool
	writeUntil    int
	window        window.Window
	listener      Listener
	threshold     float64
	triggerFrames int
	triggered     int
	recorder      recorder.Recorder
	debug         *debugTracker
	debugEvery    int
	frameCount    int
	start         time.Time
	log           *loglimiter.LogLimiter

	mu     sync.Mutex
	latest ttc.SectorMinima
}

// Process runs one raw camera buffer through the pipeline. The first
// buffer only primes the pipeline. A failed cycle is logged, returned
// and leaves the processor ready for the next buffer.
func (mp *Processor) Process(rawFrame []byte) error {
	sample := mp.frameLoop.Current()
	timeOn := time.Since(mp.start)

	if !mp.state.Ready() {
		if err := mp.pipeline.Init(&mp.state, rawFrame); err != nil {
			mp.log.Printf("pipeline init failed: %v", err)
			return err
		}
		frame, edges := mp.state.Get()
		sample.set(frame, edges, ttc.NewSectorMinima(), timeOn)
		mp.process(sample, false)
		return nil
	}

	res, err := mp.pipeline.Run(&mp.state, rawFrame, mp.ttcMap)
	if err != nil {
		mp.log.Printf("pipeline cycle failed: %v", err)
		return err
	}
	sample.set(res.Frame, res.Edges, res.Minima, timeOn)

	mp.mu.Lock()
	mp.latest = res.Minima
	mp.mu.Unlock()

	sector, closest := res.Minima.Closest()
	mp.trackStats(res.Stats, closest)
	if mp.listener != nil {
		mp.listener.FrameProcessed(res.Minima)
	}

	contact := closest < mp.threshold
	if contact && mp.listener != nil {
		mp.listener.ContactDetected(sector, closest)
	}
	mp.process(sample, contact)
	return nil
}

// ProcessFrame runs a previously recorded frame through the pipeline.
func (mp *Processor) ProcessFrame(srcFrame *cptvframe.Frame) error {
	gray := make([]uint8, 0, len(mp.raw)/yuv.BytesPerPixel)
	for _, row := range srcFrame.Pix {
		for _, v := range row {
			if v > 255 {
				v = 255
			}
			gray = append(gray, uint8(v))
		}
	}
	pc := mp.pipeline.Config()
	if len(gray) != pc.Width*pc.Height {
		return fmt.Errorf("frame has %d pixels, expected %dx%d", len(gray), pc.Width, pc.Height)
	}
	if err := yuv.PutGray(mp.raw, gray, pc.Width, pc.Height); err != nil {
		return err
	}
	return mp.Process(mp.raw)
}

func (mp *Processor) process(sample *Sample, contact bool) {
	if contact {
		mp.triggered++

		if mp.isRecording {
			// extend the clip while contact continues
			mp.writeUntil = min(mp.framesWritten+mp.minFrames, mp.maxFrames)
		} else if mp.triggered < mp.triggerFrames {
			// Only start after triggerFrames consecutive near-contact frames.
		} else if err := mp.canStartWriting(); err != nil {
			mp.log.Printf("clip not started: %v", err)
		} else if err := mp.startRecording(); err != nil {
			mp.log.Printf("can't start clip: %v", err)
		} else {
			mp.writeUntil = mp.minFrames
		}
	} else {
		mp.triggered = 0
	}

	if mp.isRecording {
		if err := mp.recorder.WriteFrame(sample.Frame); err != nil {
			mp.log.Printf("failed to write to CPTV file: %v", err)
		}
		mp.framesWritten++
	}

	mp.frameLoop.Move()

	if mp.isRecording && mp.framesWritten >= mp.writeUntil {
		if err := mp.stopRecording(); err != nil {
			mp.log.Printf("failed to stop CPTV file: %v", err)
		}
	}
}

func (mp *Processor) trackStats(stats ttc.Stats, closest float64) {
	if mp.debug == nil {
		return
	}
	mp.debug.update("tracked", float64(stats.Tracked))
	mp.debug.update("valid", float64(stats.Valid))
	mp.debug.update("estimated", float64(stats.Estimated))
	mp.debug.update("ttc", closest)
	if mp.frameCount++; mp.frameCount%mp.debugEvery == 0 {
		mp.log.Print(mp.debug.string("tracked:avg valid:avg estimated:all ttc:min"))
		mp.debug.reset()
	}
}

// LatestMinima returns the sector minima of the most recent frame.
func (mp *Processor) LatestMinima() ttc.SectorMinima {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.latest
}

// GetRecentFrame returns a copy of the most recent sample, or nil
// before the first frame.
func (mp *Processor) GetRecentFrame() *Sample {
	return mp.frameLoop.CopyRecent()
}

func (mp *Processor) canStartWriting() error {
	if !mp.window.Active() {
		return errors.New("near contact but outside of recording window")
	}
	return mp.recorder.CheckCanRecord()
}

func (mp *Processor) startRecording() error {
	if err := mp.recorder.StartRecording(); err != nil {
		return err
	}

	mp.isRecording = true
	if mp.listener != nil {
		mp.listener.RecordingStarted()
	}
	return mp.recordPreTriggerFrames()
}

func (mp *Processor) stopRecording() error {
	if mp.listener != nil {
		mp.listener.RecordingEnded()
	}

	err := mp.recorder.StopRecording()

	mp.framesWritten = 0
	mp.writeUntil = 0
	mp.isRecording = false
	mp.triggered = 0
	// a clip started soon after must not repeat frames
	mp.frameLoop.SetAsOldest()

	return err
}

// recordPreTriggerFrames writes the preview. The current sample is
// left out as it is written with the rest of the clip.
func (mp *Processor) recordPreTriggerFrames() error {
	history := mp.frameLoop.GetHistory()
	for _, sample := range history[:len(history)-1] {
		if err := mp.recorder.WriteFrame(sample.Frame); err != nil {
			return err
		}
	}
	return nil
}
