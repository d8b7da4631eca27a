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

package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
	"github.com/TheCacophonyProject/ttc-recorder/recorder"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

// EventLoggingRecordingListener notes which frames of a clip were near
// contacts and which would have been recorded.
type EventLoggingRecordingListener struct {
	verbose        bool
	frameCount     int
	contactCount   int
	closest        float64
	recordedFrames string
}

func (p *EventLoggingRecordingListener) FrameProcessed(m ttc.SectorMinima) {
	if _, t := m.Closest(); t < p.closest {
		p.closest = t
	}
}

func (p *EventLoggingRecordingListener) ContactDetected(sector ttc.Sector, seconds float64) {
	if p.verbose {
		log.Printf("%d: near contact %s in %.2fs", p.frameCount, sector, seconds)
	}
	p.contactCount++
}

func (p *EventLoggingRecordingListener) RecordingStarted() {
	if p.verbose {
		log.Printf("%d: recording started", p.frameCount)
	}
	p.recordedFrames += fmt.Sprintf("(%d:", p.frameCount)
}

func (p *EventLoggingRecordingListener) RecordingEnded() {
	if p.verbose {
		log.Printf("%d: recording ended", p.frameCount)
	}
	p.recordedFrames += fmt.Sprintf("%d)", p.frameCount)
}

func (p *EventLoggingRecordingListener) completed() {
	if strings.HasSuffix(p.recordedFrames, ":") {
		p.recordedFrames += "end)"
	}
	if p.recordedFrames == "" {
		p.recordedFrames = "None"
	}
}

func (p *EventLoggingRecordingListener) String() string {
	return fmt.Sprintf("Recorded: %-16s Contact frames: %d/%d Closest: %.2fs",
		p.recordedFrames, p.contactCount, p.frameCount, p.closest)
}

// CPTVPlaybackTester runs recorded clips through the pipeline. Each
// clip is played at the size and frame rate in its own header.
type CPTVPlaybackTester struct {
	config *Config
	prims  ttc.Primitives
}

func NewCPTVPlaybackTester(conf *Config, prims ttc.Primitives) *CPTVPlaybackTester {
	return &CPTVPlaybackTester{
		config: conf,
		prims:  prims,
	}
}

// Detect plays filename through a fresh processor that records
// nothing.
func (cpt *CPTVPlaybackTester) Detect(filename string) (*EventLoggingRecordingListener, error) {
	verbose := cpt.config.Contact.Verbose
	if verbose {
		log.Printf("test file is %s", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader, err := cptv.NewReader(file)
	if err != nil {
		return nil, err
	}
	if reader.FPS() < 1 {
		return nil, fmt.Errorf("%s has no frame rate in its header", filename)
	}

	pc, err := cpt.config.TTC.Pipeline(reader.ResX(), reader.ResY())
	if err != nil {
		return nil, err
	}
	pipeline, err := ttc.NewPipeline(pc, cpt.prims)
	if err != nil {
		return nil, err
	}
	if verbose {
		log.Printf("playing %dx%d at %d fps", reader.ResX(), reader.ResY(), reader.FPS())
	}

	listener := &EventLoggingRecordingListener{
		verbose: verbose,
		closest: ttc.NoContact,
	}
	processor := contact.NewProcessor(pipeline, &cpt.config.Contact, &cpt.config.Recorder,
		listener, new(recorder.NoWriteRecorder), reader)

	frame := cptvframe.NewFrame(reader)
	for {
		if err := reader.ReadFrame(frame); err != nil {
			if err != io.EOF {
				log.Printf("error reading file: %v", err)
			}
			listener.completed()
			return listener, nil
		}
		if err := processor.ProcessFrame(frame); err != nil && verbose {
			log.Printf("%d: %v", listener.frameCount, err)
		}
		listener.frameCount++
	}
}
