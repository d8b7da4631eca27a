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
	"io"
	"log"

	"github.com/TheCacophonyProject/ttc-recorder/headers"
)

type frameSource interface {
	NextFrame(raw []byte) error
}

// captureErr is a failure of the camera rather than of the socket.
// Only these warrant cycling camera power.
type captureErr struct {
	cause error
}

func (e *captureErr) Error() string {
	return "capture failed: " + e.cause.Error()
}

func (e *captureErr) Unwrap() error {
	return e.cause
}

// streamer sends the stream header followed by every captured frame.
type streamer struct {
	header *headers.HeaderInfo
	// watchdog is called once every watchdogFrames frames.
	watchdog       func()
	watchdogFrames int
	sent           int
}

func newStreamer(conf *Config, watchdog func()) *streamer {
	return &streamer{
		header:         streamHeader(conf),
		watchdog:       watchdog,
		watchdogFrames: sdNotifySecs * conf.FPS,
	}
}

// run streams until src or w fails. Errors from src are returned as a
// *captureErr.
func (s *streamer) run(src frameSource, w io.Writer) error {
	if err := s.header.Write(w); err != nil {
		return err
	}
	log.Print("streaming frames")

	raw := make([]byte, s.header.FrameSize())
	sinceWatchdog := 0
	for {
		if err := src.NextFrame(raw); err != nil {
			return &captureErr{err}
		}
		if sinceWatchdog++; sinceWatchdog >= s.watchdogFrames {
			s.watchdog()
			sinceWatchdog = 0
		}
		if _, err := w.Write(raw); err != nil {
			return err
		}
		s.sent++
	}
}
