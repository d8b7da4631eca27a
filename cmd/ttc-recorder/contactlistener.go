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
	"log"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"

	"github.com/TheCacophonyProject/ttc-recorder/loglimiter"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

type statusEmitter interface {
	emitMinima(m ttc.SectorMinima) error
	emitRecording(recording bool, session string) error
}

// contactListener publishes the minima of every frame and when clips
// start and stop, and records an event when a near contact begins.
type contactListener struct {
	session  string
	emitter  statusEmitter
	addEvent func(eventclient.Event) error
	log      *loglimiter.LogLimiter

	contactSeen  bool
	wasInContact bool
}

func newContactListener(session string, emitter statusEmitter) *contactListener {
	return &contactListener{
		session:  session,
		emitter:  emitter,
		addEvent: eventclient.AddEvent,
		log:      loglimiter.New(minLogInterval),
	}
}

func (l *contactListener) FrameProcessed(m ttc.SectorMinima) {
	l.wasInContact = l.contactSeen
	l.contactSeen = false

	if l.emitter == nil {
		return
	}
	if err := l.emitter.emitMinima(m); err != nil {
		l.log.Printf("failed to emit sector minima: %v", err)
	}
}

func (l *contactListener) ContactDetected(sector ttc.Sector, seconds float64) {
	l.contactSeen = true
	if l.wasInContact {
		return
	}

	log.Printf("near contact %s in %.2fs", sector, seconds)
	event := eventclient.Event{
		Timestamp: time.Now(),
		Type:      "nearContact",
		Details: map[string]interface{}{
			"sector":  sector.String(),
			"seconds": seconds,
			"session": l.session,
		},
	}
	if err := l.addEvent(event); err != nil {
		l.log.Printf("could not record near contact event: %v", err)
	}
}

func (l *contactListener) RecordingStarted() {
	l.announceRecording(true)
}

func (l *contactListener) RecordingEnded() {
	l.announceRecording(false)
}

func (l *contactListener) announceRecording(recording bool) {
	if l.emitter == nil {
		return
	}
	if err := l.emitter.emitRecording(recording, l.session); err != nil {
		l.log.Printf("failed to emit recording state: %v", err)
	}
}
