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
	"errors"
	"testing"

	"github.com/TheCacophonyProject/event-reporter/eventclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

type clipState struct {
	recording bool
	session   string
}

type recordingEmitter struct {
	minima []ttc.SectorMinima
	clips  []clipState
	err    error
}

func (e *recordingEmitter) emitMinima(m ttc.SectorMinima) error {
	e.minima = append(e.minima, m)
	return e.err
}

func (e *recordingEmitter) emitRecording(recording bool, session string) error {
	e.clips = append(e.clips, clipState{recording, session})
	return e.err
}

func newTestListener() (*contactListener, *recordingEmitter, *[]eventclient.Event) {
	emitter := new(recordingEmitter)
	events := new([]eventclient.Event)
	l := newContactListener("session-1", emitter)
	l.addEvent = func(e eventclient.Event) error {
		*events = append(*events, e)
		return nil
	}
	return l, emitter, events
}

// frame plays one processed frame, with contact in the left sector at
// the given time when contactSecs is positive.
func frame(l *contactListener, contactSecs float64) {
	m := ttc.NewSectorMinima()
	if contactSecs > 0 {
		m.Left = contactSecs
	}
	l.FrameProcessed(m)
	if contactSecs > 0 {
		l.ContactDetected(ttc.Left, contactSecs)
	}
}

func TestListenerEmitsEveryFrame(t *testing.T) {
	l, emitter, _ := newTestListener()
	frame(l, 0)
	frame(l, 0.5)
	frame(l, 0)

	require.Len(t, emitter.minima, 3)
	assert.Equal(t, 0.5, emitter.minima[1].Left)
	assert.Equal(t, float64(ttc.NoContact), emitter.minima[2].Left)
}

func TestListenerRecordsOneEventPerContact(t *testing.T) {
	l, _, events := newTestListener()
	frame(l, 0)
	frame(l, 1.2)
	frame(l, 0.9)
	frame(l, 0.7)
	frame(l, 0)
	frame(l, 0.4)

	require.Len(t, *events, 2)
	first := (*events)[0]
	assert.Equal(t, "nearContact", first.Type)
	assert.Equal(t, map[string]interface{}{
		"sector":  "left",
		"seconds": 1.2,
		"session": "session-1",
	}, first.Details)
	assert.Equal(t, 0.4, (*events)[1].Details["seconds"])
}

func TestListenerCarriesOnWhenPublishingFails(t *testing.T) {
	l, emitter, events := newTestListener()
	emitter.err = errors.New("no bus")
	l.addEvent = func(eventclient.Event) error { return errors.New("no event store") }

	frame(l, 0.5)
	frame(l, 0)
	frame(l, 0.5)

	assert.Len(t, emitter.minima, 3)
	assert.Empty(t, *events)
}

func TestListenerAnnouncesClips(t *testing.T) {
	l, emitter, _ := newTestListener()
	frame(l, 0.5)
	l.RecordingStarted()
	frame(l, 0.4)
	l.RecordingEnded()

	assert.Equal(t, []clipState{
		{recording: true, session: "session-1"},
		{recording: false, session: "session-1"},
	}, emitter.clips)
}

func TestListenerCarriesOnWhenAnnouncingFails(t *testing.T) {
	l, emitter, _ := newTestListener()
	emitter.err = errors.New("no bus")

	assert.NotPanics(t, func() {
		l.RecordingStarted()
		l.RecordingEnded()
	})
	assert.Len(t, emitter.clips, 2)
}

func TestListenerWithoutEmitter(t *testing.T) {
	l := newContactListener("s", nil)
	l.addEvent = func(eventclient.Event) error { return nil }
	assert.NotPanics(t, func() {
		frame(l, 0.5)
		l.RecordingStarted()
		l.RecordingEnded()
	})
}
