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
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/periph/conn/gpio"

	"github.com/TheCacophonyProject/ttc-recorder/headers"
)

var errUnplugged = errors.New("unplugged")

// fakeCamera gives frames filled with their sequence number until it
// has given frames of them.
type fakeCamera struct {
	frames int
	given  int
	closed bool
}

func (c *fakeCamera) NextFrame(raw []byte) error {
	if c.given >= c.frames {
		return errUnplugged
	}
	c.given++
	for i := range raw {
		raw[i] = byte(c.given)
	}
	return nil
}

func (c *fakeCamera) Close() { c.closed = true }

// recorderSocket accepts writes until it has taken limit frames.
type recorderSocket struct {
	bytes.Buffer
	frameSize int
	limit     int
	frames    int
	closed    bool
}

func (s *recorderSocket) Write(p []byte) (int, error) {
	if len(p) == s.frameSize {
		if s.frames >= s.limit {
			return 0, io.ErrClosedPipe
		}
		s.frames++
	}
	return s.Buffer.Write(p)
}

func (s *recorderSocket) Close() error {
	s.closed = true
	return nil
}

type fakePin struct {
	levels []gpio.Level
}

func (p *fakePin) Out(l gpio.Level) error {
	p.levels = append(p.levels, l)
	return nil
}

func testCameraConfig(t *testing.T) *Config {
	conf, err := ParseConfig([]byte("res-x: 8\nres-y: 4\nfps: 2\n"))
	require.NoError(t, err)
	return conf
}

func TestStreamSendsHeaderThenFrames(t *testing.T) {
	conf := testCameraConfig(t)
	watchdogs := 0
	s := newStreamer(conf, func() { watchdogs++ })
	out := &recorderSocket{frameSize: 64, limit: 100}

	err := s.run(&fakeCamera{frames: 25}, out)
	var capErr *captureErr
	require.True(t, errors.As(err, &capErr))
	assert.True(t, errors.Is(err, errUnplugged))
	assert.Equal(t, 25, s.sent)
	// One watchdog every five seconds of frames at 2 fps.
	assert.Equal(t, 2, watchdogs)

	reader := bufio.NewReader(&out.Buffer)
	h, err := headers.ReadHeaderInfo(reader)
	require.NoError(t, err)
	assert.Equal(t, 8, h.ResX())
	assert.Equal(t, 4, h.ResY())
	assert.Equal(t, 64, h.FrameSize())

	frame := make([]byte, 64)
	_, err = io.ReadFull(reader, frame)
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{1}, 64), frame)
}

func TestStreamStopsWhenRecorderGoes(t *testing.T) {
	s := newStreamer(testCameraConfig(t), func() {})
	err := s.run(&fakeCamera{frames: 25}, &recorderSocket{frameSize: 64, limit: 3})

	assert.Equal(t, io.ErrClosedPipe, err)
	assert.Equal(t, 3, s.sent)
}

func TestPowerCycle(t *testing.T) {
	pin := new(fakePin)
	var slept time.Duration
	pc := &powerCycler{pin: pin, sleep: func(d time.Duration) { slept += d }}

	require.NoError(t, pc.cycle())
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, pin.levels)
	assert.Equal(t, powerOffTime+startupTime, slept)
}

func TestNoPowerPin(t *testing.T) {
	pc, err := newPowerCycler("")
	require.NoError(t, err)
	assert.NoError(t, pc.cycle())
}

var errNoMore = errors.New("no more")

type testSupervisor struct {
	*supervisor
	cameras []*fakeCamera
	sockets []*recorderSocket
	pin     *fakePin
}

// newTestSupervisor hands out the given cameras and sockets in order,
// then fails.
func newTestSupervisor(t *testing.T, cameras []*fakeCamera, sockets []*recorderSocket) *testSupervisor {
	ts := &testSupervisor{pin: new(fakePin)}
	opened, dialed := 0, 0
	ts.supervisor = &supervisor{
		open: func() (videoSource, error) {
			if opened >= len(cameras) {
				return nil, errNoMore
			}
			opened++
			ts.cameras = append(ts.cameras, cameras[opened-1])
			return cameras[opened-1], nil
		},
		dial: func() (io.WriteCloser, error) {
			if dialed >= len(sockets) {
				return nil, errNoMore
			}
			dialed++
			ts.sockets = append(ts.sockets, sockets[dialed-1])
			return sockets[dialed-1], nil
		},
		power:  &powerCycler{pin: ts.pin, sleep: func(time.Duration) {}},
		stream: newStreamer(testCameraConfig(t), func() {}),
	}
	return ts
}

func TestCameraFaultCyclesPower(t *testing.T) {
	ts := newTestSupervisor(t,
		[]*fakeCamera{{frames: 5}},
		[]*recorderSocket{{frameSize: 64, limit: 100}, {frameSize: 64, limit: 100}})

	assert.Equal(t, errNoMore, ts.serve())
	require.Len(t, ts.cameras, 1)
	assert.True(t, ts.cameras[0].closed)
	assert.Equal(t, []gpio.Level{gpio.Low, gpio.High}, ts.pin.levels)
	assert.Len(t, ts.sockets, 1)
	assert.True(t, ts.sockets[0].closed)
}

func TestRecorderRestartKeepsCamera(t *testing.T) {
	ts := newTestSupervisor(t,
		[]*fakeCamera{{frames: 100}},
		[]*recorderSocket{{frameSize: 64, limit: 10}, {frameSize: 64, limit: 20}})

	assert.Equal(t, errNoMore, ts.serve())
	require.Len(t, ts.cameras, 1)
	assert.True(t, ts.cameras[0].closed)
	assert.Empty(t, ts.pin.levels)
	require.Len(t, ts.sockets, 2)
	assert.Equal(t, 10, ts.sockets[0].frames)
	assert.Equal(t, 20, ts.sockets[1].frames)
	assert.Equal(t, 30, ts.stream.sent)
}
