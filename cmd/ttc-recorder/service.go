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
	"sync"

	"github.com/godbus/dbus"
	"github.com/godbus/dbus/introspect"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

const (
	dbusName = "org.cacophony.ttcrecorder"
	dbusPath = "/org/cacophony/ttcrecorder"

	sectorMinimaSignal = dbusName + ".SectorMinima"
	recordingSignal    = dbusName + ".Recording"
)

// currentProcessor hands out what the processor of the current camera
// connection has seen.
type currentProcessor struct {
	mu        sync.Mutex
	processor *contact.Processor
}

func (c *currentProcessor) set(processor *contact.Processor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processor = processor
}

func (c *currentProcessor) get() *contact.Processor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processor
}

// LatestMinima returns no contact anywhere while there is no camera
// connection.
func (c *currentProcessor) LatestMinima() ttc.SectorMinima {
	if p := c.get(); p != nil {
		return p.LatestMinima()
	}
	return ttc.NewSectorMinima()
}

func (c *currentProcessor) GetRecentFrame() *contact.Sample {
	if p := c.get(); p != nil {
		return p.GetRecentFrame()
	}
	return nil
}

type service struct {
	dir    string
	conn   *dbus.Conn
	source *currentProcessor
}

func startService(dir string, source *currentProcessor) (*service, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return nil, err
	}
	reply, err := conn.RequestName(dbusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, errors.New("name already taken")
	}

	s := &service{
		dir:    dir,
		conn:   conn,
		source: source,
	}
	conn.Export(s, dbusPath, dbusName)
	conn.Export(genIntrospectable(s), dbusPath, "org.freedesktop.DBus.Introspectable")
	return s, nil
}

func genIntrospectable(v interface{}) introspect.Introspectable {
	node := &introspect.Node{
		Interfaces: []introspect.Interface{{
			Name:    dbusName,
			Methods: introspect.Methods(v),
			Signals: []introspect.Signal{
				{
					Name: "SectorMinima",
					Args: []introspect.Arg{
						{Name: "left", Type: "d"},
						{Name: "center", Type: "d"},
						{Name: "right", Type: "d"},
					},
				},
				{
					Name: "Recording",
					Args: []introspect.Arg{
						{Name: "recording", Type: "b"},
						{Name: "session", Type: "s"},
					},
				},
			},
		}},
	}
	return introspect.NewIntrospectable(node)
}

func (s *service) emitMinima(m ttc.SectorMinima) error {
	return s.conn.Emit(dbusPath, sectorMinimaSignal, m.Left, m.Center, m.Right)
}

// emitRecording announces a contact clip starting or ending.
func (s *service) emitRecording(recording bool, session string) error {
	return s.conn.Emit(dbusPath, recordingSignal, recording, session)
}

// GetSectorMinima returns the smallest time-to-contact in seconds in
// the left, centre and right of the latest frame.
func (s *service) GetSectorMinima() (float64, float64, float64, *dbus.Error) {
	m := s.source.LatestMinima()
	return m.Left, m.Center, m.Right, nil
}

// TakeSnapshot saves the latest edge overlay as a still.
func (s *service) TakeSnapshot() *dbus.Error {
	if err := newSnapshot(s.dir, s.source.GetRecentFrame()); err != nil {
		return makeDbusError("TakeSnapshot", err)
	}
	return nil
}

func makeDbusError(name string, err error) *dbus.Error {
	return &dbus.Error{
		Name: dbusName + "." + name,
		Body: []interface{}{err.Error()},
	}
}
