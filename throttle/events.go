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
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"
)

// EventReporter records throttling through the event api, tagged with
// the camera session it happened in.
type EventReporter struct {
	Session string
	// AddEvent defaults to eventclient.AddEvent.
	AddEvent func(eventclient.Event) error
}

func (er EventReporter) Throttled(ev Event) {
	add := er.AddEvent
	if add == nil {
		add = eventclient.AddEvent
	}
	event := eventclient.Event{
		Timestamp: time.Now(),
		Type:      "throttle",
		Details: map[string]interface{}{
			"source":  "ttc-recorder",
			"session": er.Session,
			"cause":   ev.Cause.String(),
			"written": ev.Written,
		},
	}
	if err := add(event); err != nil {
		log.Printf("could not record throttle event: %v", err)
	}
}
