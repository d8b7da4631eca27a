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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDebugTrackerSummary(t *testing.T) {
	d := newDebugTracker()
	d.update("tracked", 10)
	d.update("tracked", 20)
	d.update("ttc", 3.5)
	d.update("ttc", 0.25)

	assert.Equal(t, "tracked: 15.00(avg); ttc: 0.25(min)", d.string("tracked:avg ttc:min missing:n"))
	assert.Equal(t, "tracked: 10.00 -> 20.00 (avg: 15.00)", d.string("tracked:all"))
	assert.Equal(t, "ttc: 2", d.string("ttc:n"))

	d.reset()
	assert.Equal(t, "", d.string("tracked:avg ttc:min"))
}

func TestNilDebugTracker(t *testing.T) {
	var d *debugTracker
	d.update("tracked", 1)
	d.reset()
	assert.Equal(t, "", d.string("tracked:n"))
}
