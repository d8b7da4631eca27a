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

package ttc

// State holds the previous cycle's working frame and edge map. It is
// owned by the caller and handed to each pipeline call. State isn't safe
// for concurrent use; callers running the pipeline from more than one
// goroutine must guard it.
type State struct {
	frame *Frame
	edges *EdgeMap
}

// Ready reports whether the init path has populated the state.
func (s *State) Ready() bool {
	return s.frame != nil && s.edges != nil
}

// Get returns the previous frame and edge map, or nils before init.
func (s *State) Get() (*Frame, *EdgeMap) {
	return s.frame, s.edges
}

// Replace takes ownership of frame and edges, dropping the previous
// contents. Callers must not modify either after handing them over.
func (s *State) Replace(frame *Frame, edges *EdgeMap) {
	s.frame = frame
	s.edges = edges
}

// Reset forgets the stored frame so the next cycle takes the init path.
func (s *State) Reset() {
	s.frame = nil
	s.edges = nil
}
