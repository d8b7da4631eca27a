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
	"image"
	"image/color"
)

var edgeColour = color.RGBA{R: 255, A: 255}

// Overlay draws the sample's edge map in red over its gray frame.
func (s *Sample) Overlay() *image.RGBA {
	w, h := s.Edges.Width, s.Edges.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if s.Edges.IsEdge(x, y) {
				img.SetRGBA(x, y, edgeColour)
				continue
			}
			v := uint8(s.Frame.Pix[y][x])
			img.SetRGBA(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}
