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

// Package yuv places 8-bit gray images into packed UYVY (YUV 4:2:2)
// camera buffers and reads them back.
package yuv

import "fmt"

// NeutralChroma is the U and V value written alongside gray pixels.
const NeutralChroma = 127

// BytesPerPixel is the average size of one UYVY pixel.
const BytesPerPixel = 2

// FrameSize returns the size in bytes of a width x height UYVY frame.
func FrameSize(width, height int) int {
	return width * height * BytesPerPixel
}

func check(raw []byte, gray []uint8, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if width%2 != 0 {
		return fmt.Errorf("UYVY frames need an even width, got %d", width)
	}
	if len(raw) < FrameSize(width, height) {
		return fmt.Errorf("buffer holds %d bytes, expected %d", len(raw), FrameSize(width, height))
	}
	if len(gray) < width*height {
		return fmt.Errorf("gray image holds %d pixels, expected %d", len(gray), width*height)
	}
	return nil
}

// PutGray writes gray into raw as UYVY with neutral chroma. gray is
// row-major, one byte per pixel.
func PutGray(raw []byte, gray []uint8, width, height int) error {
	if err := check(raw, gray, width, height); err != nil {
		return err
	}
	for i, y := range gray[:width*height] {
		raw[2*i] = NeutralChroma
		raw[2*i+1] = y
	}
	return nil
}

// Luma copies the Y channel of the UYVY buffer raw into gray.
func Luma(gray []uint8, raw []byte, width, height int) error {
	if err := check(raw, gray, width, height); err != nil {
		return err
	}
	for i := range gray[:width*height] {
		gray[i] = raw[2*i+1]
	}
	return nil
}
