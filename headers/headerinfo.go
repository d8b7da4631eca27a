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

// Package headers describes the camera stream. A camera service opens
// the stream with a block of YAML fields ended by an empty line, then
// sends frames of FrameSize bytes back to back.
package headers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v1"
)

const (
	XResolution = "ResX"
	YResolution = "ResY"
	FPS         = "FPS"
	FrameSize   = "FrameSize"
	PixelFormat = "PixelFormat"
	Brand       = "Brand"
	Model       = "Model"
)

// PixelFormatUYVY is packed YUV 4:2:2, two bytes per pixel.
const PixelFormatUYVY = "UYVY"

// maxHeaderLines guards against a peer that never ends the header.
const maxHeaderLines = 64

// HeaderInfo contains the camera description fields sent by a camera
// service.
type HeaderInfo struct {
	resX        int
	resY        int
	fps         int
	framesize   int
	pixelFormat string
	brand       string
	model       string
}

func New(resX, resY, fps, frameSize int, pixelFormat, brand, model string) *HeaderInfo {
	return &HeaderInfo{
		resX:        resX,
		resY:        resY,
		fps:         fps,
		framesize:   frameSize,
		pixelFormat: pixelFormat,
		brand:       brand,
		model:       model,
	}
}

// ResX implements cptvframe.CameraSpec.
func (h *HeaderInfo) ResX() int {
	return h.resX
}

// ResY implements cptvframe.CameraSpec.
func (h *HeaderInfo) ResY() int {
	return h.resY
}

// FPS implements cptvframe.CameraSpec.
func (h *HeaderInfo) FPS() int {
	return h.fps
}

// FrameSize returns the number of bytes in each frame.
func (h *HeaderInfo) FrameSize() int {
	return h.framesize
}

func (h *HeaderInfo) PixelFormat() string {
	return h.pixelFormat
}

func (h *HeaderInfo) Model() string {
	return h.model
}

func (h *HeaderInfo) Brand() string {
	return h.brand
}

// Validate checks the header describes a stream that can be read.
func (h *HeaderInfo) Validate() error {
	if h.resX <= 0 || h.resY <= 0 {
		return fmt.Errorf("invalid resolution %dx%d", h.resX, h.resY)
	}
	if h.fps <= 0 {
		return errors.New("FPS should be positive")
	}
	if h.framesize <= 0 {
		return errors.New("FrameSize should be positive")
	}
	return nil
}

// Write sends the header block to w.
func (h *HeaderInfo) Write(w io.Writer) error {
	fields := []struct {
		key   string
		value interface{}
	}{
		{XResolution, h.resX},
		{YResolution, h.resY},
		{FPS, h.fps},
		{FrameSize, h.framesize},
		{PixelFormat, h.pixelFormat},
		{Brand, h.brand},
		{Model, h.model},
	}
	var buf bytes.Buffer
	for _, f := range fields {
		switch v := f.value.(type) {
		case string:
			fmt.Fprintf(&buf, "%s: %q\n", f.key, v)
		default:
			fmt.Fprintf(&buf, "%s: %v\n", f.key, v)
		}
	}
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func ReadHeaderInfo(reader *bufio.Reader) (*HeaderInfo, error) {
	var buf bytes.Buffer
	for lines := 0; ; lines++ {
		if lines >= maxHeaderLines {
			return nil, errors.New("camera header too long")
		}
		line, err := reader.ReadString(byte('\n'))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		buf.WriteString(line)
	}
	h := make(map[string]interface{})
	if err := yaml.Unmarshal(buf.Bytes(), &h); err != nil {
		return nil, err
	}

	return &HeaderInfo{
		resX:        toInt(h[XResolution]),
		resY:        toInt(h[YResolution]),
		fps:         toInt(h[FPS]),
		framesize:   toInt(h[FrameSize]),
		pixelFormat: toStr(h[PixelFormat]),
		brand:       toStr(h[Brand]),
		model:       toStr(h[Model]),
	}, nil
}

func toInt(v interface{}) int {
	out, ok := v.(int)
	if !ok {
		return 0
	}
	return out
}

func toStr(v interface{}) string {
	out, ok := v.(string)
	if !ok {
		return ""
	}
	return out
}
