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
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/TheCacophonyProject/ttc-recorder/headers"
	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

// camera captures frames from a video device and packs them as gray
// UYVY at the configured size.
type camera struct {
	capture *gocv.VideoCapture
	resX    int
	resY    int
	frame   gocv.Mat
	gray    gocv.Mat
	sized   gocv.Mat
}

func openCamera(conf *Config) (*camera, error) {
	capture, err := gocv.OpenVideoCapture(conf.Device)
	if err != nil {
		return nil, err
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video device %d could not be opened", conf.Device)
	}
	capture.Set(gocv.VideoCaptureFrameWidth, float64(conf.ResX))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(conf.ResY))
	capture.Set(gocv.VideoCaptureFPS, float64(conf.FPS))
	capture.Set(gocv.VideoCaptureBufferSize, 1)

	return &camera{
		capture: capture,
		resX:    conf.ResX,
		resY:    conf.ResY,
		frame:   gocv.NewMat(),
		gray:    gocv.NewMat(),
		sized:   gocv.NewMat(),
	}, nil
}

// NextFrame reads a frame into raw, which must be a UYVY buffer of the
// configured size.
func (c *camera) NextFrame(raw []byte) error {
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return errors.New("no frame from video device")
	}

	gray := c.frame
	if c.frame.Channels() > 1 {
		gocv.CvtColor(c.frame, &c.gray, gocv.ColorBGRToGray)
		gray = c.gray
	}
	if gray.Cols() != c.resX || gray.Rows() != c.resY {
		gocv.Resize(gray, &c.sized, image.Pt(c.resX, c.resY), 0, 0, gocv.InterpolationArea)
		gray = c.sized
	}
	if gray.Empty() {
		return errors.New("frame conversion failed")
	}
	return yuv.PutGray(raw, gray.ToBytes(), c.resX, c.resY)
}

func (c *camera) Close() {
	c.frame.Close()
	c.gray.Close()
	c.sized.Close()
	c.capture.Close()
}

func streamHeader(conf *Config) *headers.HeaderInfo {
	return headers.New(
		conf.ResX,
		conf.ResY,
		conf.FPS,
		yuv.FrameSize(conf.ResX, conf.ResY),
		headers.PixelFormatUYVY,
		conf.Brand,
		conf.Model,
	)
}
