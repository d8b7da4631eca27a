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
	"io"
	"log"
	"net"

	arg "github.com/alexflint/go-arg"
	"github.com/coreos/go-systemd/daemon"
	"periph.io/x/periph/host"

	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

const sdNotifySecs = 5

var version = "<not set>"

type Args struct {
	ConfigFile string `arg:"-c,--config" help:"path to configuration file"`
	Quick      bool   `arg:"-q,--quick" help:"don't cycle camera power on startup"`
	Timestamps bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/camerad.yaml"
	arg.MustParse(&args)
	return args
}

func main() {
	err := runMain()
	if err != nil {
		log.Fatal(err)
	}
}

func runMain() error {
	args := procArgs()
	if !args.Timestamps {
		log.SetFlags(0) // Removes default timestamp flag
	}

	log.Printf("version: %s", version)
	conf, err := ParseConfigFile(args.ConfigFile)
	if err != nil {
		return err
	}
	logConfig(conf)

	conn, err := dialFrameOutput(conf)
	if err != nil {
		return errors.New("error: connecting to frame output socket failed")
	}
	conn.Close()

	log.Print("host initialisation")
	if _, err := host.Init(); err != nil {
		return err
	}
	power, err := newPowerCycler(conf.PowerPin)
	if err != nil {
		return err
	}
	if !args.Quick {
		if err := power.cycle(); err != nil {
			return err
		}
	}

	d := &supervisor{
		open: func() (videoSource, error) {
			log.Print("opening camera")
			return openCamera(conf)
		},
		dial: func() (io.WriteCloser, error) {
			log.Print("dialing frame output socket")
			return dialFrameOutput(conf)
		},
		power:  power,
		stream: newStreamer(conf, func() { daemon.SdNotify(false, "WATCHDOG=1") }),
	}
	return d.serve()
}

type videoSource interface {
	frameSource
	Close()
}

// supervisor keeps frames flowing to the recorder. A capture failure
// closes and power cycles the camera; losing the recorder only redials
// and the camera stays open.
type supervisor struct {
	open   func() (videoSource, error)
	dial   func() (io.WriteCloser, error)
	power  *powerCycler
	stream *streamer
}

func (s *supervisor) serve() error {
	var cam videoSource
	defer func() {
		if cam != nil {
			cam.Close()
		}
	}()

	for {
		if cam == nil {
			c, err := s.open()
			if err != nil {
				return err
			}
			cam = c
		}

		out, err := s.dial()
		if err != nil {
			return err
		}
		err = s.stream.run(cam, out)
		out.Close()

		var capErr *captureErr
		if !errors.As(err, &capErr) {
			log.Printf("frame output lost after %d frames: %v", s.stream.sent, err)
			continue
		}
		log.Printf("camera error: %v", err)
		log.Print("closing camera")
		cam.Close()
		cam = nil
		if err := s.power.cycle(); err != nil {
			return err
		}
	}
}

func logConfig(conf *Config) {
	log.Printf("video device: %d", conf.Device)
	log.Printf("frames: %dx%d@%dfps", conf.ResX, conf.ResY, conf.FPS)
	log.Printf("camera: %s %s", conf.Brand, conf.Model)
	log.Printf("power pin: %s", conf.PowerPin)
	log.Printf("frame output: %s", conf.FrameOutput)
}

func dialFrameOutput(conf *Config) (*net.UnixConn, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{
		Net:  "unix",
		Name: conf.FrameOutput,
	})
	if err != nil {
		return nil, err
	}
	conn.SetWriteBuffer(yuv.FrameSize(conf.ResX, conf.ResY) * 20)
	return conn, nil
}
