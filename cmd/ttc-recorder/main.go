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
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"time"

	goconfig "github.com/TheCacophonyProject/go-config"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	arg "github.com/alexflint/go-arg"
	"github.com/google/uuid"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
	"github.com/TheCacophonyProject/ttc-recorder/headers"
	"github.com/TheCacophonyProject/ttc-recorder/opencv"
	"github.com/TheCacophonyProject/ttc-recorder/recorder"
	"github.com/TheCacophonyProject/ttc-recorder/throttle"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
	"github.com/TheCacophonyProject/ttc-recorder/web"
	"github.com/TheCacophonyProject/ttc-recorder/yuv"
)

const (
	minLogInterval = time.Minute

	frameLogSecsFirstMin = 15
	frameLogSecs         = 60 * 5
)

var version = "<not set>"

type Args struct {
	ConfigFile   string `arg:"-c,--config" help:"path to configuration file"`
	ConfigDir    string `arg:"-d,--config-dir" help:"path to the shared device configuration directory"`
	Timestamps   bool   `arg:"-t,--timestamps" help:"include timestamps in log output"`
	TestCptvFile string `arg:"-f,--testfile" help:"run a CPTV file through the pipeline to see what the results are"`
	Verbose      bool   `arg:"-v,--verbose" help:"make logging more verbose"`
}

func (Args) Version() string {
	return version
}

func procArgs() Args {
	var args Args
	args.ConfigFile = "/etc/ttc-recorder.yaml"
	args.ConfigDir = goconfig.DefaultConfigDir
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

	log.Printf("running version: %s", version)
	conf, err := ParseConfigFiles(args.ConfigFile, args.ConfigDir)
	if err != nil {
		return err
	}
	conf.Contact.Verbose = conf.Contact.Verbose || args.Verbose
	logConfig(conf)

	if args.TestCptvFile != "" {
		results, err := NewCPTVPlaybackTester(conf, opencv.New()).Detect(args.TestCptvFile)
		if err != nil {
			return err
		}
		log.Print(results)
		return nil
	}

	source := new(currentProcessor)

	log.Println("starting d-bus service")
	svc, err := startService(conf.OutputDir, source)
	if err != nil {
		return err
	}

	if conf.WebListen != "" {
		web.NewServer(conf.WebListen, source).StartAsync()
	}

	log.Println("deleting temp files")
	if err := (clipStore{dir: conf.OutputDir}).sweep(); err != nil {
		return err
	}
	deleteSnapshot(conf.OutputDir)

	for {
		// Set up listener for frames sent by camerad.
		os.Remove(conf.FrameInput)
		listener, err := net.Listen("unix", conf.FrameInput)
		if err != nil {
			return err
		}
		log.Print("waiting for camera connection")

		conn, err := listener.Accept()
		if err != nil {
			log.Printf("socket accept failed: %v", err)
			listener.Close()
			continue
		}

		// Prevent concurrent connections.
		listener.Close()

		err = handleConn(conn, conf, svc, source)
		conn.Close()
		log.Printf("camera connection ended with: %v", err)
	}
}

// processedCamera describes the stream as the pipeline sees it once
// the frame gate has dropped frames beyond the pipeline rate.
type processedCamera struct {
	cptvframe.CameraSpec
	fps int
}

func (c *processedCamera) FPS() int {
	return c.fps
}

func newProcessedCamera(camera cptvframe.CameraSpec, frameRate float64) *processedCamera {
	fps := camera.FPS()
	if rate := int(frameRate); rate < fps {
		fps = rate
	}
	if fps < 1 {
		fps = 1
	}
	return &processedCamera{CameraSpec: camera, fps: fps}
}

func checkHeader(header *headers.HeaderInfo) error {
	if err := header.Validate(); err != nil {
		return err
	}
	if header.PixelFormat() != headers.PixelFormatUYVY {
		return fmt.Errorf("unsupported pixel format %q", header.PixelFormat())
	}
	if header.ResX()%2 != 0 {
		return errors.New("UYVY frames need an even width")
	}
	if expected := yuv.FrameSize(header.ResX(), header.ResY()); header.FrameSize() != expected {
		return fmt.Errorf("frame size is %d, expected %d for %dx%d UYVY", header.FrameSize(), expected, header.ResX(), header.ResY())
	}
	return nil
}

func handleConn(conn net.Conn, conf *Config, svc *service, source *currentProcessor) error {
	reader := bufio.NewReader(conn)
	header, err := headers.ReadHeaderInfo(reader)
	if err != nil {
		return err
	}
	if err := checkHeader(header); err != nil {
		return err
	}

	session := uuid.New().String()
	log.Printf("connection %s from %s %s (%dx%d@%dfps)", session, header.Brand(), header.Model(), header.ResX(), header.ResY(), header.FPS())

	pc, err := conf.TTC.Pipeline(header.ResX(), header.ResY())
	if err != nil {
		return err
	}
	pipeline, err := ttc.NewPipeline(pc, opencv.New())
	if err != nil {
		return err
	}
	camera := newProcessedCamera(header, pc.FrameRate)

	clips, err := NewClipWriter(conf, camera, clipSource{
		session: session,
		brand:   header.Brand(),
		model:   header.Model(),
	})
	if err != nil {
		return err
	}
	defer clips.Abort()
	rec, err := throttleClips(clips, conf, camera.FPS(), session)
	if err != nil {
		return err
	}

	processor := contact.NewProcessor(pipeline, &conf.Contact, &conf.Recorder,
		newContactListener(session, svc), rec, camera)
	source.set(processor)
	defer source.set(nil)

	gate := throttle.NewFrameGate(pc.FrameRate)
	rawFrame := make([]byte, header.FrameSize())
	frameLogIntervalFirstMin := frameLogSecsFirstMin * header.FPS()
	frameLogInterval := frameLogSecs * header.FPS()

	log.Print("reading frames")
	totalFrames := 0
	for {
		if _, err := io.ReadFull(reader, rawFrame); err != nil {
			return err
		}
		totalFrames++

		if totalFrames%frameLogIntervalFirstMin == 0 &&
			totalFrames <= 60*header.FPS() || totalFrames%frameLogInterval == 0 {
			log.Printf("%d frames for this connection, %d dropped", totalFrames, gate.Dropped())
		}

		if !gate.Allow() {
			continue
		}
		// Failed cycles are logged by the processor and the next frame
		// starts afresh.
		processor.Process(rawFrame)
	}
}

// throttleClips limits clip footage to the configured budget, counted
// in frames at the rate the pipeline passes them to the recorder.
func throttleClips(clips recorder.Recorder, conf *Config, fps int, session string) (recorder.Recorder, error) {
	if !conf.Throttler.Activate {
		return clips, nil
	}
	minClipSecs := conf.Recorder.MinSecs + conf.Recorder.PreviewSecs
	budget, err := throttle.NewBudget(&conf.Throttler, minClipSecs, fps)
	if err != nil {
		return nil, err
	}
	return throttle.NewRecorder(clips, budget, throttle.EventReporter{Session: session}), nil
}

func logConfig(conf *Config) {
	log.Printf("device: %s (%d)", conf.DeviceName, conf.DeviceID)
	log.Printf("location: %.4f, %.4f", conf.Location.Latitude, conf.Location.Longitude)
	log.Printf("frame input: %s", conf.FrameInput)
	log.Printf("output dir: %s", conf.OutputDir)
	log.Printf("minimum disk space: %d", conf.MinDiskSpace)
	log.Printf("recording limits: %ds to %ds", conf.Recorder.MinSecs, conf.Recorder.MaxSecs)
	log.Printf("preview seconds: %d", conf.Recorder.PreviewSecs)
	log.Printf("ttc: %+v", conf.TTC)
	log.Printf("contact: %+v", conf.Contact)
	log.Printf("throttler: %+v", conf.Throttler)
	log.Printf("recording window active now: %t", conf.Recorder.Window.Active())
	if conf.WebListen != "" {
		log.Printf("web status: %s", conf.WebListen)
	}
}
