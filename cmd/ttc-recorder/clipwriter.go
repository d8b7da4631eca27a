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
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	cptv "github.com/TheCacophonyProject/go-cptv"
	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	yaml "gopkg.in/yaml.v2"
)

const (
	clipExt  = ".cptv"
	tempExt  = ".temp"
	clipTime = "20060102.150405.000"
)

// clipStore is the directory contact clips land in. Clips are written
// under a temporary name and renamed once closed, so uploaders only
// ever see whole files.
type clipStore struct {
	dir        string
	minSpaceMB uint64
}

func (s clipStore) tempPath(at time.Time) string {
	return filepath.Join(s.dir, at.Format(clipTime)+clipExt+tempExt)
}

// publish renames a closed temporary clip to its final name.
func (s clipStore) publish(tempPath string) (string, error) {
	final := finalClipPath(tempPath)
	if err := os.Rename(tempPath, final); err != nil {
		return "", err
	}
	return final, nil
}

// sweep removes clips left half written by an earlier run.
func (s clipStore) sweep() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+clipExt+tempExt))
	if err != nil {
		return err
	}
	for _, name := range matches {
		if err := os.Remove(name); err != nil {
			return err
		}
	}
	return nil
}

func (s clipStore) checkSpace() error {
	var fs syscall.Statfs_t
	if err := syscall.Statfs(s.dir, &fs); err != nil {
		return fmt.Errorf("problem with checking disk space: %v", err)
	}
	if fs.Bavail*uint64(fs.Bsize)/1024/1024 < s.minSpaceMB {
		return errors.New("not enough free disk space to start recording")
	}
	return nil
}

func finalClipPath(tempPath string) string {
	return strings.TrimSuffix(tempPath, tempExt)
}

// clipSettings goes in each clip header so a clip can be matched to
// the camera session and the settings that triggered it.
type clipSettings struct {
	Session string    `yaml:"session"`
	TTC     TTCConfig `yaml:"ttc"`
	Contact struct {
		TTCThreshold  float64 `yaml:"ttc-threshold"`
		TriggerFrames int     `yaml:"trigger-frames"`
	} `yaml:"contact"`
}

// clipSource identifies the camera a clip came from.
type clipSource struct {
	session string
	brand   string
	model   string
}

// ClipWriter writes near contact clips from one camera session.
type ClipWriter struct {
	store  clipStore
	header cptv.Header
	camera cptvframe.CameraSpec
	now    func() time.Time

	writer *cptv.FileWriter
	frames int
}

func NewClipWriter(conf *Config, camera cptvframe.CameraSpec, src clipSource) (*ClipWriter, error) {
	settings := clipSettings{Session: src.session, TTC: conf.TTC}
	settings.Contact.TTCThreshold = conf.Contact.TTCThreshold
	settings.Contact.TriggerFrames = conf.Contact.TriggerFrames
	settingsYAML, err := yaml.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to convert clip settings to YAML: %v", err)
	}

	header := cptv.Header{
		DeviceName:   conf.DeviceName,
		PreviewSecs:  conf.Recorder.PreviewSecs,
		MotionConfig: string(settingsYAML),
		Latitude:     conf.Location.Latitude,
		Longitude:    conf.Location.Longitude,
		LocTimestamp: conf.Location.Timestamp,
		Altitude:     conf.Location.Altitude,
		Accuracy:     conf.Location.Accuracy,
		FPS:          camera.FPS(),
		Brand:        src.brand,
		Model:        src.model,
	}
	if conf.DeviceID > 0 {
		header.DeviceID = conf.DeviceID
	}
	return &ClipWriter{
		store:  clipStore{dir: conf.OutputDir, minSpaceMB: conf.MinDiskSpace},
		header: header,
		camera: camera,
		now:    time.Now,
	}, nil
}

func (cw *ClipWriter) CheckCanRecord() error {
	return cw.store.checkSpace()
}

func (cw *ClipWriter) StartRecording() error {
	if cw.writer != nil {
		return errors.New("a clip is already being recorded")
	}
	name := cw.store.tempPath(cw.now())
	writer, err := cptv.NewFileWriter(name, cw.camera)
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(cw.header); err != nil {
		writer.Close()
		os.Remove(name)
		return err
	}
	log.Printf("recording started: %s", name)
	cw.writer = writer
	cw.frames = 0
	return nil
}

func (cw *ClipWriter) WriteFrame(frame *cptvframe.Frame) error {
	if cw.writer == nil {
		return errors.New("no clip is being recorded")
	}
	if err := cw.writer.WriteFrame(frame); err != nil {
		return err
	}
	cw.frames++
	return nil
}

func (cw *ClipWriter) StopRecording() error {
	if cw.writer == nil {
		return nil
	}
	writer := cw.writer
	cw.writer = nil
	writer.Close()

	final, err := cw.store.publish(writer.Name())
	if err != nil {
		return err
	}
	log.Printf("recording stopped: %s (%d frames)", final, cw.frames)
	return nil
}

// Abort drops any clip in progress, used when the camera goes away
// mid clip.
func (cw *ClipWriter) Abort() {
	if cw.writer == nil {
		return
	}
	cw.writer.Close()
	os.Remove(cw.writer.Name())
	cw.writer = nil
}
