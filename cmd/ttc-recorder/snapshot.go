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
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
)

const (
	snapshotName          = "still.png"
	allowedSnapshotPeriod = 500 * time.Millisecond
)

var (
	previousSnapshotTime time.Time
	snapshotMu           sync.Mutex
)

func newSnapshot(dir string, sample *contact.Sample) error {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()

	if time.Since(previousSnapshotTime) < allowedSnapshotPeriod {
		return nil
	}
	if sample == nil {
		return errors.New("no frames yet")
	}

	out, err := os.Create(filepath.Join(dir, snapshotName))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, sample.Overlay()); err != nil {
		return err
	}

	// the time will be changed only if the attempt is successful
	previousSnapshotTime = time.Now()
	return nil
}

func deleteSnapshot(dir string) {
	if err := os.Remove(filepath.Join(dir, snapshotName)); err != nil && !os.IsNotExist(err) {
		log.Printf("error deleting snapshot image: %v", err)
	}
}
