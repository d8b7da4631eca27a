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

package recorder

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	config "github.com/TheCacophonyProject/go-config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func christchurch() config.Location {
	return config.Location{Latitude: -43.5321, Longitude: 172.6362}
}

func TestMinSecsGreaterThanMaxSecsDoesntValidate(t *testing.T) {
	conf := RecorderConfig{
		MinSecs: 5,
		MaxSecs: 2,
	}
	assert.EqualError(t, conf.Validate(), "max-secs should be larger than min-secs")
}

func TestNegativePreviewDoesntValidate(t *testing.T) {
	conf := RecorderConfig{
		MaxSecs:     10,
		PreviewSecs: -1,
	}
	assert.Error(t, conf.Validate())
}

func TestFromSections(t *testing.T) {
	conf, err := FromSections(
		config.ThermalRecorder{MinSecs: 2, MaxSecs: 10, PreviewSecs: 1},
		config.Windows{StartRecording: "17:10", StopRecording: "07:20"},
		christchurch())
	require.NoError(t, err)
	assert.Equal(t, 2, conf.MinSecs)
	assert.Equal(t, 10, conf.MaxSecs)
	assert.Equal(t, 1, conf.PreviewSecs)
}

func TestNoWindowIsAlwaysActive(t *testing.T) {
	conf, err := FromSections(
		config.ThermalRecorder{MinSecs: 5, MaxSecs: 60, PreviewSecs: 3},
		config.Windows{},
		christchurch())
	require.NoError(t, err)
	assert.True(t, conf.Window.Active())
}

func TestBadWindowIsRejected(t *testing.T) {
	_, err := FromSections(
		config.ThermalRecorder{MinSecs: 5, MaxSecs: 60},
		config.Windows{StartRecording: "noon", StopRecording: "later"},
		christchurch())
	assert.Error(t, err)
}

func TestMinOverMaxIsRejected(t *testing.T) {
	_, err := FromSections(
		config.ThermalRecorder{MinSecs: 20, MaxSecs: 10},
		config.Windows{},
		christchurch())
	assert.Error(t, err)
}

func TestNewConfigUsesSharedDefaults(t *testing.T) {
	dir, err := ioutil.TempDir("", "recorder-config")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "config.toml"), nil, 0644))

	configRW, err := config.New(dir)
	require.NoError(t, err)
	conf, err := NewConfig(configRW)
	require.NoError(t, err)

	def := config.DefaultThermalRecorder()
	assert.Equal(t, def.MinSecs, conf.MinSecs)
	assert.Equal(t, def.MaxSecs, conf.MaxSecs)
	assert.Equal(t, def.PreviewSecs, conf.PreviewSecs)
}
