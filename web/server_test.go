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

package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheCacophonyProject/go-cptv/cptvframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

type testCamera struct{}

func (testCamera) ResX() int { return 8 }
func (testCamera) ResY() int { return 6 }
func (testCamera) FPS() int  { return 10 }

type fakeSource struct {
	minima ttc.SectorMinima
	sample *contact.Sample
}

func (f *fakeSource) LatestMinima() ttc.SectorMinima  { return f.minima }
func (f *fakeSource) GetRecentFrame() *contact.Sample { return f.sample }

func get(t *testing.T, s *Server, path string) *http.Response {
	resp, err := s.app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	return resp
}

func TestSectors(t *testing.T) {
	source := &fakeSource{minima: ttc.SectorMinima{Left: 4, Center: ttc.NoContact, Right: 0.5}}
	resp := get(t, NewServer(":0", source), "/api/sectors")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body SectorsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, source.minima, body.SectorMinima)
	assert.Equal(t, "right", body.Closest)
	assert.Equal(t, 0.5, body.TTC)
}

func TestSectorsBeforeFirstFrame(t *testing.T) {
	source := &fakeSource{minima: ttc.NewSectorMinima()}
	resp := get(t, NewServer(":0", source), "/api/sectors")
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]interface{}{
		"left":    float64(ttc.NoContact),
		"center":  float64(ttc.NoContact),
		"right":   float64(ttc.NoContact),
		"closest": "center",
		"ttc":     float64(ttc.NoContact),
	}, body)
}

func TestOverlayWithoutFrames(t *testing.T) {
	resp := get(t, NewServer(":0", new(fakeSource)), "/overlay.png")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestOverlay(t *testing.T) {
	camera := testCamera{}
	sample := &contact.Sample{
		Frame: cptvframe.NewFrame(camera),
		Edges: ttc.NewEdgeMap(camera.ResX(), camera.ResY()),
	}
	sample.Edges.Mark(1, 1)
	resp := get(t, NewServer(":0", &fakeSource{sample: sample}), "/overlay.png")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, camera.ResX(), img.Bounds().Dx())
	assert.Equal(t, camera.ResY(), img.Bounds().Dy())
	r, g, _, _ := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0), g)
}
