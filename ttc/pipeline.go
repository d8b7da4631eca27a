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

package ttc

import (
	"errors"
	"fmt"
)

var ErrNotInitialised = errors.New("pipeline state not initialised")

// Result is the outcome of one pipeline cycle.
type Result struct {
	Minima SectorMinima
	Stats  Stats
	Frame  *Frame
	Edges  *EdgeMap
}

// Pipeline turns raw camera buffers into time-to-contact maps. The
// pipeline itself holds no frame state; that lives in the State passed
// to Init and Run.
type Pipeline struct {
	conf    Config
	prims   Primitives
	builder CorrespondenceBuilder
}

func NewPipeline(conf Config, prims Primitives) (*Pipeline, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	builder, err := NewCorrespondenceBuilder(conf, prims)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		conf:    conf,
		prims:   prims,
		builder: builder,
	}, nil
}

func (p *Pipeline) Config() Config {
	return p.conf
}

// MapSize is the number of entries a time-to-contact map must have.
func (p *Pipeline) MapSize() int {
	return p.conf.Width * p.conf.Height
}

// Init populates st from the first raw buffer. No flow or
// time-to-contact is computed and raw is left untouched.
func (p *Pipeline) Init(st *State, raw []byte) error {
	frame, edges, err := p.prepare(raw)
	if err != nil {
		return err
	}
	st.Replace(frame, edges)
	return nil
}

// Run processes one raw buffer against the frame held in st. ttcMap is
// overwritten with an estimate for every pixel (NoEstimate where there
// is none) and raw is overwritten with the encoded edge map. If any
// step fails st is left unchanged.
func (p *Pipeline) Run(st *State, raw []byte, ttcMap []float64) (Result, error) {
	if !st.Ready() {
		return Result{}, ErrNotInitialised
	}
	if len(ttcMap) != p.MapSize() {
		return Result{}, fmt.Errorf("time-to-contact map has %d entries, expected %d", len(ttcMap), p.MapSize())
	}

	frame, edges, err := p.prepare(raw)
	if err != nil {
		return Result{}, err
	}
	prev, prevEdges := st.Get()
	corrs, err := p.builder.Build(Frames{
		Prev:      prev,
		PrevEdges: prevEdges,
		Curr:      frame,
		CurrEdges: edges,
	})
	if err != nil {
		return Result{}, err
	}

	minima, stats := Aggregate(corrs, p.conf.Width, p.conf.Height, p.conf.FrameRate, ttcMap)

	if err := p.prims.Encode(edges, raw); err != nil {
		return Result{}, fmt.Errorf("encoding edge map: %w", err)
	}
	st.Replace(frame, edges)

	return Result{
		Minima: minima,
		Stats:  stats,
		Frame:  frame,
		Edges:  edges,
	}, nil
}

func (p *Pipeline) prepare(raw []byte) (*Frame, *EdgeMap, error) {
	frame, err := p.prims.ToWorking(raw, p.conf.Width, p.conf.Height)
	if err != nil {
		return nil, nil, fmt.Errorf("converting frame: %w", err)
	}
	if frame.Width != p.conf.Width || frame.Height != p.conf.Height {
		return nil, nil, fmt.Errorf("converted frame is %dx%d, expected %dx%d",
			frame.Width, frame.Height, p.conf.Width, p.conf.Height)
	}
	edges, err := p.prims.DetectEdges(frame, p.conf.CannyLow, p.conf.CannyHigh)
	if err != nil {
		return nil, nil, fmt.Errorf("detecting edges: %w", err)
	}
	if edges.Width != p.conf.Width || edges.Height != p.conf.Height {
		return nil, nil, fmt.Errorf("edge map is %dx%d, expected %dx%d",
			edges.Width, edges.Height, p.conf.Width, p.conf.Height)
	}
	return frame, edges, nil
}
