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

// Package web serves the latest sector minima and edge overlay over
// HTTP for bench testing.
package web

import (
	"bytes"
	"image/png"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/TheCacophonyProject/ttc-recorder/contact"
	"github.com/TheCacophonyProject/ttc-recorder/ttc"
)

// Source is where the server gets what it shows.
type Source interface {
	LatestMinima() ttc.SectorMinima
	GetRecentFrame() *contact.Sample
}

// SectorsResponse is the body of GET /api/sectors.
type SectorsResponse struct {
	ttc.SectorMinima
	Closest string  `json:"closest"`
	TTC     float64 `json:"ttc"`
}

type Server struct {
	app    *fiber.App
	addr   string
	source Source
}

func NewServer(addr string, source Source) *Server {
	s := &Server{
		addr:   addr,
		source: source,
	}

	app := fiber.New(fiber.Config{
		AppName:               "ttc-recorder",
		DisableStartupMessage: true,
	})

	api := app.Group("/api")
	api.Get("/sectors", s.handleSectors)
	app.Get("/overlay.png", s.handleOverlay)

	s.app = app
	return s
}

func (s *Server) Start() error {
	log.Printf("web status on %s", s.addr)
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine. Failure is only logged
// as the recorder works without it.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Printf("web server error: %v", err)
		}
	}()
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleSectors(c *fiber.Ctx) error {
	minima := s.source.LatestMinima()
	sector, closest := minima.Closest()
	return c.JSON(SectorsResponse{
		SectorMinima: minima,
		Closest:      sector.String(),
		TTC:          closest,
	})
}

func (s *Server) handleOverlay(c *fiber.Ctx) error {
	sample := s.source.GetRecentFrame()
	if sample == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no frames yet",
		})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sample.Overlay()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}
