// Package api exposes the legacy spectra readers over HTTP, so plotting
// and archive front-ends can fetch decoded headers and sample data
// without linking the readers directly.
package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/girpas-ulg/spector/internal/bruker"
	"github.com/girpas-ulg/spector/internal/fts1"
	"github.com/girpas-ulg/spector/internal/logger"
	"github.com/girpas-ulg/spector/internal/rinsland"
	"github.com/girpas-ulg/spector/internal/speccat"
	"github.com/girpas-ulg/spector/internal/spectra"
)

// Formats lists the readers the server can dispatch to.
var Formats = []FormatInfo{
	{Name: "fts1", Kind: "spectrum", Description: "FTS1 binary spectrum (hp1000 instrument)"},
	{Name: "bruker", Kind: "spectrum", Description: "Bruker/OPUS-derived binary spectrum (Jungfraujoch)"},
	{Name: "rinsland", Kind: "spectrum", Description: "Rinsland exchange spectrum (ASCII header)"},
	{Name: "spec", Kind: "catalog", Description: "SPyy/BRyy yearly spectra description catalog"},
}

// Server serves spectra files resolved under a single data root.
type Server struct {
	root string
	log  logger.Logger
}

// NewServer returns a server reading files under root.
func NewServer(root string, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{root: root, log: log}
}

// Register installs the API routes.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/formats", s.handleFormats)
	e.GET("/v1/spectrum", s.handleSpectrum)
	e.GET("/v1/catalog", s.handleCatalog)
}

func (s *Server) handleFormats(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, Formats)
}

func (s *Server) handleSpectrum(c *echo.Context) error {
	reqID := uuid.NewString()
	path, err := s.resolve(c.QueryParam("path"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, reqID, err.Error())
	}
	format := c.QueryParam("format")
	withData := c.QueryParam("data") == "true"

	var (
		summary  spectra.Summary
		spectrum any
	)
	switch format {
	case "fts1":
		sp, err := fts1.Open(path)
		if err != nil {
			return writeReadError(c, reqID, err)
		}
		if !withData {
			sp.Data = nil
		}
		summary, spectrum = sp.Summary(), sp
	case "bruker":
		sp, err := bruker.Open(path)
		if err != nil {
			return writeReadError(c, reqID, err)
		}
		if !withData {
			sp.Data = nil
		}
		summary, spectrum = sp.Summary(), sp
	case "rinsland":
		sp, err := rinsland.Open(path)
		if err != nil {
			return writeReadError(c, reqID, err)
		}
		if !withData {
			sp.Data = nil
		}
		summary, spectrum = sp.Summary(), sp
	default:
		return writeError(c, http.StatusBadRequest, reqID,
			fmt.Sprintf("unknown spectrum format %q", format))
	}

	s.log.Info("spectrum read", "request_id", reqID, "format", format, "path", path)
	return writeJSON(c, http.StatusOK, SpectrumResponse{
		RequestID: reqID,
		Path:      c.QueryParam("path"),
		Format:    format,
		Summary:   summary,
		Spectrum:  spectrum,
	})
}

func (s *Server) handleCatalog(c *echo.Context) error {
	reqID := uuid.NewString()
	path, err := s.resolve(c.QueryParam("path"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, reqID, err.Error())
	}
	cat, err := speccat.Open(path)
	if err != nil {
		return writeReadError(c, reqID, err)
	}
	s.log.Info("catalog read", "request_id", reqID, "path", path,
		"records", len(cat.Records))
	return writeJSON(c, http.StatusOK, CatalogResponse{
		RequestID: reqID,
		Path:      c.QueryParam("path"),
		Catalog:   cat,
	})
}

// resolve maps a request-relative path onto the data root, rejecting
// anything that would escape it.
func (s *Server) resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("missing path parameter")
	}
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the data root", rel)
	}
	return filepath.Join(s.root, clean), nil
}

func writeReadError(c *echo.Context, reqID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return writeError(c, http.StatusNotFound, reqID, err.Error())
	}
	return writeError(c, http.StatusUnprocessableEntity, reqID, err.Error())
}

func writeError(c *echo.Context, status int, reqID, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ErrorBody{Message: msg, RequestID: reqID},
	})
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}
