package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/report"
	"github.com/alexiusacademia/gobeam/internal/section"
	"github.com/alexiusacademia/gobeam/internal/session"
	"github.com/alexiusacademia/gobeam/internal/storage"
)

const maxBody = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

type sectionInfo struct {
	Name         string  `json:"name"`
	Area         float64 `json:"area"`
	Inertia      float64 `json:"inertia"`
	Depth        float64 `json:"depth"`
	ExtremeFiber float64 `json:"extreme_fiber"`
}

type loadResponse struct {
	Config   beam.Configuration `json:"config"`
	Defaults bool               `json:"defaults"`
}

// encodeJSON marshals v before writing the status. A value that cannot be
// encoded is answered with 500 and the marshal error is returned.
func encodeJSON(w http.ResponseWriter, status int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(errorBody{Error: fmt.Sprintf("encoding response: %v", err)})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
	return err
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := encodeJSON(w, status, v); err != nil {
		s.logger.Error("encoding response", "status", status, "error", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, beam.ErrInvalidInput), errors.Is(err, beam.ErrInvalidSection):
		status = http.StatusBadRequest
	case errors.Is(err, storage.ErrPresetNotFound), errors.Is(err, config.ErrNotFound):
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", beam.ErrInvalidInput, err)
	}
	return nil
}

// analyzer builds an analyzer from the method and samples query parameters.
func analyzer(r *http.Request) (*beam.Analyzer, error) {
	an := beam.NewAnalyzer()
	q := r.URL.Query()
	if m := q.Get("method"); m != "" {
		method, err := beam.ParseMethod(m)
		if err != nil {
			return nil, err
		}
		an.Method = method
	}
	if n := q.Get("samples"); n != "" {
		samples, err := strconv.Atoi(n)
		if err != nil || samples < 2 || samples > 100000 {
			return nil, fmt.Errorf("%w: samples must be an integer in [2, 100000], got %q", beam.ErrInvalidInput, n)
		}
		an.Samples = samples
	}
	return an, nil
}

func (s *Server) analyzeCurrent(r *http.Request) (*beam.Result, error) {
	an, err := analyzer(r)
	if err != nil {
		return nil, err
	}
	return an.Analyze(s.Config())
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Config())
}

// putConfig replaces the current configuration. Invalid configurations leave
// the state untouched.
func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	var cfg beam.Configuration
	if err := decode(r, &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	if name, err := material.Canonical(cfg.Material); err == nil {
		cfg.Material = name
	}
	if err := cfg.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	s.state = session.New(cfg)
	s.mu.Unlock()

	s.logger.Info("configuration updated", "length", cfg.Length, "load", cfg.Load, "position", cfg.LoadPosition)
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) saveConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.Config()
	if err := config.Save(s.opts.ConfigPath, cfg); err != nil {
		s.logger.Error("saving configuration", "path", s.opts.ConfigPath, "error", err)
		s.writeError(w, err)
		return
	}
	s.logger.Info("configuration saved", "path", s.opts.ConfigPath)
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) loadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, fellBack, err := config.LoadOrDefault(s.opts.ConfigPath)
	if err != nil {
		s.logger.Error("loading configuration", "path", s.opts.ConfigPath, "error", err)
		s.writeError(w, err)
		return
	}
	if fellBack {
		s.logger.Warn("configuration file not found, using defaults", "path", s.opts.ConfigPath)
	}

	s.mu.Lock()
	s.state = session.New(cfg)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, loadResponse{Config: cfg, Defaults: fellBack})
}

func (s *Server) currentAnalysis(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyzeCurrent(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// postAnalysis analyzes the posted configuration without touching the state.
func (s *Server) postAnalysis(w http.ResponseWriter, r *http.Request) {
	var cfg beam.Configuration
	if err := decode(r, &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	an, err := analyzer(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	res, err := an.Analyze(cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	s.writeJSON(w, http.StatusOK, st)
}

// postEvents applies one event or a JSON array of events in order.
func (s *Server) postEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var events []session.Event
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &events)
	} else {
		var ev session.Event
		err = json.Unmarshal(trimmed, &ev)
		events = []session.Event{ev}
	}
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", beam.ErrInvalidInput, err))
		return
	}
	for _, ev := range events {
		if _, err := session.ParseEventType(string(ev.Type)); err != nil {
			s.writeError(w, fmt.Errorf("%w: %w", beam.ErrInvalidInput, err))
			return
		}
	}

	s.mu.Lock()
	s.state = session.Apply(s.state, events...)
	st := s.state
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) materials(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, material.All())
}

func (s *Server) sections(w http.ResponseWriter, r *http.Request) {
	list := make([]sectionInfo, 0, len(section.Kinds))
	for _, k := range section.Kinds {
		p, err := section.Preset(k)
		if err != nil {
			s.writeError(w, err)
			return
		}
		list = append(list, sectionInfo{
			Name:         k.String(),
			Area:         p.Area(),
			Inertia:      p.Inertia(),
			Depth:        p.Depth(),
			ExtremeFiber: p.ExtremeFiber(),
		})
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) diagram(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyzeCurrent(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	format := mux.Vars(r)["format"]
	var buf bytes.Buffer
	if err := diagram.Write(res, &buf, format); err != nil {
		s.logger.Error("rendering diagram", "error", err)
		s.writeError(w, err)
		return
	}

	if format == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	w.Write(buf.Bytes())
}

func (s *Server) reportPDF(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyzeCurrent(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	prof, err := section.Preset(res.Config.Section)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	in := report.Input{Project: r.URL.Query().Get("project"), Result: res, Profile: prof}
	if err := report.PDF(&buf, in); err != nil {
		s.logger.Error("generating report", "error", err)
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"beam-report.pdf\"")
	w.Write(buf.Bytes())
}

func (s *Server) samplesXLSX(w http.ResponseWriter, r *http.Request) {
	res, err := s.analyzeCurrent(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.XLSX(&buf, res); err != nil {
		s.logger.Error("generating workbook", "error", err)
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"beam-samples.xlsx\"")
	w.Write(buf.Bytes())
}

func (s *Server) listPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.opts.Store.ListPresets()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if presets == nil {
		presets = []storage.Preset{}
	}
	s.writeJSON(w, http.StatusOK, presets)
}

func (s *Server) getPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.opts.Store.Preset(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// putPreset stores the posted configuration, or the current one when the
// body is empty.
func (s *Server) putPreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	cfg := s.Config()
	if r.ContentLength != 0 {
		if err := decode(r, &cfg); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if err := s.opts.Store.SavePreset(name, cfg); err != nil {
		s.writeError(w, err)
		return
	}

	p, err := s.opts.Store.Preset(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("preset saved", "name", name)
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePreset(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.opts.Store.DeletePreset(name); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("preset deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) applyPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.opts.Store.Preset(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.mu.Lock()
	s.state = session.New(p.Config)
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, p.Config)
}
