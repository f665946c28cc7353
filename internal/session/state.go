// Package session holds the interactive simulator state and the pure
// function that applies user events to it. Rendering and input mapping stay
// with the caller; positions arrive in meters along the beam.
package session

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/material"
	"github.com/alexiusacademia/gobeam/internal/section"
)

// Span limits enforced while dragging or typing the beam length (m).
const (
	MinLength = 5.0
	MaxLength = 20.0
)

// Field names a text input.
type Field string

const (
	FieldNone   Field = ""
	FieldLoad   Field = "load"
	FieldLength Field = "length"
)

// State is everything the simulator remembers between events.
type State struct {
	Config beam.Configuration `json:"config"`

	DraggingLoad   bool `json:"dragging_load"`
	DraggingLength bool `json:"dragging_length"`

	ActiveField Field  `json:"active_field,omitempty"`
	LoadText    string `json:"load_text"`
	LengthText  string `json:"length_text"`
}

// EventType enumerates user actions.
type EventType string

const (
	PressLoad      EventType = "press_load"
	PressBeamEnd   EventType = "press_beam_end"
	Release        EventType = "release"
	Move           EventType = "move"
	SelectMaterial EventType = "select_material"
	SelectSection  EventType = "select_section"
	Focus          EventType = "focus"
	Blur           EventType = "blur"
	Type           EventType = "type"
	Backspace      EventType = "backspace"
	Commit         EventType = "commit"
)

// Event is one user action. Value carries pointer positions (m); Text
// carries names and typed characters.
type Event struct {
	Type  EventType `json:"type"`
	Value float64   `json:"value,omitempty"`
	Text  string    `json:"text,omitempty"`
}

// New wraps a configuration in a fresh state.
func New(cfg beam.Configuration) State {
	return State{
		Config:     cfg,
		LoadText:   formatNumber(cfg.Load),
		LengthText: formatNumber(cfg.Length),
	}
}

// Update applies ev to s and returns the new state. It never mutates its
// input and ignores events that do not apply in the current state.
func Update(s State, ev Event) State {
	switch ev.Type {
	case PressLoad:
		s.DraggingLoad = true
	case PressBeamEnd:
		s.DraggingLength = true
	case Release:
		s.DraggingLoad = false
		s.DraggingLength = false
	case Move:
		if !finite(ev.Value) {
			break
		}
		if s.DraggingLoad {
			s.Config.LoadPosition = clamp(ev.Value, 0, s.Config.Length)
		}
		if s.DraggingLength {
			s = setLength(s, ev.Value)
		}
	case SelectMaterial:
		if name, err := material.Canonical(ev.Text); err == nil {
			s.Config.Material = name
		}
	case SelectSection:
		if k, err := section.ParseKind(ev.Text); err == nil {
			s.Config.Section = k
		}
	case Focus:
		switch Field(ev.Text) {
		case FieldLoad, FieldLength:
			s.ActiveField = Field(ev.Text)
		default:
			s.ActiveField = FieldNone
		}
	case Blur:
		s.ActiveField = FieldNone
	case Type:
		text := acceptedChars(ev.Text)
		switch s.ActiveField {
		case FieldLoad:
			s.LoadText += text
		case FieldLength:
			s.LengthText += text
		}
	case Backspace:
		switch s.ActiveField {
		case FieldLoad:
			s.LoadText = dropLast(s.LoadText)
		case FieldLength:
			s.LengthText = dropLast(s.LengthText)
		}
	case Commit:
		switch s.ActiveField {
		case FieldLoad:
			if v, ok := parseNumber(s.LoadText); ok {
				s.Config.Load = v
			}
		case FieldLength:
			if v, ok := parseNumber(s.LengthText); ok {
				s = setLength(s, v)
			}
		}
		s.ActiveField = FieldNone
	}
	return s
}

// Apply folds a sequence of events over s.
func Apply(s State, events ...Event) State {
	for _, ev := range events {
		s = Update(s, ev)
	}
	return s
}

// ParseEventType validates an event type name.
func ParseEventType(name string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(name)))
	switch t {
	case PressLoad, PressBeamEnd, Release, Move, SelectMaterial, SelectSection,
		Focus, Blur, Type, Backspace, Commit:
		return t, nil
	}
	return "", fmt.Errorf("unknown event type %q", name)
}

func setLength(s State, length float64) State {
	s.Config.Length = clamp(length, MinLength, MaxLength)
	s.Config.LoadPosition = math.Min(s.Config.LoadPosition, s.Config.Length)
	s.LengthText = formatNumber(s.Config.Length)
	return s
}

// acceptedChars keeps digits and the decimal point.
func acceptedChars(text string) string {
	var sb strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func dropLast(text string) string {
	if text == "" {
		return text
	}
	return text[:len(text)-1]
}

// parseNumber accepts non-negative finite decimals.
func parseNumber(text string) (float64, bool) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || !finite(v) || v < 0 {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
