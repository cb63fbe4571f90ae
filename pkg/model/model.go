package model

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pwgbots/diafram/pkg/errors"
)

// Aspects lists the six aspect letters in attachment order: letter index i
// attaches at angle i*60 degrees on the function hexagon, with the output
// aspect O at the right-hand vertex (angle 0). The letters are the FRAM set
// Output, Control, Resource, Precondition, Input, Time.
const Aspects = "OCRPIT"

// AspectCount is the number of aspects on a function hexagon.
const AspectCount = len(Aspects)

// Default function dimensions used when the model leaves them zero.
const (
	DefaultFunctionWidth  = 120.0
	DefaultFunctionHeight = 60.0
)

// AspectIndex returns the attachment index for an aspect letter, or -1 if
// the letter is not one of the six aspects.
func AspectIndex(letter string) int {
	if len(letter) != 1 {
		return -1
	}
	return strings.IndexByte(Aspects, letter[0])
}

// Function is a hexagonal FRAM function. X and Y are the center of the
// hexagon in content coordinates; W and H are the full width and height.
type Function struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Actor      string   `json:"actor,omitempty"`      // Owning actor, drawn in a distinct style
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	W          float64  `json:"w,omitempty"`
	H          float64  `json:"h,omitempty"`
	Parent     string   `json:"parent,omitempty"`     // Containing function ID ("" = top level)
	Selected   bool     `json:"selected,omitempty"`
	Commentary bool     `json:"commentary,omitempty"` // Has attached commentary
	Meta       map[string]any `json:"meta,omitempty"`
}

// DisplayName returns the name if set, otherwise the ID.
func (f *Function) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// Width returns the function width, defaulted when unset.
func (f *Function) Width() float64 {
	if f.W > 0 {
		return f.W
	}
	return DefaultFunctionWidth
}

// Height returns the function height, defaulted when unset.
func (f *Function) Height() float64 {
	if f.H > 0 {
		return f.H
	}
	return DefaultFunctionHeight
}

// AspectValue is a labeled value attached to a link.
type AspectValue struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

// Link is a directed connection from the output corner of one function to an
// aspect corner of another.
type Link struct {
	ID       string        `json:"id"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Aspect   string        `json:"aspect"`           // One of the six aspect letters
	Values   []AspectValue `json:"values,omitempty"` // Labeled sub-values placed along the curve
	Selected bool          `json:"selected,omitempty"`
}

// Note is a free-text annotation.
type Note struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w,omitempty"`
	H        float64 `json:"h,omitempty"`
	Text     string  `json:"text"`
	Parent   string  `json:"parent,omitempty"`
	Selected bool    `json:"selected,omitempty"`
}

// Model is the graph model the drawing core reads. The core never mutates
// model-owned fields except the derived on-screen geometry it writes back
// for layout purposes (TranslateVisible during re-centering).
type Model struct {
	Name      string      `json:"name,omitempty"`
	Focal     string      `json:"focal,omitempty"` // Focal function ID ("" = top level)
	Functions []*Function `json:"functions"`
	Links     []*Link     `json:"links,omitempty"`
	Notes     []*Note     `json:"notes,omitempty"`

	byID map[string]*Function
}

// Function looks up a function by ID.
func (m *Model) Function(id string) (*Function, bool) {
	if m.byID == nil {
		m.index()
	}
	f, ok := m.byID[id]
	return f, ok
}

func (m *Model) index() {
	m.byID = make(map[string]*Function, len(m.Functions))
	for _, f := range m.Functions {
		m.byID[f.ID] = f
	}
}

// IsVisible reports whether the function with the given ID is a direct child
// of the focal container and therefore currently drawn.
func (m *Model) IsVisible(id string) bool {
	f, ok := m.Function(id)
	return ok && f.Parent == m.Focal
}

// VisibleFunctions returns the focal container's direct children in model
// order, which is also the draw order.
func (m *Model) VisibleFunctions() []*Function {
	out := make([]*Function, 0, len(m.Functions))
	for _, f := range m.Functions {
		if f.Parent == m.Focal {
			out = append(out, f)
		}
	}
	return out
}

// VisibleLinks returns the links whose endpoints are both visible.
func (m *Model) VisibleLinks() []*Link {
	out := make([]*Link, 0, len(m.Links))
	for _, l := range m.Links {
		if m.IsVisible(l.From) && m.IsVisible(l.To) {
			out = append(out, l)
		}
	}
	return out
}

// VisibleNotes returns the notes attached to the focal container.
func (m *Model) VisibleNotes() []*Note {
	out := make([]*Note, 0, len(m.Notes))
	for _, n := range m.Notes {
		if n.Parent == m.Focal {
			out = append(out, n)
		}
	}
	return out
}

// HasSubFunctions reports whether any function is nested inside f.
func (m *Model) HasSubFunctions(f *Function) bool {
	for _, c := range m.Functions {
		if c.Parent == f.ID {
			return true
		}
	}
	return false
}

// HiddenLinkCounts returns the number of links from and to the given visible
// function whose other endpoint lies outside the focal container. These are
// shown as block-arrow glyphs at the function's top corners.
func (m *Model) HiddenLinkCounts(id string) (in, out int) {
	for _, l := range m.Links {
		switch {
		case l.From == id && !m.IsVisible(l.To):
			out++
		case l.To == id && !m.IsVisible(l.From):
			in++
		}
	}
	return in, out
}

// BoundingBox returns the bounding box of the visible content (functions and
// notes, including their extents). ok is false for an empty picture.
func (m *Model) BoundingBox() (minX, minY, maxX, maxY float64, ok bool) {
	grow := func(x0, y0, x1, y1 float64) {
		if !ok {
			minX, minY, maxX, maxY = x0, y0, x1, y1
			ok = true
			return
		}
		minX = min(minX, x0)
		minY = min(minY, y0)
		maxX = max(maxX, x1)
		maxY = max(maxY, y1)
	}
	for _, f := range m.VisibleFunctions() {
		hw, hh := f.Width()/2, f.Height()/2
		grow(f.X-hw, f.Y-hh, f.X+hw, f.Y+hh)
	}
	for _, n := range m.VisibleNotes() {
		grow(n.X-n.W/2, n.Y-n.H/2, n.X+n.W/2, n.Y+n.H/2)
	}
	return minX, minY, maxX, maxY, ok
}

// TranslateVisible shifts all visible functions and notes by (dx, dy). The
// viewport controller uses this to re-center the picture on fit-to-size.
func (m *Model) TranslateVisible(dx, dy float64) {
	for _, f := range m.VisibleFunctions() {
		f.X += dx
		f.Y += dy
	}
	for _, n := range m.VisibleNotes() {
		n.X += dx
		n.Y += dy
	}
}

// Validate checks referential integrity: every link endpoint must name an
// existing function and every aspect letter must be one of the six aspects.
func (m *Model) Validate() error {
	m.index()
	seen := make(map[string]struct{}, len(m.Functions))
	for _, f := range m.Functions {
		if f.ID == "" {
			return errors.New(errors.ErrCodeInvalidModel, "function with empty id")
		}
		if _, dup := seen[f.ID]; dup {
			return errors.New(errors.ErrCodeInvalidModel, "duplicate function id %q", f.ID)
		}
		seen[f.ID] = struct{}{}
		if f.Parent != "" {
			if _, ok := m.byID[f.Parent]; !ok {
				return errors.New(errors.ErrCodeInvalidModel, "function %q: unknown parent %q", f.ID, f.Parent)
			}
		}
	}
	for _, l := range m.Links {
		if _, ok := m.byID[l.From]; !ok {
			return errors.New(errors.ErrCodeInvalidModel, "link %q: unknown source %q", l.ID, l.From)
		}
		if _, ok := m.byID[l.To]; !ok {
			return errors.New(errors.ErrCodeInvalidModel, "link %q: unknown target %q", l.ID, l.To)
		}
		if AspectIndex(l.Aspect) < 0 {
			return errors.New(errors.ErrCodeInvalidModel, "link %q: invalid aspect %q", l.ID, l.Aspect)
		}
	}
	return nil
}

// Parse decodes and validates a model from its JSON form.
func Parse(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode model")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// LoadFile reads and parses a model file.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "model file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read model file %s", path)
	}
	return Parse(data)
}

// Bytes returns the indented JSON form of the model.
func (m *Model) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode model")
	}
	return data, nil
}
