// Package scene provides the retained scene graph the drawing orchestrator
// mutates in place: identity-bearing primitive groups ("shapes"), a live
// scene with replace-by-identity attachment, registered pointer handlers,
// and on-demand SVG serialization.
//
// Each diagram entity owns exactly one Shape for as long as it is visible.
// On every redraw the owner calls Clear and refills the group; the identity
// survives across redraws, which is what keeps hover/selection feedback
// flicker-free. The refill produces fresh primitives with fresh handles, so
// Clear reports the superseded handles and the owner releases their handlers
// and re-registers on the new primitives.
package scene

import (
	"github.com/google/uuid"
)

// Shape is an identity-bearing bundle of vector primitives representing one
// diagram entity's visual. The identity is a process-unique, time-ordered
// token assigned at construction and never changed.
type Shape struct {
	id    uuid.UUID
	prims []Primitive
}

// NewShape creates an empty shape with a fresh identity.
func NewShape() *Shape {
	return &Shape{id: uuid.Must(uuid.NewV7())}
}

// ID returns the shape's identity token.
func (s *Shape) ID() uuid.UUID { return s.id }

// Primitives returns the group's primitives in append order.
func (s *Shape) Primitives() []Primitive { return s.prims }

// Len returns the number of primitives in the group.
func (s *Shape) Len() int { return len(s.prims) }

// Clear empties the group, preserving its identity, and returns the handles
// of the dropped primitives (including those of nested sub-groups) so the
// owner can release handlers still keyed to them. It is idempotent and safe
// on an empty group.
func (s *Shape) Clear() []Handle {
	dropped := s.handles(nil)
	s.prims = s.prims[:0]
	return dropped
}

// handles appends the handles of every primitive in the group, recursing
// into nested sub-groups.
func (s *Shape) handles(out []Handle) []Handle {
	for _, p := range s.prims {
		out = append(out, p.Handle())
		if g, ok := p.(*Group); ok {
			out = g.Shape.handles(out)
		}
	}
	return out
}

func (s *Shape) add(p Primitive) {
	s.prims = append(s.prims, p)
}

// AddPath appends an empty path and returns it for segment building and
// attribute attachment.
func (s *Shape) AddPath() *Path {
	p := &Path{base: newBase()}
	s.add(p)
	return p
}

// AddTextLabel appends a text run centered at (x, y). The caller supplies
// the measured extent and per-line advance from the font-metrics cache.
func (s *Shape) AddTextLabel(x, y float64, lines []string, size, weight int, lineHeight, estW, estH float64) *Text {
	t := &Text{
		base: newBase(), X: x, Y: y, Lines: lines,
		FontSize: size, FontWeight: weight, Anchor: "middle",
		LineHeight: lineHeight, EstWidth: estW, EstHeight: estH,
	}
	t.Fill = "#000000"
	s.add(t)
	return t
}

// AddNumberLabel appends a numeric label centered at (x, y) whose extent was
// estimated with fixed-advance glyph approximation rather than measured.
func (s *Shape) AddNumberLabel(x, y float64, text string, size, weight int, estW, estH float64) *Text {
	t := &Text{
		base: newBase(), X: x, Y: y, Lines: []string{text},
		FontSize: size, FontWeight: weight, Anchor: "middle",
		LineHeight: estH, EstWidth: estW, EstHeight: estH,
	}
	t.Fill = "#000000"
	s.add(t)
	return t
}

// AddRect appends a rectangle given by center and size.
func (s *Shape) AddRect(cx, cy, w, h float64) *Rect {
	r := &Rect{base: newBase(), X: cx - w/2, Y: cy - h/2, W: w, H: h}
	s.add(r)
	return r
}

// AddCircle appends a circle.
func (s *Shape) AddCircle(cx, cy, r float64) *Circle {
	c := &Circle{base: newBase(), CX: cx, CY: cy, R: r}
	s.add(c)
	return c
}

// AddEllipse appends an ellipse.
func (s *Shape) AddEllipse(cx, cy, rx, ry float64) *Ellipse {
	e := &Ellipse{base: newBase(), CX: cx, CY: cy, RX: rx, RY: ry}
	s.add(e)
	return e
}

// AddGroup appends a nested sub-group and returns its shape.
func (s *Shape) AddGroup() *Group {
	g := &Group{base: newBase(), Shape: NewShape()}
	s.add(g)
	return g
}

// AddBlockArrow appends a directional hidden-link glyph tagged with its
// owner and direction.
func (s *Shape) AddBlockArrow(x, y float64, dir ArrowDir, count int, owner string) *BlockArrow {
	a := &BlockArrow{base: newBase(), X: x, Y: y, Dir: dir, Count: count, Owner: owner}
	s.add(a)
	return a
}

// AddConnector appends a circular aspect glyph tagged with its owner and
// aspect letter.
func (s *Shape) AddConnector(cx, cy, r float64, letter byte, owner string) *Connector {
	c := &Connector{base: newBase(), CX: cx, CY: cy, R: r, Letter: letter, Owner: owner}
	s.add(c)
	return c
}
