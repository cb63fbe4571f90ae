package scene

import (
	"bytes"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/pwgbots/diafram/pkg/scene/styles"
)

// Scene is the live picture: an ordered list of attached shapes plus the
// paint-resource registry and the canvas/view geometry the viewport
// controller maintains. All mutation is single-threaded; drawing runs to
// completion before the next input event is processed.
type Scene struct {
	reg    *styles.Registry
	order  []uuid.UUID
	shapes map[uuid.UUID]*Shape

	handlers map[Handle]map[EventKind]Handler

	canvasW, canvasH float64
	viewW, viewH     float64
}

// NewScene creates an empty scene with a fresh style registry.
func NewScene() *Scene {
	return &Scene{
		reg:      styles.NewRegistry(),
		shapes:   make(map[uuid.UUID]*Shape),
		handlers: make(map[Handle]map[EventKind]Handler),
	}
}

// Registry returns the scene's paint-resource registry.
func (sc *Scene) Registry() *styles.Registry { return sc.reg }

// SetCanvasSize sets the rendered canvas size in content units.
func (sc *Scene) SetCanvasSize(w, h float64) {
	sc.canvasW, sc.canvasH = w, h
}

// SetViewWindow sets the view-window (viewBox) size.
func (sc *Scene) SetViewWindow(w, h float64) {
	sc.viewW, sc.viewH = w, h
}

// CanvasSize returns the rendered canvas size.
func (sc *Scene) CanvasSize() (w, h float64) { return sc.canvasW, sc.canvasH }

// Append attaches a shape to the live scene. If a shape with the same
// identity is already attached it is replaced in place, keeping its z-order
// slot; a stale attached copy is never duplicated.
func (sc *Scene) Append(s *Shape) {
	if _, attached := sc.shapes[s.id]; !attached {
		sc.order = append(sc.order, s.id)
	}
	sc.shapes[s.id] = s
}

// Remove detaches a shape from the live scene and releases the handlers
// bound to its primitives. Removing a shape without a live counterpart is a
// no-op.
func (sc *Scene) Remove(s *Shape) {
	if _, attached := sc.shapes[s.id]; !attached {
		return
	}
	for _, h := range s.handles(nil) {
		delete(sc.handlers, h)
	}
	delete(sc.shapes, s.id)
	for i, id := range sc.order {
		if id == s.id {
			sc.order = append(sc.order[:i], sc.order[i+1:]...)
			break
		}
	}
}

// Attached reports whether the shape is currently part of the live scene.
func (sc *Scene) Attached(s *Shape) bool {
	_, ok := sc.shapes[s.id]
	return ok
}

// Shapes returns the attached shapes in z-order (first drawn lowest).
func (sc *Scene) Shapes() []*Shape {
	out := make([]*Shape, 0, len(sc.order))
	for _, id := range sc.order {
		out = append(out, sc.shapes[id])
	}
	return out
}

// Len returns the number of attached shapes.
func (sc *Scene) Len() int { return len(sc.order) }

// SVGOption configures serialization.
type SVGOption func(*svgWriter)

// WithOpaque forces the semi-transparent function-shading fill opacity to
// fully opaque, for export to consumers that terrace badly over transparency.
func WithOpaque() SVGOption {
	return func(w *svgWriter) { w.opaque = true }
}

type svgWriter struct {
	reg    *styles.Registry
	opaque bool
}

// WriteSVG serializes the scene into buf as a complete SVG document.
func (sc *Scene) WriteSVG(buf *bytes.Buffer, opts ...SVGOption) {
	w := svgWriter{reg: sc.reg}
	for _, opt := range opts {
		opt(&w)
	}

	cw, ch := sc.canvasW, sc.canvasH
	vw, vh := sc.viewW, sc.viewH
	if vw == 0 || vh == 0 {
		vw, vh = cw, ch
	}
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		vw, vh, cw, ch)

	sc.reg.RenderDefs(buf)

	for _, id := range sc.order {
		w.writeShape(buf, sc.shapes[id])
	}

	buf.WriteString("</svg>\n")
}

func (w *svgWriter) writeShape(buf *bytes.Buffer, s *Shape) {
	fmt.Fprintf(buf, `  <g id="shape-%s">`+"\n", s.id)
	for _, p := range s.prims {
		w.writePrimitive(buf, p)
	}
	buf.WriteString("  </g>\n")
}

func (w *svgWriter) writePrimitive(buf *bytes.Buffer, p Primitive) {
	switch v := p.(type) {
	case *Path:
		fmt.Fprintf(buf, `    <path d="%s"%s/>`+"\n", pathData(v.Segments), w.attrString(v.attrs()))
	case *Rect:
		fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"`, v.X, v.Y, v.W, v.H)
		if v.RX > 0 {
			fmt.Fprintf(buf, ` rx="%.2f"`, v.RX)
		}
		fmt.Fprintf(buf, "%s/>\n", w.attrString(v.attrs()))
	case *Circle:
		fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f"%s/>`+"\n", v.CX, v.CY, v.R, w.attrString(v.attrs()))
	case *Ellipse:
		fmt.Fprintf(buf, `    <ellipse cx="%.2f" cy="%.2f" rx="%.2f" ry="%.2f"%s/>`+"\n", v.CX, v.CY, v.RX, v.RY, w.attrString(v.attrs()))
	case *Text:
		w.writeText(buf, v)
	case *Group:
		w.writeShape(buf, v.Shape)
	case *BlockArrow:
		w.writeBlockArrow(buf, v)
	case *Connector:
		w.writeConnector(buf, v)
	}
}

func (w *svgWriter) writeText(buf *bytes.Buffer, t *Text) {
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%d"`, t.X, t.Y, t.FontSize)
	if t.FontWeight != 0 && t.FontWeight != 400 {
		fmt.Fprintf(buf, ` font-weight="%d"`, t.FontWeight)
	}
	if t.Anchor != "" {
		fmt.Fprintf(buf, ` text-anchor="%s"`, t.Anchor)
	}
	fmt.Fprintf(buf, "%s>", w.attrString(t.attrs()))
	if len(t.Lines) == 1 {
		buf.WriteString(styles.EscapeXML(t.Lines[0]))
	} else {
		for i, line := range t.Lines {
			dy := 0.0
			if i > 0 {
				dy = t.LineHeight
			}
			fmt.Fprintf(buf, `<tspan x="%.2f" dy="%.2f">%s</tspan>`, t.X, dy, styles.EscapeXML(line))
		}
	}
	buf.WriteString("</text>\n")
}

// writeBlockArrow renders the hidden-link glyph: a chevron-shaped arrow with
// the count centered inside.
func (w *svgWriter) writeBlockArrow(buf *bytes.Buffer, a *BlockArrow) {
	dir := 1.0
	if a.Dir == ArrowIn {
		dir = -1
	}
	const hw, hh = 9.0, 6.0
	fmt.Fprintf(buf,
		`    <path d="M %.2f %.2f L %.2f %.2f L %.2f %.2f L %.2f %.2f z" data-owner="%s"%s/>`+"\n",
		a.X-dir*hw, a.Y-hh, a.X+dir*hw, a.Y-hh, a.X+dir*(hw+5), a.Y, a.X-dir*hw, a.Y+hh,
		styles.EscapeXML(a.Owner), w.attrString(a.attrs()))
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="8" text-anchor="middle">%d</text>`+"\n",
		a.X, a.Y+3, a.Count)
}

func (w *svgWriter) writeConnector(buf *bytes.Buffer, c *Connector) {
	fmt.Fprintf(buf, `    <circle cx="%.2f" cy="%.2f" r="%.2f" data-owner="%s" data-aspect="%c"%s/>`+"\n",
		c.CX, c.CY, c.R, styles.EscapeXML(c.Owner), c.Letter, w.attrString(c.attrs()))
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle">%c</text>`+"\n",
		c.CX, c.CY+c.R*0.4, c.R*1.2, c.Letter)
}

func (w *svgWriter) attrString(a *Attrs) string {
	var b bytes.Buffer
	if a.Fill != "" {
		fmt.Fprintf(&b, ` fill="%s"`, a.Fill)
	}
	fillOp := a.FillOpacity
	if w.opaque && nearlyEqual(fillOp, styles.ShadeOpacity) {
		fillOp = 1
	}
	if fillOp != 1 {
		fmt.Fprintf(&b, ` fill-opacity="%.2f"`, fillOp)
	}
	if a.Stroke != "" {
		fmt.Fprintf(&b, ` stroke="%s"`, a.Stroke)
	}
	if a.StrokeWidth != 0 {
		fmt.Fprintf(&b, ` stroke-width="%.2f"`, a.StrokeWidth)
	}
	if a.Opacity != 1 {
		fmt.Fprintf(&b, ` opacity="%.2f"`, a.Opacity)
	}
	if a.Dash != "" {
		fmt.Fprintf(&b, ` stroke-dasharray="%s"`, a.Dash)
	}
	if a.MarkerEnd != "" {
		fmt.Fprintf(&b, ` marker-end="url(#%s)"`, a.MarkerEnd)
	}
	if a.Filter != "" {
		fmt.Fprintf(&b, ` filter="url(#%s)"`, a.Filter)
	}
	if a.Class != "" {
		fmt.Fprintf(&b, ` class="%s"`, a.Class)
	}
	return b.String()
}

func pathData(segs []Segment) string {
	var b bytes.Buffer
	for i, s := range segs {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch s.Op {
		case OpMove:
			fmt.Fprintf(&b, "M %.2f %.2f", s.Pts[0].X, s.Pts[0].Y)
		case OpLine:
			fmt.Fprintf(&b, "L %.2f %.2f", s.Pts[0].X, s.Pts[0].Y)
		case OpCurve:
			fmt.Fprintf(&b, "C %.2f %.2f, %.2f %.2f, %.2f %.2f",
				s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
		case OpClose:
			b.WriteByte('z')
		}
	}
	return b.String()
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}
