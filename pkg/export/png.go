package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/pwgbots/diafram/pkg/errors"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/scene/styles"
)

// Primitives below this opacity are pure interaction targets (enlarged hit
// strokes, hidden overlays) and are skipped when rasterizing.
const minVisibleOpacity = 0.05

type faceKey struct {
	size int
	bold bool
}

type rasterizer struct {
	dc      *gg.Context
	opaque  bool
	regular *truetype.Font
	bold    *truetype.Font
	faces   map[faceKey]font.Face
}

func rasterize(sc *scene.Scene, w io.Writer, o Options) (int, error) {
	cw, ch := sc.CanvasSize()
	if cw <= 0 || ch <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "cannot rasterize an empty canvas")
	}

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeResource, err, "parse regular font")
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeResource, err, "parse bold font")
	}

	dc := gg.NewContext(int(math.Ceil(cw*o.Scale)), int(math.Ceil(ch*o.Scale)))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(o.Scale, o.Scale)

	r := &rasterizer{
		dc:      dc,
		opaque:  o.Opaque,
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}
	for _, s := range sc.Shapes() {
		r.drawShape(s)
	}

	var counter countingWriter
	counter.w = w
	if err := dc.EncodePNG(&counter); err != nil {
		return counter.n, errors.Wrap(errors.ErrCodeInternal, err, "encode png export")
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

func (r *rasterizer) drawShape(s *scene.Shape) {
	for _, p := range s.Primitives() {
		r.drawPrimitive(p)
	}
}

func (r *rasterizer) drawPrimitive(p scene.Primitive) {
	switch v := p.(type) {
	case *scene.Path:
		r.drawPath(v)
	case *scene.Rect:
		r.drawRect(v)
	case *scene.Circle:
		r.drawCircle(v)
	case *scene.Ellipse:
		r.drawEllipse(v)
	case *scene.Text:
		r.drawText(v)
	case *scene.Group:
		r.drawShape(v.Shape)
	case *scene.BlockArrow:
		r.drawBlockArrow(v)
	case *scene.Connector:
		r.drawConnector(v)
	}
}

func (r *rasterizer) drawPath(p *scene.Path) {
	a := p.Attrs
	if a.Opacity < minVisibleOpacity {
		return
	}
	dc := r.dc
	dc.NewSubPath()
	for _, seg := range p.Segments {
		switch seg.Op {
		case scene.OpMove:
			dc.MoveTo(seg.Pts[0].X, seg.Pts[0].Y)
		case scene.OpLine:
			dc.LineTo(seg.Pts[0].X, seg.Pts[0].Y)
		case scene.OpCurve:
			dc.CubicTo(seg.Pts[0].X, seg.Pts[0].Y, seg.Pts[1].X, seg.Pts[1].Y, seg.Pts[2].X, seg.Pts[2].Y)
		case scene.OpClose:
			dc.ClosePath()
		}
	}
	r.paint(a, segmentsBounds(p.Segments))

	if a.MarkerEnd != "" {
		if end, dir, ok := endTangent(p.Segments); ok {
			r.drawArrowHead(end, dir, a)
		}
	}
}

func (r *rasterizer) drawRect(v *scene.Rect) {
	if v.Opacity < minVisibleOpacity {
		return
	}
	if v.RX > 0 {
		r.dc.DrawRoundedRectangle(v.X, v.Y, v.W, v.H, v.RX)
	} else {
		r.dc.DrawRectangle(v.X, v.Y, v.W, v.H)
	}
	r.paint(v.Attrs, bounds{v.X, v.Y, v.X + v.W, v.Y + v.H})
}

func (r *rasterizer) drawCircle(v *scene.Circle) {
	if v.Opacity < minVisibleOpacity {
		return
	}
	r.dc.DrawCircle(v.CX, v.CY, v.R)
	r.paint(v.Attrs, bounds{v.CX - v.R, v.CY - v.R, v.CX + v.R, v.CY + v.R})
}

func (r *rasterizer) drawEllipse(v *scene.Ellipse) {
	if v.Opacity < minVisibleOpacity {
		return
	}
	r.dc.DrawEllipse(v.CX, v.CY, v.RX, v.RY)
	r.paint(v.Attrs, bounds{v.CX - v.RX, v.CY - v.RY, v.CX + v.RX, v.CY + v.RY})
}

func (r *rasterizer) drawText(v *scene.Text) {
	if v.Opacity < minVisibleOpacity {
		return
	}
	r.setFace(v.FontSize, v.FontWeight)
	r.setColor(v.Fill, "#000000", v.FillOpacity*v.Opacity)
	y := v.Y
	for i, line := range v.Lines {
		if i > 0 {
			y += v.LineHeight
		}
		x := v.X
		if v.Anchor != "start" {
			w, _ := r.dc.MeasureString(line)
			x -= w / 2
		}
		r.dc.DrawString(line, x, y)
	}
}

func (r *rasterizer) drawBlockArrow(v *scene.BlockArrow) {
	if v.Opacity < minVisibleOpacity {
		return
	}
	dir := 1.0
	if v.Dir == scene.ArrowIn {
		dir = -1
	}
	const hw, hh = 9.0, 6.0
	dc := r.dc
	dc.NewSubPath()
	dc.MoveTo(v.X-dir*hw, v.Y-hh)
	dc.LineTo(v.X+dir*hw, v.Y-hh)
	dc.LineTo(v.X+dir*(hw+5), v.Y)
	dc.LineTo(v.X-dir*hw, v.Y+hh)
	dc.ClosePath()
	r.paint(v.Attrs, bounds{v.X - hw - 5, v.Y - hh, v.X + hw + 5, v.Y + hh})

	r.setFace(8, 0)
	r.setColor("#000000", "#000000", 1)
	w, _ := dc.MeasureString(strconv.Itoa(v.Count))
	dc.DrawString(strconv.Itoa(v.Count), v.X-w/2, v.Y+3)
}

func (r *rasterizer) drawConnector(v *scene.Connector) {
	if v.Opacity < minVisibleOpacity {
		return
	}
	r.dc.DrawCircle(v.CX, v.CY, v.R)
	r.paint(v.Attrs, bounds{v.CX - v.R, v.CY - v.R, v.CX + v.R, v.CY + v.R})

	r.setFace(int(math.Round(v.R*1.2)), 0)
	r.setColor("#000000", "#000000", 1)
	letter := string(rune(v.Letter))
	w, _ := r.dc.MeasureString(letter)
	r.dc.DrawString(letter, v.CX-w/2, v.CY+v.R*0.4)
}

// paint fills and/or strokes the current gg path according to the attribute
// set, then clears it.
func (r *rasterizer) paint(a scene.Attrs, b bounds) {
	dc := r.dc
	filled := a.Fill != "" && a.Fill != "none"
	stroked := a.Stroke != "" && a.Stroke != "none"

	if filled {
		fillOp := a.FillOpacity
		if r.opaque && math.Abs(fillOp-styles.ShadeOpacity) < 1e-6 {
			fillOp = 1
		}
		if grad, ok := gradientFor(a.Fill, b); ok {
			dc.SetFillStyle(grad)
		} else {
			r.setColor(a.Fill, "#000000", fillOp*a.Opacity)
		}
		if stroked {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if stroked {
		r.setColor(a.Stroke, "#000000", a.Opacity)
		width := a.StrokeWidth
		if width == 0 {
			width = 1
		}
		dc.SetLineWidth(width)
		if a.Dash != "" {
			dc.SetDash(dashPattern(a.Dash)...)
		}
		dc.Stroke()
		if a.Dash != "" {
			dc.SetDash()
		}
	}
	if !filled && !stroked {
		dc.ClearPath()
	}
}

// drawArrowHead approximates the SVG marker-end arrow: a filled triangle at
// the path endpoint, oriented along the terminal tangent, colored like the
// stroke.
func (r *rasterizer) drawArrowHead(end, dir scene.Point, a scene.Attrs) {
	const length, halfWidth = 8.0, 3.5
	bx := end.X - dir.X*length
	by := end.Y - dir.Y*length
	nx, ny := -dir.Y, dir.X

	dc := r.dc
	dc.NewSubPath()
	dc.MoveTo(end.X, end.Y)
	dc.LineTo(bx+nx*halfWidth, by+ny*halfWidth)
	dc.LineTo(bx-nx*halfWidth, by-ny*halfWidth)
	dc.ClosePath()
	r.setColor(a.Stroke, "#000000", a.Opacity)
	dc.Fill()
}

func (r *rasterizer) setFace(size, weight int) {
	if size <= 0 {
		size = 12
	}
	key := faceKey{size: size, bold: weight >= 600}
	face, ok := r.faces[key]
	if !ok {
		f := r.regular
		if key.bold {
			f = r.bold
		}
		face = truetype.NewFace(f, &truetype.Options{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		r.faces[key] = face
	}
	r.dc.SetFontFace(face)
}

func (r *rasterizer) setColor(spec, fallback string, alpha float64) {
	c, ok := parseColor(spec)
	if !ok {
		c, _ = parseColor(fallback)
	}
	r.dc.SetRGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha)
}

// parseColor understands the #rgb and #rrggbb forms the drawing layer emits.
func parseColor(s string) (color.RGBA, bool) {
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// gradientFor maps a fill reference like "url(#df1-gradient-function)" to a
// vertical gradient spanning the primitive's bounds, with the same stops the
// SVG defs declare.
func gradientFor(fill string, b bounds) (gg.Gradient, bool) {
	if !strings.HasPrefix(fill, "url(#") {
		return nil, false
	}
	var top, bottom color.RGBA
	switch {
	case strings.Contains(fill, "-gradient-"+string(styles.GradientFunction)):
		top, _ = parseColor("#ffffff")
		bottom, _ = parseColor("#e8eef4")
	case strings.Contains(fill, "-gradient-"+string(styles.GradientNote)):
		top, _ = parseColor("#fffbe6")
		bottom, _ = parseColor("#fff3bf")
	default:
		return nil, false
	}
	grad := gg.NewLinearGradient(b.minX, b.minY, b.minX, b.maxY)
	grad.AddColorStop(0, top)
	grad.AddColorStop(1, bottom)
	return grad, true
}

func dashPattern(dash string) []float64 {
	parts := strings.Split(dash, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

type bounds struct {
	minX, minY, maxX, maxY float64
}

func segmentsBounds(segs []scene.Segment) bounds {
	b := bounds{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	for _, s := range segs {
		for _, p := range s.Pts {
			b.minX = math.Min(b.minX, p.X)
			b.minY = math.Min(b.minY, p.Y)
			b.maxX = math.Max(b.maxX, p.X)
			b.maxY = math.Max(b.maxY, p.Y)
		}
	}
	return b
}

// endTangent returns the last on-path point of the segment list and the unit
// direction of travel into it.
func endTangent(segs []scene.Segment) (end, dir scene.Point, ok bool) {
	var prev scene.Point
	havePrev := false
	for _, s := range segs {
		switch s.Op {
		case scene.OpMove:
			prev, havePrev = s.Pts[0], true
		case scene.OpLine:
			if havePrev {
				end, dir, ok = s.Pts[0], unit(prev, s.Pts[0]), true
			}
			prev, havePrev = s.Pts[0], true
		case scene.OpCurve:
			end, dir, ok = s.Pts[2], unit(s.Pts[1], s.Pts[2]), true
			prev, havePrev = s.Pts[2], true
		}
	}
	return end, dir, ok
}

func unit(from, to scene.Point) scene.Point {
	dx, dy := to.X-from.X, to.Y-from.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return scene.Point{X: 1}
	}
	return scene.Point{X: dx / d, Y: dy / d}
}
