package draw

import (
	"math"

	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/scene/styles"
)

// Curve is a cubic from the tail point P0 to the head point P3 with control
// points C1 and C2.
type Curve struct {
	P0, C1, C2, P3 scene.Point
}

// AspectAngle returns the attachment angle in radians for an aspect index.
// Letter index i maps to i*60 degrees, with index 0 (the output aspect) at
// the right-hand vertex.
func AspectAngle(index int) float64 {
	return float64(index) * math.Pi / 3
}

// TailPoint returns the fixed point on the source function's boundary where
// every outgoing link starts: the output vertex at angle 0.
func TailPoint(f *model.Function, t Tuning) scene.Point {
	r := f.Width()/2*t.AttachRadiusFactor + t.TailRadiusOffset
	return scene.Point{X: f.X + r, Y: f.Y}
}

// HeadPoint returns the attachment point on the target function's boundary
// for the given aspect index, with the outward tangent direction at that
// point.
func HeadPoint(f *model.Function, aspectIndex int, t Tuning) (pt, dir scene.Point) {
	a := AspectAngle(aspectIndex)
	dx, dy := math.Cos(a), math.Sin(a)
	r := f.Width()/2*t.AttachRadiusFactor + t.HeadRadiusOffset
	return scene.Point{X: f.X + r*dx, Y: f.Y + r*dy}, scene.Point{X: dx, Y: dy}
}

// LinkCurve routes a link from the source's output vertex to the target's
// aspect vertex. Control points are placed along the tangent direction at
// each endpoint, offset by stretch = StretchBase + span/StretchDivisor, so
// the curve bows outward from both functions and scales its bow with the
// span. A live drag preview passes preview=true, which uses the looser
// DragStretchDivisor.
func LinkCurve(src, dst *model.Function, aspectIndex int, t Tuning, preview bool) Curve {
	p0 := TailPoint(src, t)
	p3, hdir := HeadPoint(dst, aspectIndex, t)

	span := math.Hypot(p3.X-p0.X, p3.Y-p0.Y)
	div := t.StretchDivisor
	if preview {
		div = t.DragStretchDivisor
	}
	stretch := t.StretchBase + span/div

	// The tail tangent is the outward direction at the output vertex.
	return Curve{
		P0: p0,
		C1: scene.Point{X: p0.X + stretch, Y: p0.Y},
		C2: scene.Point{X: p3.X + hdir.X*stretch, Y: p3.Y + hdir.Y*stretch},
		P3: p3,
	}
}

// PointAt evaluates the curve at parameter u by repeated linear
// interpolation over the four control points (de Casteljau construction).
func PointAt(c Curve, u float64) scene.Point {
	lerp := func(a, b scene.Point) scene.Point {
		return scene.Point{X: a.X + (b.X-a.X)*u, Y: a.Y + (b.Y-a.Y)*u}
	}
	q0 := lerp(c.P0, c.C1)
	q1 := lerp(c.C1, c.C2)
	q2 := lerp(c.C2, c.P3)
	r0 := lerp(q0, q1)
	r1 := lerp(q1, q2)
	return lerp(r0, r1)
}

// LabelParams returns the curve parameters for n value labels, evenly
// straddling the midpoint: step = spread/n, starting at 0.5-(n-1)*step and
// advancing by 2*step.
func LabelParams(n int, spread float64) []float64 {
	if n <= 0 {
		return nil
	}
	step := spread / float64(n)
	out := make([]float64, n)
	u := 0.5 - float64(n-1)*step
	for i := range out {
		out[i] = u
		u += 2 * step
	}
	return out
}

const (
	linkStroke         = "#495057"
	linkSelectedStroke = "#e03131"
	linkHoverStroke    = "#1c7ed6"
	linkDash           = "4,4"
	labelFontSize      = 8
)

// drawLink rebuilds the link's shape: the wide transparent hit duplicate
// first, the visible stroke above it, then the value labels along the curve.
func (o *Orchestrator) drawLink(m *model.Model, l *model.Link) {
	s := o.shapeFor("link:" + l.ID)
	o.clearShape(s)

	src, okS := m.Function(l.From)
	dst, okD := m.Function(l.To)
	if !okS || !okD {
		// Referential breakage is the model's problem; draw nothing.
		o.scene.Append(s)
		return
	}
	c := LinkCurve(src, dst, model.AspectIndex(l.Aspect), o.tuning, false)

	// Hit target below the visible stroke, so hover works along the whole
	// curve even where labels overlap it later.
	hit := s.AddPath().MoveTo(c.P0.X, c.P0.Y).CurveTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.P3.X, c.P3.Y)
	hit.Fill = "none"
	hit.Stroke = "#000000"
	hit.StrokeWidth = o.tuning.HitStrokeWidth
	hit.Opacity = 0.01
	o.bindLinkHover(hit.Handle(), m, l)

	stroke := s.AddPath().MoveTo(c.P0.X, c.P0.Y).CurveTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.P3.X, c.P3.Y)
	stroke.Fill = "none"
	stroke.Stroke = linkStroke
	stroke.StrokeWidth = 1.25
	stroke.MarkerEnd = o.scene.Registry().MarkerID(styles.MarkerArrow)
	if len(l.Values) == 0 {
		stroke.Dash = linkDash
	}
	if l.Selected {
		stroke.Stroke = linkSelectedStroke
		stroke.StrokeWidth = 2
	} else if o.hovered == l.ID {
		stroke.Stroke = linkHoverStroke
		stroke.StrokeWidth = 2
	}

	params := LabelParams(len(l.Values), o.tuning.LabelSpread)
	for i, v := range l.Values {
		p := PointAt(c, params[i])
		o.drawValueLabel(s, p, v)
	}

	o.scene.Append(s)
}

// drawValueLabel places one aspect-value label, using fixed-advance
// estimation for numeric values and exact measurement for free text.
func (o *Orchestrator) drawValueLabel(s *scene.Shape, p scene.Point, v model.AspectValue) {
	if v.Value != "" {
		est := o.metrics.NumberSize(v.Value, labelFontSize, 700)
		bg := s.AddRect(p.X, p.Y, est.Width+4, est.Height+2)
		bg.Fill = "#ffffff"
		bg.FillOpacity = 0.8
		t := s.AddNumberLabel(p.X, p.Y+est.Height*0.35, v.Value, labelFontSize, 700, est.Width, est.Height)
		t.Fill = "#1864ab"
		return
	}
	est := o.metrics.TextSize(v.Label, labelFontSize, 400)
	bg := s.AddRect(p.X, p.Y, est.Width+4, est.Height+2)
	bg.Fill = "#ffffff"
	bg.FillOpacity = 0.8
	s.AddTextLabel(p.X, p.Y+o.metrics.Height(labelFontSize)*0.35, []string{v.Label},
		labelFontSize, 400, o.metrics.Height(labelFontSize), est.Width, est.Height)
}

// bindLinkHover wires the enlarged hit target to hover state: entering sets
// the hovered link and redraws just that link, leaving clears it. These are
// localized redraws; a full-model redraw is never triggered from a pointer
// callback.
func (o *Orchestrator) bindLinkHover(h scene.Handle, m *model.Model, l *model.Link) {
	o.scene.On(h, scene.EventEnter, func(scene.Event) {
		o.hovered = l.ID
		o.drawLink(m, l)
	})
	o.scene.On(h, scene.EventLeave, func(scene.Event) {
		if o.hovered == l.ID {
			o.hovered = ""
		}
		o.drawLink(m, l)
	})
}
