package draw

import (
	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/scene/styles"
)

// Interaction overlays are ephemeral primitives giving visual feedback while
// linking or rubber-band-selecting. At most one drag line and one drag
// rectangle exist at a time; between uses they are hidden at zero opacity
// rather than destroyed, to avoid attach/detach churn.

func (o *Orchestrator) dragLinePath() *scene.Path {
	if o.dragLine == nil {
		o.dragLine = scene.NewShape()
		p := o.dragLine.AddPath()
		p.Fill = "none"
		p.Stroke = linkHoverStroke
		p.StrokeWidth = 1.5
		p.Dash = "6,3"
		p.MarkerEnd = o.scene.Registry().MarkerID(styles.MarkerOpenArrow)
		p.Opacity = 0
		o.scene.Append(o.dragLine)
	}
	return o.dragLine.Primitives()[0].(*scene.Path)
}

func (o *Orchestrator) dragRectPrim() *scene.Rect {
	if o.dragRect == nil {
		o.dragRect = scene.NewShape()
		r := o.dragRect.AddRect(0, 0, 0, 0)
		r.Fill = linkHoverStroke
		r.FillOpacity = 0.1
		r.Stroke = linkHoverStroke
		r.StrokeWidth = 1
		r.Dash = "3,2"
		r.Opacity = 0
		o.scene.Append(o.dragRect)
	}
	return o.dragRect.Primitives()[0].(*scene.Rect)
}

// MoveDragLine routes the in-progress link preview from the source's output
// vertex to the cursor, using the looser drag stretch so the preview feels
// responsive.
func (o *Orchestrator) MoveDragLine(src *model.Function, cursorX, cursorY float64) {
	ghost := &model.Function{X: cursorX, Y: cursorY, W: 1, H: 1}
	c := LinkCurve(src, ghost, 0, o.tuning, true)

	p := o.dragLinePath()
	p.Segments = p.Segments[:0]
	p.MoveTo(c.P0.X, c.P0.Y).CurveTo(c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.P3.X, c.P3.Y)
	p.Opacity = 1
}

// HideDragLine hides the link preview without destroying it.
func (o *Orchestrator) HideDragLine() {
	o.dragLinePath().Opacity = 0
}

// MoveDragRect updates the rubber-band selection rectangle spanned by two
// corner points.
func (o *Orchestrator) MoveDragRect(x0, y0, x1, y1 float64) {
	r := o.dragRectPrim()
	r.X, r.Y = min(x0, x1), min(y0, y1)
	r.W, r.H = max(x0, x1)-r.X, max(y0, y1)-r.Y
	r.Opacity = 1
}

// HideDragRect hides the rubber-band rectangle without destroying it.
func (o *Orchestrator) HideDragRect() {
	o.dragRectPrim().Opacity = 0
}
