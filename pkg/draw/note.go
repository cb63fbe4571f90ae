package draw

import (
	"strings"

	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/scene/styles"
)

const (
	noteFontSize = 9
	notePadding  = 6.0
	noteOpacity  = 0.8
	noteStroke   = "#b08d00"
	noteAccent   = "#e6c300"
)

// drawNote rebuilds a note's visual: a rounded rectangle with a secondary
// inset border accent, resized to fit its text, rendered at reduced opacity
// with left-aligned multi-line text. Notes draw last, so their transparency
// layers over everything else.
func (o *Orchestrator) drawNote(n *model.Note) {
	s := o.shapeFor("note:" + n.ID)
	o.clearShape(s)

	lines := strings.Split(n.Text, "\n")
	lh := o.metrics.Height(noteFontSize)
	est := o.metrics.TextSize(n.Text, noteFontSize, 400)

	// Resize to fit before drawing; the derived size is written back to the
	// model for layout purposes.
	n.W = est.Width + 2*notePadding
	n.H = est.Height + 2*notePadding

	box := s.AddRect(n.X, n.Y, n.W, n.H)
	box.RX = 5
	box.Fill = "url(#" + o.scene.Registry().GradientID(styles.GradientNote) + ")"
	box.Stroke = noteStroke
	box.StrokeWidth = 1
	box.Opacity = noteOpacity
	if n.Selected {
		box.Stroke = functionSelectedStroke
		box.StrokeWidth = 2
	}

	accent := s.AddRect(n.X, n.Y, n.W-4, n.H-4)
	accent.RX = 3
	accent.Fill = "none"
	accent.Stroke = noteAccent
	accent.StrokeWidth = 0.75
	accent.Opacity = noteOpacity

	left := n.X - n.W/2 + notePadding
	top := n.Y - n.H/2 + notePadding + lh*0.8
	t := s.AddTextLabel(left, top, lines, noteFontSize, 400, lh, est.Width, est.Height)
	t.Anchor = "start"
	t.Fill = "#5c4d00"
	t.Opacity = noteOpacity

	o.scene.Append(s)
}
