package draw

import (
	"bytes"
	"context"
	"testing"

	"github.com/pwgbots/diafram/pkg/model"
	"github.com/pwgbots/diafram/pkg/scene"
	"github.com/pwgbots/diafram/pkg/textmetrics"
	"github.com/pwgbots/diafram/pkg/viewport"
)

func newOrchestrator(t *testing.T, opts ...Option) *Orchestrator {
	t.Helper()
	metrics, err := textmetrics.New()
	if err != nil {
		t.Fatalf("textmetrics.New() error = %v", err)
	}
	return New(scene.NewScene(), metrics, viewport.New(), opts...)
}

func drawModel() *model.Model {
	return &model.Model{
		Functions: []*model.Function{
			{ID: "a", Name: "Boil water", X: 100, Y: 100},
			{ID: "b", Name: "Brew coffee", X: 400, Y: 100},
			{ID: "sub", Name: "Heat", X: 50, Y: 50, Parent: "a"},
			{ID: "out", Name: "Elsewhere", X: 900, Y: 900, Parent: "b"},
		},
		Links: []*model.Link{
			{ID: "l1", From: "a", To: "b", Aspect: "I"},
			{ID: "l2", From: "a", To: "b", Aspect: "T", Values: []model.AspectValue{
				{Label: "temp", Value: "95.5"},
				{Label: "time"},
			}},
			{ID: "hidden", From: "out", To: "a", Aspect: "R"},
		},
		Notes: []*model.Note{
			{ID: "n1", X: 250, Y: 260, Text: "keep it hot"},
		},
	}
}

func TestDrawDiagramIdempotent(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	ctx := context.Background()

	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatalf("DrawDiagram() error = %v", err)
	}
	first := snapshot(o)
	shapeCount := o.Scene().Len()

	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatalf("second DrawDiagram() error = %v", err)
	}
	if o.Scene().Len() != shapeCount {
		t.Errorf("shape count changed on redraw: %d → %d", shapeCount, o.Scene().Len())
	}
	if got := snapshot(o); got != first {
		t.Error("redrawing an unchanged model produced a different scene")
	}
}

func snapshot(o *Orchestrator) string {
	var buf bytes.Buffer
	o.Scene().WriteSVG(&buf)
	return buf.String()
}

func TestDrawOrderFunctionsLinksNotes(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	// Two visible functions, two visible links (one link has a hidden
	// endpoint and is not drawn), one note.
	shapes := o.Scene().Shapes()
	if len(shapes) != 5 {
		t.Fatalf("scene has %d shapes, want 5", len(shapes))
	}

	// Z-order is append order: functions first, then links, then the note.
	kinds := make([]string, 0, len(shapes))
	for i, s := range shapes {
		kinds = append(kinds, kindOf(t, o, s, i))
	}
	want := []string{"fn", "fn", "link", "link", "note"}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("z-order = %v, want %v", kinds, want)
		}
	}
}

func kindOf(t *testing.T, o *Orchestrator, s *scene.Shape, i int) string {
	t.Helper()
	for key, owned := range o.shapes {
		if owned == s {
			switch {
			case key[:3] == "fn:":
				return "fn"
			case key[:5] == "link:":
				return "link"
			case key[:5] == "note:":
				return "note"
			}
		}
	}
	t.Fatalf("shape %d is not owned by any entity", i)
	return ""
}

func TestLinkDashAndLabels(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	// l1 has no values: dashed stroke.
	plain := o.shapes["link:l1"]
	stroke := visibleStroke(t, plain)
	if stroke.Dash == "" {
		t.Error("link without values drawn solid, want dashed")
	}

	// l2 has two values: solid stroke, exactly two labels.
	valued := o.shapes["link:l2"]
	stroke = visibleStroke(t, valued)
	if stroke.Dash != "" {
		t.Error("link with values drawn dashed, want solid")
	}
	labels := 0
	for _, p := range valued.Primitives() {
		if _, ok := p.(*scene.Text); ok {
			labels++
		}
	}
	if labels != 2 {
		t.Errorf("placed %d value labels, want 2", labels)
	}
}

func visibleStroke(t *testing.T, s *scene.Shape) *scene.Path {
	t.Helper()
	var paths []*scene.Path
	for _, p := range s.Primitives() {
		if pp, ok := p.(*scene.Path); ok {
			paths = append(paths, pp)
		}
	}
	if len(paths) < 2 {
		t.Fatalf("link shape has %d paths, want hit target + stroke", len(paths))
	}
	return paths[1]
}

func TestLinkHitTargetBelowStroke(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	s := o.shapes["link:l1"]
	hit, ok := s.Primitives()[0].(*scene.Path)
	if !ok {
		t.Fatal("first link primitive is not the hit path")
	}
	if hit.StrokeWidth != DefaultTuning().HitStrokeWidth {
		t.Errorf("hit stroke width = %v, want %v", hit.StrokeWidth, DefaultTuning().HitStrokeWidth)
	}
	if hit.Opacity >= 0.1 {
		t.Errorf("hit path opacity = %v, want near-invisible", hit.Opacity)
	}
}

func TestHiddenLinkArrows(t *testing.T) {
	m := drawModel()

	t.Run("disabled by default", func(t *testing.T) {
		o := newOrchestrator(t)
		if err := o.DrawDiagram(context.Background(), m); err != nil {
			t.Fatal(err)
		}
		if n := countArrows(o.shapes["fn:a"]); n != 0 {
			t.Errorf("%d block arrows with option off, want 0", n)
		}
	})

	t.Run("enabled", func(t *testing.T) {
		o := newOrchestrator(t, WithViewOptions(ViewOptions{HiddenLinks: true}))
		if err := o.DrawDiagram(context.Background(), m); err != nil {
			t.Fatal(err)
		}
		// Function a has one incoming hidden link and none outgoing: the
		// zero-count glyph must be omitted entirely.
		arrows := blockArrows(o.shapes["fn:a"])
		if len(arrows) != 1 {
			t.Fatalf("%d block arrows on a, want 1", len(arrows))
		}
		if arrows[0].Dir != scene.ArrowIn || arrows[0].Count != 1 {
			t.Errorf("arrow = dir %v count %d, want in/1", arrows[0].Dir, arrows[0].Count)
		}
		f, _ := m.Function("a")
		tun := DefaultTuning()
		wantX := f.X - f.Width()/2*tun.HiddenArrowDX
		wantY := f.Y - f.Height()/2 - tun.HiddenArrowDY
		if arrows[0].X != wantX || arrows[0].Y != wantY {
			t.Errorf("arrow at (%.1f, %.1f), want (%.1f, %.1f)", arrows[0].X, arrows[0].Y, wantX, wantY)
		}
		if n := countArrows(o.shapes["fn:b"]); n != 0 {
			t.Errorf("%d block arrows on b, want 0 (its hidden link belongs to a nested child)", n)
		}
	})
}

func blockArrows(s *scene.Shape) []*scene.BlockArrow {
	var out []*scene.BlockArrow
	for _, p := range s.Primitives() {
		if a, ok := p.(*scene.BlockArrow); ok {
			out = append(out, a)
		}
	}
	return out
}

func countArrows(s *scene.Shape) int { return len(blockArrows(s)) }

func TestConnectorPlacement(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	var conns []*scene.Connector
	for _, p := range o.shapes["fn:a"].Primitives() {
		if c, ok := p.(*scene.Connector); ok {
			conns = append(conns, c)
		}
	}
	if len(conns) != model.AspectCount {
		t.Fatalf("%d connectors, want %d", len(conns), model.AspectCount)
	}

	f, _ := m.Function("a")
	hw := f.Width() / 2
	// The output connector (index 0, angle 0) sits at radius hw*1.1 to the
	// right of the center.
	if got, want := conns[0].CX, f.X+hw*1.1; got != want {
		t.Errorf("output connector CX = %v, want %v", got, want)
	}
	if conns[0].CY != f.Y {
		t.Errorf("output connector CY = %v, want %v", conns[0].CY, f.Y)
	}
	letters := ""
	for _, c := range conns {
		letters += string(c.Letter)
		if c.Owner != "a" {
			t.Errorf("connector owner = %q, want a", c.Owner)
		}
	}
	if letters != model.Aspects {
		t.Errorf("connector letters = %q, want %q", letters, model.Aspects)
	}
}

func TestHighlightPriority(t *testing.T) {
	o := newOrchestrator(t, WithViewOptions(ViewOptions{Commentary: true}))
	m := drawModel()
	f, _ := m.Function("a")
	f.Commentary = true

	ctx := context.Background()
	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatal(err)
	}

	hexOf := func() *scene.Path {
		p, ok := o.shapes["fn:a"].Primitives()[0].(*scene.Path)
		if !ok {
			t.Fatal("first function primitive is not the hexagon")
		}
		return p
	}

	reg := o.Scene().Registry()
	if got := hexOf().Filter; got == "" || got != reg.FilterID("commentary") {
		t.Errorf("filter = %q, want commentary filter", got)
	}

	// Drop target outranks commentary.
	o.SetDropTarget(m, "a")
	if got := hexOf().Filter; got != reg.FilterID("target") {
		t.Errorf("filter = %q, want drop-target filter", got)
	}

	o.ClearDropTarget(m)
	if got := hexOf().Filter; got != reg.FilterID("commentary") {
		t.Errorf("filter = %q after clear, want commentary filter", got)
	}
}

func TestSelectionOverridesStrokeNotFill(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	f, _ := m.Function("a")

	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	hex := o.shapes["fn:a"].Primitives()[0].(*scene.Path)
	fill := hex.Fill

	f.Selected = true
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	hex = o.shapes["fn:a"].Primitives()[0].(*scene.Path)
	if hex.Stroke != functionSelectedStroke {
		t.Errorf("selected stroke = %q, want %q", hex.Stroke, functionSelectedStroke)
	}
	if hex.StrokeWidth != 2 {
		t.Errorf("selected stroke width = %v, want 2", hex.StrokeWidth)
	}
	if hex.Fill != fill {
		t.Error("selection changed fill, want stroke override only")
	}
}

func TestNoteResizesToFitText(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	m.Notes[0].Text = "first line\nsecond, much longer line"

	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	n := m.Notes[0]
	est := o.metrics.TextSize(n.Text, noteFontSize, 400)
	if n.W != est.Width+2*notePadding {
		t.Errorf("note W = %v, want %v", n.W, est.Width+2*notePadding)
	}
	if n.H != est.Height+2*notePadding {
		t.Errorf("note H = %v, want %v", n.H, est.Height+2*notePadding)
	}
}

func TestPruneStaleOnFocusChange(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	ctx := context.Background()

	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatal(err)
	}
	if o.Scene().Len() != 5 {
		t.Fatalf("scene has %d shapes, want 5", o.Scene().Len())
	}

	m.Focal = "a"
	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatal(err)
	}
	// Only the nested function "sub" is visible now.
	if o.Scene().Len() != 1 {
		t.Errorf("scene has %d shapes after focus change, want 1", o.Scene().Len())
	}
}

func TestOverlays(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}
	base := o.Scene().Len()

	src, _ := m.Function("a")
	o.MoveDragLine(src, 500, 400)
	o.MoveDragRect(10, 10, 80, 60)
	if o.Scene().Len() != base+2 {
		t.Fatalf("overlays added %d shapes, want 2", o.Scene().Len()-base)
	}

	line := o.dragLinePath()
	if line.Opacity != 1 {
		t.Error("drag line not visible while dragging")
	}
	if line.Segments[0].Pts[0] != TailPoint(src, o.tuning) {
		t.Error("drag line does not start at the source output vertex")
	}

	o.HideDragLine()
	o.HideDragRect()
	if line.Opacity != 0 {
		t.Error("drag line still visible after hide")
	}
	// Hidden, not destroyed: the shapes stay attached.
	if o.Scene().Len() != base+2 {
		t.Error("hiding overlays detached them")
	}

	// Reuse keeps the same primitives.
	o.MoveDragLine(src, 100, 900)
	if o.Scene().Len() != base+2 {
		t.Error("re-showing the drag line created a new shape")
	}
}

func TestHoverCallbacksLocalRedraw(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	ctx := context.Background()
	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatal(err)
	}

	s := o.shapes["link:l1"]
	hit := s.Primitives()[0].(*scene.Path)

	o.Scene().Dispatch(ctx, hit.Handle(), scene.Event{Kind: scene.EventEnter})
	stroke := visibleStroke(t, o.shapes["link:l1"])
	if stroke.Stroke != linkHoverStroke {
		t.Errorf("hovered stroke = %q, want %q", stroke.Stroke, linkHoverStroke)
	}

	// The shape identity survives the localized redraw.
	if o.shapes["link:l1"].ID() != s.ID() {
		t.Error("hover redraw replaced the link's shape identity")
	}

	// The redraw replaced the primitives, so the leave handler now lives on
	// the fresh hit target, not the one captured before the enter.
	fresh := o.shapes["link:l1"].Primitives()[0].(*scene.Path)
	o.Scene().Dispatch(ctx, fresh.Handle(), scene.Event{Kind: scene.EventLeave})
	stroke = visibleStroke(t, o.shapes["link:l1"])
	if stroke.Stroke != linkStroke {
		t.Errorf("stroke after leave = %q, want %q", stroke.Stroke, linkStroke)
	}
}

func TestRedrawReleasesSupersededHandlers(t *testing.T) {
	o := newOrchestrator(t)
	m := drawModel()
	ctx := context.Background()
	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatal(err)
	}
	stale := o.shapes["link:l1"].Primitives()[0].Handle()

	if err := o.DrawDiagram(ctx, m); err != nil {
		t.Fatal(err)
	}
	live := o.shapes["link:l1"].Primitives()[0].Handle()
	if live == stale {
		t.Fatal("redraw reused a superseded primitive handle")
	}
	if o.Scene().Dispatch(ctx, stale, scene.Event{Kind: scene.EventEnter}) {
		t.Error("handler on superseded handle still dispatches")
	}
	if !o.Scene().Dispatch(ctx, live, scene.Event{Kind: scene.EventEnter}) {
		t.Error("live hit target does not dispatch")
	}
}

func TestDrawNormalizesNegativeCoordinates(t *testing.T) {
	o := newOrchestrator(t)
	m := &model.Model{
		Functions: []*model.Function{
			{ID: "a", Name: "Off canvas", X: -150, Y: -80},
		},
	}
	if err := o.DrawDiagram(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	minX, minY, maxX, maxY, ok := m.BoundingBox()
	if !ok {
		t.Fatal("no bounding box after draw")
	}
	if minX != ExtendMargin/2 || minY != ExtendMargin {
		t.Errorf("content top-left = (%.1f, %.1f), want (%.1f, %.1f)",
			minX, minY, ExtendMargin/2, ExtendMargin)
	}
	cw, ch := o.Scene().CanvasSize()
	if cw < maxX || ch < maxY {
		t.Errorf("canvas %gx%g does not cover content extent (%.1f, %.1f)", cw, ch, maxX, maxY)
	}
}
