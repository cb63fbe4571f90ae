package scene

import "sync/atomic"

// Handle identifies a single primitive for the lifetime of the process.
// The host input layer uses handles to route pointer events to registered
// callbacks (see Scene.On and Scene.Dispatch).
type Handle uint64

var handleSeq atomic.Uint64

func nextHandle() Handle {
	return Handle(handleSeq.Add(1))
}

// Attrs carries the visual attributes shared by all primitives. Zero values
// mean "not set" except Opacity and FillOpacity, which constructors
// initialize to 1.
type Attrs struct {
	Fill        string
	FillOpacity float64
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Dash        string // stroke-dasharray, e.g. "4,4"
	MarkerEnd   string // marker id reference
	Filter      string // filter id reference
	Class       string
}

func defaultAttrs() Attrs {
	return Attrs{Opacity: 1, FillOpacity: 1}
}

// Primitive is one vector element owned by a Shape.
type Primitive interface {
	// Handle returns the primitive's process-unique handle.
	Handle() Handle
	// attrs gives serializers access to the shared attribute set.
	attrs() *Attrs
}

type base struct {
	handle Handle
	Attrs
}

func newBase() base {
	return base{handle: nextHandle(), Attrs: defaultAttrs()}
}

func (b *base) Handle() Handle { return b.handle }
func (b *base) attrs() *Attrs  { return &b.Attrs }

// PathOp is one command in a path's segment list.
type PathOp byte

const (
	OpMove  PathOp = 'M'
	OpLine  PathOp = 'L'
	OpCurve PathOp = 'C' // cubic, three points
	OpClose PathOp = 'Z'
)

// Point is a coordinate in content space.
type Point struct {
	X, Y float64
}

// Segment is a path command with its points (zero for Z, one for M/L,
// three for C).
type Segment struct {
	Op  PathOp
	Pts []Point
}

// Path is a segment-list primitive. Segments are kept structurally rather
// than as a d-string so exports can replay them against other surfaces.
type Path struct {
	base
	Segments []Segment
}

// MoveTo appends an absolute move.
func (p *Path) MoveTo(x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Op: OpMove, Pts: []Point{{x, y}}})
	return p
}

// LineTo appends a line segment.
func (p *Path) LineTo(x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Op: OpLine, Pts: []Point{{x, y}}})
	return p
}

// CurveTo appends a cubic segment with control points (x1,y1) and (x2,y2).
func (p *Path) CurveTo(x1, y1, x2, y2, x, y float64) *Path {
	p.Segments = append(p.Segments, Segment{Op: OpCurve, Pts: []Point{{x1, y1}, {x2, y2}, {x, y}}})
	return p
}

// Close appends a close command.
func (p *Path) Close() *Path {
	p.Segments = append(p.Segments, Segment{Op: OpClose})
	return p
}

// Text is a (possibly multi-line) text run. X and Y locate the anchor point
// of the first line's baseline midpoint; lines advance by LineHeight.
type Text struct {
	base
	X, Y       float64
	Lines      []string
	FontSize   int
	FontWeight int
	Anchor     string // "middle" or "start"
	LineHeight float64
	// EstWidth and EstHeight record the extent the caller computed for the
	// run (exact or fixed-advance estimated), used for hit areas and
	// note resizing.
	EstWidth, EstHeight float64
}

// Rect is an axis-aligned rectangle, optionally rounded.
type Rect struct {
	base
	X, Y, W, H float64 // X, Y = top-left corner
	RX         float64 // corner radius
}

// Circle is a circle primitive.
type Circle struct {
	base
	CX, CY, R float64
}

// Ellipse is an axis-aligned ellipse primitive.
type Ellipse struct {
	base
	CX, CY, RX, RY float64
}

// Group is a nested sub-group primitive.
type Group struct {
	base
	Shape *Shape
}

// ArrowDir tags a block arrow with the direction of the hidden links it
// summarizes.
type ArrowDir int

const (
	ArrowIn ArrowDir = iota
	ArrowOut
)

// BlockArrow is a small directional glyph carrying a hidden-link count,
// tagged with its owning entity for later lookup.
type BlockArrow struct {
	base
	X, Y  float64 // glyph center
	Dir   ArrowDir
	Count int
	Owner string // owning entity id
}

// Connector is a circular aspect glyph placed on a hexagon vertex, tagged
// with its owner and aspect letter for later lookup.
type Connector struct {
	base
	CX, CY, R float64
	Letter    byte
	Owner     string
}
