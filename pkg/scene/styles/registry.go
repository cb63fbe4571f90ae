// Package styles defines the reusable paint resources a paper instance
// references by id: line-end markers of several styles, fill gradients, and
// highlight filters. Entries are written once into the SVG <defs> block and
// never mutated afterwards, only reused.
package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sync/atomic"
)

// ShadeOpacity is the semi-transparent fill opacity used for function
// shading. The opaque export variant forces exactly this value to 1.
const ShadeOpacity = 0.9

// MarkerKind selects one of the registered line-end markers.
type MarkerKind string

const (
	MarkerArrow     MarkerKind = "arrow"      // solid triangular head
	MarkerOpenArrow MarkerKind = "open-arrow" // stroked chevron, used by the drag line
	MarkerCircle    MarkerKind = "circle"     // small filled dot
	MarkerDiamond   MarkerKind = "diamond"    // aspect-value tick
)

// FilterKind selects one of the registered highlight filters.
type FilterKind string

const (
	FilterDropTarget FilterKind = "target"     // explicit drag/drop target glow
	FilterCommentary FilterKind = "commentary" // attached-commentary glow
)

// GradientKind selects one of the registered fill gradients.
type GradientKind string

const (
	GradientFunction GradientKind = "function" // hexagon face shading
	GradientNote     GradientKind = "note"     // note background wash
)

var registrySeq atomic.Uint64

// Registry holds the paint-resource definitions for one paper instance.
// Identifiers are generated per instance so two papers serialized into the
// same document never collide. A Registry is immutable once created.
type Registry struct {
	prefix string
}

// NewRegistry creates a registry with a fresh identifier prefix.
func NewRegistry() *Registry {
	return &Registry{prefix: fmt.Sprintf("df%d", registrySeq.Add(1))}
}

// MarkerID returns the generated identifier for a marker kind.
func (r *Registry) MarkerID(k MarkerKind) string {
	return fmt.Sprintf("%s-marker-%s", r.prefix, k)
}

// FilterID returns the generated identifier for a highlight filter.
func (r *Registry) FilterID(k FilterKind) string {
	return fmt.Sprintf("%s-filter-%s", r.prefix, k)
}

// GradientID returns the generated identifier for a gradient.
func (r *Registry) GradientID(k GradientKind) string {
	return fmt.Sprintf("%s-gradient-%s", r.prefix, k)
}

// RenderDefs writes the <defs> block containing every registered resource.
func (r *Registry) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString("  <defs>\n")

	fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse">`+"\n",
		r.MarkerID(MarkerArrow))
	buf.WriteString(`      <path d="M 0 0 L 10 5 L 0 10 z" fill="context-stroke"/>` + "\n    </marker>\n")

	fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse">`+"\n",
		r.MarkerID(MarkerOpenArrow))
	buf.WriteString(`      <path d="M 1 1 L 9 5 L 1 9" fill="none" stroke="context-stroke" stroke-width="1.5"/>` + "\n    </marker>\n")

	fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="5" refY="5" markerWidth="5" markerHeight="5">`+"\n",
		r.MarkerID(MarkerCircle))
	buf.WriteString(`      <circle cx="5" cy="5" r="4" fill="context-stroke"/>` + "\n    </marker>\n")

	fmt.Fprintf(buf, `    <marker id="%s" viewBox="0 0 10 10" refX="5" refY="5" markerWidth="6" markerHeight="6" orient="auto">`+"\n",
		r.MarkerID(MarkerDiamond))
	buf.WriteString(`      <path d="M 5 1 L 9 5 L 5 9 L 1 5 z" fill="context-stroke"/>` + "\n    </marker>\n")

	fmt.Fprintf(buf, `    <linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`+"\n", r.GradientID(GradientFunction))
	buf.WriteString(`      <stop offset="0%" stop-color="#ffffff"/>` + "\n")
	buf.WriteString(`      <stop offset="100%" stop-color="#e8eef4"/>` + "\n    </linearGradient>\n")

	fmt.Fprintf(buf, `    <linearGradient id="%s" x1="0" y1="0" x2="0" y2="1">`+"\n", r.GradientID(GradientNote))
	buf.WriteString(`      <stop offset="0%" stop-color="#fffbe6"/>` + "\n")
	buf.WriteString(`      <stop offset="100%" stop-color="#fff3bf"/>` + "\n    </linearGradient>\n")

	fmt.Fprintf(buf, `    <filter id="%s" x="-30%%" y="-30%%" width="160%%" height="160%%">`+"\n", r.FilterID(FilterDropTarget))
	buf.WriteString(`      <feDropShadow dx="0" dy="0" stdDeviation="4" flood-color="#1c7ed6" flood-opacity="0.9"/>` + "\n    </filter>\n")

	fmt.Fprintf(buf, `    <filter id="%s" x="-30%%" y="-30%%" width="160%%" height="160%%">`+"\n", r.FilterID(FilterCommentary))
	buf.WriteString(`      <feDropShadow dx="0" dy="0" stdDeviation="4" flood-color="#f59f00" flood-opacity="0.9"/>` + "\n    </filter>\n")

	buf.WriteString("  </defs>\n")
}

// EscapeXML escapes text for embedding in SVG output.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
