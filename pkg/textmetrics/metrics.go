// Package textmetrics approximates glyph geometry so the drawing core can
// size labels without measuring rendered bounding boxes on every redraw.
//
// Two measurement paths exist behind the one capability, selected by content
// kind. TextSize measures arbitrary strings exactly, one real measurement per
// distinct line against an offscreen font face. NumberSize approximates
// numeric strings purely from a cached height table, assuming a fixed
// character advance of height/2 with small empirical corrections; it must
// stay within a few percent of what TextSize would report for the same
// digits, but is O(1) and allocation-free.
//
// The cache is rebuilt wholesale by ChangeFont whenever the active font
// family changes; heights are measured for sizes 1..16 and width factors for
// weight buckets 100..900 against a fixed reference sample.
package textmetrics

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pwgbots/diafram/pkg/errors"
)

// Size bounds of the height table.
const (
	MinSize = 1
	MaxSize = 16
)

// Weight bucket bounds. Buckets are multiples of 100; 400 is normal weight.
const (
	MinWeight    = 100
	MaxWeight    = 900
	NormalWeight = 400
	BoldWeight   = 700
)

// referenceSample is the fixed digit/symbol string measured when the height
// and weight tables are rebuilt.
const referenceSample = "0123456789.=<>%"

// Single glyph codes carrying special fixed widths in NumberSize.
const (
	UndefinedGlyph = "?"
	WarningGlyph   = "⚠"
)

// Corrections holds the empirical width adjustments applied by NumberSize,
// all expressed as fractions of the fixed character advance (height/2).
// The values are tuning constants with no stated derivation; their only
// requirement is visual consistency with the exact-measurement path.
type Corrections struct {
	DecimalPoint float64 `toml:"decimal_point"` // subtracted per '.' rune
	LeadingMinus float64 `toml:"leading_minus"` // subtracted for a leading '-'
	WideGlyph    float64 `toml:"wide_glyph"`    // added per comparison/infinity/percent rune
	Ellipsis     float64 `toml:"ellipsis"`      // added per '…' rune
	EqualsBonus  float64 `toml:"equals_bonus"`  // added per '=' rune
	Undefined    float64 `toml:"undefined"`     // fixed width of UndefinedGlyph, × height
	Warning      float64 `toml:"warning"`       // fixed width of WarningGlyph, × height
}

// DefaultCorrections returns the stock correction constants.
func DefaultCorrections() Corrections {
	return Corrections{
		DecimalPoint: 0.5,
		LeadingMinus: 0.4,
		WideGlyph:    0.25,
		Ellipsis:     0.6,
		EqualsBonus:  0.2,
		Undefined:    0.75,
		Warning:      1.0,
	}
}

// wideGlyphs are the rune clusters that render wider than a digit.
const wideGlyphs = "<>≤≥≠∞%"

// Cache maps integer font sizes to measured line heights and weight buckets
// to width-scaling factors. All lookups are O(1); the tables are read-mostly
// and only rebuilt wholesale by ChangeFont.
type Cache struct {
	family  string
	heights [MaxSize + 1]float64          // index by size, 1..16
	factors [MaxWeight/100 + 1]float64    // index by weight/100, 1..9
	faces   [MaxSize + 1]font.Face        // regular faces per size, for TextSize
	corr    Corrections
}

// Size is a measured or estimated text extent in content units.
type Size struct {
	Width  float64
	Height float64
}

// New builds a cache for the default (Go Regular) family.
func New() (*Cache, error) {
	c := &Cache{corr: DefaultCorrections()}
	if err := c.ChangeFont("go"); err != nil {
		return nil, err
	}
	return c, nil
}

// SetCorrections replaces the empirical correction constants.
func (c *Cache) SetCorrections(corr Corrections) {
	c.corr = corr
}

// Family returns the active font family name.
func (c *Cache) Family() string {
	return c.family
}

// ChangeFont rebuilds the height and weight-factor tables for the given
// family. It must run before any size-dependent drawing occurs and again
// whenever the active family changes. A resource failure here is fatal: no
// size computed without the tables can be trusted.
//
// Only the embedded Go fonts are available to the engine; any family name is
// accepted and recorded, but measurement always uses Go Regular/Bold.
func (c *Cache) ChangeFont(family string) error {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResource, err, "parse regular font")
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return errors.Wrap(errors.ErrCodeResource, err, "parse bold font")
	}

	prev := 0.0
	for size := MinSize; size <= MaxSize; size++ {
		face, err := opentype.NewFace(regular, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			return errors.Wrap(errors.ErrCodeResource, err, "create face for size %d", size)
		}
		m := face.Metrics()
		h := fixedToFloat(m.Ascent) + fixedToFloat(m.Descent)
		// Heights must be monotonically non-decreasing with size.
		if h < prev {
			h = prev
		}
		c.heights[size] = h
		c.faces[size] = face
		prev = h
	}

	// Weight factors are relative to 1.0 at weight 400. Only regular (400)
	// and bold (700) cuts exist, so the remaining buckets are interpolated
	// on the 400..700 line and extrapolated beyond it.
	boldFace, err := opentype.NewFace(bold, &opentype.FaceOptions{
		Size:    float64(MaxSize),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeResource, err, "create bold face")
	}
	regWidth := fixedToFloat(font.MeasureString(c.faces[MaxSize], referenceSample))
	boldWidth := fixedToFloat(font.MeasureString(boldFace, referenceSample))
	boldRatio := 1.0
	if regWidth > 0 {
		boldRatio = boldWidth / regWidth
	}
	slope := (boldRatio - 1.0) / float64(BoldWeight-NormalWeight)
	for w := MinWeight; w <= MaxWeight; w += 100 {
		f := 1.0 + slope*float64(w-NormalWeight)
		if f < 0.8 {
			f = 0.8
		}
		c.factors[w/100] = f
	}
	c.factors[NormalWeight/100] = 1.0

	c.family = family
	return nil
}

// Height returns the measured line height for the given integer size,
// clamped to the 1..16 table range.
func (c *Cache) Height(size int) float64 {
	return c.heights[clampSize(size)]
}

// WeightFactor returns the width-scaling factor for the weight bucket
// nearest to the given weight.
func (c *Cache) WeightFactor(weight int) float64 {
	b := (weight + 50) / 100
	if b < MinWeight/100 {
		b = MinWeight / 100
	}
	if b > MaxWeight/100 {
		b = MaxWeight / 100
	}
	return c.factors[b]
}

// TextSize measures an arbitrary (non-numeric) string exactly: one real
// measurement per distinct line, summed line heights, max line width. This
// is the only place true measurement is used; arbitrary strings are not
// amenable to fixed-advance approximation.
func (c *Cache) TextSize(text string, size, weight int) Size {
	s := clampSize(size)
	lines := strings.Split(text, "\n")
	width := 0.0
	for _, line := range lines {
		if line == "" {
			continue
		}
		w := fixedToFloat(font.MeasureString(c.faces[s], line))
		if w > width {
			width = w
		}
	}
	return Size{
		Width:  width * c.WeightFactor(weight),
		Height: float64(len(lines)) * c.heights[s],
	}
}

// NumberSize estimates the extent of a numeric string purely from the height
// table, assuming a fixed character advance of height/2 with the empirical
// corrections described on Corrections. The result is scaled by the weight
// factor for the requested weight bucket.
func (c *Cache) NumberSize(text string, size, weight int) Size {
	s := clampSize(size)
	h := c.heights[s]
	factor := c.WeightFactor(weight)

	switch text {
	case UndefinedGlyph:
		return Size{Width: h * c.corr.Undefined * factor, Height: h}
	case WarningGlyph:
		return Size{Width: h * c.corr.Warning * factor, Height: h}
	}

	advance := h / 2
	runes := []rune(text)
	width := float64(len(runes)) * advance
	for i, r := range runes {
		switch {
		case r == '.':
			width -= c.corr.DecimalPoint * advance
		case r == '-' && i == 0:
			width -= c.corr.LeadingMinus * advance
		case r == '…': // …
			width += c.corr.Ellipsis * advance
		case r == '=':
			width += c.corr.EqualsBonus * advance
		case strings.ContainsRune(wideGlyphs, r):
			width += c.corr.WideGlyph * advance
		}
	}
	if width < 0 {
		width = 0
	}
	return Size{Width: width * factor, Height: h}
}

func clampSize(size int) int {
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// fixedToFloat converts a 26.6 fixed-point value to content units.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
