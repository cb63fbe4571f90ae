package draw

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/pwgbots/diafram/pkg/errors"
	"github.com/pwgbots/diafram/pkg/textmetrics"
)

// Tuning holds the empirical drawing constants. They have no stated
// derivation; their only requirement is visual consistency, so they are
// carried as configuration with stock defaults rather than re-derived.
type Tuning struct {
	// Aspect attachment geometry. A link's head attaches at radius
	// halfWidth*AttachRadiusFactor + HeadRadiusOffset from the target
	// center; the tail leaves at the same factor plus TailRadiusOffset.
	AttachRadiusFactor float64 `toml:"attach_radius_factor"`
	TailRadiusOffset   float64 `toml:"tail_radius_offset"`
	HeadRadiusOffset   float64 `toml:"head_radius_offset"`

	// Control points sit at distance StretchBase + span/StretchDivisor
	// along the endpoint tangents; an in-progress drag preview uses
	// DragStretchDivisor instead, to feel looser.
	StretchBase        float64 `toml:"stretch_base"`
	StretchDivisor     float64 `toml:"stretch_divisor"`
	DragStretchDivisor float64 `toml:"drag_stretch_divisor"`

	// Connector glyphs sit on the hexagon vertices at radius
	// halfWidth*ConnectorRadiusFactor.
	ConnectorRadiusFactor float64 `toml:"connector_radius_factor"`
	ConnectorRadius       float64 `toml:"connector_radius"`

	// Value labels straddle the curve midpoint across a parameter band of
	// LabelSpread (step = LabelSpread/n).
	LabelSpread float64 `toml:"label_spread"`

	// Hidden-link count glyphs sit at horizontal offset
	// halfWidth*HiddenArrowDX from the function center and HiddenArrowDY
	// above the hexagon's top edge.
	HiddenArrowDX float64 `toml:"hidden_arrow_dx"`
	HiddenArrowDY float64 `toml:"hidden_arrow_dy"`

	// HitStrokeWidth is the width of the transparent duplicate stroke that
	// enlarges a link's hover/click target.
	HitStrokeWidth float64 `toml:"hit_stroke_width"`

	// Corrections feed the font-metrics fixed-advance approximation.
	Corrections textmetrics.Corrections `toml:"corrections"`
}

// DefaultTuning returns the stock constants.
func DefaultTuning() Tuning {
	return Tuning{
		AttachRadiusFactor:    0.55,
		TailRadiusOffset:      7,
		HeadRadiusOffset:      11,
		StretchBase:           10,
		StretchDivisor:        8,
		DragStretchDivisor:    4,
		ConnectorRadiusFactor: 1.1,
		ConnectorRadius:       8,
		LabelSpread:           0.4,
		HiddenArrowDX:         0.6,
		HiddenArrowDY:         12,
		HitStrokeWidth:        9,
		Corrections:           textmetrics.DefaultCorrections(),
	}
}

// LoadTuning reads constant overrides from a TOML document. Keys absent from
// the document keep their defaults; unknown keys are rejected.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, errors.Wrap(errors.ErrCodeFileNotFound, err, "tuning file %s", path)
		}
		return t, errors.Wrap(errors.ErrCodeInvalidInput, err, "read tuning file %s", path)
	}
	meta, err := toml.Decode(string(data), &t)
	if err != nil {
		return DefaultTuning(), errors.Wrap(errors.ErrCodeInvalidTuning, err, "decode tuning file %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return DefaultTuning(), errors.New(errors.ErrCodeInvalidTuning, "unknown tuning key %q in %s", undecoded[0].String(), path)
	}
	return t, nil
}
