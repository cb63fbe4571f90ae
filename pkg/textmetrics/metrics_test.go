package textmetrics

import (
	"math"
	"testing"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestHeightsMonotone(t *testing.T) {
	c := newCache(t)

	prev := 0.0
	for size := MinSize; size <= MaxSize; size++ {
		h := c.Height(size)
		if h <= 0 {
			t.Errorf("Height(%d) = %v, want > 0", size, h)
		}
		if h < prev {
			t.Errorf("Height(%d) = %v < Height(%d) = %v, want non-decreasing", size, h, size-1, prev)
		}
		prev = h
	}
}

func TestWeightFactor(t *testing.T) {
	c := newCache(t)

	if got := c.WeightFactor(400); got != 1.0 {
		t.Errorf("WeightFactor(400) = %v, want exactly 1.0", got)
	}
	if got := c.WeightFactor(700); got <= 1.0 {
		t.Errorf("WeightFactor(700) = %v, want > 1.0 (bold is wider)", got)
	}
	if got := c.WeightFactor(100); got < 0.8 {
		t.Errorf("WeightFactor(100) = %v, want clamped to >= 0.8", got)
	}

	// Bucketing rounds to the nearest multiple of 100.
	if c.WeightFactor(440) != c.WeightFactor(400) {
		t.Error("WeightFactor(440) != WeightFactor(400), want same bucket")
	}
	if c.WeightFactor(460) != c.WeightFactor(500) {
		t.Error("WeightFactor(460) != WeightFactor(500), want same bucket")
	}
}

func TestNumberSizePlainDigits(t *testing.T) {
	c := newCache(t)

	for _, size := range []int{4, 8, 12, 16} {
		for _, text := range []string{"1", "42", "123456"} {
			got := c.NumberSize(text, size, 400)
			want := float64(len(text)) * c.Height(size) / 2
			if got.Width != want {
				t.Errorf("NumberSize(%q, %d).Width = %v, want %v", text, size, got.Width, want)
			}
			if got.Height != c.Height(size) {
				t.Errorf("NumberSize(%q, %d).Height = %v, want %v", text, size, got.Height, c.Height(size))
			}
		}
	}
}

func TestNumberSizeCorrections(t *testing.T) {
	c := newCache(t)
	const size = 12
	adv := c.Height(size) / 2
	corr := DefaultCorrections()

	tests := []struct {
		text string
		want float64
	}{
		{"1.5", 3*adv - corr.DecimalPoint*adv},
		{"-7", 2*adv - corr.LeadingMinus*adv},
		{"<=3", 3*adv + corr.WideGlyph*adv + corr.EqualsBonus*adv},
		{"1…", 2*adv + corr.Ellipsis*adv},
		{"=1", 2*adv + corr.EqualsBonus*adv},
		{"50%", 3*adv + corr.WideGlyph*adv},
		{"∞", 1*adv + corr.WideGlyph*adv},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.NumberSize(tt.text, size, 400)
			if math.Abs(got.Width-tt.want) > 1e-9 {
				t.Errorf("NumberSize(%q).Width = %v, want %v", tt.text, got.Width, tt.want)
			}
		})
	}
}

func TestNumberSizeSpecialGlyphs(t *testing.T) {
	c := newCache(t)
	const size = 10
	h := c.Height(size)

	if got := c.NumberSize(UndefinedGlyph, size, 400); got.Width != 0.75*h {
		t.Errorf("NumberSize(undefined).Width = %v, want %v", got.Width, 0.75*h)
	}
	if got := c.NumberSize(WarningGlyph, size, 400); got.Width != h {
		t.Errorf("NumberSize(warning).Width = %v, want %v", got.Width, h)
	}
}

func TestNumberSizeWeightScaling(t *testing.T) {
	c := newCache(t)

	normal := c.NumberSize("123", 12, 400)
	bold := c.NumberSize("123", 12, 700)
	want := normal.Width * c.WeightFactor(700)
	if math.Abs(bold.Width-want) > 1e-9 {
		t.Errorf("bold width = %v, want %v", bold.Width, want)
	}
}

func TestNumberSizeConsistentWithTextSize(t *testing.T) {
	c := newCache(t)

	// The fixed-advance approximation must track real digit rendering within
	// a bounded discrepancy. Go's digits are tabular, so 25% is generous.
	for _, text := range []string{"1234", "88888888", "007"} {
		approx := c.NumberSize(text, 14, 400).Width
		exact := c.TextSize(text, 14, 400).Width
		if exact == 0 {
			t.Fatalf("TextSize(%q).Width = 0", text)
		}
		drift := math.Abs(approx-exact) / exact
		if drift > 0.25 {
			t.Errorf("NumberSize(%q) drifts %.0f%% from TextSize (%v vs %v)", text, drift*100, approx, exact)
		}
	}
}

func TestTextSizeMultiline(t *testing.T) {
	c := newCache(t)

	one := c.TextSize("brew", 12, 400)
	two := c.TextSize("brew\ncoffee", 12, 400)

	if two.Height != 2*c.Height(12) {
		t.Errorf("two-line height = %v, want %v", two.Height, 2*c.Height(12))
	}
	if two.Width <= one.Width {
		t.Errorf("width of longer line = %v, want > %v (max over lines)", two.Width, one.Width)
	}
}

func TestTextSizeEmpty(t *testing.T) {
	c := newCache(t)

	got := c.TextSize("", 12, 400)
	if got.Width != 0 {
		t.Errorf("TextSize(\"\").Width = %v, want 0", got.Width)
	}
	if got.Height != c.Height(12) {
		t.Errorf("TextSize(\"\").Height = %v, want one line height %v", got.Height, c.Height(12))
	}
}

func TestSizeClamping(t *testing.T) {
	c := newCache(t)

	if c.Height(0) != c.Height(MinSize) {
		t.Error("Height(0) not clamped to MinSize")
	}
	if c.Height(99) != c.Height(MaxSize) {
		t.Error("Height(99) not clamped to MaxSize")
	}
}
