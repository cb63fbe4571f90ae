package model

import (
	"testing"
)

func testModel() *Model {
	return &Model{
		Name: "test",
		Functions: []*Function{
			{ID: "boil", Name: "Boil water", X: 100, Y: 100},
			{ID: "brew", Name: "Brew coffee", X: 300, Y: 100},
			{ID: "grind", Name: "Grind beans", X: 500, Y: 300, Parent: "brew"},
			{ID: "serve", Name: "Serve", X: 500, Y: 100},
		},
		Links: []*Link{
			{ID: "l1", From: "boil", To: "brew", Aspect: "I"},
			{ID: "l2", From: "brew", To: "serve", Aspect: "I", Values: []AspectValue{{Label: "cups"}}},
			{ID: "l3", From: "grind", To: "brew", Aspect: "R"},
		},
		Notes: []*Note{
			{ID: "n1", X: 200, Y: 250, W: 120, H: 40, Text: "morning routine"},
		},
	}
}

func TestAspectIndex(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"O", 0},
		{"C", 1},
		{"R", 2},
		{"P", 3},
		{"I", 4},
		{"T", 5},
		{"X", -1},
		{"", -1},
		{"OC", -1},
	}

	for _, tt := range tests {
		t.Run(tt.letter, func(t *testing.T) {
			if got := AspectIndex(tt.letter); got != tt.want {
				t.Errorf("AspectIndex(%q) = %d, want %d", tt.letter, got, tt.want)
			}
		})
	}
}

func TestVisibility(t *testing.T) {
	m := testModel()

	vis := m.VisibleFunctions()
	if len(vis) != 3 {
		t.Fatalf("VisibleFunctions() = %d functions, want 3", len(vis))
	}
	if m.IsVisible("grind") {
		t.Error("IsVisible(grind) = true, want false (nested in brew)")
	}

	links := m.VisibleLinks()
	if len(links) != 2 {
		t.Errorf("VisibleLinks() = %d, want 2 (l3 has hidden endpoint)", len(links))
	}

	m.Focal = "brew"
	if got := len(m.VisibleFunctions()); got != 1 {
		t.Errorf("VisibleFunctions() with focal=brew = %d, want 1", got)
	}
}

func TestHiddenLinkCounts(t *testing.T) {
	m := testModel()

	// grind -> brew has a hidden source, so brew gains one incoming count.
	in, out := m.HiddenLinkCounts("brew")
	if in != 1 || out != 0 {
		t.Errorf("HiddenLinkCounts(brew) = (%d, %d), want (1, 0)", in, out)
	}

	in, out = m.HiddenLinkCounts("boil")
	if in != 0 || out != 0 {
		t.Errorf("HiddenLinkCounts(boil) = (%d, %d), want (0, 0)", in, out)
	}
}

func TestBoundingBox(t *testing.T) {
	m := testModel()

	minX, minY, maxX, maxY, ok := m.BoundingBox()
	if !ok {
		t.Fatal("BoundingBox() ok = false for non-empty model")
	}
	// boil is at (100,100) with default size 120x60, so the left edge is 40.
	if minX != 40 {
		t.Errorf("minX = %v, want 40", minX)
	}
	if minY != 70 {
		t.Errorf("minY = %v, want 70", minY)
	}
	if maxX != 560 {
		t.Errorf("maxX = %v, want 560", maxX)
	}
	// The note reaches down to 270.
	if maxY != 270 {
		t.Errorf("maxY = %v, want 270", maxY)
	}

	empty := &Model{}
	if _, _, _, _, ok := empty.BoundingBox(); ok {
		t.Error("BoundingBox() ok = true for empty model")
	}
}

func TestTranslateVisible(t *testing.T) {
	m := testModel()
	m.TranslateVisible(10, -20)

	f, _ := m.Function("boil")
	if f.X != 110 || f.Y != 80 {
		t.Errorf("boil at (%v, %v), want (110, 80)", f.X, f.Y)
	}

	// Nested functions are not part of the visible picture.
	g, _ := m.Function("grind")
	if g.X != 500 || g.Y != 300 {
		t.Errorf("grind at (%v, %v), want unchanged (500, 300)", g.X, g.Y)
	}

	if m.Notes[0].X != 210 {
		t.Errorf("note X = %v, want 210", m.Notes[0].X)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Model)
		wantErr bool
	}{
		{"valid", func(m *Model) {}, false},
		{"duplicate id", func(m *Model) { m.Functions[1].ID = "boil" }, true},
		{"unknown parent", func(m *Model) { m.Functions[2].Parent = "ghost" }, true},
		{"unknown link source", func(m *Model) { m.Links[0].From = "ghost" }, true},
		{"unknown link target", func(m *Model) { m.Links[0].To = "ghost" }, true},
		{"bad aspect", func(m *Model) { m.Links[0].Aspect = "Z" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel()
			tt.mutate(m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	m := testModel()
	data, err := m.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}

	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(got.Functions) != len(m.Functions) || len(got.Links) != len(m.Links) || len(got.Notes) != len(m.Notes) {
		t.Errorf("round trip changed entity counts: %d/%d/%d", len(got.Functions), len(got.Links), len(got.Notes))
	}
	if _, ok := got.Function("brew"); !ok {
		t.Error("Function(brew) not found after round trip")
	}
}
