// Package model holds the graph model the rendering engine draws: hexagonal
// functions with six aspect corners, directed links between aspects, and
// free-text notes.
//
// The drawing core only reads this package's geometry and attributes and
// calls its query helpers (visible children of the focal container, hidden
// link counts, content bounding box). The one exception is TranslateVisible,
// which the viewport controller uses to re-center the picture.
//
// Models round-trip through JSON for file I/O:
//
//	m, err := model.LoadFile("plant.diafram.json")
//	if err != nil { ... }
//	for _, f := range m.VisibleFunctions() { ... }
package model
