// Package pkg provides the core libraries for Diafram FRAM diagram rendering.
//
// # Overview
//
// Diafram draws Functional Resonance Analysis Method (FRAM) models:
// hexagonal functions whose six corners carry the aspects Output, Control,
// Resource, Precondition, Input, and Time, connected by cubic curves from
// one function's output corner to an aspect corner of another. The pkg
// directory is organized into these areas:
//
//  1. [model] - The graph model (functions, links, notes, focal selection)
//  2. [textmetrics] - Font-metric tables and fixed-advance text sizing
//  3. [scene] - Retained scene graph, pointer dispatch, SVG serialization
//  4. [draw] - Drawing orchestration (hexagons, link routing, labels)
//  5. [viewport] - Zoom, canvas sizing, and cursor mapping
//  6. [export] - SVG and PNG export sinks
//
// # Architecture
//
// The typical data flow through Diafram:
//
//	Model JSON
//	         ↓
//	    [model] package (decode + validate)
//	         ↓
//	    [draw] package (shapes into the retained scene)
//	         ↓
//	    [scene] package (z-ordered primitives)
//	         ↓
//	    SVG/PNG output
//
// # Quick Start
//
//	m, err := model.LoadFile("plant.json")
//	if err != nil {
//	    return err
//	}
//	metrics, err := textmetrics.New()
//	if err != nil {
//	    return err
//	}
//	orch := draw.New(scene.NewScene(), metrics, viewport.New())
//	if err := orch.DrawDiagram(ctx, m); err != nil {
//	    return err
//	}
//	var buf bytes.Buffer
//	orch.Scene().WriteSVG(&buf)
//
// Supporting packages: [errors] for structured error codes, [observability]
// for optional render/input hooks, and [buildinfo] for version metadata.
package pkg
