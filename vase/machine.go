package vase

import "strings"

import "github.com/dunkmann00/PrusaPosts/gcode"

import "gonum.org/v1/gonum/spatial/r2"

// Slicer-emitted layer boundary marker.
const layerChangeMarker = ";LAYER_CHANGE"

// Guards layer segmentation against floating-point noise on Z. Not a tunable.
const zEpsilon = 1e-6

// A Move is one motion instruction with sticky coordinates resolved to
// absolute values. Only X and Y may change after creation, and only when the
// smoothing engine adjusts an extruding move.
type Move struct {
	Line      int // index into the Document's line slice
	X, Y, Z   float64
	Extruding bool // deposits material (positive E)
	Planar    bool // carried an X or Y word of its own
	Adjusted  bool // planar target was rewritten
}

// A Machine walks a parsed document and flattens it into absolute Moves,
// carrying the sticky X/Y/Z state across instructions.
type Machine struct {
	curX, curY, curZ float64

	Moves   []*Move
	markers []int // line indices of layer change markers
}

// Process resolves every motion line of the document into a Move and records
// layer change markers for segmentation.
func (m *Machine) Process(doc *gcode.Document) {
	for i := range doc.Lines {
		line := &doc.Lines[i]

		if line.Kind != gcode.KindMove {
			if strings.TrimRight(line.Raw, " \r") == layerChangeMarker {
				m.markers = append(m.markers, i)
			}
			continue
		}

		planar := false
		if w := line.Word('X'); w != nil {
			m.curX = w.Value
			planar = true
		}
		if w := line.Word('Y'); w != nil {
			m.curY = w.Value
			planar = true
		}
		if w := line.Word('Z'); w != nil {
			m.curZ = w.Value
		}
		extruding := false
		if w := line.Word('E'); w != nil && w.Value > 0 {
			extruding = true
		}

		m.Moves = append(m.Moves, &Move{
			Line:      i,
			X:         m.curX,
			Y:         m.curY,
			Z:         m.curZ,
			Extruding: extruding,
			Planar:    planar,
		})
	}
}

// A Layer is an ordered run of Moves printed at one height. PathMoves are the
// extruding planar moves whose targets form the layer's loop; Path is the
// geometry derived from them.
type Layer struct {
	Index int
	Z     float64

	Moves     []*Move
	PathMoves []*Move
	Path      *Path

	// More than one extrusion loop detected; such a layer violates the
	// single-seam assumption and is skipped by the smoothing engine.
	Degenerate bool
}

// SplitLayers groups the machine's moves into print layers. Layer change
// markers take precedence when the stream has them; otherwise a change of Z
// beyond a small epsilon opens a new layer.
func (m *Machine) SplitLayers() []*Layer {
	var layers []*Layer
	if len(m.markers) > 0 {
		layers = m.splitByMarkers()
	} else {
		layers = m.splitByZ()
	}
	for _, l := range layers {
		l.finish()
	}
	return layers
}

// Moves before the first marker belong to the print preamble (priming,
// skirt) and to no layer.
func (m *Machine) splitByMarkers() []*Layer {
	var layers []*Layer
	var cur *Layer
	marker := 0

	for _, mv := range m.Moves {
		for marker < len(m.markers) && mv.Line > m.markers[marker] {
			cur = &Layer{Index: len(layers), Z: mv.Z}
			layers = append(layers, cur)
			marker++
		}
		if cur != nil {
			cur.Moves = append(cur.Moves, mv)
		}
	}
	return layers
}

func (m *Machine) splitByZ() []*Layer {
	var layers []*Layer
	var cur *Layer

	for _, mv := range m.Moves {
		if cur == nil || mv.Z-cur.Z > zEpsilon || cur.Z-mv.Z > zEpsilon {
			cur = &Layer{Index: len(layers), Z: mv.Z}
			layers = append(layers, cur)
		}
		cur.Moves = append(cur.Moves, mv)
	}
	return layers
}

// Builds the layer's path from its extruding moves and detects extra loops:
// a travel that displaces the head after extrusion has started, followed by
// more extrusion, means the layer is not a single continuous loop.
func (l *Layer) finish() {
	split := false
	for _, mv := range l.Moves {
		if mv.Extruding && mv.Planar {
			if split {
				l.Degenerate = true
			}
			if len(l.PathMoves) == 0 {
				l.Z = mv.Z
			}
			l.PathMoves = append(l.PathMoves, mv)
		} else if mv.Planar && len(l.PathMoves) > 0 {
			split = true
		}
	}

	points := make([]r2.Vec, len(l.PathMoves))
	for i, mv := range l.PathMoves {
		points[i] = r2.Vec{X: mv.X, Y: mv.Y}
	}
	l.Path = NewPath(points)
}
