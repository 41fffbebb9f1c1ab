package vase

import "sync"

import "gonum.org/v1/gonum/spatial/r2"

// A Smoother blends each layer's loop toward its vertically adjacent layer,
// fading the pull out over part of the loop so the far side prints exactly as
// sliced. Forward and reversed runs chain: the reference for a layer is the
// already-smoothed neighbor, which is what propagates a gradual correction
// across a sloped run of layers.
type Smoother struct {
	settings Settings
	skipped  int
}

// NewSmoother validates the settings and returns an engine.
func NewSmoother(settings Settings) (*Smoother, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Smoother{settings: settings}, nil
}

// Skipped reports how many in-range layers were passed through untouched
// because their geometry could not be smoothed (too few extrusion points to
// form a loop, or more than one loop).
func (sm *Smoother) Skipped() int {
	return sm.skipped
}

// Run smooths the layer sequence in place, in the order the configured
// direction dictates. One tick per layer is sent on progress when it is
// non-nil; the channel is closed when the run completes.
func (sm *Smoother) Run(layers []*Layer, progress chan<- int) {
	if progress != nil {
		defer close(progress)
	}

	switch sm.settings.Direction {
	case DirectionReversed:
		sm.skipped = sm.pass(layers, true, progress)
	case DirectionCombined:
		sm.skipped = sm.combined(layers, progress)
	default:
		sm.skipped = sm.pass(layers, false, progress)
	}
}

// One chained pass over the layers. Every layer with a usable loop becomes
// the reference for the next, whether or not it was itself in range: an
// out-of-range neighbor still anchors the layers at the range boundary.
func (sm *Smoother) pass(layers []*Layer, reversed bool, progress chan<- int) int {
	var ref *ResampledPath
	skipped := 0

	for i := 0; i < len(layers); i++ {
		layer := layers[i]
		if reversed {
			layer = layers[len(layers)-1-i]
		}

		// A loop needs at least 3 vertices; anything less is passed through.
		usable := !layer.Degenerate && len(layer.Path.Points) >= 3 && layer.Path.Total > 0
		switch {
		case !usable:
			if sm.settings.inRange(layer.Index) {
				skipped++
			}
		case ref != nil && sm.settings.inRange(layer.Index):
			sm.blend(layer, ref)
			fallthrough
		default:
			ref = layer.Path.Resample(sm.settings.InterpolateDistance)
		}

		if progress != nil {
			progress <- layer.Index
		}
	}
	return skipped
}

// blend pulls the layer's loop toward the reference. Each original vertex is
// blended at its own arc length s: the weight is 1 at the seam and decays to
// 0 at s/L = smoothness ratio, and the reference is looked up at the same
// fractional position along its own length, so loops of different lengths
// still correspond start-to-start and end-to-end.
func (sm *Smoother) blend(layer *Layer, ref *ResampledPath) {
	path := layer.Path
	ratio := sm.settings.SmoothnessRatio

	points := make([]r2.Vec, len(path.Points))
	copy(points, path.Points)

	for i, pt := range path.Points {
		f := path.Cum[i] / path.Total
		w := 1 - f/ratio
		if w <= 0 {
			continue
		}

		rp := ref.At(f * ref.Total)
		points[i] = r2.Add(r2.Scale(1-w, pt), r2.Scale(w, rp))

		mv := layer.PathMoves[i]
		mv.X, mv.Y = points[i].X, points[i].Y
		mv.Adjusted = true
	}

	// Arc lengths changed; the smoothed loop is what chains onward.
	layer.Path = NewPath(points)
}

// combined runs an independent forward and reversed pass over copies of the
// original layers and merges them by averaging point-for-point. The two
// passes share no state, so they run concurrently.
func (sm *Smoother) combined(layers []*Layer, progress chan<- int) int {
	fwd := cloneLayers(layers)
	rev := cloneLayers(layers)

	var wg sync.WaitGroup
	var skipped int
	wg.Add(2)
	go func() {
		defer wg.Done()
		skipped = sm.pass(fwd, false, nil)
	}()
	go func() {
		defer wg.Done()
		sm.pass(rev, true, nil)
	}()
	wg.Wait()

	for i, layer := range layers {
		points := make([]r2.Vec, len(layer.PathMoves))
		for j, mv := range layer.PathMoves {
			f, r := fwd[i].PathMoves[j], rev[i].PathMoves[j]
			if f.Adjusted || r.Adjusted {
				mv.X = (f.X + r.X) / 2
				mv.Y = (f.Y + r.Y) / 2
				mv.Adjusted = true
			}
			points[j] = r2.Vec{X: mv.X, Y: mv.Y}
		}
		layer.Path = NewPath(points)

		if progress != nil {
			progress <- layer.Index
		}
	}
	return skipped
}

// Deep copy for the combined sub-passes: cloned moves, rebuilt paths, no
// sharing with the input.
func cloneLayers(layers []*Layer) []*Layer {
	out := make([]*Layer, len(layers))
	for i, layer := range layers {
		moves := make([]*Move, len(layer.PathMoves))
		points := make([]r2.Vec, len(layer.PathMoves))
		for j, mv := range layer.PathMoves {
			c := *mv
			moves[j] = &c
			points[j] = r2.Vec{X: c.X, Y: c.Y}
		}
		out[i] = &Layer{
			Index:      layer.Index,
			Z:          layer.Z,
			PathMoves:  moves,
			Path:       NewPath(points),
			Degenerate: layer.Degenerate,
		}
	}
	return out
}
