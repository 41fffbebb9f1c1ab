package vase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunkmann00/PrusaPosts/gcode"
)

// Runs the whole pipeline the way main does: parse, resolve, split, smooth,
// substitute, render.
func processText(t *testing.T, text string, settings Settings) (string, *Smoother) {
	t.Helper()
	doc, err := gcode.Parse(text)
	require.NoError(t, err)

	var m Machine
	m.Process(doc)
	layers := m.SplitLayers()

	sm, err := NewSmoother(settings)
	require.NoError(t, err)
	sm.Run(layers, nil)

	for _, mv := range m.Moves {
		if mv.Adjusted {
			doc.Lines[mv.Line].SetXY(mv.X, mv.Y)
		}
	}
	return doc.Render(), sm
}

func TestEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("preserves z, extrusion and feed exactly", func(t *testing.T) {
		t.Parallel()
		input := vaseText(0, 1, 2, 3, 4)
		output, _ := processText(t, input, Settings{
			Direction:           DirectionForward,
			InterpolateDistance: 0.1,
			SmoothnessRatio:     1.0,
		})

		inLines := strings.Split(input, "\n")
		outLines := strings.Split(output, "\n")
		require.Len(t, outLines, len(inLines))

		inDoc, err := gcode.Parse(input)
		require.NoError(t, err)
		outDoc, err := gcode.Parse(output)
		require.NoError(t, err)

		for i := range inDoc.Lines {
			in, out := inDoc.Lines[i], outDoc.Lines[i]
			require.Equal(t, in.Kind, out.Kind, "line %d", i+1)
			if in.Kind != gcode.KindMove {
				assert.Equal(t, in.Raw, out.Raw, "line %d", i+1)
				continue
			}
			for _, letter := range []byte{'Z', 'E', 'F'} {
				w := in.Word(letter)
				if w == nil {
					assert.Nil(t, out.Word(letter), "line %d word %c", i+1, letter)
					continue
				}
				require.NotNil(t, out.Word(letter), "line %d word %c", i+1, letter)
				assert.Equal(t, w.Value, out.Word(letter).Value, "line %d word %c", i+1, letter)
			}
		}
	})

	t.Run("first layer and far seam points survive verbatim", func(t *testing.T) {
		t.Parallel()
		input := vaseText(0, 1, 2, 3, 4)
		output, _ := processText(t, input, Settings{
			Direction:           DirectionForward,
			InterpolateDistance: 0.1,
			SmoothnessRatio:     1.0,
		})

		inLines := strings.Split(input, "\n")
		outLines := strings.Split(output, "\n")

		// Layer 0 occupies lines 2-7 (marker + travel + 4 extrudes) and has
		// no reference, so every one of its lines is byte-identical.
		for i := 1; i < 7; i++ {
			assert.Equal(t, inLines[i], outLines[i], "line %d", i+1)
		}
	})

	t.Run("layers outside the range are byte-identical", func(t *testing.T) {
		t.Parallel()
		input := vaseText(0, 1, 2, 3, 4)
		output, _ := processText(t, input, Settings{
			Direction:           DirectionForward,
			InterpolateDistance: 0.1,
			SmoothnessRatio:     1.0,
			RangeLo:             3,
			RangeHi:             4,
		})

		inLines := strings.Split(input, "\n")
		outLines := strings.Split(output, "\n")
		require.Len(t, outLines, len(inLines))

		// 6 lines per layer after the M104 header.
		layerLines := func(idx int) (int, int) { return 1 + idx*6, 1 + (idx+1)*6 }

		for _, idx := range []int{0, 1, 4} {
			lo, hi := layerLines(idx)
			for i := lo; i < hi; i++ {
				assert.Equal(t, inLines[i], outLines[i], "line %d of layer %d", i+1, idx)
			}
		}
		for _, idx := range []int{2, 3} {
			lo, hi := layerLines(idx)
			changed := false
			for i := lo; i < hi; i++ {
				if inLines[i] != outLines[i] {
					changed = true
				}
			}
			assert.True(t, changed, "layer %d should show blended coordinates", idx)
		}
	})

	t.Run("degenerate layer passes through unmodified", func(t *testing.T) {
		t.Parallel()
		twoPoint := ";LAYER_CHANGE\n" +
			"G1 X0 Y0 Z0.4 F9000\n" +
			"G1 X10 Y0 E1\n" +
			"G1 X10 Y5 E1\n"
		input := vaseText(0) + twoPoint

		for _, dir := range []string{DirectionForward, DirectionReversed, DirectionCombined} {
			output, sm := processText(t, input, Settings{
				Direction:           dir,
				InterpolateDistance: 0.2,
				SmoothnessRatio:     0.7,
			})
			assert.Equal(t, 1, sm.Skipped(), "direction %s", dir)
			assert.True(t, strings.HasSuffix(output, twoPoint), "direction %s", dir)
		}
	})
}
