package main

import "github.com/dunkmann00/PrusaPosts/gcode"
import "github.com/dunkmann00/PrusaPosts/report"
import "github.com/dunkmann00/PrusaPosts/vase"
import "github.com/cheggaaa/pb"
import "gonum.org/v1/gonum/spatial/r2"

import "flag"
import "fmt"
import "os"
import "path/filepath"
import "strconv"
import "strings"

var (
	outputFile          = flag.String("output", "", "Location to write the processed gcode (default: overwrite the input)")
	reversedDir         = flag.Bool("reversed", false, "Smooth the object from the top down, rather than bottom up")
	combinedDir         = flag.Bool("combined", false, "Smooth from both the top down and bottom up and combine the results")
	layerRange          = flag.String("range", "", "Only smooth layers within this range (e.g. 5...40)")
	interpolateDistance = flag.Float64("interpolatedistance", 0.2, "Resample spacing between path points, in mm")
	smoothnessRatio     = flag.Float64("smoothnessratio", 0.5, "Proportion of each loop over which the blend fades out")
	plotFile            = flag.String("plot", "", "Write an HTML before/after report of sampled layers")
	noProgress          = flag.Bool("noprogress", false, "Disable the progress bar (for slicer invocation)")
)

func main() {
	// Parse arguments
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: Expected exactly one gcode file\n")
		flag.Usage()
		os.Exit(1)
	}
	inputFile := flag.Arg(0)

	if *reversedDir && *combinedDir {
		fmt.Fprintf(os.Stderr, "Error: -reversed and -combined are mutually exclusive\n")
		os.Exit(1)
	}

	direction := vase.DirectionForward
	if *reversedDir {
		direction = vase.DirectionReversed
	}
	if *combinedDir {
		direction = vase.DirectionCombined
	}

	lo, hi, err := parseRange(*layerRange)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	settings := vase.Settings{
		Direction:           direction,
		RangeLo:             lo,
		RangeHi:             hi,
		InterpolateDistance: *interpolateDistance,
		SmoothnessRatio:     *smoothnessRatio,
		OutputPath:          *outputFile,
	}
	smoother, err := vase.NewSmoother(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fhandle, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not open file: %s\n", err)
		os.Exit(2)
	}

	// Parse
	doc, err := gcode.Parse(string(fhandle))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(3)
	}

	// Resolve sticky coordinates and split into layers
	var machine vase.Machine
	machine.Process(doc)
	layers := machine.SplitLayers()

	var before [][]r2.Vec
	if *plotFile != "" {
		before = snapshotLayers(layers)
	}

	// Smooth
	progress := make(chan int, len(layers))
	go smoother.Run(layers, progress)
	if *noProgress {
		for range progress {
		}
	} else {
		pBar := pb.StartNew(len(layers))
		pBar.Format("[=> ]")
		for range progress {
			pBar.Increment()
		}
		pBar.Finish()
	}

	// Substitute the blended planar targets; everything else stays verbatim
	for _, mv := range machine.Moves {
		if mv.Adjusted {
			doc.Lines[mv.Line].SetXY(mv.X, mv.Y)
		}
	}

	output := doc.Render()
	if !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	output += settingsFooter(settings)

	dest := *outputFile
	if dest == "" {
		dest = inputFile
	}
	if err := writeFileAtomic(dest, []byte(output)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not write to file: %s\n", err)
		os.Exit(2)
	}

	if n := smoother.Skipped(); n > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %d layer(s) could not be smoothed and were passed through\n", n)
	}

	if *plotFile != "" {
		if err := report.Write(*plotFile, sampleTraces(layers, before)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(2)
		}
	}
}

// Copies every layer's loop before smoothing, for the report.
func snapshotLayers(layers []*vase.Layer) [][]r2.Vec {
	before := make([][]r2.Vec, len(layers))
	for i, layer := range layers {
		before[i] = append([]r2.Vec(nil), layer.Path.Points...)
	}
	return before
}

// Picks up to 8 layers, evenly spread, for the report.
func sampleTraces(layers []*vase.Layer, before [][]r2.Vec) []report.LayerTrace {
	step := len(layers)/8 + 1
	var traces []report.LayerTrace
	for i := 0; i < len(layers); i += step {
		traces = append(traces, report.LayerTrace{
			Index:    layers[i].Index,
			Original: before[i],
			Smoothed: layers[i].Path.Points,
		})
	}
	return traces
}

// Parses the original tool's range syntax: "lo...hi", 1-based inclusive.
func parseRange(s string) (lo, hi int, err error) {
	if s == "" {
		return 0, 0, nil
	}
	parts := strings.Split(s, "...")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad range %q, expected lo...hi", s)
	}
	if lo, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("bad range %q: %s", s, err)
	}
	if hi, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("bad range %q: %s", s, err)
	}
	return lo, hi, nil
}

// Comment block recording the settings a file was processed with, appended to
// the output like the original tool does.
func settingsFooter(s vase.Settings) string {
	rng := "all"
	if s.RangeLo != 0 || s.RangeHi != 0 {
		rng = fmt.Sprintf("%d...%d", s.RangeLo, s.RangeHi)
	}
	var b strings.Builder
	b.WriteString("; Post-Processed With SlicerVasePlus\n")
	fmt.Fprintf(&b, "; direction = %s\n", s.Direction)
	fmt.Fprintf(&b, "; range = %s\n", rng)
	fmt.Fprintf(&b, "; interpolate_distance = %g\n", s.InterpolateDistance)
	fmt.Fprintf(&b, "; smoothness_ratio = %g\n", s.SmoothnessRatio)
	return b.String()
}

// Writes via a temp file in the destination directory and renames over the
// target, so a failed run never leaves a half-written file in place of the
// input.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vaseplus-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}
