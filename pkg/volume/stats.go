package volume

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary holds basic intensity statistics of a volume. It is used by
// threshold pickers to seed an initial inside range for rendering.
type Summary struct {
	// Mean is the average voxel intensity.
	Mean float64

	// StdDev is the standard deviation of the voxel intensities.
	StdDev float64

	// Min and Max are the extreme intensities present in the volume.
	Min int
	Max int
}

// Stats scans the whole volume and computes its intensity summary.
func Stats(v Volume) Summary {
	width := v.Width()
	height := v.Height()
	slices := v.Slices()

	values := make([]float64, 0, width*height*slices)
	min := math.MaxInt
	max := math.MinInt

	for z := 0; z < slices; z++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				val := v.ValueAt(x, y, z)
				if val < min {
					min = val
				}
				if val > max {
					max = val
				}
				values = append(values, float64(val))
			}
		}
	}

	if len(values) == 0 {
		return Summary{}
	}

	mean, std := stat.MeanStdDev(values, nil)
	if math.IsNaN(std) {
		// A single voxel has no sample variance.
		std = 0
	}

	return Summary{Mean: mean, StdDev: std, Min: min, Max: max}
}

// SuggestRange proposes an inside intensity range of mean ± k standard
// deviations, clamped to the representable domain of the volume's element
// type. It gives renderers a usable starting threshold before the user has
// adjusted anything.
func SuggestRange(v Volume, k float64) (min, max int) {
	s := Stats(v)
	limit := MaxValue(v)

	min = int(math.Round(s.Mean - k*s.StdDev))
	max = int(math.Round(s.Mean + k*s.StdDev))

	if min < 0 {
		min = 0
	}
	if max > limit {
		max = limit
	}
	if max < min {
		max = min
	}
	return min, max
}
