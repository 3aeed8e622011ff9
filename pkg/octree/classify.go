package octree

import (
	"math"
	"time"
)

// SetInsideRange sets the integer intensity range defining 'inside' and
// reclassifies the whole tree. It returns true if the range changed, false
// for identical bounds (no work is done) or when the tree is not usable yet.
//
// Reclassification reads only the min/max bounds computed at fill time: a
// cell whose bounds fall entirely outside the range is rejected without
// visiting its children, which is what keeps range changes cheap.
func (t *Tree) SetInsideRange(min, max int) bool {
	if t.rangeMin == min && t.rangeMax == max {
		return false
	}
	if !t.Usable() {
		t.log.Debug().Msg("octree range change ignored, tree not usable")
		return false
	}

	t.rangeMin = min
	t.rangeMax = max
	t.voxelsInside = 0

	start := time.Now()
	t.classify(0, 0, 0, 0)

	numVoxels := t.gridX[0][0] * t.gridY[0][0] * t.gridZ[0][0]
	t.log.Debug().
		Int("min", min).
		Int("max", max).
		Float64("insidePct", 100*float64(t.voxelsInside)/float64(numVoxels)).
		Dur("elapsed", time.Since(start)).
		Msg("octree range classified")
	return true
}

// SetInsideRangeNormalized sets the range on a normalized 0..1 scale, mapped
// through the maximum representable intensity of the bound volume's element
// type.
func (t *Tree) SetInsideRangeNormalized(min, max float64) bool {
	return t.SetInsideRange(
		int(math.Round(min*t.scale)),
		int(math.Round(max*t.scale)),
	)
}

// classify recursively labels the cell at (px, py, pz) of the given layer and
// returns its classification.
func (t *Tree) classify(layer, px, py, pz int) classification {
	nx := len(t.gridX[layer])
	ny := len(t.gridY[layer])
	e := &t.data[layer][px+nx*(py+ny*pz)]

	switch {
	case t.rangeMin > e.max || t.rangeMax < e.min:
		// The cell's bounds miss the range entirely, at any level.
		e.class = leafOut

	case layer == t.numLayers-1:
		// Inside and on the finest level.
		e.class = leafIn
		t.voxelsInside += t.gridX[layer][px] * t.gridY[layer][py] * t.gridZ[layer][pz]

	default:
		sx, sy, sz := t.split(layer)
		allIn, allOut := true, true
		for zz := 0; zz < sz; zz++ {
			for yy := 0; yy < sy; yy++ {
				for xx := 0; xx < sx; xx++ {
					switch t.classify(layer+1, sx*px+xx, sy*py+yy, sz*pz+zz) {
					case leafIn:
						allOut = false
					case leafOut:
						allIn = false
					default:
						allIn = false
						allOut = false
					}
				}
			}
		}
		switch {
		case allIn:
			e.class = leafIn
		case allOut:
			// Unreachable given the bounds rejection above, kept as a safeguard.
			e.class = leafOut
		default:
			e.class = mixedNode
		}
	}

	return e.class
}
