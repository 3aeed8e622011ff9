package octree

// buildLayerGrid computes the subdivision pyramid for one axis. Layer 0 is a
// single cell spanning the whole dimension; each further layer splits every
// cell s into (s/2, s-s/2), so extents always sum exactly to dim. Splitting
// stops once half of the running halving counter, seeded with dim/2, drops
// below minCubeSize. The counter is global to the axis, so cells keep
// splitting uniformly even when individual cells are already small.
func buildLayerGrid(dim, minCubeSize int) [][]int {
	// A non-positive minimum would never stop the halving counter; the
	// smallest meaningful cell is one voxel. Callers reject such input at
	// the API boundary, this keeps the helper total.
	if minCubeSize < 1 {
		minCubeSize = 1
	}

	grid := [][]int{{dim}}

	for half := dim / 2; half >= minCubeSize; half /= 2 {
		prev := grid[len(grid)-1]
		next := make([]int, 0, 2*len(prev))
		for _, size := range prev {
			h := size / 2
			next = append(next, h, size-h)
		}
		grid = append(grid, next)
	}

	return grid
}

// cellOrigins returns the starting voxel coordinate of every cell in a layer,
// the prefix sums of the cell extents.
func cellOrigins(layer []int) []int {
	origins := make([]int, len(layer))
	pos := 0
	for i, size := range layer {
		origins[i] = pos
		pos += size
	}
	return origins
}
