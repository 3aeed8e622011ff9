package octree

import "time"

// Box is one maximal fully-inside cell in voxel units.
type Box struct {
	// X, Y, Z is the origin voxel coordinate of the cell.
	X, Y, Z int

	// SizeX, SizeY, SizeZ is the cell extent in voxels.
	SizeX, SizeY, SizeZ int
}

// Enumerate walks the classified tree and returns one box per maximal
// fully-inside cell, in pre-order depth-first order. A fully-inside cell is
// never descended, so boxes neither overlap nor leave gaps over the inside
// region. The previous result is discarded.
//
// The result is not invalidated automatically: call Enumerate again after
// every successful SetInsideRange. The returned slice is reused across calls.
func (t *Tree) Enumerate() []Box {
	t.boxes = t.boxes[:0]
	if !t.Usable() {
		return t.boxes
	}

	start := time.Now()
	t.enumerate(0, 0, 0, 0)
	t.log.Debug().
		Int("boxes", len(t.boxes)).
		Dur("elapsed", time.Since(start)).
		Msg("octree enumerated")
	return t.boxes
}

// Boxes returns the result of the last Enumerate call.
func (t *Tree) Boxes() []Box {
	return t.boxes
}

func (t *Tree) enumerate(layer, px, py, pz int) {
	nx := len(t.gridX[layer])
	ny := len(t.gridY[layer])

	switch t.data[layer][px+nx*(py+ny*pz)].class {
	case leafIn:
		t.boxes = append(t.boxes, Box{
			X:     t.originX[layer][px],
			Y:     t.originY[layer][py],
			Z:     t.originZ[layer][pz],
			SizeX: t.gridX[layer][px],
			SizeY: t.gridY[layer][py],
			SizeZ: t.gridZ[layer][pz],
		})

	case mixedNode:
		if layer == t.numLayers-1 {
			// Finest-layer cells are always leaves after classification;
			// a mixed marking here means the tree was never classified.
			return
		}
		sx, sy, sz := t.split(layer)
		for zz := 0; zz < sz; zz++ {
			for yy := 0; yy < sy; yy++ {
				for xx := 0; xx < sx; xx++ {
					t.enumerate(layer+1, sx*px+xx, sy*py+yy, sz*pz+zz)
				}
			}
		}
	}
}
