// Package volume provides read-only dense scalar volumes used as the input
// for spatial indexing and slice rendering. A volume stores one intensity
// sample per voxel in contiguous row-major order (x fastest, then y, then z).
package volume

import (
	"fmt"
)

// Volume is the read-only scalar volume consumed by the octree and the
// visualization viewer.
type Volume interface {
	// Width returns the number of voxels along the x axis.
	Width() int

	// Height returns the number of voxels along the y axis.
	Height() int

	// Slices returns the number of voxels along the z axis.
	Slices() int

	// BitsPerSample returns the element bit depth. It determines the
	// maximum representable intensity, 2^bits - 1.
	BitsPerSample() int

	// ValueAt returns the intensity at the given voxel coordinate.
	// Coordinates must be within the volume bounds.
	ValueAt(x, y, z int) int
}

// Gray8 is a volume of 8-bit unsigned samples.
type Gray8 struct {
	// Data is the voxel data in row-major order, x fastest.
	Data []uint8

	width  int
	height int
	slices int
}

// NewGray8 allocates a zeroed 8-bit volume with the given dimensions.
func NewGray8(width, height, slices int) *Gray8 {
	return &Gray8{
		Data:   make([]uint8, width*height*slices),
		width:  width,
		height: height,
		slices: slices,
	}
}

// WrapGray8 wraps existing voxel data without copying it.
func WrapGray8(data []uint8, width, height, slices int) (*Gray8, error) {
	if len(data) != width*height*slices {
		return nil, fmt.Errorf("volume: data length %d does not match %dx%dx%d",
			len(data), width, height, slices)
	}
	return &Gray8{Data: data, width: width, height: height, slices: slices}, nil
}

func (v *Gray8) Width() int         { return v.width }
func (v *Gray8) Height() int        { return v.height }
func (v *Gray8) Slices() int        { return v.slices }
func (v *Gray8) BitsPerSample() int { return 8 }

// ValueAt returns the intensity at the given voxel coordinate.
func (v *Gray8) ValueAt(x, y, z int) int {
	return int(v.Data[x+v.width*(y+v.height*z)])
}

// Gray16 is a volume of 16-bit unsigned samples.
type Gray16 struct {
	// Data is the voxel data in row-major order, x fastest.
	Data []uint16

	width  int
	height int
	slices int
}

// NewGray16 allocates a zeroed 16-bit volume with the given dimensions.
func NewGray16(width, height, slices int) *Gray16 {
	return &Gray16{
		Data:   make([]uint16, width*height*slices),
		width:  width,
		height: height,
		slices: slices,
	}
}

// WrapGray16 wraps existing voxel data without copying it.
func WrapGray16(data []uint16, width, height, slices int) (*Gray16, error) {
	if len(data) != width*height*slices {
		return nil, fmt.Errorf("volume: data length %d does not match %dx%dx%d",
			len(data), width, height, slices)
	}
	return &Gray16{Data: data, width: width, height: height, slices: slices}, nil
}

func (v *Gray16) Width() int         { return v.width }
func (v *Gray16) Height() int        { return v.height }
func (v *Gray16) Slices() int        { return v.slices }
func (v *Gray16) BitsPerSample() int { return 16 }

// ValueAt returns the intensity at the given voxel coordinate.
func (v *Gray16) ValueAt(x, y, z int) int {
	return int(v.Data[x+v.width*(y+v.height*z)])
}

// MaxValue returns the largest intensity the volume's element type can hold.
func MaxValue(v Volume) int {
	return 1<<v.BitsPerSample() - 1
}
