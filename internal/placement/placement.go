// Package placement models where a signature or stamp image sits on a rendered
// page. Coordinates are captured in the pixel space of the on-screen container
// and re-projected into PDF point space by the compositor.
package placement

import (
	"fmt"
	"math"
)

// Placement is a square signature or stamp box with a top-left origin,
// measured against the container it was placed in. All six numbers travel
// together so the box can be scaled onto any page size.
type Placement struct {
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
}

// Rect is a box in PDF point space with a bottom-left origin.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Place builds a placement of a size×size box at (x, y), clamping the box
// into the container. A size larger than the container is first reduced to
// the smaller container side. Place never fails.
func Place(containerWidth, containerHeight, x, y, size float64) Placement {
	containerWidth = math.Max(containerWidth, 0)
	containerHeight = math.Max(containerHeight, 0)
	size = math.Min(math.Max(size, 0), math.Min(containerWidth, containerHeight))

	return Placement{
		X:               clamp(x, 0, containerWidth-size),
		Y:               clamp(y, 0, containerHeight-size),
		Width:           size,
		Height:          size,
		ContainerWidth:  containerWidth,
		ContainerHeight: containerHeight,
	}
}

// Center places a size×size box in the middle of the container.
func Center(containerWidth, containerHeight, size float64) Placement {
	return Place(
		containerWidth, containerHeight,
		(containerWidth-size)/2, (containerHeight-size)/2,
		size,
	)
}

// edgeTolerance absorbs the rounding left by clamping against fractional
// container sizes, relative to the container side.
const edgeTolerance = 1e-9

// Validate reports whether p lies inside its container with a positive size.
// Boxes flush with the far edge pass even when x+width rounds a few ulps past it.
func (p Placement) Validate() error {
	switch {
	case p.ContainerWidth <= 0 || p.ContainerHeight <= 0:
		return fmt.Errorf("%w: container dimensions must be positive", ErrOutOfBounds)
	case p.Width <= 0 || p.Height <= 0:
		return fmt.Errorf("%w: width and height must be positive", ErrOutOfBounds)
	case p.X < 0 || p.Y < 0:
		return fmt.Errorf("%w: x and y must not be negative", ErrOutOfBounds)
	case p.X+p.Width > p.ContainerWidth*(1+edgeTolerance):
		return fmt.Errorf("%w: x + width exceeds container_width", ErrOutOfBounds)
	case p.Y+p.Height > p.ContainerHeight*(1+edgeTolerance):
		return fmt.Errorf("%w: y + height exceeds container_height", ErrOutOfBounds)
	}
	return nil
}

// Project scales p onto a page of pageWidth×pageHeight points and flips it
// to a bottom-left origin.
func (p Placement) Project(pageWidth, pageHeight float64) Rect {
	sx := pageWidth / p.ContainerWidth
	sy := pageHeight / p.ContainerHeight

	return Rect{
		X:      p.X * sx,
		Y:      pageHeight - (p.Y+p.Height)*sy,
		Width:  p.Width * sx,
		Height: p.Height * sy,
	}
}

// Unproject maps r from a pageWidth×pageHeight page back into a container of
// containerWidth×containerHeight pixels. It inverts Project.
func (r Rect) Unproject(pageWidth, pageHeight, containerWidth, containerHeight float64) Placement {
	sx := containerWidth / pageWidth
	sy := containerHeight / pageHeight

	return Placement{
		X:               r.X * sx,
		Y:               (pageHeight - r.Y - r.Height) * sy,
		Width:           r.Width * sx,
		Height:          r.Height * sy,
		ContainerWidth:  containerWidth,
		ContainerHeight: containerHeight,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
