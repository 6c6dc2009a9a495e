package placement_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/JaimeStill/courier/internal/placement"
)

func TestPlaceClamps(t *testing.T) {
	tests := []struct {
		name         string
		cw, ch       float64
		x, y, size   float64
		wantX, wantY float64
		wantSize     float64
	}{
		{"inside", 600, 800, 50, 50, 120, 50, 50, 120},
		{"negative origin", 600, 800, -30, -1, 120, 0, 0, 120},
		{"past right and bottom", 600, 800, 590, 790, 120, 480, 680, 120},
		{"exact edge", 600, 800, 480, 680, 120, 480, 680, 120},
		{"oversized box", 300, 200, 10, 10, 500, 10, 0, 200},
		{"zero size", 600, 800, 700, 900, 0, 600, 800, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := placement.Place(tt.cw, tt.ch, tt.x, tt.y, tt.size)
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("origin = (%v, %v), want (%v, %v)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if p.Width != tt.wantSize || p.Height != tt.wantSize {
				t.Errorf("size = %vx%v, want %v", p.Width, p.Height, tt.wantSize)
			}
			if p.ContainerWidth != tt.cw || p.ContainerHeight != tt.ch {
				t.Errorf("container = %vx%v", p.ContainerWidth, p.ContainerHeight)
			}
		})
	}
}

func TestPlaceBoundsProperty(t *testing.T) {
	containers := [][2]float64{{600, 800}, {320, 320}, {1024, 200}, {663.63, 900}, {412.7, 583.33}, {1280.5, 1811.1}}
	coords := []float64{-1000, -1, 0, 37.5, 199, 640, 5000, 10000}
	sizes := []float64{1, 40, 120, 150.7, 200, 99.99}

	for _, c := range containers {
		cw, ch := c[0], c[1]
		for _, size := range sizes {
			if size > math.Min(cw, ch) {
				continue
			}
			check := func(p placement.Placement, desc string) {
				t.Helper()
				if p.X < 0 || p.X > cw-size || p.Y < 0 || p.Y > ch-size {
					t.Fatalf("%s = %+v escapes container", desc, p)
				}
				if err := p.Validate(); err != nil {
					t.Fatalf("%s fails Validate: %v", desc, err)
				}
			}
			check(placement.Center(cw, ch, size), fmt.Sprintf("Center(%v, %v, %v)", cw, ch, size))
			for _, x := range coords {
				for _, y := range coords {
					check(placement.Place(cw, ch, x, y, size), fmt.Sprintf("Place(%v, %v, %v, %v, %v)", cw, ch, x, y, size))
				}
			}
		}
	}
}

func TestPlaceAtFractionalEdgeValidates(t *testing.T) {
	p := placement.Place(663.63, 900, 10000, 10, 150.7)
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v for box dragged to the right edge: %+v", err, p)
	}

	over := p
	over.X += 0.01
	if err := over.Validate(); !errors.Is(err, placement.ErrOutOfBounds) {
		t.Errorf("Validate() = %v for box past the edge, want ErrOutOfBounds", err)
	}
}

func TestCenter(t *testing.T) {
	p := placement.Center(600, 800, 120)
	if p.X != 240 || p.Y != 340 {
		t.Errorf("Center() origin = (%v, %v), want (240, 340)", p.X, p.Y)
	}
}

func TestValidate(t *testing.T) {
	valid := placement.Placement{X: 50, Y: 50, Width: 120, Height: 120, ContainerWidth: 600, ContainerHeight: 800}

	tests := []struct {
		name   string
		mutate func(*placement.Placement)
	}{
		{"negative x", func(p *placement.Placement) { p.X = -1 }},
		{"overflow width", func(p *placement.Placement) { p.X = 500 }},
		{"overflow height", func(p *placement.Placement) { p.Y = 700 }},
		{"zero size", func(p *placement.Placement) { p.Width = 0 }},
		{"missing container", func(p *placement.Placement) { p.ContainerHeight = 0 }},
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid placement rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, placement.ErrOutOfBounds) {
				t.Errorf("Validate() = %v, want ErrOutOfBounds", err)
			}
		})
	}
}

func TestProjectRoundTrip(t *testing.T) {
	p := placement.Placement{X: 50, Y: 100, Width: 120, Height: 120, ContainerWidth: 600, ContainerHeight: 800}

	r := p.Project(595, 842)

	wantX := 50 * 595.0 / 600
	wantY := 842 - 220*842.0/800
	if !near(r.X, wantX) || !near(r.Y, wantY) {
		t.Errorf("Project() origin = (%v, %v), want (%v, %v)", r.X, r.Y, wantX, wantY)
	}
	if !near(r.Width, 120*595.0/600) || !near(r.Height, 120*842.0/800) {
		t.Errorf("Project() size = %vx%v", r.Width, r.Height)
	}

	back := r.Unproject(595, 842, 600, 800)
	if !near(back.X, p.X) || !near(back.Y, p.Y) || !near(back.Width, p.Width) || !near(back.Height, p.Height) {
		t.Errorf("Unproject() = %+v, want %+v", back, p)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
