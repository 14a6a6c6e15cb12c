package gesture

import (
	"fmt"
	"math"
)

// Point is a touch position in screen pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Geometry holds the screen-derived constants used to classify touch points.
// The arc is centered on the bottom-center pixel (HalfWidth, MaxHeight).
type Geometry struct {
	HalfWidth   int `json:"halfWidth"`
	MaxHeight   int `json:"maxHeight"`
	LowerRadius int `json:"lowerRadius"`
	UpperRadius int `json:"upperRadius"`
	YIntercept  int `json:"yIntercept"`
}

// Presets for the resolutions the driver ships tuned values for.
var (
	Geometry1080p = Geometry{HalfWidth: 540, MaxHeight: 1920, LowerRadius: 390, UpperRadius: 630, YIntercept: 1595}
	Geometry720p  = Geometry{HalfWidth: 360, MaxHeight: 1280, LowerRadius: 260, UpperRadius: 420, YIntercept: 1064}
)

// NewGeometry validates the constants and returns the geometry.
func NewGeometry(halfWidth, maxHeight, lowerRadius, upperRadius, yIntercept int) (Geometry, error) {
	g := Geometry{
		HalfWidth:   halfWidth,
		MaxHeight:   maxHeight,
		LowerRadius: lowerRadius,
		UpperRadius: upperRadius,
		YIntercept:  yIntercept,
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// DeriveGeometry computes a geometry for a width x height screen, scaling the
// radii from the 1080p tuning and placing the y-intercept where the outer
// circle meets the screen edges.
func DeriveGeometry(width, height int) (Geometry, error) {
	if width <= 0 || height <= 0 {
		return Geometry{}, fmt.Errorf("invalid resolution %dx%d", width, height)
	}

	halfWidth := width / 2
	lower := halfWidth * 13 / 18
	upper := halfWidth * 7 / 6
	rise := math.Sqrt(float64(upper*upper - halfWidth*halfWidth))
	yIntercept := int(math.Floor(float64(height) - rise))

	return NewGeometry(halfWidth, height, lower, upper, yIntercept)
}

// Validate reports whether the geometry can classify anything at all.
func (g Geometry) Validate() error {
	if g.HalfWidth <= 0 || g.MaxHeight <= 0 || g.LowerRadius <= 0 || g.UpperRadius <= 0 || g.YIntercept <= 0 {
		return fmt.Errorf("geometry values must be positive: %+v", g)
	}
	if g.LowerRadius >= g.UpperRadius {
		return fmt.Errorf("lower radius %d must be less than upper radius %d", g.LowerRadius, g.UpperRadius)
	}
	if g.YIntercept >= g.MaxHeight {
		return fmt.Errorf("y intercept %d must be less than max height %d", g.YIntercept, g.MaxHeight)
	}
	return nil
}

// InAnnulus reports whether p lies strictly between the two radii around the
// bottom-center point.
func (g Geometry) InAnnulus(p Point) bool {
	dx := p.X - g.HalfWidth
	dy := p.Y - g.MaxHeight
	d2 := dx*dx + dy*dy
	return d2 > g.LowerRadius*g.LowerRadius && d2 < g.UpperRadius*g.UpperRadius
}

func (g Geometry) nearLeftEdge(p Point) bool {
	return p.X < g.HalfWidth/3 && p.Y > g.YIntercept
}

func (g Geometry) nearRightEdge(p Point) bool {
	return p.X > 5*g.HalfWidth/3 && p.Y > g.YIntercept
}

// InLeftHotZone reports whether a session starting at p is a left-origin swipe.
func (g Geometry) InLeftHotZone(p Point) bool { return g.nearLeftEdge(p) }

// InRightHotZone reports whether a session starting at p is a right-origin swipe.
func (g Geometry) InRightHotZone(p Point) bool { return g.nearRightEdge(p) }

// PassesLeftThreshold reports whether a left-origin swipe has reached the far
// (right) edge.
func (g Geometry) PassesLeftThreshold(p Point) bool { return g.nearRightEdge(p) }

// PassesRightThreshold reports whether a right-origin swipe has reached the
// far (left) edge.
func (g Geometry) PassesRightThreshold(p Point) bool { return g.nearLeftEdge(p) }

// InCheckpointBand reports whether p is inside the central vertical strip.
func (g Geometry) InCheckpointBand(p Point) bool {
	return p.X > 5*g.HalfWidth/6 && p.X < 7*g.HalfWidth/6
}

// InRange reports whether p.Y is a usable row on the screen.
func (g Geometry) InRange(p Point) bool {
	return p.Y >= 0 && p.Y < g.MaxHeight
}
