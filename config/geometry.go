package config

import (
	"fmt"

	"github.com/edgewake/trace2wake/gesture"
)

// SurfaceFunc reports the touch surface size, used by the "auto" preset.
type SurfaceFunc func() (width, height int, err error)

// ResolveGeometry builds the arc geometry for the configured preset.
func (g GeometryConfig) ResolveGeometry(surface SurfaceFunc) (gesture.Geometry, error) {
	switch g.Preset {
	case Preset1080p, "":
		return gesture.Geometry1080p, nil

	case Preset720p:
		return gesture.Geometry720p, nil

	case PresetAuto:
		if surface == nil {
			return gesture.Geometry{}, fmt.Errorf("preset %q needs a touch device", PresetAuto)
		}
		width, height, err := surface()
		if err != nil {
			return gesture.Geometry{}, fmt.Errorf("failed to detect surface size: %w", err)
		}
		return deriveKnown(width, height)

	case PresetCustom:
		if g.HalfWidth != 0 || g.MaxHeight != 0 || g.LowerRadius != 0 || g.UpperRadius != 0 || g.YIntercept != 0 {
			return gesture.NewGeometry(g.HalfWidth, g.MaxHeight, g.LowerRadius, g.UpperRadius, g.YIntercept)
		}
		return gesture.DeriveGeometry(g.Width, g.Height)
	}

	return gesture.Geometry{}, fmt.Errorf("unknown geometry preset %q", g.Preset)
}

// deriveKnown prefers the hand-tuned presets when the surface matches one.
func deriveKnown(width, height int) (gesture.Geometry, error) {
	switch {
	case width == 2*gesture.Geometry1080p.HalfWidth && height == gesture.Geometry1080p.MaxHeight:
		return gesture.Geometry1080p, nil
	case width == 2*gesture.Geometry720p.HalfWidth && height == gesture.Geometry720p.MaxHeight:
		return gesture.Geometry720p, nil
	}
	return gesture.DeriveGeometry(width, height)
}
