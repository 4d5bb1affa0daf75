package warnings

// RGB packs the three channels into a single 24-bit color value
func RGB(r, g, b int) int {
	return r<<16 | g<<8 | b
}

// splitRGB unpacks a 24-bit color into its channels
func splitRGB(color int) (r, g, b int) {
	return (color >> 16) & 0xFF, (color >> 8) & 0xFF, color & 0xFF
}

// WarnedColor derives the marker role color from a member's display color by
// halving each channel. When the halved color would be indistinguishable from
// grey on a dark theme (max channel delta below 25 and average brightness
// below 100) it falls back to the configured default warned color.
func WarnedColor(memberColor, fallbackColor int) int {
	r, g, b := splitRGB(memberColor)
	r, g, b = r/2, g/2, b/2

	if (r+g+b)/3 < 100 && isGreyish(r, g, b) {
		return fallbackColor
	}
	return RGB(r, g, b)
}

// isGreyish reports whether all channels are within 25 of each other
func isGreyish(r, g, b int) bool {
	return maxDelta(r, g, b) < 25
}

func maxDelta(r, g, b int) int {
	d := abs(r - g)
	if v := abs(g - b); v > d {
		d = v
	}
	if v := abs(r - b); v > d {
		d = v
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
