package ui

import (
	"github.com/NineO1/solo-public-lobby/internal/firewall"
)

// Pre-rendered state icons so tray updates never redraw.
var (
	iconEnabled  = shieldIcon(30, 200, 90)   // green, traffic blocked
	iconDisabled = shieldIcon(240, 190, 30)  // amber, rule present but off
	iconAbsent   = shieldIcon(160, 160, 160) // gray, no rule
	iconUnknown  = shieldIcon(220, 55, 55)   // red, state unknown
)

// StateIcon returns the tray icon for a rule state.
func StateIcon(state firewall.RuleState) []byte {
	switch state {
	case firewall.StateEnabled:
		return iconEnabled
	case firewall.StateDisabled:
		return iconDisabled
	case firewall.StateAbsent:
		return iconAbsent
	default:
		return iconUnknown
	}
}

// shieldIcon renders a 32x32 shield in the given color and wraps it in a
// single-image ICO (32bpp BGRA, bottom-up) so systray accepts it without
// any bundled asset files.
func shieldIcon(cr, cg, cb byte) []byte {
	const size = 32
	pixels := make([]byte, size*size*4)

	setPx := func(x, y int, a byte) {
		if x < 0 || x >= size || y < 0 || y >= size {
			return
		}
		off := ((size-1-y)*size + x) * 4 // bottom-up rows
		pixels[off+0] = cb
		pixels[off+1] = cg
		pixels[off+2] = cr
		pixels[off+3] = a
	}

	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}

	// Shield: flat top, straight sides, tapering to a point at the bottom.
	const cx = 15.5
	for y := 2; y <= 29; y++ {
		fy := float64(y)
		var halfW float64
		switch {
		case fy <= 6:
			halfW = 12.0
		case fy <= 16:
			halfW = 12.0 - (fy-6)*0.2
		default:
			t := (fy - 16) / 13.0
			halfW = 10.0 * (1.0 - t)
		}
		if halfW < 0.5 {
			halfW = 0.5
		}
		for x := 0; x < size; x++ {
			d := abs(float64(x) + 0.5 - cx)
			if d <= halfW {
				a := byte(255)
				if d > halfW-1.0 {
					a = byte((halfW - d) * 255)
				}
				setPx(x, y, a)
			}
		}
	}

	// ICO container
	const (
		dibHeaderSize = 40
		pixelDataSize = size * size * 4
		maskSize      = size * size / 8
		headerSize    = 6 + 16
	)
	imageDataSize := dibHeaderSize + pixelDataSize + maskSize
	buf := make([]byte, 0, headerSize+imageDataSize)

	// ICONDIR
	buf = append(buf, 0, 0, 1, 0, 1, 0)

	// ICONDIRENTRY
	buf = append(buf, byte(size), byte(size), 0, 0, 1, 0, 32, 0)
	imgSize := uint32(imageDataSize)
	buf = append(buf, byte(imgSize), byte(imgSize>>8), byte(imgSize>>16), byte(imgSize>>24))
	buf = append(buf, byte(headerSize), 0, 0, 0)

	// BITMAPINFOHEADER (height doubled for the AND mask)
	buf = append(buf, dibHeaderSize, 0, 0, 0)
	buf = append(buf, byte(size), 0, 0, 0)
	buf = append(buf, byte(size*2), 0, 0, 0)
	buf = append(buf, 1, 0, 32, 0)
	buf = append(buf, 0, 0, 0, 0)
	pxSize := uint32(pixelDataSize)
	buf = append(buf, byte(pxSize), byte(pxSize>>8), byte(pxSize>>16), byte(pxSize>>24))
	buf = append(buf, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	buf = append(buf, pixels...)
	buf = append(buf, make([]byte, maskSize)...)
	return buf
}
