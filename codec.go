package hwenc

import "strings"

// RateControl identifies the encoder rate control mode.
type RateControl int

const (
	RateControlCBR      RateControl = iota // Constant bitrate
	RateControlVBR                         // Variable bitrate
	RateControlCQP                         // Constant quantization parameter
	RateControlLossless                    // Lossless (bitrate and QP unused)
)

func (r RateControl) String() string {
	switch r {
	case RateControlCBR:
		return "CBR"
	case RateControlVBR:
		return "VBR"
	case RateControlCQP:
		return "CQP"
	case RateControlLossless:
		return "lossless"
	default:
		return "Unknown"
	}
}

// ParseRateControl maps a user-facing rate control string to a mode.
// Matching is case-insensitive; unrecognized values fall back to CBR.
func ParseRateControl(s string) RateControl {
	switch {
	case strings.EqualFold(s, "cqp"):
		return RateControlCQP
	case strings.EqualFold(s, "lossless"):
		return RateControlLossless
	case strings.EqualFold(s, "vbr"):
		return RateControlVBR
	default:
		return RateControlCBR
	}
}

// PixelFormat represents video pixel formats supported by the backend.
type PixelFormat int

const (
	PixelFormatI420 PixelFormat = iota // YUV 4:2:0 planar (Y + U + V)
	PixelFormatNV12                    // YUV 4:2:0 semi-planar (Y + interleaved UV)
	PixelFormatI444                    // YUV 4:4:4 planar
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatI420:
		return "I420"
	case PixelFormatNV12:
		return "NV12"
	case PixelFormatI444:
		return "I444"
	default:
		return "Unknown"
	}
}

// PlaneCount returns the number of planes for this pixel format.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatI420, PixelFormatI444:
		return 3 // Y, U, V
	case PixelFormatNV12:
		return 2 // Y, UV
	default:
		return 0
	}
}

// Colorspace identifies the YUV color matrix bucket used by the backend.
type Colorspace int

const (
	ColorspaceBT470BG Colorspace = iota // SD content (BT.601/BT.470BG)
	ColorspaceBT709                     // HD content
)

func (c Colorspace) String() string {
	switch c {
	case ColorspaceBT470BG:
		return "BT470BG"
	case ColorspaceBT709:
		return "BT709"
	default:
		return "Unknown"
	}
}

// ColorRange identifies the sample value range.
type ColorRange int

const (
	ColorRangePartial ColorRange = iota // 16-235 (MPEG)
	ColorRangeFull                      // 0-255 (JPEG)
)

func (r ColorRange) String() string {
	switch r {
	case ColorRangePartial:
		return "partial"
	case ColorRangeFull:
		return "full"
	default:
		return "Unknown"
	}
}

// Presets returns the backend-recognized preset names.
func Presets() []string {
	return []string{"default", "hq", "hp", "bd", "ll", "llhq", "llhp"}
}

// Profiles returns the backend-recognized H.264 profile names.
func Profiles() []string {
	return []string{"high", "main", "baseline", "high444p"}
}

// Levels returns the backend-recognized H.264 level names.
func Levels() []string {
	return []string{
		"auto",
		"1", "1.0", "1b", "1.0b", "1.1", "1.2", "1.3",
		"2", "2.0", "2.1", "2.2",
		"3", "3.0", "3.1", "3.2",
		"4", "4.0", "4.1", "4.2",
		"5", "5.0", "5.1",
	}
}

// ValidPreset reports whether name is a backend-recognized preset.
// The lossless presets are derived internally and not listed.
func ValidPreset(name string) bool { return containsFold(Presets(), name) }

// ValidProfile reports whether name is a backend-recognized profile.
func ValidProfile(name string) bool { return containsFold(Profiles(), name) }

// ValidLevel reports whether name is a backend-recognized level.
func ValidLevel(name string) bool { return containsFold(Levels(), name) }

func containsFold(list []string, name string) bool {
	for _, s := range list {
		if strings.EqualFold(s, name) {
			return true
		}
	}
	return false
}
