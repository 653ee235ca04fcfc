package hwenc

import (
	"fmt"
	"log/slog"
)

// Settings is the user-facing option snapshot consumed by Resolve.
// Field semantics follow the flat string-keyed configuration surface:
// bitrate is in kbps, CQP is only meaningful under constant-QP rate
// control, and a zero keyframe interval selects the automatic GOP size.
type Settings struct {
	RateControl string // "CBR", "VBR", "CQP", "lossless" (case-insensitive)
	Bitrate     int    // target bitrate in kbps
	CQP         int    // constant quantization parameter, 0-50
	KeyintSec   int    // keyframe interval in seconds, 0 = auto
	Preset      string // backend-defined preset name
	Profile     string // backend-defined profile name
	Level       string // backend-defined level name
	TwoPass     bool   // enable two-pass rate control
	GPU         int    // GPU device index
	BFrames     int    // max consecutive B-frames, 0-4
}

// DefaultSettings returns the default option values.
func DefaultSettings() Settings {
	return Settings{
		RateControl: "CBR",
		Bitrate:     850,
		CQP:         23,
		KeyintSec:   0,
		Preset:      "default",
		Profile:     "main",
		Level:       "auto",
		TwoPass:     true,
		GPU:         0,
		BFrames:     2,
	}
}

// VideoInfo describes the environment the encoder runs in: the pipeline's
// native frame layout plus the encoder's preferred pixel format, if any.
type VideoInfo struct {
	Format       PixelFormat // pipeline's native pixel format
	Preferred    PixelFormat // encoder-preferred format; HasPreferred gates it
	HasPreferred bool
	Colorspace   Colorspace
	Range        ColorRange
	Width        int
	Height       int
	FPSNum       int
	FPSDen       int
}

// EncoderConfig is the fully resolved, backend-ready parameter set.
// It is immutable once produced; a settings change produces a new value.
type EncoderConfig struct {
	RateControl RateControl
	Bitrate     int  // bps; 0 when the mode does not use it
	RCMaxRate   int  // bps; CBR only
	RCMinRate   int  // bps; CBR only
	RCBuffer    int  // bps
	CBR         bool // backend constant-bitrate flag
	QP          int  // 0 unless constant-QP

	GOPSize int // frames between keyframes

	Preset  string
	Profile string
	Level   string
	TwoPass bool
	GPU     int
	BFrames int

	Format     PixelFormat
	Colorspace Colorspace
	Range      ColorRange
	Width      int
	Height     int
	FPSNum     int
	FPSDen     int
}

// defaultGOPSize is used when the keyframe interval is zero.
const defaultGOPSize = 250

// supportedFormat reports whether the backend accepts the pixel format.
func supportedFormat(f PixelFormat) bool {
	return f == PixelFormatI420 || f == PixelFormatNV12 || f == PixelFormatI444
}

// resolveFormat picks the picture buffer format: the encoder's preferred
// format when supported, otherwise the pipeline's native format when
// supported, otherwise NV12.
func resolveFormat(info VideoInfo) PixelFormat {
	if info.HasPreferred && supportedFormat(info.Preferred) {
		return info.Preferred
	}
	if supportedFormat(info.Format) {
		return info.Format
	}
	return PixelFormatNV12
}

// Resolve maps a settings snapshot and environment facts onto a backend
// parameter set, enforcing the mode-specific overrides. It either returns
// a fully populated config or fails with ErrInvalidConfig before any
// backend interaction; partial application never occurs.
func Resolve(s Settings, info VideoInfo) (*EncoderConfig, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidConfig, info.Width, info.Height)
	}
	if info.FPSNum <= 0 || info.FPSDen <= 0 {
		return nil, fmt.Errorf("%w: frame rate %d/%d", ErrInvalidConfig, info.FPSNum, info.FPSDen)
	}
	if s.Bitrate < 0 {
		return nil, fmt.Errorf("%w: bitrate %d", ErrInvalidConfig, s.Bitrate)
	}
	if s.CQP < 0 || s.CQP > 50 {
		return nil, fmt.Errorf("%w: cqp %d out of range 0-50", ErrInvalidConfig, s.CQP)
	}
	if s.BFrames < 0 || s.BFrames > 4 {
		return nil, fmt.Errorf("%w: bframes %d out of range 0-4", ErrInvalidConfig, s.BFrames)
	}
	if s.GPU < 0 {
		return nil, fmt.Errorf("%w: gpu index %d", ErrInvalidConfig, s.GPU)
	}

	mode := ParseRateControl(s.RateControl)
	bitrate := s.Bitrate
	qp := s.CQP
	preset := s.Preset

	cfg := &EncoderConfig{
		RateControl: mode,
		Profile:     s.Profile,
		Level:       s.Level,
		TwoPass:     s.TwoPass,
		GPU:         s.GPU,
		BFrames:     s.BFrames,
		Colorspace:  info.Colorspace,
		Range:       info.Range,
		Width:       info.Width,
		Height:      info.Height,
		FPSNum:      info.FPSNum,
		FPSDen:      info.FPSDen,
	}

	switch mode {
	case RateControlCQP:
		bitrate = 0

	case RateControlLossless:
		bitrate = 0
		qp = 0
		// hp-family presets get the high-performance lossless variant
		if losslessHPPreset(preset) {
			preset = "losslesshp"
		} else {
			preset = "lossless"
		}

	case RateControlVBR:
		// bitrate carried through unchanged; QP unused
		qp = 0

	default: // CBR
		cfg.CBR = true
		cfg.RCMaxRate = bitrate * 1000
		cfg.RCMinRate = bitrate * 1000
		qp = 0
	}

	cfg.Preset = preset
	cfg.Bitrate = bitrate * 1000
	cfg.RCBuffer = bitrate * 1000
	cfg.QP = qp

	cfg.Format = resolveFormat(info)

	if s.KeyintSec != 0 {
		cfg.GOPSize = s.KeyintSec * info.FPSNum / info.FPSDen
	} else {
		cfg.GOPSize = defaultGOPSize
	}

	slog.Info("encoder settings",
		"rate_control", mode.String(),
		"bitrate", bitrate,
		"cqp", cfg.QP,
		"keyint", cfg.GOPSize,
		"preset", cfg.Preset,
		"profile", cfg.Profile,
		"level", cfg.Level,
		"width", cfg.Width,
		"height", cfg.Height,
		"2pass", cfg.TwoPass,
		"gpu", cfg.GPU,
	)

	return cfg, nil
}

// losslessHPPreset reports whether a preset name belongs to the
// high-performance family ("hp" or "llhp").
func losslessHPPreset(preset string) bool {
	return containsFold([]string{"hp", "llhp"}, preset)
}
