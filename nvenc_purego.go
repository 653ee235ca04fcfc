//go:build (darwin || linux) && !nonvenc

// NVENC backend support via libhwenc_nvenc using purego.

package hwenc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

var (
	nvencOnce    sync.Once
	nvencHandle  uintptr
	nvencInitErr error
	nvencLoaded  bool
)

// libhwenc_nvenc function pointers
var (
	nvencCreate func(cfg uintptr, preset, profile, level string) uint64
	nvencEncode func(enc uint64, yPlane, uPlane, vPlane uintptr,
		yStride, uStride, vStride int32, pts int64,
		outData uintptr, outCapacity int32, outPTS, outDTS uintptr) int32
	nvencDrain         func(enc uint64, outData uintptr, outCapacity int32, outPTS, outDTS uintptr) int32
	nvencMaxOutputSize func(enc uint64) int32
	nvencDestroy       func(enc uint64)

	nvencGetError  func() uintptr
	nvencAvailable func() int32
)

// Constants from hwenc_nvenc.h
const (
	nvencRCModeCBR      = 0
	nvencRCModeVBR      = 1
	nvencRCModeCQP      = 2
	nvencRCModeLossless = 3

	nvencFormatI420 = 0
	nvencFormatNV12 = 1
	nvencFormatI444 = 2

	nvencColorspaceBT470BG = 0
	nvencColorspaceBT709   = 1
)

// nvencPacketInfo is a heap-allocated struct for encoder output
// parameters. Stack variables can move during the C call on arm64, so
// output pointers must target heap memory.
type nvencPacketInfo struct {
	PTS int64
	DTS int64
}

// nvencConfig mirrors struct hwenc_nvenc_config in hwenc_nvenc.h.
// Passed by pointer; the create call reads it synchronously.
type nvencConfig struct {
	Width      int32
	Height     int32
	FPSNum     int32
	FPSDen     int32
	Bitrate    int32
	RCMode     int32
	QP         int32
	GOPSize    int32
	GPU        int32
	BFrames    int32
	Format     int32
	Colorspace int32
	FullRange  int32
	CBR        int32
	TwoPass    int32
}

func loadNVENC() error {
	nvencOnce.Do(func() {
		nvencInitErr = loadNVENCLib()
		if nvencInitErr == nil {
			nvencLoaded = true
		}
	})
	return nvencInitErr
}

func loadNVENCLib() error {
	paths := nvencLibPaths()

	var lastErr error
	for _, path := range paths {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			nvencHandle = handle
			loadNVENCSymbols()
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to load libhwenc_nvenc: %w", lastErr)
	}
	return errors.New("libhwenc_nvenc not found in any standard location")
}

func nvencLibPaths() []string {
	var paths []string

	libName := "libhwenc_nvenc.so"
	if runtime.GOOS == "darwin" {
		libName = "libhwenc_nvenc.dylib"
	}

	// Environment variable overrides (highest priority)
	if envPath := os.Getenv("HWENC_NVENC_LIB_PATH"); envPath != "" {
		paths = append(paths, envPath)
	}
	if envPath := os.Getenv("HWENC_SDK_LIB_PATH"); envPath != "" {
		paths = append(paths, filepath.Join(envPath, libName))
	}

	// Search relative to executable location
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, libName),
			filepath.Join(exeDir, "..", "lib", libName),
		)
	}

	// Search relative to working directory
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths,
			filepath.Join(wd, "build", libName),
			filepath.Join(wd, "build", "ffi", libName),
		)
	}

	// System paths (lowest priority)
	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			libName,
			"/usr/local/lib/"+libName,
			"/opt/homebrew/lib/"+libName,
		)
	case "linux":
		paths = append(paths,
			libName,
			"/usr/local/lib/"+libName,
			"/usr/lib/"+libName,
		)
	}

	return paths
}

func loadNVENCSymbols() {
	purego.RegisterLibFunc(&nvencCreate, nvencHandle, "hwenc_nvenc_create")
	purego.RegisterLibFunc(&nvencEncode, nvencHandle, "hwenc_nvenc_encode")
	purego.RegisterLibFunc(&nvencDrain, nvencHandle, "hwenc_nvenc_drain")
	purego.RegisterLibFunc(&nvencMaxOutputSize, nvencHandle, "hwenc_nvenc_max_output_size")
	purego.RegisterLibFunc(&nvencDestroy, nvencHandle, "hwenc_nvenc_destroy")

	purego.RegisterLibFunc(&nvencGetError, nvencHandle, "hwenc_nvenc_get_error")
	purego.RegisterLibFunc(&nvencAvailable, nvencHandle, "hwenc_nvenc_available")
}

// NVENCAvailable checks whether the NVENC backend library is loadable
// and a capable GPU is present.
func NVENCAvailable() bool {
	if err := loadNVENC(); err != nil {
		return false
	}
	return nvencLoaded && nvencAvailable() != 0
}

func getNVENCError() string {
	ptr := nvencGetError()
	if ptr == 0 {
		return "unknown error"
	}
	return goStringFromPtr(ptr)
}

func nvencRCMode(rc RateControl) int32 {
	switch rc {
	case RateControlVBR:
		return nvencRCModeVBR
	case RateControlCQP:
		return nvencRCModeCQP
	case RateControlLossless:
		return nvencRCModeLossless
	default:
		return nvencRCModeCBR
	}
}

func nvencFormat(f PixelFormat) int32 {
	switch f {
	case PixelFormatNV12:
		return nvencFormatNV12
	case PixelFormatI444:
		return nvencFormatI444
	default:
		return nvencFormatI420
	}
}

func nvencColorspace(c Colorspace) int32 {
	if c == ColorspaceBT709 {
		return nvencColorspaceBT709
	}
	return nvencColorspaceBT470BG
}

// NVENCBackend implements Backend on top of the NVENC hardware encoder.
type NVENCBackend struct {
	handle uint64
	out    []byte

	// Heap-allocated output struct for purego on arm64.
	info *nvencPacketInfo
}

// NewNVENCBackend returns an unopened NVENC backend.
func NewNVENCBackend() *NVENCBackend {
	return &NVENCBackend{info: &nvencPacketInfo{}}
}

// Open implements Backend.
func (b *NVENCBackend) Open(cfg *EncoderConfig) error {
	if err := loadNVENC(); err != nil {
		return fmt.Errorf("NVENC not available: %w", err)
	}
	if nvencAvailable() == 0 {
		return errors.New("NVENC not available on this system")
	}
	if b.handle != 0 {
		return errors.New("backend already open")
	}

	nc := &nvencConfig{
		Width:      int32(cfg.Width),
		Height:     int32(cfg.Height),
		FPSNum:     int32(cfg.FPSNum),
		FPSDen:     int32(cfg.FPSDen),
		Bitrate:    int32(cfg.Bitrate),
		RCMode:     nvencRCMode(cfg.RateControl),
		QP:         int32(cfg.QP),
		GOPSize:    int32(cfg.GOPSize),
		GPU:        int32(cfg.GPU),
		BFrames:    int32(cfg.BFrames),
		Format:     nvencFormat(cfg.Format),
		Colorspace: nvencColorspace(cfg.Colorspace),
	}
	if cfg.Range == ColorRangeFull {
		nc.FullRange = 1
	}
	if cfg.CBR {
		nc.CBR = 1
	}
	if cfg.TwoPass {
		nc.TwoPass = 1
	}

	handle := nvencCreate(uintptr(unsafe.Pointer(nc)), cfg.Preset, cfg.Profile, cfg.Level)
	runtime.KeepAlive(nc)
	if handle == 0 {
		return fmt.Errorf("failed to create NVENC encoder: %s", getNVENCError())
	}

	maxOutput := nvencMaxOutputSize(handle)
	if maxOutput <= 0 {
		maxOutput = int32(cfg.Width * cfg.Height * 3 / 2)
	}

	b.handle = handle
	b.out = make([]byte, maxOutput)
	return nil
}

// Encode implements Backend. A zero-length result from the encoder means
// it is buffering; that is reported as a nil packet, not an error.
func (b *NVENCBackend) Encode(pic *PictureBuffer, pts int64) (*BackendPacket, error) {
	if b.handle == 0 {
		return nil, errors.New("backend not open")
	}

	planes := [3]uintptr{}
	strides := [3]int32{}
	for i := 0; i < len(pic.Data) && i < 3; i++ {
		if len(pic.Data[i]) > 0 {
			planes[i] = uintptr(unsafe.Pointer(&pic.Data[i][0]))
			strides[i] = int32(pic.Stride[i])
		}
	}

	n := nvencEncode(
		b.handle,
		planes[0], planes[1], planes[2],
		strides[0], strides[1], strides[2],
		pts,
		uintptr(unsafe.Pointer(&b.out[0])), int32(len(b.out)),
		uintptr(unsafe.Pointer(&b.info.PTS)),
		uintptr(unsafe.Pointer(&b.info.DTS)),
	)
	runtime.KeepAlive(pic)
	runtime.KeepAlive(b.info)

	if n < 0 {
		return nil, fmt.Errorf("NVENC encode: %s", getNVENCError())
	}
	if n == 0 {
		return nil, nil
	}

	return &BackendPacket{
		Data: b.out[:n],
		PTS:  b.info.PTS,
		DTS:  b.info.DTS,
	}, nil
}

// Drain implements Backend.
func (b *NVENCBackend) Drain() (*BackendPacket, error) {
	if b.handle == 0 {
		return nil, nil
	}

	n := nvencDrain(
		b.handle,
		uintptr(unsafe.Pointer(&b.out[0])), int32(len(b.out)),
		uintptr(unsafe.Pointer(&b.info.PTS)),
		uintptr(unsafe.Pointer(&b.info.DTS)),
	)
	runtime.KeepAlive(b.info)

	if n < 0 {
		return nil, fmt.Errorf("NVENC drain: %s", getNVENCError())
	}
	if n == 0 {
		return nil, nil
	}

	return &BackendPacket{
		Data: b.out[:n],
		PTS:  b.info.PTS,
		DTS:  b.info.DTS,
	}, nil
}

// Close implements Backend.
func (b *NVENCBackend) Close() error {
	if b.handle != 0 {
		nvencDestroy(b.handle)
		b.handle = 0
	}
	b.out = nil
	return nil
}
