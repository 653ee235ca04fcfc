// Core frame, packet, and picture buffer types used across the hwenc package.
package hwenc

import "fmt"

// Frame represents a raw video frame supplied by the pipeline.
// The Data slices may point to external memory; callers must ensure the
// data remains valid for the duration of the Encode call.
type Frame struct {
	Data   [][]byte // Plane data (2-3 planes depending on format)
	Stride []int    // Row stride for each plane in bytes
	PTS    int64    // Presentation timestamp in pipeline time base ticks
}

// PacketType tags the logical content of an encoded packet.
type PacketType int

const (
	PacketVideo PacketType = iota
)

func (t PacketType) String() string {
	switch t {
	case PacketVideo:
		return "video"
	default:
		return "Unknown"
	}
}

// Packet holds one encoded packet produced by a Session.
// Data is a view into the session's packet buffer and is valid only until
// the next Encode call on the same session; clone it if retention is needed.
type Packet struct {
	Data     []byte
	PTS      int64
	DTS      int64
	Type     PacketType
	Keyframe bool
}

// Clone creates a deep copy of the packet.
func (p *Packet) Clone() *Packet {
	clone := &Packet{
		PTS:      p.PTS,
		DTS:      p.DTS,
		Type:     p.Type,
		Keyframe: p.Keyframe,
	}
	if p.Data != nil {
		clone.Data = make([]byte, len(p.Data))
		copy(clone.Data, p.Data)
	}
	return clone
}

// PictureBuffer is the pre-allocated frame storage handed to the backend.
// Its memory layout matches the backend's expectations and may differ from
// the stride layout of incoming frames.
type PictureBuffer struct {
	Data   [][]byte
	Stride []int
	Width  int
	Height int
	Format PixelFormat
}

// NewPictureBuffer allocates a picture buffer for the given geometry.
func NewPictureBuffer(width, height int, format PixelFormat) (*PictureBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid picture size %dx%d", width, height)
	}

	b := &PictureBuffer{
		Width:  width,
		Height: height,
		Format: format,
	}

	switch format {
	case PixelFormatI420:
		b.Data = [][]byte{
			make([]byte, width*height),
			make([]byte, (width/2)*(height/2)),
			make([]byte, (width/2)*(height/2)),
		}
		b.Stride = []int{width, width / 2, width / 2}
	case PixelFormatNV12:
		b.Data = [][]byte{
			make([]byte, width*height),
			make([]byte, width*(height/2)), // interleaved UV
		}
		b.Stride = []int{width, width}
	case PixelFormatI444:
		b.Data = [][]byte{
			make([]byte, width*height),
			make([]byte, width*height),
			make([]byte, width*height),
		}
		b.Stride = []int{width, width, width}
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", format)
	}

	return b, nil
}

// CopyFrom copies frame planes into the picture buffer.
// Each row copies min(frame stride, picture stride) bytes; rows beyond the
// shorter stride are truncated, not padded. Plane 0 is copied at full
// height, every other plane at half height (4:2:0 layout).
func (b *PictureBuffer) CopyFrom(frame *Frame) {
	for plane := 0; plane < len(b.Data) && plane < len(frame.Data); plane++ {
		if frame.Data[plane] == nil {
			continue
		}

		frameStride := frame.Stride[plane]
		picStride := b.Stride[plane]
		bytes := min(frameStride, picStride)

		rows := b.Height
		if plane != 0 {
			rows = b.Height / 2
		}

		for y := 0; y < rows; y++ {
			posFrame := y * frameStride
			posPic := y * picStride
			copy(b.Data[plane][posPic:posPic+bytes], frame.Data[plane][posFrame:posFrame+bytes])
		}
	}
}

// checkCompatible verifies that a frame can be copied into this buffer
// without reading past its plane slices.
func (b *PictureBuffer) checkCompatible(frame *Frame) error {
	if len(frame.Data) != len(frame.Stride) {
		return fmt.Errorf("frame has %d planes but %d strides", len(frame.Data), len(frame.Stride))
	}
	for plane := 0; plane < len(b.Data) && plane < len(frame.Data); plane++ {
		if frame.Data[plane] == nil {
			continue
		}
		rows := b.Height
		if plane != 0 {
			rows = b.Height / 2
		}
		need := rows * min(frame.Stride[plane], b.Stride[plane])
		if rows > 0 {
			// last row only needs the copied byte count, not the full stride
			need = (rows-1)*frame.Stride[plane] + min(frame.Stride[plane], b.Stride[plane])
		}
		if len(frame.Data[plane]) < need {
			return fmt.Errorf("frame plane %d too short: have %d bytes, need %d",
				plane, len(frame.Data[plane]), need)
		}
	}
	return nil
}
