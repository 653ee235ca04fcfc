package hwenc

import (
	"bytes"
	"testing"
)

func TestNewPictureBuffer(t *testing.T) {
	tests := []struct {
		format      PixelFormat
		wantPlanes  int
		wantStrides []int
		wantSizes   []int
	}{
		{PixelFormatI420, 3, []int{64, 32, 32}, []int{64 * 48, 32 * 24, 32 * 24}},
		{PixelFormatNV12, 2, []int{64, 64}, []int{64 * 48, 64 * 24}},
		{PixelFormatI444, 3, []int{64, 64, 64}, []int{64 * 48, 64 * 48, 64 * 48}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			b, err := NewPictureBuffer(64, 48, tt.format)
			if err != nil {
				t.Fatalf("NewPictureBuffer: %v", err)
			}
			if len(b.Data) != tt.wantPlanes {
				t.Fatalf("planes = %d, want %d", len(b.Data), tt.wantPlanes)
			}
			for i := range b.Data {
				if b.Stride[i] != tt.wantStrides[i] {
					t.Errorf("stride[%d] = %d, want %d", i, b.Stride[i], tt.wantStrides[i])
				}
				if len(b.Data[i]) != tt.wantSizes[i] {
					t.Errorf("plane %d size = %d, want %d", i, len(b.Data[i]), tt.wantSizes[i])
				}
			}
		})
	}
}

func TestNewPictureBufferInvalid(t *testing.T) {
	if _, err := NewPictureBuffer(0, 48, PixelFormatI420); err == nil {
		t.Error("expected error for zero width")
	}
	if _, err := NewPictureBuffer(64, -1, PixelFormatI420); err == nil {
		t.Error("expected error for negative height")
	}
	if _, err := NewPictureBuffer(64, 48, PixelFormat(42)); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestCopyFromMatchingStride(t *testing.T) {
	b, _ := NewPictureBuffer(4, 4, PixelFormatI420)

	frame := &Frame{
		Data: [][]byte{
			bytes.Repeat([]byte{0x10}, 16),
			bytes.Repeat([]byte{0x20}, 4),
			bytes.Repeat([]byte{0x30}, 4),
		},
		Stride: []int{4, 2, 2},
	}

	b.CopyFrom(frame)

	if !bytes.Equal(b.Data[0], frame.Data[0]) {
		t.Errorf("luma plane = %x", b.Data[0])
	}
	if !bytes.Equal(b.Data[1], frame.Data[1]) {
		t.Errorf("u plane = %x", b.Data[1])
	}
	if !bytes.Equal(b.Data[2], frame.Data[2]) {
		t.Errorf("v plane = %x", b.Data[2])
	}
}

func TestCopyFromWiderFrameStride(t *testing.T) {
	// Frame rows are padded to 8 bytes; only the first 4 of each row
	// should land in the buffer.
	b, _ := NewPictureBuffer(4, 2, PixelFormatI420)

	luma := make([]byte, 8*2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 8; x++ {
			luma[y*8+x] = byte(y*8 + x)
		}
	}
	frame := &Frame{
		Data:   [][]byte{luma, make([]byte, 4), make([]byte, 4)},
		Stride: []int{8, 4, 4},
	}

	b.CopyFrom(frame)

	want := []byte{0, 1, 2, 3, 8, 9, 10, 11}
	if !bytes.Equal(b.Data[0], want) {
		t.Errorf("luma = %v, want %v", b.Data[0], want)
	}
}

func TestCopyFromNarrowerFrameStride(t *testing.T) {
	// Frame rows are narrower than the buffer; trailing buffer bytes
	// stay untouched.
	b, _ := NewPictureBuffer(4, 2, PixelFormatI420)
	for i := range b.Data[0] {
		b.Data[0][i] = 0xEE
	}

	frame := &Frame{
		Data:   [][]byte{{1, 2, 3, 4}, {5}, {6}},
		Stride: []int{2, 1, 1},
	}

	b.CopyFrom(frame)

	want := []byte{1, 2, 0xEE, 0xEE, 3, 4, 0xEE, 0xEE}
	if !bytes.Equal(b.Data[0], want) {
		t.Errorf("luma = %v, want %v", b.Data[0], want)
	}
}

func TestCopyFromSkipsNilPlanes(t *testing.T) {
	b, _ := NewPictureBuffer(4, 2, PixelFormatI420)
	frame := &Frame{
		Data:   [][]byte{nil, {0x42}, {0x43}},
		Stride: []int{4, 1, 1},
	}
	b.CopyFrom(frame) // must not panic
	if b.Data[1][0] != 0x42 {
		t.Errorf("u plane not copied: %x", b.Data[1][0])
	}
}

func TestCheckCompatible(t *testing.T) {
	b, _ := NewPictureBuffer(4, 4, PixelFormatI420)

	tests := []struct {
		name    string
		frame   *Frame
		wantErr bool
	}{
		{
			"exact fit",
			&Frame{
				Data:   [][]byte{make([]byte, 16), make([]byte, 4), make([]byte, 4)},
				Stride: []int{4, 2, 2},
			},
			false,
		},
		{
			"luma plane too short",
			&Frame{
				Data:   [][]byte{make([]byte, 15), make([]byte, 4), make([]byte, 4)},
				Stride: []int{4, 2, 2},
			},
			true,
		},
		{
			"stride count mismatch",
			&Frame{
				Data:   [][]byte{make([]byte, 16), make([]byte, 4), make([]byte, 4)},
				Stride: []int{4, 2},
			},
			true,
		},
		{
			"padded last row not required",
			&Frame{
				// 2 chroma rows at stride 3: only (2-1)*3+2 = 5 bytes needed.
				Data:   [][]byte{make([]byte, 16), make([]byte, 5), make([]byte, 5)},
				Stride: []int{4, 3, 3},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.checkCompatible(tt.frame)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkCompatible() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPacketClone(t *testing.T) {
	p := &Packet{
		Data:     []byte{1, 2, 3},
		PTS:      10,
		DTS:      9,
		Type:     PacketVideo,
		Keyframe: true,
	}
	c := p.Clone()

	p.Data[0] = 0xFF
	if c.Data[0] != 1 {
		t.Error("clone shares data with original")
	}
	if c.PTS != 10 || c.DTS != 9 || !c.Keyframe || c.Type != PacketVideo {
		t.Errorf("clone fields = %+v", c)
	}
}
