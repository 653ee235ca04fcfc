package hwenc

// BackendPacket is a single encoded packet as produced by a backend.
// Data is owned by the backend and valid until its next Encode or Drain
// call; the session copies it before returning to the caller.
type BackendPacket struct {
	Data []byte
	PTS  int64
	DTS  int64
}

// Backend is the capability surface of the wrapped encoder resource.
// Implementations are not required to be safe for concurrent use; a
// Session serializes all calls.
//
// Encode and Drain block synchronously. The backend may queue frames
// internally (look-ahead, B-frame reordering); a nil packet from Encode
// means the backend is buffering and is not an error. A nil packet from
// Drain means the backend has no more buffered output.
type Backend interface {
	// Open configures and acquires the underlying encoder resource.
	Open(cfg *EncoderConfig) error

	// Encode submits one picture and returns zero or one packets.
	Encode(pic *PictureBuffer, pts int64) (*BackendPacket, error)

	// Drain pulls a buffered packet without submitting new input.
	Drain() (*BackendPacket, error)

	// Close releases the encoder resource.
	Close() error
}
