package hwenc

import (
	"fmt"
	"log/slog"
)

// sessionState tracks the Session lifecycle.
type sessionState int

const (
	stateUnopened sessionState = iota
	stateInitialized
	stateDraining
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateInitialized:
		return "initialized"
	case stateDraining:
		return "draining"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session drives one encoder backend through the configure / push frame /
// pull packet protocol. It owns the backend handle, the picture buffer,
// the reusable packet buffer, and the cached header and SEI bytes.
//
// A Session is not safe for concurrent use; the pipeline thread driving
// it must serialize Encode, Reconfigure, and Close.
type Session struct {
	backend   Backend
	bitstream Bitstream
	log       *slog.Logger

	cfg *EncoderConfig
	pic *PictureBuffer
	buf []byte // most recent packet payload, overwritten per Encode

	header []byte // parameter sets cached from the first packet
	sei    []byte // supplemental data cached from the first packet

	firstPacket bool
	state       sessionState
}

// Option configures a Session at construction.
type Option func(*Session)

// WithBitstream overrides the bitstream strategy used for header
// extraction and keyframe detection. The default is AnnexBH264.
func WithBitstream(bs Bitstream) Option {
	return func(s *Session) { s.bitstream = bs }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession resolves the settings, opens the backend, and allocates the
// picture buffer. On any failure all partial allocations are released and
// the error wraps ErrInvalidConfig or ErrOpenFailed.
func NewSession(backend Backend, s Settings, info VideoInfo, opts ...Option) (*Session, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}

	sess := &Session{
		backend:     backend,
		bitstream:   AnnexBH264{},
		log:         slog.Default(),
		firstPacket: true,
	}
	for _, opt := range opts {
		opt(sess)
	}

	if err := sess.open(s, info); err != nil {
		return nil, err
	}
	return sess, nil
}

// open resolves configuration and transitions Unopened -> Initialized.
func (s *Session) open(set Settings, info VideoInfo) error {
	cfg, err := Resolve(set, info)
	if err != nil {
		return err
	}

	if err := s.backend.Open(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	pic, err := NewPictureBuffer(cfg.Width, cfg.Height, cfg.Format)
	if err != nil {
		s.backend.Close()
		return fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	s.cfg = cfg
	s.pic = pic
	s.state = stateInitialized
	return nil
}

// Reconfigure re-resolves settings onto the session. The open backend
// handle is drained and closed before reopening; reconfiguring never
// opens over a live handle. Width and height changes are permitted since
// the picture buffer is reallocated from the new configuration.
//
// On failure the session is left unopened: only Close is valid until a
// subsequent Reconfigure succeeds.
func (s *Session) Reconfigure(set Settings, info VideoInfo) error {
	switch s.state {
	case stateClosed, stateDraining:
		return ErrClosed
	case stateInitialized:
		s.drain()
		if err := s.backend.Close(); err != nil {
			s.log.Warn("backend close during reconfigure", "err", err)
		}
		s.state = stateUnopened
		s.pic = nil
	}
	return s.open(set, info)
}

// Encode copies the frame into the picture buffer, submits it to the
// backend, and returns zero or one packets. A (nil, nil) return means
// the backend is buffering; it is not an error.
//
// The returned packet's Data is a view into the session's buffer and is
// overwritten by the next Encode call.
func (s *Session) Encode(frame *Frame) (*Packet, error) {
	if s.state != stateInitialized {
		return nil, fmt.Errorf("%w: state %s", ErrClosed, s.state)
	}
	if err := s.pic.checkCompatible(frame); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	s.pic.CopyFrom(frame)

	bp, err := s.backend.Encode(s.pic, frame.PTS)
	if err != nil {
		// session stays Initialized; buffers are untouched
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	if bp == nil || len(bp.Data) == 0 {
		return nil, nil
	}

	if s.firstPacket {
		s.firstPacket = false
		header, sei, payload := s.bitstream.ExtractHeaders(bp.Data)
		s.header = header
		s.sei = sei
		s.buf = append(s.buf[:0], payload...)
	} else {
		s.buf = append(s.buf[:0], bp.Data...)
	}

	return &Packet{
		Data:     s.buf,
		PTS:      bp.PTS,
		DTS:      bp.DTS,
		Type:     PacketVideo,
		Keyframe: s.bitstream.Keyframe(s.buf),
	}, nil
}

// ExtraData returns the parameter-set bytes extracted from the first
// packet, or nil if no packet has been produced yet. The slice remains
// valid for the lifetime of the session.
func (s *Session) ExtraData() []byte { return s.header }

// SEIData returns the supplemental enhancement bytes extracted from the
// first packet, or nil if no packet has been produced yet.
func (s *Session) SEIData() []byte { return s.sei }

// Config returns the currently applied configuration, or nil before the
// first successful open.
func (s *Session) Config() *EncoderConfig { return s.cfg }

// Initialized reports whether frames may currently be submitted.
func (s *Session) Initialized() bool { return s.state == stateInitialized }

// Close drains the backend's buffered packets, then releases the backend
// handle, the picture buffer, and all byte buffers. A drain failure is
// logged and never blocks release. Close is idempotent; Encode after
// Close fails with ErrClosed.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	if s.state == stateInitialized {
		s.state = stateDraining
		s.drain()
	}

	err := s.backend.Close()

	s.cfg = nil
	s.pic = nil
	s.buf = nil
	s.header = nil
	s.sei = nil
	s.state = stateClosed
	return err
}

// drain repeatedly pulls packets with no new input until the backend
// reports exhaustion or fails. Drained packets are discarded; they only
// exist to flush the backend's internal look-ahead.
func (s *Session) drain() {
	for {
		bp, err := s.backend.Drain()
		if err != nil {
			s.log.Warn("encoder drain", "err", fmt.Errorf("%w: %v", ErrDrainFailed, err))
			return
		}
		if bp == nil {
			return
		}
	}
}
