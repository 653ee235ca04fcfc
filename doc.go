// Package hwenc wraps hardware H.264 encoders behind a uniform session
// API, backed by native encoder wrappers (libhwenc_*).
//
// Key pieces include:
//   - Settings/VideoInfo resolution into a concrete EncoderConfig
//   - Session: the configure / push frame / pull packet encode loop
//   - Backend: the opaque encoder interface (NVENC implementation included)
//   - Annex-B bitstream helpers for parameter-set extraction
//   - RTP packetizer and WebRTC track writer for session output
//
// # Architecture
//
//   Frame -> Session (PictureBuffer copy) -> Backend -> Packet
//   Packet -> Packetizer -> []rtp.Packet, or Packet -> TrackWriter -> WebRTC
//
// The first packet out of a session is split: parameter sets and SEI are
// cached (see Session.ExtraData and Session.SEIData) and the remainder is
// returned as the packet payload. Every later packet passes through
// verbatim.
//
// # Native Libraries
//
// The NVENC backend loads libhwenc_nvenc via purego (CGO_ENABLED=0).
// Set HWENC_NVENC_LIB_PATH to the library file, or HWENC_SDK_LIB_PATH to
// the directory containing it. Use NVENCAvailable to probe at runtime.
//
// # Build Tags
//
//   - nonvenc: disable the NVENC backend entirely
//
// Any other encoder can be plugged in by implementing Backend.
package hwenc
