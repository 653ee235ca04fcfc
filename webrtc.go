package hwenc

import (
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
)

// TrackWriter bridges session output into a pion WebRTC video track.
// Samples carry Annex-B H.264; pion handles packetization.
type TrackWriter struct {
	track    *webrtc.TrackLocalStaticSample
	duration time.Duration
}

// NewTrackWriter creates a local H.264 track sized for the given frame
// rate. Add the returned Track to a PeerConnection, then feed it with
// WritePacket.
func NewTrackWriter(id, streamID string, fpsNum, fpsDen int) (*TrackWriter, error) {
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeH264, ClockRate: 90000},
		id, streamID,
	)
	if err != nil {
		return nil, err
	}

	duration := time.Second / 30
	if fpsNum > 0 && fpsDen > 0 {
		duration = time.Second * time.Duration(fpsDen) / time.Duration(fpsNum)
	}

	return &TrackWriter{track: track, duration: duration}, nil
}

// Track returns the underlying pion track for AddTrack.
func (w *TrackWriter) Track() *webrtc.TrackLocalStaticSample { return w.track }

// WritePacket writes one encoded packet as a media sample. The packet
// data is consumed synchronously; the caller may reuse it afterwards.
func (w *TrackWriter) WritePacket(pkt *Packet) error {
	return w.track.WriteSample(media.Sample{
		Data:     pkt.Data,
		Duration: w.duration,
	})
}
