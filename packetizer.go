package hwenc

import (
	"fmt"

	"github.com/pion/rtp"
)

const (
	nalTypeFUA = 28 // Fragmentation Unit A

	rtpHeaderSize = 12
)

// Packetizer converts session output packets into H.264 RTP packets.
// Because the session strips parameter sets out of the first packet,
// the packetizer re-injects the cached sets ahead of every keyframe so
// receivers can join mid-stream.
type Packetizer struct {
	ssrc        uint32
	payloadType uint8
	mtu         int
	sequencer   rtp.Sequencer
	clockRate   uint32

	paramSets [][]byte // SPS/PPS units, without start codes
}

// NewPacketizer creates an H.264 RTP packetizer.
func NewPacketizer(ssrc uint32, payloadType uint8, mtu int) *Packetizer {
	if mtu <= 0 {
		mtu = 1200
	}
	return &Packetizer{
		ssrc:        ssrc,
		payloadType: payloadType,
		mtu:         mtu,
		sequencer:   rtp.NewRandomSequencer(),
		clockRate:   90000,
	}
}

// SetParameterSets installs the Annex-B header bytes cached by a session
// (see Session.ExtraData). Pass nil to stop injecting parameter sets.
func (p *Packetizer) SetParameterSets(header []byte) {
	p.paramSets = nil
	for _, unit := range splitAnnexB(header) {
		p.paramSets = append(p.paramSets, unit.nalu())
	}
}

// Packetize converts one encoded packet into RTP packets. The timestamp
// is the frame's RTP timestamp on the 90kHz clock.
func (p *Packetizer) Packetize(pkt *Packet, timestamp uint32) ([]*rtp.Packet, error) {
	if len(pkt.Data) == 0 {
		return nil, nil
	}

	units := splitAnnexB(pkt.Data)
	if len(units) == 0 {
		return nil, fmt.Errorf("no NAL units found in packet")
	}

	var nalus [][]byte
	if pkt.Keyframe {
		nalus = append(nalus, p.paramSets...)
	}
	for _, unit := range units {
		nalus = append(nalus, unit.nalu())
	}

	var packets []*rtp.Packet
	for i, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		isLast := i == len(nalus)-1

		if len(nalu) <= p.mtu-rtpHeaderSize {
			packets = append(packets, &rtp.Packet{
				Header: rtp.Header{
					Version:        2,
					Marker:         isLast,
					PayloadType:    p.payloadType,
					SequenceNumber: p.sequencer.NextSequenceNumber(),
					Timestamp:      timestamp,
					SSRC:           p.ssrc,
				},
				Payload: nalu,
			})
		} else {
			packets = append(packets, p.fragment(nalu, timestamp, isLast)...)
		}
	}

	return packets, nil
}

// fragment splits a large NAL unit into FU-A packets.
func (p *Packetizer) fragment(nalu []byte, timestamp uint32, isLastNALU bool) []*rtp.Packet {
	nalHeader := nalu[0]
	nalType := nalHeader & 0x1F
	nri := nalHeader & 0x60

	payload := nalu[1:]
	maxPayload := p.mtu - rtpHeaderSize - 2 // FU indicator + FU header

	var packets []*rtp.Packet
	offset := 0

	for offset < len(payload) {
		end := min(offset+maxPayload, len(payload))
		isStart := offset == 0
		isEnd := end == len(payload)

		fuHeader := nalType
		if isStart {
			fuHeader |= 0x80
		}
		if isEnd {
			fuHeader |= 0x40
		}

		pktPayload := make([]byte, 2+end-offset)
		pktPayload[0] = nri | nalTypeFUA
		pktPayload[1] = fuHeader
		copy(pktPayload[2:], payload[offset:end])

		packets = append(packets, &rtp.Packet{
			Header: rtp.Header{
				Version:        2,
				Marker:         isEnd && isLastNALU,
				PayloadType:    p.payloadType,
				SequenceNumber: p.sequencer.NextSequenceNumber(),
				Timestamp:      timestamp,
				SSRC:           p.ssrc,
			},
			Payload: pktPayload,
		})

		offset = end
	}

	return packets
}

// ClockRate returns the RTP clock rate (90kHz for video).
func (p *Packetizer) ClockRate() uint32 { return p.clockRate }
