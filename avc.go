package hwenc

// H.264 NAL unit types.
const (
	nalTypeSlice = 1
	nalTypeIDR   = 5
	nalTypeSEI   = 6
	nalTypeSPS   = 7
	nalTypePPS   = 8
)

// Bitstream is the format-specific strategy a Session uses to split the
// first packet into parameter sets, supplemental data, and payload, and
// to classify packets as keyframes. Keyframe detection by payload
// scanning is bitstream-specific, so it lives behind this interface
// rather than in the session.
type Bitstream interface {
	// ExtractHeaders splits raw packet data into parameter-set units
	// (header), supplemental enhancement units (sei), and everything
	// else (payload), preserving unit order within each group. The
	// returned slices are freshly allocated and do not alias data.
	ExtractHeaders(data []byte) (header, sei, payload []byte)

	// Keyframe reports whether the packet contains a keyframe.
	Keyframe(data []byte) bool
}

// AnnexBH264 implements Bitstream for H.264 Annex-B payloads
// (start-code delimited NAL units per ITU-T H.264 Annex B).
type AnnexBH264 struct{}

// ExtractHeaders implements Bitstream. SPS and PPS units go to header,
// SEI units to sei, and all remaining units (including the first coded
// slice) to payload. Start codes stay attached to their units.
func (AnnexBH264) ExtractHeaders(data []byte) (header, sei, payload []byte) {
	for _, unit := range splitAnnexB(data) {
		switch unit.typ {
		case nalTypeSPS, nalTypePPS:
			header = append(header, unit.raw...)
		case nalTypeSEI:
			sei = append(sei, unit.raw...)
		default:
			payload = append(payload, unit.raw...)
		}
	}
	return header, sei, payload
}

// Keyframe implements Bitstream: true when the payload contains an IDR
// slice (NAL type 5).
func (AnnexBH264) Keyframe(data []byte) bool {
	for _, unit := range splitAnnexB(data) {
		if unit.typ == nalTypeIDR {
			return true
		}
	}
	return false
}

// annexBUnit is one NAL unit with its preceding start code.
type annexBUnit struct {
	raw []byte // start code + NAL unit
	typ byte   // nal_unit_type (lower 5 bits of the NAL header)
}

// nalu returns the unit without its start code.
func (u annexBUnit) nalu() []byte {
	if len(u.raw) >= 4 && u.raw[2] == 0 {
		return u.raw[4:]
	}
	return u.raw[3:]
}

// splitAnnexB splits Annex-B data into NAL units, keeping start codes.
// Both 4-byte (0x00000001) and 3-byte (0x000001) start codes are
// recognized; data before the first start code is ignored.
func splitAnnexB(data []byte) []annexBUnit {
	var units []annexBUnit
	start := -1

	flush := func(end int) {
		if start < 0 || end <= start {
			return
		}
		raw := data[start:end]
		units = append(units, annexBUnit{raw: raw, typ: annexBUnitType(raw)})
	}

	for i := 0; i < len(data); i++ {
		if i+3 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 0 && data[i+3] == 1 {
			flush(i)
			start = i
			i += 3
		} else if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			flush(i)
			start = i
			i += 2
		}
	}
	flush(len(data))

	return units
}

// annexBUnitType extracts nal_unit_type from a unit that still carries
// its start code.
func annexBUnitType(raw []byte) byte {
	offset := 3
	if len(raw) >= 4 && raw[2] == 0 {
		offset = 4
	}
	if len(raw) <= offset {
		return 0
	}
	return raw[offset] & 0x1F
}
