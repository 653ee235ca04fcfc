package hwenc

import (
	"bytes"
	"testing"
)

// annexBNAL builds one start-code-delimited NAL unit. The header byte
// carries nal_ref_idc and nal_unit_type (e.g. 0x67 for SPS, 0x65 for IDR).
func annexBNAL(header byte, payload ...byte) []byte {
	unit := []byte{0, 0, 0, 1, header}
	return append(unit, payload...)
}

func concat(units ...[]byte) []byte {
	var out []byte
	for _, u := range units {
		out = append(out, u...)
	}
	return out
}

func TestSplitAnnexB(t *testing.T) {
	sps := annexBNAL(0x67, 0xAA, 0xBB)
	pps := annexBNAL(0x68, 0xCC)
	idr := annexBNAL(0x65, 0x11, 0x22, 0x33)

	units := splitAnnexB(concat(sps, pps, idr))
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}

	wantTypes := []byte{nalTypeSPS, nalTypePPS, nalTypeIDR}
	wantRaw := [][]byte{sps, pps, idr}
	for i, u := range units {
		if u.typ != wantTypes[i] {
			t.Errorf("unit %d type = %d, want %d", i, u.typ, wantTypes[i])
		}
		if !bytes.Equal(u.raw, wantRaw[i]) {
			t.Errorf("unit %d raw = %x, want %x", i, u.raw, wantRaw[i])
		}
	}
}

func TestSplitAnnexBShortStartCode(t *testing.T) {
	// 3-byte start code followed by a 4-byte one.
	data := []byte{0, 0, 1, 0x41, 0x10, 0, 0, 0, 1, 0x65, 0x20}

	units := splitAnnexB(data)
	if len(units) != 2 {
		t.Fatalf("got %d units, want 2", len(units))
	}
	if units[0].typ != nalTypeSlice {
		t.Errorf("unit 0 type = %d, want %d", units[0].typ, nalTypeSlice)
	}
	if units[1].typ != nalTypeIDR {
		t.Errorf("unit 1 type = %d, want %d", units[1].typ, nalTypeIDR)
	}
	if !bytes.Equal(units[0].nalu(), []byte{0x41, 0x10}) {
		t.Errorf("unit 0 nalu = %x", units[0].nalu())
	}
	if !bytes.Equal(units[1].nalu(), []byte{0x65, 0x20}) {
		t.Errorf("unit 1 nalu = %x", units[1].nalu())
	}
}

func TestSplitAnnexBLeadingGarbage(t *testing.T) {
	data := append([]byte{0xDE, 0xAD}, annexBNAL(0x65, 0x01)...)
	units := splitAnnexB(data)
	if len(units) != 1 {
		t.Fatalf("got %d units, want 1", len(units))
	}
	if units[0].typ != nalTypeIDR {
		t.Errorf("type = %d, want %d", units[0].typ, nalTypeIDR)
	}
}

func TestSplitAnnexBEmpty(t *testing.T) {
	if units := splitAnnexB(nil); len(units) != 0 {
		t.Errorf("got %d units from nil data", len(units))
	}
	if units := splitAnnexB([]byte{0, 0}); len(units) != 0 {
		t.Errorf("got %d units from truncated data", len(units))
	}
}

func TestExtractHeaders(t *testing.T) {
	sps := annexBNAL(0x67, 0xAA)
	pps := annexBNAL(0x68, 0xBB)
	sei := annexBNAL(0x06, 0xCC, 0xDD)
	idr := annexBNAL(0x65, 0x11, 0x22)

	data := concat(sps, pps, sei, idr)

	header, seiOut, payload := AnnexBH264{}.ExtractHeaders(data)

	if want := concat(sps, pps); !bytes.Equal(header, want) {
		t.Errorf("header = %x, want %x", header, want)
	}
	if !bytes.Equal(seiOut, sei) {
		t.Errorf("sei = %x, want %x", seiOut, sei)
	}
	if !bytes.Equal(payload, idr) {
		t.Errorf("payload = %x, want %x", payload, idr)
	}

	// Outputs must not alias the input.
	for i := range data {
		data[i] = 0xFF
	}
	if !bytes.Equal(header, concat(annexBNAL(0x67, 0xAA), annexBNAL(0x68, 0xBB))) {
		t.Error("header aliases the input data")
	}
}

func TestExtractHeadersNoParameterSets(t *testing.T) {
	idr := annexBNAL(0x65, 0x11)
	header, sei, payload := AnnexBH264{}.ExtractHeaders(idr)
	if header != nil {
		t.Errorf("header = %x, want nil", header)
	}
	if sei != nil {
		t.Errorf("sei = %x, want nil", sei)
	}
	if !bytes.Equal(payload, idr) {
		t.Errorf("payload = %x, want %x", payload, idr)
	}
}

func TestKeyframe(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"IDR slice", annexBNAL(0x65, 0x01), true},
		{"non-IDR slice", annexBNAL(0x41, 0x01), false},
		{"SEI then IDR", concat(annexBNAL(0x06, 0x01), annexBNAL(0x65, 0x01)), true},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (AnnexBH264{}).Keyframe(tt.data); got != tt.want {
				t.Errorf("Keyframe = %v, want %v", got, tt.want)
			}
		})
	}
}
