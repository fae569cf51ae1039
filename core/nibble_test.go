package core

import (
	"bytes"
	"testing"
)

// TestEncode62Decode62RoundTrip verifies the 6&2 GCR encode/decode pair
// recovers the original 256-byte sector exactly (§8 "nibblize(B) ->
// denibblize ≈ B").
func TestEncode62Decode62RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{"zeros", make([]byte, 256)},
		{"ramp", rampBytes()},
		{"allOnes", bytes.Repeat([]byte{0xFF}, 256)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded := encode62(tc.data)
			if len(encoded) != 343 {
				t.Fatalf("encode62 length: expected 343, got %d", len(encoded))
			}
			decoded := decode62(encoded[:342])
			if !bytes.Equal(decoded, tc.data) {
				t.Errorf("decode62(encode62(data)) mismatch for %s", tc.name)
			}
		})
	}
}

func rampBytes() []byte {
	out := make([]byte, 256)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

// TestSixAndTwoTablesAreInverses verifies every write-table entry maps
// back to its index through the read table.
func TestSixAndTwoTablesAreInverses(t *testing.T) {
	for i, v := range sixAndTwoWrite {
		if got := sixAndTwoRead[v]; int(got) != i {
			t.Errorf("sixAndTwoRead[0x%02X]: expected %d, got %d", v, i, got)
		}
	}
}

// TestNibblizeDenibblizeImageRoundTrip verifies a full 35-track DOS-3.3
// order image survives a nibblize/denibblize round trip.
func TestNibblizeDenibblizeImageRoundTrip(t *testing.T) {
	image := make([]byte, dsk35ImageSize)
	for i := range image {
		image[i] = byte(i * 7)
	}
	tracks := nibblizeImage(image, false)
	if len(tracks) != tracksPerDisk35 {
		t.Fatalf("nibblizeImage track count: expected %d, got %d", tracksPerDisk35, len(tracks))
	}
	for _, trk := range tracks {
		if len(trk) != 6656 {
			t.Errorf("track length: expected 6656, got %d", len(trk))
		}
	}

	out := denibblizeImage(tracks, false)
	if !bytes.Equal(out, image) {
		t.Errorf("denibblizeImage(nibblizeImage(image)) did not round-trip")
	}
}

// TestNibblizeDenibblizeImageRoundTrip_ProDOS verifies the ProDOS
// interleave path round-trips identically to the DOS 3.3 path.
func TestNibblizeDenibblizeImageRoundTrip_ProDOS(t *testing.T) {
	image := make([]byte, dsk35ImageSize)
	for i := range image {
		image[i] = byte(255 - i)
	}
	tracks := nibblizeImage(image, true)
	out := denibblizeImage(tracks, true)
	if !bytes.Equal(out, image) {
		t.Errorf("ProDOS-order denibblizeImage(nibblizeImage(image)) did not round-trip")
	}
}
