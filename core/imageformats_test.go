package core

import (
	"encoding/binary"
	"testing"
)

// build2MG assembles a minimal valid 2IMG container wrapping image with
// the given format (0=DOS, 1=ProDOS).
func build2MG(image []byte, format uint32) []byte {
	header := make([]byte, 64)
	copy(header[0:4], "2IMG")
	binary.LittleEndian.PutUint32(header[12:16], format)
	binary.LittleEndian.PutUint32(header[24:28], 64)
	binary.LittleEndian.PutUint32(header[28:32], uint32(len(image)))
	return append(header, image...)
}

// TestParse2MG_ExtractsImageAndOrder verifies the 64-byte header is
// stripped and the ProDOS-order flag reported correctly (§4.7 "2IMG").
func TestParse2MG_ExtractsImageAndOrder(t *testing.T) {
	image := []byte{1, 2, 3, 4}
	data := build2MG(image, 1)

	got, prodos, ok := parse2MG(data)
	if !ok {
		t.Fatal("parse2MG: expected ok=true")
	}
	if !prodos {
		t.Error("parse2MG: expected prodosOrder=true for format 1")
	}
	if string(got) != string(image) {
		t.Errorf("parse2MG: expected %v, got %v", image, got)
	}
}

// TestParse2MG_RejectsBadMagic verifies a non-2IMG header is rejected.
func TestParse2MG_RejectsBadMagic(t *testing.T) {
	data := make([]byte, 64)
	copy(data[0:4], "NOPE")
	if _, _, ok := parse2MG(data); ok {
		t.Error("parse2MG: expected ok=false for bad magic")
	}
}

// TestParse2MG_RejectsTruncatedPayload verifies a dataLength that runs
// past the buffer is rejected rather than slicing out of range.
func TestParse2MG_RejectsTruncatedPayload(t *testing.T) {
	data := build2MG([]byte{1, 2, 3, 4}, 0)
	data = data[:len(data)-2] // truncate the declared payload
	if _, _, ok := parse2MG(data); ok {
		t.Error("parse2MG: expected ok=false for truncated payload")
	}
}

// TestParseWOZ_RejectsBadMagic verifies non-WOZ1/WOZ2 data is rejected.
func TestParseWOZ_RejectsBadMagic(t *testing.T) {
	data := make([]byte, 16)
	copy(data[0:4], "NOPE")
	if _, ok := parseWOZ(data); ok {
		t.Error("parseWOZ: expected ok=false for bad magic")
	}
}

// TestParseWOZ_MissingChunksRejected verifies a well-formed magic but
// absent TMAP/TRKS chunks is rejected instead of returning a zero-value
// track set.
func TestParseWOZ_MissingChunksRejected(t *testing.T) {
	data := make([]byte, 12)
	copy(data[0:4], "WOZ2")
	if _, ok := parseWOZ(data); ok {
		t.Error("parseWOZ: expected ok=false when TMAP/TRKS are absent")
	}
}
