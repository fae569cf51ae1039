package core

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// diskDescriptor is the JSON disk wrapper format (§6 "JSON disk
// descriptor"). Encoding "base64" carries Data as a base64 string of
// the raw image bytes; encoding "json" carries the nested
// tracks[track][sector][256]byte form directly as JSON numbers.
type diskDescriptor struct {
	Type     string          `json:"type"`
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Disk     int             `json:"disk,omitempty"`
	Gamepad  json.RawMessage `json:"gamepad,omitempty"`
	Encoding string          `json:"encoding"`
	Data     json.RawMessage `json:"data"`
}

// SetJSON decodes a JSON disk descriptor and mounts it on drive via
// SetBinary (§6 "setJSON(drive, jsonString) -> bool").
func (d *Disk2) SetJSON(drive int, jsonStr string) bool {
	var desc diskDescriptor
	if err := json.Unmarshal([]byte(jsonStr), &desc); err != nil {
		return false
	}
	image, ok := decodeDiskData(desc.Encoding, desc.Data)
	if !ok {
		return false
	}
	return d.SetBinary(drive, desc.Name, desc.Type, image)
}

func decodeDiskData(encoding string, raw json.RawMessage) ([]byte, bool) {
	switch encoding {
	case "base64":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		image, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, false
		}
		return image, true
	case "json":
		var tracks [][][]byte
		if err := json.Unmarshal(raw, &tracks); err != nil {
			return nil, false
		}
		var out []byte
		for _, track := range tracks {
			for _, sector := range track {
				out = append(out, sector...)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// GetJSON encodes the mounted image on drive as a base64-wrapped JSON
// disk descriptor, or "" if the drive is empty (§6 "getJSON(drive,
// pretty?) -> string").
func (d *Disk2) GetJSON(drive int, pretty bool) string {
	meta := d.Metadata(drive)
	if meta == nil {
		return ""
	}
	image := d.GetBinary(drive)
	desc := diskDescriptor{
		Type:     fmt.Sprint(meta["ext"]),
		Name:     fmt.Sprint(meta["name"]),
		Encoding: "base64",
	}
	encoded, _ := json.Marshal(base64.StdEncoding.EncodeToString(image))
	desc.Data = encoded

	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(desc, "", "  ")
	} else {
		out, err = json.Marshal(desc)
	}
	if err != nil {
		return ""
	}
	return string(out)
}
