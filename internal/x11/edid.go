package x11

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	edidBlockSize      = 128
	edidDescriptorBase = 54
	edidDescriptorSize = 18
	edidTagName        = 0xFC
)

var edidHeader = []byte{0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00}

// MonitorName extracts a human readable name from an EDID base block: the
// monitor name descriptor when present, otherwise the PNP manufacturer and
// product code. It returns "" when edid is not a valid base block.
func MonitorName(edid []byte) string {
	if len(edid) < edidBlockSize || !bytes.Equal(edid[:len(edidHeader)], edidHeader) {
		return ""
	}

	for i := 0; i < 4; i++ {
		d := edid[edidDescriptorBase+i*edidDescriptorSize : edidDescriptorBase+(i+1)*edidDescriptorSize]
		if d[0] != 0 || d[1] != 0 || d[3] != edidTagName {
			continue
		}
		text := d[5:]
		if n := bytes.IndexByte(text, '\n'); n >= 0 {
			text = text[:n]
		}
		if name := strings.TrimSpace(string(text)); name != "" {
			return name
		}
	}

	return pnpID(edid)
}

// pnpID formats the three-letter manufacturer code and product code, e.g.
// "DEL40F5".
func pnpID(edid []byte) string {
	mfg := binary.BigEndian.Uint16(edid[8:10])
	letters := []byte{
		byte((mfg>>10)&0x1F) + 'A' - 1,
		byte((mfg>>5)&0x1F) + 'A' - 1,
		byte(mfg&0x1F) + 'A' - 1,
	}
	for _, l := range letters {
		if l < 'A' || l > 'Z' {
			return ""
		}
	}
	product := binary.LittleEndian.Uint16(edid[10:12])
	return fmt.Sprintf("%s%04X", letters, product)
}
