package format

import (
	"fmt"
	"strings"
)

// Usage is the bit set a client passes to describe how a buffer will be
// accessed. The values match the HAL gralloc usage bits.
type Usage uint32

const (
	UsageSWReadRarely   Usage = 0x00000002
	UsageSWReadOften    Usage = 0x00000003
	UsageSWWriteRarely  Usage = 0x00000020
	UsageSWWriteOften   Usage = 0x00000030
	UsageHWTexture      Usage = 0x00000100
	UsageHWRender       Usage = 0x00000200
	UsageHW2D           Usage = 0x00000400
	UsageHWComposer     Usage = 0x00000800
	UsageHWFramebuffer  Usage = 0x00001000
	UsageExternalDisp   Usage = 0x00002000
	UsageProtected      Usage = 0x00004000
	UsageHWVideoEncoder Usage = 0x00010000

	usageSWReadMask  Usage = 0x0000000F
	usageSWWriteMask Usage = 0x000000F0
)

var usageNames = []struct {
	bit  Usage
	name string
}{
	{UsageHWTexture, "HW_TEXTURE"},
	{UsageHWRender, "HW_RENDER"},
	{UsageHW2D, "HW_2D"},
	{UsageHWComposer, "HW_COMPOSER"},
	{UsageHWFramebuffer, "HW_FB"},
	{UsageExternalDisp, "EXTERNAL_DISP"},
	{UsageProtected, "PROTECTED"},
	{UsageHWVideoEncoder, "HW_VIDEO_ENCODER"},
}

// Has reports whether every bit of bits is set in u.
func (u Usage) Has(bits Usage) bool {
	return u&bits == bits
}

// Any reports whether at least one bit of bits is set in u.
func (u Usage) Any(bits Usage) bool {
	return u&bits != 0
}

func (u Usage) String() string {
	if u == 0 {
		return "0"
	}
	var parts []string
	switch u & usageSWReadMask {
	case 0:
	case UsageSWReadRarely:
		parts = append(parts, "SW_READ_RARELY")
	case UsageSWReadOften:
		parts = append(parts, "SW_READ_OFTEN")
	default:
		parts = append(parts, fmt.Sprintf("SW_READ(%#x)", uint32(u&usageSWReadMask)))
	}
	switch u & usageSWWriteMask {
	case 0:
	case UsageSWWriteRarely:
		parts = append(parts, "SW_WRITE_RARELY")
	case UsageSWWriteOften:
		parts = append(parts, "SW_WRITE_OFTEN")
	default:
		parts = append(parts, fmt.Sprintf("SW_WRITE(%#x)", uint32(u&usageSWWriteMask)))
	}
	rest := u &^ (usageSWReadMask | usageSWWriteMask)
	for _, n := range usageNames {
		if rest.Has(n.bit) {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("%#x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseUsage parses a "|" or "," separated list of usage names
// (HW_TEXTURE, SW_READ_OFTEN, ...) or hex literals.
func ParseUsage(s string) (Usage, error) {
	var u Usage
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		tok = strings.ToUpper(strings.TrimSpace(tok))
		switch tok {
		case "", "0":
			continue
		case "SW_READ_RARELY":
			u |= UsageSWReadRarely
			continue
		case "SW_READ_OFTEN":
			u |= UsageSWReadOften
			continue
		case "SW_WRITE_RARELY":
			u |= UsageSWWriteRarely
			continue
		case "SW_WRITE_OFTEN":
			u |= UsageSWWriteOften
			continue
		}
		found := false
		for _, n := range usageNames {
			if n.name == tok {
				u |= n.bit
				found = true
				break
			}
		}
		if found {
			continue
		}
		var v uint32
		if _, err := fmt.Sscan(tok, &v); err != nil {
			return 0, fmt.Errorf("format: unknown usage flag %q", tok)
		}
		u |= Usage(v)
	}
	return u, nil
}
