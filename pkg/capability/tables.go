package capability

import "github.com/go-wfd/wfdsource/pkg/wfdparam"

// Resolution is one entry of a resolution bitmap table: the display mode a
// single bit position stands for.
type Resolution struct {
	Width       int
	Height      int
	FrameRate   int
	Interlaced  bool
}

// ceaTable, vesaTable and hhTable mirror the three fixed bitmap tables the
// WFD parameter dialect indexes by bit position (LSB = index 0), the same
// tables wfdparam.VideoFormats.CEAResolutions/VESAResolutions/
// HandheldResolutions are bitmaps over. Index i corresponds to bit 1<<i.
var ceaTable = []Resolution{
	{640, 480, 60, false},
	{720, 480, 60, false},
	{720, 480, 60, true},
	{720, 576, 50, false},
	{720, 576, 50, true},
	{1280, 720, 30, false},
	{1280, 720, 60, false},
	{1920, 1080, 30, false},
	{1920, 1080, 60, false},
	{1920, 1080, 60, true},
	{1280, 720, 25, false},
	{1280, 720, 50, false},
	{1920, 1080, 25, false},
	{1920, 1080, 50, false},
	{1920, 1080, 50, true},
	{1280, 720, 24, false},
	{1920, 1080, 24, false},
	{3840, 2160, 30, false},
	{3840, 2160, 60, false},
	{4096, 2160, 30, false},
	{4096, 2160, 60, false},
	{3840, 2160, 25, false},
	{3840, 2160, 50, false},
	{4096, 2160, 25, false},
	{4096, 2160, 50, false},
	{3840, 2160, 24, false},
	{4096, 2160, 24, false},
	{3840, 1920, 30, false},
}

var vesaTable = []Resolution{
	{800, 600, 30, false},
	{800, 600, 60, false},
	{1024, 768, 30, false},
	{1024, 768, 60, false},
	{1152, 864, 30, false},
	{1152, 864, 60, false},
	{1280, 768, 30, false},
	{1280, 768, 60, false},
	{1280, 800, 30, false},
	{1280, 800, 60, false},
	{1360, 768, 30, false},
	{1360, 768, 60, false},
	{1366, 768, 30, false},
	{1366, 768, 60, false},
	{1280, 1024, 30, false},
	{1280, 1024, 60, false},
	{1400, 1050, 30, false},
	{1400, 1050, 60, false},
	{1440, 900, 30, false},
	{1440, 900, 60, false},
	{1600, 900, 30, false},
	{1600, 900, 60, false},
	{1600, 1200, 30, false},
	{1600, 1200, 60, false},
	{1680, 1024, 30, false},
	{1680, 1024, 60, false},
	{1680, 1050, 30, false},
	{1680, 1050, 60, false},
	{1920, 1200, 30, false},
}

var hhTable = []Resolution{
	{800, 480, 30, false},
	{800, 480, 60, false},
	{854, 480, 30, false},
	{854, 480, 60, false},
	{864, 480, 30, false},
	{864, 480, 60, false},
	{640, 360, 30, false},
	{640, 360, 60, false},
	{960, 540, 30, false},
	{960, 540, 60, false},
	{848, 480, 30, false},
	{848, 480, 60, false},
}

func tableFor(family wfdparam.ResolutionFamily) []Resolution {
	switch family {
	case wfdparam.FamilyCEA:
		return ceaTable
	case wfdparam.FamilyVESA:
		return vesaTable
	case wfdparam.FamilyHH:
		return hhTable
	default:
		return nil
	}
}

// LookupResolution returns the Resolution a single bit index stands for
// within family, and whether the index is within that table's bounds.
func LookupResolution(family wfdparam.ResolutionFamily, index uint8) (Resolution, bool) {
	table := tableFor(family)
	if table == nil || int(index) >= len(table) {
		return Resolution{}, false
	}
	return table[index], true
}

// highestSetBit returns the index of the highest set bit in bitmap, MSB
// first, or -1 if bitmap is zero.
func highestSetBit(bitmap uint32) int {
	for i := 31; i >= 0; i-- {
		if bitmap&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}
