package xmlstream

import (
	"sort"
	"unicode/utf8"
)

// NameMode selects which XML 1.0 edition's NameStartChar/NameChar
// productions the classifier enforces (spec.md §4.2: "implementations
// SHOULD support both, selectable at construction").
type NameMode int

const (
	// FifthEdition is the default: the wide Unicode ranges from the
	// XML 1.0 Fifth Edition NameStartChar/NameChar productions.
	FifthEdition NameMode = iota
	// FourthEdition restricts names to the ASCII and Latin-1 ranges
	// every Fifth Edition NameStartChar byte-range also contains; it
	// is a conservative subset rather than a transcription of the
	// full historical Letter/CombiningChar/Extender category tables,
	// which XML 1.0 4th edition defined by reference to Unicode 2.0
	// general categories too large to hand-transcribe here.
	FourthEdition
)

// runeRange is a closed interval [lo, hi] of code points.
type runeRange struct{ lo, hi rune }

// nameStartRanges5 is the XML 1.0 Fifth Edition NameStartChar
// production (spec.md §4.2), sorted and non-overlapping.
var nameStartRanges5 = []runeRange{
	{'A', 'Z'},
	{'_', '_'},
	{'a', 'z'},
	{0x00C0, 0x00D6},
	{0x00D8, 0x00F6},
	{0x00F8, 0x02FF},
	{0x0370, 0x037D},
	{0x037F, 0x1FFF},
	{0x200C, 0x200D},
	{0x2070, 0x218F},
	{0x2C00, 0x2FEF},
	{0x3001, 0xD7FF},
	{0xF900, 0xFDCF},
	{0xFDF0, 0xFFFD},
	{0x10000, 0xEFFFF},
}

// nameCharExtraRanges5 is NameChar minus NameStartChar (the Fifth
// Edition additions): '-', '.', digits, and the combining/extender
// code points spec.md §4.2 lists.
var nameCharExtraRanges5 = []runeRange{
	{'-', '-'},
	{'.', '.'},
	{'0', '9'},
	{0x00B7, 0x00B7},
	{0x0300, 0x036F},
	{0x203F, 0x2040},
}

// nameStartRanges4 is the FourthEdition conservative subset.
var nameStartRanges4 = []runeRange{
	{'A', 'Z'},
	{'_', '_'},
	{'a', 'z'},
	{0x00C0, 0x00D6},
	{0x00D8, 0x00F6},
	{0x00F8, 0x00FF},
}

var nameCharExtraRanges4 = []runeRange{
	{'-', '-'},
	{'.', '.'},
	{'0', '9'},
	{0x00B7, 0x00B7},
}

// ':' is a valid NameStartChar only by the production grammar quoted
// in spec.md §4.2; both editions accept it the same way.
func inRanges(r rune, ranges []runeRange) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].hi >= r })
	return i < len(ranges) && ranges[i].lo <= r
}

func isNameStart(r rune, mode NameMode) bool {
	if r == ':' {
		return true
	}
	if mode == FourthEdition {
		return inRanges(r, nameStartRanges4)
	}
	return inRanges(r, nameStartRanges5)
}

func isNameChar(r rune, mode NameMode) bool {
	if isNameStart(r, mode) {
		return true
	}
	if mode == FourthEdition {
		return inRanges(r, nameCharExtraRanges4)
	}
	return inRanges(r, nameCharExtraRanges5)
}

// isXMLSpace is the spec.md §4.2 is_whitespace production.
func isXMLSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// decodeRune decodes the rune at the front of buf. When buf holds a
// truncated multi-byte sequence and more input is expected, suspend
// is true and the caller must wait for more bytes rather than treat
// the sequence as invalid (spec.md §4.2).
func decodeRune(buf []byte, moreExpected bool) (r rune, size int, suspend bool) {
	if len(buf) == 0 {
		return utf8.RuneError, 0, moreExpected
	}
	if !utf8.FullRune(buf) && moreExpected {
		return utf8.RuneError, 0, true
	}
	r, size = utf8.DecodeRune(buf)
	return r, size, false
}
