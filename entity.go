package xmlstream

import (
	"strconv"
	"unicode/utf8"
)

// builtinEntities is the fixed XML 1.0 built-in entity table
// (spec.md §3.1); unlike the teacher's DecodeEntities this module
// does not fold in encoding/xml.HTMLEntity — spec.md defines exactly
// these five named entities plus numeric character references.
var builtinEntities = map[string]rune{
	"lt":   '<',
	"gt":   '>',
	"amp":  '&',
	"apos": '\'',
	"quot": '"',
}

// resolveEntity decodes the entity name found between '&' and ';'
// (name excludes both delimiters). Numeric references ("#NN" or
// "#xHH") decode to the UTF-8 encoding of the referenced code point.
// An unresolvable *numeric* reference is a fatal InvalidEntityReference
// error; an unresolvable *named* reference is not an error at all —
// spec.md §3.1 requires it pass through literally as "&name;".
func resolveEntity(name []byte) (resolved []byte, literal bool, err *ParseError) {
	if len(name) > 0 && name[0] == '#' {
		var n int64
		var convErr error
		if len(name) > 1 && (name[1] == 'x' || name[1] == 'X') {
			n, convErr = strconv.ParseInt(string(name[2:]), 16, 32)
		} else {
			n, convErr = strconv.ParseInt(string(name[1:]), 10, 32)
		}
		if convErr != nil || !utf8.ValidRune(rune(n)) {
			return nil, false, parseErr(ErrInvalidEntityReference, "malformed numeric character reference &"+string(name)+";", Position{})
		}
		buf := make([]byte, utf8.UTFMax)
		size := utf8.EncodeRune(buf, rune(n))
		return buf[:size], false, nil
	}
	if r, ok := builtinEntities[string(name)]; ok {
		buf := make([]byte, utf8.UTFMax)
		size := utf8.EncodeRune(buf, r)
		return buf[:size], false, nil
	}
	// Unknown named entity: pass through literally as "&name;".
	literalBuf := make([]byte, 0, len(name)+2)
	literalBuf = append(literalBuf, '&')
	literalBuf = append(literalBuf, name...)
	literalBuf = append(literalBuf, ';')
	return literalBuf, true, nil
}
