package xmlstream

import "unsafe"

// unsafeString performs an _unsafe_ no-copy string conversion from buf.
// https://github.com/golang/go/issues/25484 has more info on this; the
// implementation is lifted from fastxml/unsafe.go (String). Used only
// for building diagnostic strings from slices that are about to be
// discarded anyway, never for data handed back to the caller.
func unsafeString(buf []byte) string {
	return *(*string)(unsafe.Pointer(&buf))
}
