package xmlstream

import "bytes"

// This file implements one function per named state of spec.md §4.3.
// Every function has the same shape: given the Cursor and the current
// state value, either consume-and-continue, transition, emit, suspend
// (asking for more bytes before it can make progress), or fail fatally.
// None of them ever retains a slice of the Cursor's buffer across a
// suspend; anything a suspended state needs from the input is an
// integer offset into that buffer (state.rebase keeps those valid
// across compaction). The only []byte carried across a suspend is the
// attribute-value accumulator acc, which owns its bytes.

// step dispatches to the function for st.kind.
func step(cur *Cursor, st state, cfg config) result {
	switch st.kind {
	case kBOMCheck:
		return bomCheck(cur, st)
	case kContent:
		return content(cur, st)
	case kTagStart:
		return tagStart(cur, st, cfg)
	case kBang:
		return bang(cur, st)
	case kText:
		return text(cur, st)
	case kEntityRefText:
		return entityRefText(cur, st)
	case kOpenTagName:
		return openTagName(cur, st, cfg)
	case kCloseTagName:
		return closeTagName(cur, st, cfg)
	case kCloseTagEnd:
		return closeTagEnd(cur, st)
	case kAttributes:
		return attributes(cur, st, cfg)
	case kAttrName:
		return attrName(cur, st, cfg)
	case kAttrEq:
		return attrEq(cur, st)
	case kAttrQuote:
		return attrQuote(cur, st)
	case kAttrValue:
		return attrValue(cur, st, cfg)
	case kAttrEntity:
		return attrEntity(cur, st)
	case kComment:
		return comment(cur, st, cfg)
	case kCData:
		return cdata(cur, st)
	case kDoctype:
		return doctype(cur, st)
	case kPI:
		return pi(cur, st, cfg)
	case kPIContent:
		return piContent(cur, st)
	case kProlog:
		return prolog(cur, st, cfg)
	case kSelfClose:
		return selfClose(cur, st, cfg)
	default:
		return result{kind: rDone}
	}
}

// bomCheck runs exactly once, before the first Content dispatch
// (spec.md §6.2). A UTF-16 BOM is a fatal, unrecoverable error; a
// UTF-8 BOM is silently consumed; anything else leaves the cursor
// untouched and falls through to Content.
func bomCheck(cur *Cursor, st state) result {
	b, ok := cur.Peek(1)
	if !ok {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rContinue, next: state{kind: kContent}}
	}
	switch b[0] {
	case 0xFE, 0xFF:
		two, ok := cur.Peek(2)
		if !ok {
			if cur.MoreExpected() {
				return result{kind: rSuspend, next: st}
			}
			return result{kind: rContinue, next: state{kind: kContent}}
		}
		if (two[0] == 0xFE && two[1] == 0xFF) || (two[0] == 0xFF && two[1] == 0xFE) {
			return result{kind: rError, err: parseErr(ErrUtf16NotSupported, "UTF-16 byte order mark at start of input", cur.Position())}
		}
		return result{kind: rContinue, next: state{kind: kContent}}
	case 0xEF:
		three, ok := cur.Peek(3)
		if !ok {
			if cur.MoreExpected() {
				return result{kind: rSuspend, next: st}
			}
			return result{kind: rContinue, next: state{kind: kContent}}
		}
		if three[1] == 0xBB && three[2] == 0xBF {
			cur.Advance(cur.Pos() + 3)
		}
		return result{kind: rContinue, next: state{kind: kContent}}
	default:
		return result{kind: rContinue, next: state{kind: kContent}}
	}
}

func content(cur *Cursor, st state) result {
	if cur.Len() == 0 {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: state{kind: kContent}}
		}
		return result{kind: rDone}
	}
	pos := cur.Pos()
	if cur.At(pos) == '<' {
		loc := cur.Position()
		cur.Advance(pos + 1)
		return result{kind: rContinue, next: state{kind: kTagStart, loc: loc}}
	}
	return result{kind: rContinue, next: state{kind: kText, start: pos, anchor: pos, loc: cur.Position()}}
}

func tagStart(cur *Cursor, st state, cfg config) result {
	b, ok := cur.Peek(1)
	if !ok {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "end of input after '<'", st.loc)}
	}
	switch b[0] {
	case '?':
		cur.Advance(cur.Pos() + 1)
		return result{kind: rContinue, next: state{kind: kPI, start: cur.Pos(), anchor: cur.Pos(), loc: st.loc}}
	case '!':
		cur.Advance(cur.Pos() + 1)
		return result{kind: rContinue, next: state{kind: kBang, loc: st.loc}}
	case '/':
		cur.Advance(cur.Pos() + 1)
		return result{kind: rContinue, next: state{kind: kCloseTagName, start: cur.Pos(), anchor: cur.Pos(), loc: st.loc}}
	default:
		r, _, suspend := decodeRune(cur.Remaining(), cur.MoreExpected())
		if suspend {
			return result{kind: rSuspend, next: st}
		}
		if !isNameStart(r, cfg.NameMode) {
			return result{kind: rError, err: parseErr(ErrInvalidTagStart, "expected a name-start character, '/', '!' or '?' after '<'", cur.Position())}
		}
		return result{kind: rContinue, next: state{kind: kOpenTagName, start: cur.Pos(), anchor: cur.Pos(), loc: st.loc}}
	}
}

// bang needs up to a 7-byte lookahead window to tell "--", "[CDATA["
// and "DOCTYPE" apart (spec.md §4.3.2).
func bang(cur *Cursor, st state) result {
	avail := cur.Remaining()
	if len(avail) >= 2 && avail[0] == '-' && avail[1] == '-' {
		cur.Advance(cur.Pos() + 2)
		return result{kind: rContinue, next: state{kind: kComment, start: cur.Pos(), anchor: cur.Pos(), loc: st.loc}}
	}
	if len(avail) >= 7 {
		switch {
		case string(avail[:7]) == "[CDATA[":
			cur.Advance(cur.Pos() + 7)
			return result{kind: rContinue, next: state{kind: kCData, start: cur.Pos(), anchor: cur.Pos(), loc: st.loc}}
		case string(avail[:7]) == "DOCTYPE":
			start := cur.Pos()
			cur.Advance(start + 7)
			return result{kind: rContinue, next: state{kind: kDoctype, start: start, anchor: start, depth: 1, loc: st.loc}}
		default:
			return result{kind: rError, err: parseErr(ErrInvalidBang, "expected '--', '[CDATA[' or 'DOCTYPE' after '<!'", st.loc)}
		}
	}
	// Fewer than 7 bytes buffered: only bail early if the prefix we do
	// have already rules out every known alternative.
	if len(avail) >= 1 && avail[0] != '-' && avail[0] != '[' && avail[0] != 'D' {
		return result{kind: rError, err: parseErr(ErrInvalidBang, "expected '--', '[CDATA[' or 'DOCTYPE' after '<!'", st.loc)}
	}
	if cur.MoreExpected() {
		return result{kind: rSuspend, next: st}
	}
	return result{kind: rError, err: parseErr(ErrUnexpectedEof, "truncated '<!' construct", st.loc)}
}

func text(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for pos < limit {
		switch cur.At(pos) {
		case '<':
			txt := cur.Slice(st.start, pos)
			cur.Advance(pos)
			if len(txt) == 0 {
				return result{kind: rContinue, next: state{kind: kContent}}
			}
			return result{kind: rEvent, events: []Event{Characters{Text: txt, Pos: st.loc}}, next: state{kind: kContent}}
		case '&':
			txt := cur.Slice(st.start, pos)
			cur.Advance(pos)
			ampLoc := cur.Position()
			cur.Advance(pos + 1)
			entStart := cur.Pos()
			next := state{kind: kEntityRefText, valueStart: entStart, anchor: entStart, loc: ampLoc}
			if len(txt) == 0 {
				return result{kind: rContinue, next: next}
			}
			return result{kind: rEvent, events: []Event{Characters{Text: txt, Pos: st.loc}}, next: next}
		default:
			pos++
		}
	}
	if cur.MoreExpected() {
		cur.Advance(pos)
		return result{kind: rSuspend, next: state{kind: kText, start: st.start, anchor: st.anchor, loc: st.loc}}
	}
	txt := cur.Slice(st.start, pos)
	cur.Advance(pos)
	if len(txt) == 0 {
		return result{kind: rDone}
	}
	return result{kind: rEvent, events: []Event{Characters{Text: txt, Pos: st.loc}}, next: state{kind: kDone}}
}

func entityRefText(cur *Cursor, st state) result {
	pos := cur.Pos()
	end := pos + cur.Len()
	for pos < end && cur.At(pos) != ';' {
		pos++
	}
	if pos >= end {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrInvalidEntityReference, "unterminated entity reference", st.loc)}
	}
	name := cur.Slice(st.valueStart, pos)
	resolved, _, perr := resolveEntity(name)
	cur.Advance(pos + 1)
	if perr != nil {
		perr.Pos = st.loc
		return result{kind: rError, err: perr}
	}
	newStart := cur.Pos()
	return result{
		kind:   rEvent,
		events: []Event{Characters{Text: resolved, Pos: st.loc}},
		next:   state{kind: kText, start: newStart, anchor: newStart, loc: cur.Position()},
	}
}

// scanNameEnd advances over NameChar* from the current position and
// returns the buffer-local offset of the first non-name byte. It
// suspends instead of deciding when the name might continue past the
// currently-buffered data.
func scanNameEnd(cur *Cursor, cfg config) (end int, suspend bool) {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for {
		if pos >= limit {
			if cur.MoreExpected() {
				return 0, true
			}
			return pos, false
		}
		r, size, susp := decodeRune(cur.Slice(pos, limit), cur.MoreExpected())
		if susp {
			return 0, true
		}
		if !isNameChar(r, cfg.NameMode) {
			return pos, false
		}
		pos += size
	}
}

func openTagName(cur *Cursor, st state, cfg config) result {
	end, suspend := scanNameEnd(cur, cfg)
	if suspend {
		return result{kind: rSuspend, next: st}
	}
	if end == st.start {
		return result{kind: rError, err: parseErr(ErrInvalidName, "empty element name", st.loc)}
	}
	cur.Advance(end)
	return result{kind: rContinue, next: state{kind: kAttributes, nameStart: st.start, nameEnd: end, anchor: st.start, loc: st.loc}}
}

func closeTagName(cur *Cursor, st state, cfg config) result {
	end, suspend := scanNameEnd(cur, cfg)
	if suspend {
		return result{kind: rSuspend, next: st}
	}
	if end == st.start {
		return result{kind: rError, err: parseErr(ErrInvalidName, "empty element name", st.loc)}
	}
	cur.Advance(end)
	return result{kind: rContinue, next: state{kind: kCloseTagEnd, nameStart: st.start, nameEnd: end, anchor: st.start, loc: st.loc}}
}

func closeTagEnd(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for pos < limit && isXMLSpace(cur.At(pos)) {
		pos++
	}
	if pos >= limit {
		cur.Advance(pos)
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: state{kind: kCloseTagEnd, nameStart: st.nameStart, nameEnd: st.nameEnd, anchor: st.anchor, loc: st.loc}}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated end tag", st.loc)}
	}
	cur.Advance(pos)
	if cur.At(pos) != '>' {
		return result{kind: rError, err: parseErr(ErrExpectedGreaterThan, "expected '>' to close end tag", cur.Position())}
	}
	name := parseQName(cur.Slice(st.nameStart, st.nameEnd))
	cur.Advance(pos + 1)
	return result{kind: rEvent, events: []Event{EndElement{Name: name, Pos: st.loc}}, next: state{kind: kContent}}
}

func buildAttrs(cur *Cursor, spans []attrSpan) []Attr {
	if len(spans) == 0 {
		return nil
	}
	attrs := make([]Attr, len(spans))
	for i, sp := range spans {
		name := parseQName(cur.Slice(sp.nameStart, sp.nameEnd))
		var value []byte
		if sp.value != nil {
			value = sp.value
		} else {
			value = cur.Slice(sp.valueStart, sp.valueEnd)
		}
		attrs[i] = Attr{Name: name, Value: value}
	}
	return attrs
}

// findDuplicateAttr implements the opt-in DetectDuplicateAttributes
// check; it is O(n^2) in the attribute count, which is never large
// enough in practice to matter.
func findDuplicateAttr(attrs []Attr) (QName, bool) {
	for i := 1; i < len(attrs); i++ {
		for j := 0; j < i; j++ {
			if bytes.Equal(attrs[i].Name.Space, attrs[j].Name.Space) && bytes.Equal(attrs[i].Name.Local, attrs[j].Name.Local) {
				return attrs[i].Name, true
			}
		}
	}
	return QName{}, false
}

func attributes(cur *Cursor, st state, cfg config) result {
	pos := cur.Pos()
	for {
		limit := cur.Pos() + cur.Len()
		if pos >= limit {
			if cur.MoreExpected() {
				cur.Advance(pos)
				next := st
				return result{kind: rSuspend, next: next}
			}
			return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated start tag", st.loc)}
		}
		b := cur.At(pos)
		if isXMLSpace(b) {
			pos++
			continue
		}
		cur.Advance(pos)
		switch b {
		case '>':
			name := parseQName(cur.Slice(st.nameStart, st.nameEnd))
			attrs := buildAttrs(cur, st.attrs)
			if cfg.DetectDuplicateAttributes {
				if dupe, found := findDuplicateAttr(attrs); found {
					return result{kind: rError, err: parseErr(ErrAttributeNotUnique, "duplicate attribute "+unsafeString(dupe.Local), st.loc)}
				}
			}
			cur.Advance(pos + 1)
			return result{kind: rEvent, events: []Event{StartElement{Name: name, Attrs: attrs, Pos: st.loc}}, next: state{kind: kContent}}
		case '/':
			slashLoc := cur.Position()
			cur.Advance(pos + 1)
			next := st
			next.kind = kSelfClose
			next.altLoc = slashLoc
			return result{kind: rContinue, next: next}
		default:
			r, _, suspend := decodeRune(cur.Remaining(), cur.MoreExpected())
			if suspend {
				return result{kind: rSuspend, next: st}
			}
			if !isNameStart(r, cfg.NameMode) {
				return result{kind: rError, err: parseErr(ErrInvalidName, "expected an attribute name, '/' or '>'", cur.Position())}
			}
			next := st
			next.kind = kAttrName
			next.start = cur.Pos()
			next.inProlog = false
			return result{kind: rContinue, next: next}
		}
	}
}

func selfClose(cur *Cursor, st state, cfg config) result {
	b, ok := cur.Peek(1)
	if !ok {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated self-closing tag", st.loc)}
	}
	if b[0] != '>' {
		return result{kind: rError, err: parseErr(ErrExpectedGreaterThan, "expected '>' to close a self-closing tag", cur.Position())}
	}
	name := parseQName(cur.Slice(st.nameStart, st.nameEnd))
	attrs := buildAttrs(cur, st.attrs)
	if cfg.DetectDuplicateAttributes {
		if dupe, found := findDuplicateAttr(attrs); found {
			return result{kind: rError, err: parseErr(ErrAttributeNotUnique, "duplicate attribute "+unsafeString(dupe.Local), st.loc)}
		}
	}
	cur.Advance(cur.Pos() + 1)
	return result{
		kind: rEvent,
		events: []Event{
			StartElement{Name: name, Attrs: attrs, Pos: st.loc},
			EndElement{Name: name, Pos: st.altLoc},
		},
		next: state{kind: kContent},
	}
}

func attrName(cur *Cursor, st state, cfg config) result {
	end, suspend := scanNameEnd(cur, cfg)
	if suspend {
		return result{kind: rSuspend, next: st}
	}
	cur.Advance(end)
	next := st
	next.kind = kAttrEq
	next.end = end
	return result{kind: rContinue, next: next}
}

func attrEq(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for pos < limit && isXMLSpace(cur.At(pos)) {
		pos++
	}
	if pos >= limit {
		cur.Advance(pos)
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated attribute", st.loc)}
	}
	cur.Advance(pos)
	if cur.At(pos) != '=' {
		return result{kind: rError, err: parseErr(ErrExpectedEquals, "expected '=' after attribute name", cur.Position())}
	}
	cur.Advance(pos + 1)
	next := st
	next.kind = kAttrQuote
	return result{kind: rContinue, next: next}
}

func attrQuote(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for pos < limit && isXMLSpace(cur.At(pos)) {
		pos++
	}
	if pos >= limit {
		cur.Advance(pos)
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated attribute", st.loc)}
	}
	cur.Advance(pos)
	q := cur.At(pos)
	if q != '"' && q != '\'' {
		return result{kind: rError, err: parseErr(ErrExpectedQuote, "expected a quote to start the attribute value", cur.Position())}
	}
	cur.Advance(pos + 1)
	next := st
	next.kind = kAttrValue
	next.quote = q
	next.valueStart = cur.Pos()
	next.acc = nil
	return result{kind: rContinue, next: next}
}

func attrValue(cur *Cursor, st state, cfg config) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	parentKind := kAttributes
	if st.inProlog {
		parentKind = kProlog
	}
	for pos < limit {
		switch cur.At(pos) {
		case st.quote:
			var sp attrSpan
			sp.nameStart, sp.nameEnd = st.start, st.end
			if st.acc != nil {
				sp.value = append(st.acc, cur.Slice(st.valueStart, pos)...)
			} else {
				sp.valueStart, sp.valueEnd = st.valueStart, pos
			}
			cur.Advance(pos + 1)
			attrs := append(st.attrs, sp)
			return result{kind: rContinue, next: state{
				kind: parentKind, nameStart: st.nameStart, nameEnd: st.nameEnd,
				anchor: st.anchor, loc: st.loc, attrs: attrs, inProlog: st.inProlog,
			}}
		case '<':
			cur.Advance(pos)
			return result{kind: rError, err: parseErr(ErrLessThanInAttributeValue, "'<' is not allowed in an attribute value", cur.Position())}
		case '&':
			acc := append(st.acc, cur.Slice(st.valueStart, pos)...)
			cur.Advance(pos + 1)
			next := st
			next.kind = kAttrEntity
			next.acc = acc
			next.valueStart = cur.Pos()
			return result{kind: rContinue, next: next}
		default:
			pos++
		}
	}
	if cur.MoreExpected() {
		cur.Advance(pos)
		return result{kind: rSuspend, next: st}
	}
	return result{kind: rError, err: parseErr(ErrUnterminatedAttributeValue, "unterminated attribute value", st.loc)}
}

func attrEntity(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for pos < limit && cur.At(pos) != ';' {
		pos++
	}
	if pos >= limit {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrInvalidEntityReference, "unterminated entity reference", st.loc)}
	}
	name := cur.Slice(st.valueStart, pos)
	resolved, _, perr := resolveEntity(name)
	cur.Advance(pos + 1)
	if perr != nil {
		perr.Pos = st.loc
		return result{kind: rError, err: perr}
	}
	acc := append(st.acc, resolved...)
	next := st
	next.kind = kAttrValue
	next.acc = acc
	next.valueStart = cur.Pos()
	return result{kind: rContinue, next: next}
}

func comment(cur *Cursor, st state, cfg config) result {
	idx := bytes.Index(cur.Remaining(), []byte("-->"))
	if idx == -1 {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrUnterminatedComment, "unterminated comment", st.loc)}
	}
	end := cur.Pos() + idx
	text := cur.Slice(st.start, end)
	if cfg.EnforceCommentHyphenRule {
		if bad := bytes.Index(text, []byte("--")); bad != -1 {
			pos := Position{Line: st.loc.Line, LineStart: st.loc.LineStart, Offset: cur.AbsOffset(st.start + bad)}
			return result{kind: rError, err: parseErr(ErrDoubleHyphenInComment, "'--' is not allowed inside a comment", pos)}
		}
	}
	cur.Advance(end + 3)
	return result{kind: rEvent, events: []Event{Comment{Text: text, Pos: st.loc}}, next: state{kind: kContent}}
}

func cdata(cur *Cursor, st state) result {
	idx := bytes.Index(cur.Remaining(), []byte("]]>"))
	if idx == -1 {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: st}
		}
		return result{kind: rError, err: parseErr(ErrUnterminatedCdata, "unterminated CDATA section", st.loc)}
	}
	end := cur.Pos() + idx
	text := cur.Slice(st.start, end)
	cur.Advance(end + 3)
	return result{kind: rEvent, events: []Event{CDATA{Text: text, Pos: st.loc}}, next: state{kind: kContent}}
}

// doctype tracks '<'/'>' nesting depth, starting at 1 for the '<!DOCTYPE'
// that led here, emitting once depth returns to 0 (spec.md §4.3.9).
// Internal subset brackets '[' ']' do not affect depth.
func doctype(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	depth := st.depth
	for pos < limit {
		switch cur.At(pos) {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				raw := cur.Slice(st.start, pos)
				cur.Advance(pos + 1)
				return result{kind: rEvent, events: []Event{Doctype{Raw: raw, Pos: st.loc}}, next: state{kind: kContent}}
			}
		}
		pos++
	}
	if cur.MoreExpected() {
		cur.Advance(pos)
		return result{kind: rSuspend, next: state{kind: kDoctype, start: st.start, anchor: st.anchor, loc: st.loc, depth: depth}}
	}
	return result{kind: rError, err: parseErr(ErrUnterminatedDoctype, "unterminated DOCTYPE declaration", st.loc)}
}

func pi(cur *Cursor, st state, cfg config) result {
	end, suspend := scanNameEnd(cur, cfg)
	if suspend {
		return result{kind: rSuspend, next: st}
	}
	if end == st.start {
		return result{kind: rError, err: parseErr(ErrInvalidName, "empty processing instruction target", st.loc)}
	}
	target := cur.Slice(st.start, end)
	isXML := len(target) == 3 && target[0]|0x20 == 'x' && target[1]|0x20 == 'm' && target[2]|0x20 == 'l'
	cur.Advance(end)
	next := state{kind: kPIContent, nameStart: st.start, nameEnd: end, anchor: st.start, loc: st.loc}
	if isXML {
		next.kind = kProlog
	}
	return result{kind: rContinue, next: next}
}

func piContent(cur *Cursor, st state) result {
	pos := cur.Pos()
	limit := pos + cur.Len()
	for pos < limit && isXMLSpace(cur.At(pos)) {
		pos++
	}
	if pos >= limit {
		cur.Advance(pos)
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: state{kind: kPIContent, nameStart: st.nameStart, nameEnd: st.nameEnd, anchor: st.anchor, loc: st.loc}}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated processing instruction", st.loc)}
	}
	cur.Advance(pos)
	idx := bytes.Index(cur.Remaining(), []byte("?>"))
	if idx == -1 {
		if cur.MoreExpected() {
			return result{kind: rSuspend, next: state{kind: kPIContent, nameStart: st.nameStart, nameEnd: st.nameEnd, anchor: st.anchor, loc: st.loc}}
		}
		return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated processing instruction", st.loc)}
	}
	end := cur.Pos() + idx
	data := cur.Slice(cur.Pos(), end)
	target := cur.Slice(st.nameStart, st.nameEnd)
	cur.Advance(end + 2)
	return result{kind: rEvent, events: []Event{ProcessingInstruction{Target: target, Data: data, Pos: st.loc}}, next: state{kind: kContent}}
}

func prolog(cur *Cursor, st state, cfg config) result {
	pos := cur.Pos()
	for {
		limit := cur.Pos() + cur.Len()
		if pos >= limit {
			if cur.MoreExpected() {
				cur.Advance(pos)
				return result{kind: rSuspend, next: state{kind: kProlog, nameStart: st.nameStart, nameEnd: st.nameEnd, anchor: st.anchor, loc: st.loc, attrs: st.attrs}}
			}
			return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated prolog", st.loc)}
		}
		b := cur.At(pos)
		if isXMLSpace(b) {
			pos++
			continue
		}
		if b == '?' {
			if pos+1 >= limit {
				if cur.MoreExpected() {
					cur.Advance(pos)
					return result{kind: rSuspend, next: state{kind: kProlog, nameStart: st.nameStart, nameEnd: st.nameEnd, anchor: st.anchor, loc: st.loc, attrs: st.attrs}}
				}
				return result{kind: rError, err: parseErr(ErrUnexpectedEof, "unterminated prolog", st.loc)}
			}
			if cur.At(pos+1) == '>' {
				attrs := buildAttrs(cur, st.attrs)
				cur.Advance(pos + 2)
				return result{kind: rEvent, events: []Event{Prolog{Attrs: attrs, Pos: st.loc}}, next: state{kind: kContent}}
			}
			cur.Advance(pos)
			return result{kind: rError, err: parseErr(ErrExpectedGreaterThan, "expected '?>' to end the prolog", cur.Position())}
		}
		cur.Advance(pos)
		r, _, suspend := decodeRune(cur.Remaining(), cur.MoreExpected())
		if suspend {
			return result{kind: rSuspend, next: state{kind: kProlog, nameStart: st.nameStart, nameEnd: st.nameEnd, anchor: st.anchor, loc: st.loc, attrs: st.attrs}}
		}
		if !isNameStart(r, cfg.NameMode) {
			return result{kind: rError, err: parseErr(ErrInvalidName, "expected a pseudo-attribute name or '?>'", cur.Position())}
		}
		next := state{
			kind: kAttrName, start: cur.Pos(),
			nameStart: st.nameStart, nameEnd: st.nameEnd,
			anchor: st.anchor, loc: st.loc, attrs: st.attrs, inProlog: true,
		}
		return result{kind: rContinue, next: next}
	}
}
