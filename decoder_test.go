package xmlstream

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// decodeAll feeds the entire input in one Write, closes input, and
// drains every event up to and including EndDocument.
func decodeAll(t *testing.T, input string, configure func(*Decoder)) []Event {
	t.Helper()
	d := NewDecoder()
	if configure != nil {
		configure(d)
	}
	_, err := d.Write([]byte(input))
	require.NoError(t, err)
	d.CloseInput()
	return drain(t, d)
}

// decodeChunked feeds input size bytes at a time, handling
// ErrNeedMoreData by writing the next chunk.
func decodeChunked(t *testing.T, input string, size int) []Event {
	t.Helper()
	d := NewDecoder()
	pos := 0
	var events []Event
	for {
		ev, err := d.Next()
		switch err {
		case nil:
			events = append(events, ev)
			if _, ok := ev.(EndDocument); ok {
				return events
			}
		case ErrNeedMoreData:
			if pos >= len(input) {
				d.CloseInput()
				continue
			}
			end := pos + size
			if end > len(input) {
				end = len(input)
			}
			d.Write([]byte(input[pos:end]))
			pos = end
		default:
			t.Fatalf("Next: %v", err)
		}
	}
}

func drain(t *testing.T, d *Decoder) []Event {
	t.Helper()
	var events []Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
		if _, ok := ev.(EndDocument); ok {
			return events
		}
	}
}

// ignoreErrorDetail matches P4's "excluding optional
// implementation-defined error details" carve-out.
var ignoreErrorDetail = cmp.Transformer("zeroErrorDetail", func(e ErrorEvent) ErrorEvent {
	e.Detail = ""
	return e
})

func pos(line, lineStart, offset uint32) Position {
	return Position{Line: line, LineStart: lineStart, Offset: offset}
}

func TestScenarioS1MinimalElement(t *testing.T) {
	got := decodeAll(t, `<root/>`, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		StartElement{Name: QName{Local: []byte("root")}, Pos: pos(1, 0, 0)},
		EndElement{Name: QName{Local: []byte("root")}, Pos: pos(1, 0, 5)},
		EndDocument{Pos: pos(1, 0, 7)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestScenarioS2NestedWithTextAndAttributes(t *testing.T) {
	got := decodeAll(t, `<a id="1">hi<b/></a>`, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		StartElement{
			Name:  QName{Local: []byte("a")},
			Attrs: []Attr{{Name: QName{Local: []byte("id")}, Value: []byte("1")}},
			Pos:   pos(1, 0, 0),
		},
		Characters{Text: []byte("hi"), Pos: pos(1, 0, 10)},
		StartElement{Name: QName{Local: []byte("b")}, Pos: pos(1, 0, 12)},
		EndElement{Name: QName{Local: []byte("b")}, Pos: pos(1, 0, 14)},
		EndElement{Name: QName{Local: []byte("a")}, Pos: pos(1, 0, 16)},
		EndDocument{Pos: pos(1, 0, 20)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestScenarioS3EntityInAttributeAndText(t *testing.T) {
	got := decodeAll(t, `<p title="a&lt;b">x&amp;y</p>`, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		StartElement{
			Name:  QName{Local: []byte("p")},
			Attrs: []Attr{{Name: QName{Local: []byte("title")}, Value: []byte("a<b")}},
			Pos:   pos(1, 0, 0),
		},
		Characters{Text: []byte("x"), Pos: pos(1, 0, 18)},
		Characters{Text: []byte("&"), Pos: pos(1, 0, 19)},
		Characters{Text: []byte("y"), Pos: pos(1, 0, 24)},
		EndElement{Name: QName{Local: []byte("p")}, Pos: pos(1, 0, 25)},
		EndDocument{Pos: pos(1, 0, 29)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

// TestScenarioS4ChunkBoundaryInTagName confirms the decoder suspends
// mid-OpenTagName when a chunk ends there, and resumes cleanly once
// the rest arrives.
func TestScenarioS4ChunkBoundaryInTagName(t *testing.T) {
	d := NewDecoder()
	_, err := d.Write([]byte("<roo"))
	require.NoError(t, err)

	ev, err := d.Next()
	require.NoError(t, err)
	_, ok := ev.(StartDocument)
	require.True(t, ok)

	_, err = d.Next()
	require.Equal(t, ErrNeedMoreData, err, "must suspend waiting for the rest of the element name")

	_, err = d.Write([]byte("t/>"))
	require.NoError(t, err)
	d.CloseInput()

	got := drain(t, d)
	want := []Event{
		StartElement{Name: QName{Local: []byte("root")}, Pos: pos(1, 0, 0)},
		EndElement{Name: QName{Local: []byte("root")}, Pos: pos(1, 0, 5)},
		EndDocument{Pos: pos(1, 0, 7)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestScenarioS5CommentWithLineBreaks(t *testing.T) {
	got := decodeAll(t, "<r><!--\nhi\n--></r>", nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		StartElement{Name: QName{Local: []byte("r")}, Pos: pos(1, 0, 0)},
		Comment{Text: []byte("\nhi\n"), Pos: pos(1, 0, 3)},
		EndElement{Name: QName{Local: []byte("r")}, Pos: pos(3, 11, 14)},
		EndDocument{Pos: pos(3, 11, 18)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestScenarioS6IllegalLessThanInAttributeValue(t *testing.T) {
	got := decodeAll(t, `<x a="<"/>`, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		ErrorEvent{Kind: ErrLessThanInAttributeValue, Pos: pos(1, 0, 6)},
		EndDocument{Pos: pos(1, 0, 6)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

// TestChunkInvariance is the P4 property test: for a handful of
// documents, parsing the full input in one Write must produce the
// exact same event sequence as feeding it one byte, then two bytes,
// then a larger chunk at a time.
func TestChunkInvariance(t *testing.T) {
	documents := []string{
		`<root/>`,
		`<a id="1">hi<b/></a>`,
		`<p title="a&lt;b">x&amp;y</p>`,
		"<r><!--\nhi\n--></r>",
		`<?xml version="1.0" encoding="UTF-8"?><doc>text &#65; more</doc>`,
		`<a><!DOCTYPE foo [ <!ELEMENT bar ANY> ]><b/></a>`,
		`<ns:a xmlns:ns="urn:x"><![CDATA[ raw <stuff> ]]></ns:a>`,
	}
	for _, doc := range documents {
		whole := decodeAll(t, doc, nil)
		for _, chunkSize := range []int{1, 2, 3, 7} {
			chunked := decodeChunked(t, doc, chunkSize)
			if diff := cmp.Diff(whole, chunked, ignoreErrorDetail); diff != "" {
				t.Errorf("chunk size %d not invariant for %q (-whole +chunked):\n%s", chunkSize, doc, diff)
			}
		}
	}
}

func TestPrologPseudoAttributes(t *testing.T) {
	got := decodeAll(t, `<?xml version="1.0" encoding="UTF-8"?><a/>`, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		Prolog{
			Attrs: []Attr{
				{Name: QName{Local: []byte("version")}, Value: []byte("1.0")},
				{Name: QName{Local: []byte("encoding")}, Value: []byte("UTF-8")},
			},
			Pos: pos(1, 0, 0),
		},
		StartElement{Name: QName{Local: []byte("a")}, Pos: pos(1, 0, 38)},
		EndElement{Name: QName{Local: []byte("a")}, Pos: pos(1, 0, 40)},
		EndDocument{Pos: pos(1, 0, 42)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestProcessingInstruction(t *testing.T) {
	got := decodeAll(t, `<?xml-stylesheet type="text/xsl" href="a.xsl"?>`, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		ProcessingInstruction{
			Target: []byte("xml-stylesheet"),
			Data:   []byte(`type="text/xsl" href="a.xsl"`),
			Pos:    pos(1, 0, 0),
		},
		EndDocument{Pos: pos(1, 0, 47)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestDuplicateAttributeDetectionOptIn(t *testing.T) {
	input := `<a x="1" x="2"/>`

	got := decodeAll(t, input, nil)
	for _, ev := range got {
		if _, ok := ev.(ErrorEvent); ok {
			t.Fatalf("duplicate attributes must not error when DetectDuplicateAttributes is off: %+v", got)
		}
	}

	got = decodeAll(t, input, func(d *Decoder) { d.DetectDuplicateAttributes = true })
	found := false
	for _, ev := range got {
		if errEv, ok := ev.(ErrorEvent); ok {
			found = true
			require.Equal(t, ErrAttributeNotUnique, errEv.Kind)
		}
	}
	require.True(t, found, "expected an AttributeNotUnique error when DetectDuplicateAttributes is on")
}

func TestUTF8BOMSkipped(t *testing.T) {
	input := "\xEF\xBB\xBF<root/>"
	got := decodeAll(t, input, nil)
	want := []Event{
		StartDocument{Pos: pos(1, 0, 0)},
		StartElement{Name: QName{Local: []byte("root")}, Pos: pos(1, 0, 3)},
		EndElement{Name: QName{Local: []byte("root")}, Pos: pos(1, 0, 8)},
		EndDocument{Pos: pos(1, 0, 10)},
	}
	if diff := cmp.Diff(want, got, ignoreErrorDetail); diff != "" {
		t.Errorf("event diff (-want +got):\n%s", diff)
	}
}

func TestUTF16BOMIsFatal(t *testing.T) {
	input := "\xFE\xFF<root/>"
	got := decodeAll(t, input, nil)
	require.GreaterOrEqual(t, len(got), 2)
	errEv, ok := got[1].(ErrorEvent)
	require.True(t, ok)
	require.Equal(t, ErrUtf16NotSupported, errEv.Kind)
}
