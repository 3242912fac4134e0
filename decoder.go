package xmlstream

import (
	"errors"
	"io"
	"log/slog"
)

// ErrNeedMoreData is returned by Next when every buffered byte has
// been consumed but the document is not yet complete. The caller
// should Write more input (or call CloseInput if there is none) and
// call Next again.
var ErrNeedMoreData = errors.New("xmlstream: need more data")

// Decoder is the streaming, resumable, zero-copy parser (spec.md's
// C4/C5 Decoder and driver loop). Configure its exported fields before
// the first Write/Next call; like Goodwine's Decoder this is plain
// struct fields rather than a builder, since every option here has a
// sane zero value.
type Decoder struct {
	// NameMode selects which XML 1.0 edition's name-character
	// productions to enforce. The zero value is FifthEdition.
	NameMode NameMode
	// DetectDuplicateAttributes rejects a start tag that repeats an
	// attribute name with an AttributeNotUnique error. Off by default:
	// it costs an O(n^2) scan of each tag's attribute list.
	DetectDuplicateAttributes bool
	// EnforceCommentHyphenRule rejects a comment whose body contains
	// "--" anywhere, per the XML 1.0 Comment well-formedness
	// constraint. Off by default.
	EnforceCommentHyphenRule bool
	// Logger, when non-nil, receives Debug-level tracing of each state
	// transition. A nil Logger (the default) disables tracing at the
	// cost of one nil check per step.
	Logger *slog.Logger

	cur   *Cursor
	st    state
	begun bool
	done  bool

	pending []Event
}

// NewDecoder returns a Decoder ready to accept input via Write.
func NewDecoder() *Decoder {
	return &Decoder{cur: NewCursor(), st: state{kind: kBOMCheck}}
}

func (d *Decoder) cfg() config {
	return config{
		NameMode:                  d.NameMode,
		DetectDuplicateAttributes: d.DetectDuplicateAttributes,
		EnforceCommentHyphenRule:  d.EnforceCommentHyphenRule,
	}
}

// Write feeds p to the decoder. p's contents are copied into the
// internal buffer; the caller may reuse p immediately afterward. Write
// must not be called after CloseInput; doing so feeds nothing and
// returns an error.
func (d *Decoder) Write(p []byte) (int, error) {
	if !d.cur.MoreExpected() {
		return 0, errors.New("xmlstream: Write after CloseInput")
	}
	d.cur.Feed(p)
	return len(p), nil
}

// CloseInput signals that no further bytes will arrive. A construct
// still waiting on more data now ends in an ErrorEvent instead of
// suspending: UnexpectedEof for an unfinished tag, '<!' construct,
// prolog or PI, the
// matching Unterminated* kind for a comment, CDATA section, DOCTYPE or
// attribute value, and InvalidEntityReference for an unfinished entity
// reference. Pending text is emitted and the document ends normally.
func (d *Decoder) CloseInput() {
	d.cur.Finish()
}

// Next returns the next event in document order. Once the document
// reaches EndDocument (possibly following an ErrorEvent), every
// subsequent call returns io.EOF.
func (d *Decoder) Next() (Event, error) {
	if len(d.pending) > 0 {
		ev := d.pending[0]
		d.pending = d.pending[1:]
		return ev, nil
	}
	if d.done {
		return nil, io.EOF
	}
	if !d.begun {
		d.begun = true
		return StartDocument{Pos: d.cur.Position()}, nil
	}
	cfg := d.cfg()
	for {
		floor := d.st.floor(d.cur.Pos())
		if drop := d.cur.Compact(floor); drop > 0 {
			d.st.rebase(drop)
		}
		res := step(d.cur, d.st, cfg)
		if d.Logger != nil {
			d.Logger.Debug("xmlstream: step", "from", d.st.kind, "to", res.kind)
		}
		switch res.kind {
		case rSuspend:
			d.st = res.next
			return nil, ErrNeedMoreData
		case rError:
			d.done = true
			d.st = state{kind: kDone}
			d.pending = []Event{EndDocument{Pos: res.err.Pos}}
			return ErrorEvent{Kind: res.err.Kind, Detail: res.err.Detail, Pos: res.err.Pos}, nil
		case rDone:
			d.done = true
			d.st = state{kind: kDone}
			return EndDocument{Pos: d.cur.Position()}, nil
		case rEvent:
			d.st = res.next
			if len(res.events) > 1 {
				d.pending = append(d.pending, res.events[1:]...)
			}
			return res.events[0], nil
		default: // rContinue
			d.st = res.next
		}
	}
}

// Decode drives Next in a loop, calling fn with each event until fn
// returns false, EndDocument is reached, or Next returns an error
// other than ErrNeedMoreData (which Decode treats as a signal to
// return so the caller can Write more and call Decode again).
func (d *Decoder) Decode(fn func(Event) bool) error {
	for {
		ev, err := d.Next()
		if err != nil {
			return err
		}
		if !fn(ev) {
			return nil
		}
		if _, ok := ev.(EndDocument); ok {
			return nil
		}
	}
}
