package xmlstream

// stateKind tags which named state (spec.md §4.3) a state value
// represents. Each constant documents which fields of state it reads;
// fields not mentioned for a given kind hold stale or zero data and
// must not be read.
type stateKind uint8

const (
	// kContent: Content. No payload; floor is the current position.
	kContent stateKind = iota
	// kBOMCheck: the one-time BOM sniff that runs before the first
	// Content dispatch (spec.md §6.2). No payload.
	kBOMCheck
	// kTagStart: TagStart, just after '<'. Reads loc.
	kTagStart
	// kBang: Bang, just after '<!'. Reads loc.
	kBang
	// kText: Text{start}. Reads start, anchor, loc.
	kText
	// kEntityRefText: EntityRef in text context. Reads valueStart
	// (entity-name scan start), anchor, loc (location of the '&').
	kEntityRefText
	// kOpenTagName: OpenTagName{name_start}. Reads start, anchor, loc.
	kOpenTagName
	// kCloseTagName: CloseTagName{loc, name_start}. Reads start, anchor, loc.
	kCloseTagName
	// kCloseTagEnd: CloseTagEnd{name, name_start}. Reads nameStart,
	// nameEnd, anchor, loc.
	kCloseTagEnd
	// kAttributes: Attributes{tag, attrs, loc}. Reads nameStart,
	// nameEnd (tag name span), attrs, anchor, loc.
	kAttributes
	// kAttrName: AttrName{..., attr_start}. Reads start (attr name
	// scan start) plus the carried tag nameStart/nameEnd/anchor/loc/attrs.
	kAttrName
	// kAttrEq: AttrEq{..., attr_name}. Reads start/end (attr name span)
	// plus carried tag fields.
	kAttrEq
	// kAttrQuote: AttrQuote{..., attr_name}. Reads start/end plus
	// carried tag fields.
	kAttrQuote
	// kAttrValue: AttrValue{..., attr_name, quote, value_start, acc}.
	// Reads start/end (attr name span), quote, valueStart, acc, plus
	// carried tag fields.
	kAttrValue
	// kAttrEntity: AttrEntity{..., entity_start, ..., acc}. Reads
	// start/end (attr name span), quote, valueStart (entity-name scan
	// start), acc, plus carried tag fields.
	kAttrEntity
	// kComment: Comment{start}. Reads start, anchor, loc.
	kComment
	// kCData: CData{start}. Reads start, anchor, loc.
	kCData
	// kDoctype: Doctype{start, loc, depth}. Reads start, anchor, loc, depth.
	kDoctype
	// kPI: PI{start}, scanning the target name. Reads start, anchor, loc.
	kPI
	// kPIContent: PIContent{target, start}. Reads nameStart, nameEnd
	// (target span), anchor, loc.
	kPIContent
	// kProlog: Prolog(attrs) and its pseudo-attribute sub-states share
	// kAttrName/kAttrEq/kAttrQuote/kAttrValue/kAttrEntity with
	// inProlog set; kProlog itself is the "waiting for the next
	// pseudo-attribute or '?>'" loop. Reads nameStart, nameEnd, attrs,
	// anchor, loc.
	kProlog
	// kSelfClose: SelfClose{tag, attrs, loc}. Reads nameStart, nameEnd,
	// attrs, altLoc (location of '/'), anchor, loc.
	kSelfClose
	// kDone: parsing has finished; only EndDocument/EOF remain.
	kDone
)

// state is the Go realization of spec.md §3.1's ParserState: a single
// tagged value carrying only the minimal payload needed to resume
// at its logical position, per spec.md §3.2 invariant 5. Every
// buffer-local integer offset it holds is rebased by rebase on
// compaction; loc/altLoc are absolute stream positions and are never
// rebased.
type state struct {
	kind stateKind

	loc    Position // location of the construct currently being scanned
	altLoc Position // kSelfClose only: location of the '/'

	anchor int // earliest buffer-local offset this state needs; the compaction floor

	start int // generic scan-start offset (see stateKind doc comments)
	end   int // generic scan-end offset, once known

	nameStart, nameEnd int // a name span already fully scanned (tag or PI target)

	valueStart int    // attribute-value/entity scan-start offset
	quote      byte   // kAttrQuote/kAttrValue/kAttrEntity: the closing quote byte
	acc        []byte // kAttrValue/kAttrEntity: owned accumulator once an entity is seen
	inProlog   bool   // true when the attr-name/eq/quote/value chain belongs to a Prolog

	attrs []attrSpan // attributes accumulated for the in-progress start tag or prolog

	depth int // kDoctype: '<'/'>' nesting depth
}

// attrSpan is one attribute accumulated mid-element. Exactly one of
// (valueStart,valueEnd) or value is meaningful: value is set once an
// entity reference forced the value off the zero-copy path.
type attrSpan struct {
	nameStart, nameEnd   int
	valueStart, valueEnd int
	value                []byte
}

// floor returns the earliest buffer-local offset s still needs, i.e.
// the compaction floor (SPEC_FULL.md §6.1). Content/BOM-check/TagStart/
// Bang/Done carry no buffer-local offsets at all, so their floor is
// simply the current position.
func (s state) floor(pos int) int {
	switch s.kind {
	case kContent, kBOMCheck, kTagStart, kBang, kDone:
		return pos
	default:
		return s.anchor
	}
}

// rebase shifts every buffer-local offset s holds by -drop, called
// immediately after Cursor.Compact drops drop bytes from the front of
// the buffer. Fields unused by the current kind are rebased too; that
// is harmless since they are never read again until re-initialized.
func (s *state) rebase(drop int) {
	if drop == 0 {
		return
	}
	s.anchor -= drop
	s.start -= drop
	s.end -= drop
	s.nameStart -= drop
	s.nameEnd -= drop
	s.valueStart -= drop
	for i := range s.attrs {
		s.attrs[i].nameStart -= drop
		s.attrs[i].nameEnd -= drop
		if s.attrs[i].value == nil {
			s.attrs[i].valueStart -= drop
			s.attrs[i].valueEnd -= drop
		}
	}
}

// config bundles the Decoder-level options (SPEC_FULL.md §3's
// "functional fields on Decoder" configuration style) that the state
// machine's step functions need to consult.
type config struct {
	NameMode                  NameMode
	DetectDuplicateAttributes bool
	EnforceCommentHyphenRule  bool
}

// resultKind is the four-way return contract of spec.md §4.3: every
// step either consumes and stays (folded into rContinue's next being
// the same kind), transitions (rContinue), emits (rEvent, possibly
// two events for a self-closing tag), suspends (rSuspend), or fails
// fatally (rError). rDone signals clean end of input.
type resultKind int

const (
	rContinue resultKind = iota
	rSuspend
	rDone
	rError
	rEvent
)

// result is the value every step function in machine.go returns.
type result struct {
	kind   resultKind
	next   state
	events []Event
	err    *ParseError
}

var stateKindNames = [...]string{
	kContent: "Content", kBOMCheck: "BOMCheck", kTagStart: "TagStart",
	kBang: "Bang", kText: "Text", kEntityRefText: "EntityRefText",
	kOpenTagName: "OpenTagName", kCloseTagName: "CloseTagName",
	kCloseTagEnd: "CloseTagEnd", kAttributes: "Attributes",
	kAttrName: "AttrName", kAttrEq: "AttrEq", kAttrQuote: "AttrQuote",
	kAttrValue: "AttrValue", kAttrEntity: "AttrEntity", kComment: "Comment",
	kCData: "CData", kDoctype: "Doctype", kPI: "PI",
	kPIContent: "PIContent", kProlog: "Prolog", kSelfClose: "SelfClose",
	kDone: "Done",
}

func (k stateKind) String() string {
	if int(k) < len(stateKindNames) {
		return stateKindNames[k]
	}
	return "Unknown"
}

func (k resultKind) String() string {
	switch k {
	case rContinue:
		return "continue"
	case rSuspend:
		return "suspend"
	case rDone:
		return "done"
	case rError:
		return "error"
	case rEvent:
		return "event"
	default:
		return "unknown"
	}
}
