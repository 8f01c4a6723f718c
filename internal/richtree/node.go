package richtree

// Kind identifies the type of a node.
type Kind uint8

const (
	KindRoot Kind = iota

	// Block kinds.
	KindHeading
	KindParagraph
	KindList
	KindListItem
	KindBlockquote
	KindCodeBlock
	KindTable
	KindTableRow
	KindTableCell
	KindThematicBreak

	// Inline kinds.
	KindText
	KindEmphasis
	KindStrong
	KindStrikethrough
	KindInlineCode
	KindLink
	KindImage
	KindNoteRef
	KindLineBreak
)

var kindNames = [...]string{
	KindRoot:          "root",
	KindHeading:       "heading",
	KindParagraph:     "paragraph",
	KindList:          "list",
	KindListItem:      "list-item",
	KindBlockquote:    "blockquote",
	KindCodeBlock:     "code-block",
	KindTable:         "table",
	KindTableRow:      "table-row",
	KindTableCell:     "table-cell",
	KindThematicBreak: "thematic-break",
	KindText:          "text",
	KindEmphasis:      "emphasis",
	KindStrong:        "strong",
	KindStrikethrough: "strikethrough",
	KindInlineCode:    "inline-code",
	KindLink:          "link",
	KindImage:         "image",
	KindNoteRef:       "note-ref",
	KindLineBreak:     "line-break",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsBlock reports whether k is a block kind.
func (k Kind) IsBlock() bool {
	return k >= KindHeading && k <= KindThematicBreak
}

// IsInline reports whether k is an inline kind.
func (k Kind) IsInline() bool {
	return k >= KindText && k <= KindLineBreak
}

// IsLeaf reports whether nodes of kind k carry their content in Text
// instead of children.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindText, KindInlineCode, KindCodeBlock, KindImage, KindLineBreak, KindThematicBreak:
		return true
	}
	return false
}

// Align is a table column alignment.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the alignment name used in HTML align attributes.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// ParseAlign parses an HTML align value.
func ParseAlign(s string) Align {
	switch s {
	case "left":
		return AlignLeft
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignNone
	}
}

// Tooltip is the note payload joined onto a note reference at render time.
type Tooltip struct {
	Title string
	Body  string
}

// Node holds the attributes of one tree node. Which fields are meaningful
// depends on Kind.
type Node struct {
	Kind Kind

	// Text is the literal content of Text, InlineCode and CodeBlock nodes.
	Text string

	// Heading.
	Level  int
	Anchor string

	// List.
	Ordered bool
	Start   int
	Loose   bool

	// CodeBlock.
	Lang string

	// Link and Image. Href holds the image source for images.
	Href   string
	Title  string
	Alt    string
	Target string
	Rel    string
	Hint   string

	// NoteRef.
	NoteID  string
	Tooltip *Tooltip

	// TableCell.
	Header bool
	Align  Align

	// BlockID is the navigation identifier of a top-level block.
	BlockID string
}
