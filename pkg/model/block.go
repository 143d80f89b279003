package model

// BlockKind is the subset of Notion block types the review report writes.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading2
	BlockHeading3
	BlockBullet
)

// Block is one plain-text block of a review page.
type Block struct {
	Kind BlockKind
	Text string
}
