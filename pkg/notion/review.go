package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/harrisonrobin/tasksync/pkg/model"
)

// ReviewTitleProperty is the title property of the review database.
const ReviewTitleProperty = "Name"

// maxBlocks is the number of children Notion accepts in a single request.
const maxBlocks = 100

// ReviewDB writes quarterly review pages.
type ReviewDB struct {
	client *notionapi.Client
	dbID   string
}

func NewReviewDB(client *notionapi.Client, dbID string) *ReviewDB {
	return &ReviewDB{client: client, dbID: dbID}
}

// FindPage returns the id of a page whose title equals title.
func (db *ReviewDB) FindPage(ctx context.Context, title string) (string, bool, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter: &notionapi.PropertyFilter{
			Property: ReviewTitleProperty,
			Title:    &notionapi.TextFilterCondition{Equals: title},
		},
		PageSize: 1,
	}
	resp, err := db.client.Database.Query(ctx, notionapi.DatabaseID(db.dbID), req)
	if err != nil {
		return "", false, fmt.Errorf("unable to search review pages: %w", err)
	}
	if len(resp.Results) == 0 {
		return "", false, nil
	}
	return string(resp.Results[0].ID), true, nil
}

// CreatePage creates a review page holding blocks. The first batch of blocks goes
// with the create request and the rest are appended in batches.
func (db *ReviewDB) CreatePage(ctx context.Context, title string, blocks []model.Block) (string, error) {
	children := ToBlocks(blocks)
	first := children
	if len(first) > maxBlocks {
		first = first[:maxBlocks]
	}

	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(db.dbID),
		},
		Properties: notionapi.Properties{
			ReviewTitleProperty: notionapi.TitleProperty{
				Title: []notionapi.RichText{textRun(title)},
			},
		},
		Children: first,
	}
	page, err := db.client.Page.Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("unable to create review page %q: %w", title, err)
	}
	pageID := string(page.ID)

	if err := db.appendChildren(ctx, pageID, children[len(first):]); err != nil {
		return pageID, err
	}
	return pageID, nil
}

func (db *ReviewDB) appendChildren(ctx context.Context, pageID string, children []notionapi.Block) error {
	for start := 0; start < len(children); start += maxBlocks {
		end := min(start+maxBlocks, len(children))
		req := &notionapi.AppendBlockChildrenRequest{Children: children[start:end]}
		if _, err := db.client.Block.AppendChildren(ctx, notionapi.BlockID(pageID), req); err != nil {
			return fmt.Errorf("unable to append blocks %d-%d to page %s: %w", start, end, pageID, err)
		}
	}
	return nil
}

// ToBlocks converts report blocks to Notion blocks.
func ToBlocks(blocks []model.Block) []notionapi.Block {
	out := make([]notionapi.Block, 0, len(blocks))
	for _, b := range blocks {
		text := []notionapi.RichText{textRun(b.Text)}
		switch b.Kind {
		case model.BlockHeading2:
			out = append(out, &notionapi.Heading2Block{
				BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
				Heading2:   notionapi.Heading{RichText: text},
			})
		case model.BlockHeading3:
			out = append(out, &notionapi.Heading3Block{
				BasicBlock: basicBlock(notionapi.BlockTypeHeading3),
				Heading3:   notionapi.Heading{RichText: text},
			})
		case model.BlockBullet:
			out = append(out, &notionapi.BulletedListItemBlock{
				BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
				BulletedListItem: notionapi.ListItem{RichText: text},
			})
		default:
			out = append(out, &notionapi.ParagraphBlock{
				BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
				Paragraph:  notionapi.Paragraph{RichText: text},
			})
		}
	}
	return out
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
}
