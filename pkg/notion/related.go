package notion

import (
	"context"
	"fmt"
	"strings"

	"github.com/jomei/notionapi"
)

// RelatedPage is one row of a project or sprint database.
type RelatedPage struct {
	ID         string
	Title      string
	StatusID   string
	StatusName string
}

// RelatedDB resolves relation ids to the titles of a project or sprint database.
// A nil *RelatedDB resolves every id to "".
type RelatedDB struct {
	pages map[string]RelatedPage
	order []string
}

// LoadRelatedDB reads every row of the database. The title is taken from the row's
// title property whatever its name, and the status from statusProp when present.
func LoadRelatedDB(ctx context.Context, client *notionapi.Client, dbID, statusProp string) (*RelatedDB, error) {
	db := &RelatedDB{pages: make(map[string]RelatedPage)}
	err := queryAll(ctx, client, dbID, nil, func(page notionapi.Page) {
		rp := RelatedPage{ID: string(page.ID)}
		for name, prop := range page.Properties {
			switch p := prop.(type) {
			case *notionapi.TitleProperty:
				rp.Title = plainText(p.Title)
			case *notionapi.StatusProperty:
				if name == statusProp {
					rp.StatusID = string(p.Status.ID)
					rp.StatusName = p.Status.Name
				}
			}
		}
		db.add(rp)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to load related database %s: %w", dbID, err)
	}
	return db, nil
}

// NewRelatedDB builds a RelatedDB from already loaded rows.
func NewRelatedDB(pages ...RelatedPage) *RelatedDB {
	db := &RelatedDB{pages: make(map[string]RelatedPage)}
	for _, p := range pages {
		db.add(p)
	}
	return db
}

func (db *RelatedDB) add(p RelatedPage) {
	key := normalizeID(p.ID)
	if _, ok := db.pages[key]; !ok {
		db.order = append(db.order, key)
	}
	db.pages[key] = p
}

// Title returns the title of the row with the given id. ok is false when the id is
// not in the database.
func (db *RelatedDB) Title(id string) (title string, ok bool) {
	if db == nil {
		return "", true
	}
	p, ok := db.pages[normalizeID(id)]
	return p.Title, ok
}

// Len is the number of rows loaded.
func (db *RelatedDB) Len() int {
	if db == nil {
		return 0
	}
	return len(db.pages)
}

// FindByStatus returns the first row whose status id or status name equals marker.
func (db *RelatedDB) FindByStatus(marker string) (RelatedPage, bool) {
	if db == nil || marker == "" {
		return RelatedPage{}, false
	}
	for _, key := range db.order {
		p := db.pages[key]
		if p.StatusID == marker || p.StatusName == marker {
			return p, true
		}
	}
	return RelatedPage{}, false
}

func normalizeID(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}

func plainText(rts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range rts {
		if rt.PlainText != "" {
			b.WriteString(rt.PlainText)
		} else if rt.Text != nil {
			b.WriteString(rt.Text.Content)
		}
	}
	return b.String()
}

// queryAll runs a database query and hands every result page to fn, following
// cursors until the last page.
func queryAll(ctx context.Context, client *notionapi.Client, dbID string, filter notionapi.Filter, fn func(notionapi.Page)) error {
	req := &notionapi.DatabaseQueryRequest{
		Filter:   filter,
		PageSize: pageSize,
	}
	for {
		resp, err := client.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
		if err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
		for _, page := range resp.Results {
			fn(page)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return nil
		}
		req.StartCursor = resp.NextCursor
	}
}
