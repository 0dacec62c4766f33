package convert

import (
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// rawRecord is the tolerant intermediate shape one API record decodes
// into. The Logseq API nests references (`parent: {id: 8644}`) and embeds
// the page into every block, but other query endpoints return flat keys
// (`parent_id`) and a leading page container record, so both spellings are
// accepted. Unknown fields are ignored.
type rawRecord struct {
	ID           any              `mapstructure:"id"`
	Name         any              `mapstructure:"name"`
	OriginalName any              `mapstructure:"originalName"`
	Content      string           `mapstructure:"content"`
	Parent       any              `mapstructure:"parent"`
	Left         any              `mapstructure:"left"`
	ParentID     any              `mapstructure:"parent_id"`
	LeftID       any              `mapstructure:"left_id"`
	Page         map[string]any   `mapstructure:"page"`
	Properties   map[string]any   `mapstructure:"properties"`
	Children     []map[string]any `mapstructure:"children"`
}

// parentRef returns the parent block id, preferring the nested reference.
func (r rawRecord) parentRef() string {
	if id := refID(r.Parent); id != "" {
		return id
	}
	return refID(r.ParentID)
}

// leftRef returns the left sibling id, preferring the nested reference.
func (r rawRecord) leftRef() string {
	if id := refID(r.Left); id != "" {
		return id
	}
	return refID(r.LeftID)
}

// isPageContainer reports whether the record looks like the page itself
// rather than a block: it carries a name but no content and no parent.
func (r rawRecord) isPageContainer() bool {
	if r.Content != "" || r.parentRef() != "" {
		return false
	}
	return refID(r.Name) != "" || refID(r.OriginalName) != ""
}

// refID coerces a reference value to a string id. The API sends ids as
// numbers or strings, either bare or wrapped in a `{id: ...}` map; nil
// and missing values coerce to "".
func refID(v any) string {
	if m, ok := v.(map[string]any); ok {
		return cast.ToString(m["id"])
	}
	return cast.ToString(v)
}

func pageFromMap(m map[string]any) Page {
	return Page{
		ID:           cast.ToString(m["id"]),
		Name:         cast.ToString(m["name"]),
		OriginalName: cast.ToString(m["originalName"]),
	}
}

// CleanResponse converts a raw Logseq API response into a Page and a
// mapping of block id to Block. Records missing an id are skipped,
// duplicate ids keep the last occurrence, and blocks nested under a
// record's `children` are flattened into the mapping with parent and
// sibling references synthesized when absent. Never fails: a malformed
// response yields whatever page and blocks could be recovered.
func CleanResponse(records []map[string]any) (Page, map[string]*Block) {
	c := &cleaner{blocks: make(map[string]*Block)}

	for i, raw := range records {
		rec, ok := decodeRecord(raw)
		if !ok {
			continue
		}
		if c.page.ID == "" && len(rec.Page) > 0 {
			c.page = pageFromMap(rec.Page)
		}
		if i == 0 && c.page.ID == "" && rec.isPageContainer() {
			c.page = Page{
				ID:           refID(rec.ID),
				Name:         refID(rec.Name),
				OriginalName: refID(rec.OriginalName),
			}
			c.addChildren(rec.Children, c.page.ID)
			continue
		}
		c.add(rec, "", "")
	}

	return c.page, c.blocks
}

type cleaner struct {
	page   Page
	blocks map[string]*Block
	seq    int
}

// add records one block and flattens its nested children. fallbackParent
// and fallbackLeft fill in references the record itself lacks, which is
// how nested tree responses encode position.
func (c *cleaner) add(rec rawRecord, fallbackParent, fallbackLeft string) {
	id := refID(rec.ID)
	if id == "" {
		// unidentifiable record: its children may still be valid blocks
		c.addChildren(rec.Children, fallbackParent)
		return
	}

	parentID := rec.parentRef()
	if parentID == "" {
		parentID = fallbackParent
	}
	leftID := rec.leftRef()
	if leftID == "" {
		leftID = fallbackLeft
	}

	c.blocks[id] = &Block{
		ID:         id,
		ParentID:   parentID,
		LeftID:     leftID,
		Content:    rec.Content,
		Properties: rec.Properties,
		seq:        c.seq,
	}
	c.seq++

	c.addChildren(rec.Children, id)
}

func (c *cleaner) addChildren(children []map[string]any, parentID string) {
	left := parentID
	for _, raw := range children {
		rec, ok := decodeRecord(raw)
		if !ok {
			continue
		}
		c.add(rec, parentID, left)
		if id := refID(rec.ID); id != "" {
			left = id
		}
	}
}

// decodeRecord decodes weakly typed so that schema drift (numeric
// content, stringly ids) degrades a single record instead of the response.
func decodeRecord(raw map[string]any) (rawRecord, bool) {
	var rec rawRecord
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
	})
	if err != nil || dec.Decode(raw) != nil {
		return rawRecord{}, false
	}
	return rec, true
}
