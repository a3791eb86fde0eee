package models

// Item is a top-level bibliographic record from a Zotero library.
// Key is the stable 8-character public identifier; the numeric row ID used
// inside zotero.sqlite never leaves the catalog layer.
type Item struct {
	Key          string    `json:"key"`
	Title        string    `json:"title,omitempty"`
	ItemType     string    `json:"item_type,omitempty"`
	Abstract     string    `json:"abstract,omitempty"`
	URL          string    `json:"url,omitempty"`
	Date         string    `json:"date,omitempty"`
	DateAdded    string    `json:"date_added,omitempty"`
	DateModified string    `json:"date_modified,omitempty"`
	Creators     []Creator `json:"creators,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
}

// Creator is a person or entity attached to an item with a role. Name is set
// for single-field creators (institutions etc.), FirstName/LastName otherwise.
type Creator struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
	CreatorType string `json:"creatorType,omitempty"`
}

// Note is a child item holding free text attached to a parent item.
type Note struct {
	Key   string   `json:"key"`
	Text  string   `json:"text"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// PDFContent is the derived text of an item's first PDF attachment. It is
// computed on demand and never persisted in the catalog.
type PDFContent struct {
	Text          string `json:"text_content"`
	AttachmentKey string `json:"attachment_key"`
	PageCount     int    `json:"page_count"`
}

// ExtractedText is the raw per-page output of the PDF text extractor.
type ExtractedText struct {
	Pages     []string
	PageCount int
}
