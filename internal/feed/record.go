package feed

import (
	"encoding/json"
)

// Record is one product line of the feed after the key fallback chains have been applied.
type Record struct {
	// Index is the zero-based position of the record in its feed.
	Index       int
	ExternalID  string
	Name        string
	Description string
	// Price holds the raw textual price, nil when the feed has none.
	Price     *string
	Active    bool
	SKU       string
	Attribute string
	Thumbnail Thumbnail
}

// Thumbnail is the image reference of a record. Any combination of forms may be set.
type Thumbnail struct {
	LocalPath   string
	DataURI     string
	Base64      string
	ContentType string
}

// IsZero reports whether no image form is present.
func (t Thumbnail) IsZero() bool {
	return t.LocalPath == "" && t.DataURI == "" && t.Base64 == ""
}

func (r Record) HasPrice() bool {
	return r.Price != nil
}

// document is the canonical key layout written by the exporter.
type document struct {
	ProductID            string  `json:"ProductId"`
	Name                 string  `json:"Name,omitempty"`
	Description          string  `json:"Description,omitempty"`
	Price                *string `json:"Price,omitempty"`
	IsActive             bool    `json:"IsActive"`
	SKU                  string  `json:"Sku,omitempty"`
	Size                 string  `json:"Size,omitempty"`
	ThumbnailPath        string  `json:"ThumbnailPath,omitempty"`
	ThumbnailDataURI     string  `json:"ThumbnailDataUri,omitempty"`
	ThumbnailBase64      string  `json:"ThumbnailBase64,omitempty"`
	ThumbnailContentType string  `json:"ThumbnailContentType,omitempty"`
}

// MarshalJSON writes the record with the primary key of every fallback chain.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(document{
		ProductID:            r.ExternalID,
		Name:                 r.Name,
		Description:          r.Description,
		Price:                r.Price,
		IsActive:             r.Active,
		SKU:                  r.SKU,
		Size:                 r.Attribute,
		ThumbnailPath:        r.Thumbnail.LocalPath,
		ThumbnailDataURI:     r.Thumbnail.DataURI,
		ThumbnailBase64:      r.Thumbnail.Base64,
		ThumbnailContentType: r.Thumbnail.ContentType,
	})
}
