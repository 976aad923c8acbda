// Package feed reads catalog feed files into fixed-shape records.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrUnreadable is returned when the feed file cannot be read.
	ErrUnreadable = errors.New("feed unreadable")
	// ErrInvalid is returned when the feed is not a JSON array of objects.
	ErrInvalid = errors.New("feed invalid")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Key fallback chains, first present key wins.
var (
	externalIDKeys  = []string{"ProductId", "product_id", "external_id", "id"}
	nameKeys        = []string{"Name", "Title", "title", "name"}
	descriptionKeys = []string{"Description", "description"}
	priceKeys       = []string{"Price", "price"}
	activeKeys      = []string{"IsActive", "is_active", "active"}
	skuKeys         = []string{"Sku", "SKU", "sku"}
	attributeKeys   = []string{"Size", "VariantAttribute", "variant_attribute", "size"}
	localPathKeys   = []string{"ThumbnailPath", "thumbnail_path", "image_path"}
	dataURIKeys     = []string{"ThumbnailDataUri", "thumbnail_data_uri", "data_uri"}
	base64Keys      = []string{"ThumbnailBase64", "thumbnail_base64", "image_base64"}
	contentTypeKeys = []string{"ThumbnailContentType", "thumbnail_content_type", "content_type"}
)

// Load reads and parses a feed file.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return Parse(data)
}

// Parse decodes a feed: a JSON array of records or an object with a "products" array.
func Parse(data []byte) ([]Record, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalid)
	}

	var items []map[string]interface{}
	switch data[0] {
	case '[':
		if err := decode(data, &items); err != nil {
			return nil, err
		}
	case '{':
		var wrapper struct {
			Products []map[string]interface{} `json:"products"`
		}
		if err := decode(data, &wrapper); err != nil {
			return nil, err
		}
		if wrapper.Products == nil {
			return nil, fmt.Errorf("%w: object without products array", ErrInvalid)
		}
		items = wrapper.Products
	default:
		return nil, fmt.Errorf("%w: expected array or object", ErrInvalid)
	}

	records := make([]Record, 0, len(items))
	for i, item := range items {
		record := fromMap(item)
		record.Index = i
		records = append(records, record)
	}
	return records, nil
}

// ParseRecord decodes a single JSON object, as carried by one stream message.
func ParseRecord(data []byte) (Record, error) {
	data = bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	var item map[string]interface{}
	if err := decode(data, &item); err != nil {
		return Record{}, err
	}
	if item == nil {
		return Record{}, fmt.Errorf("%w: null record", ErrInvalid)
	}
	return fromMap(item), nil
}

func decode(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func fromMap(item map[string]interface{}) Record {
	record := Record{
		ExternalID:  strings.TrimSpace(text(first(item, externalIDKeys))),
		Name:        text(first(item, nameKeys)),
		Description: text(first(item, descriptionKeys)),
		Active:      flag(first(item, activeKeys), true),
		SKU:         strings.TrimSpace(text(first(item, skuKeys))),
		Attribute:   strings.TrimSpace(text(first(item, attributeKeys))),
		Thumbnail: Thumbnail{
			LocalPath:   strings.TrimSpace(text(first(item, localPathKeys))),
			DataURI:     strings.TrimSpace(text(first(item, dataURIKeys))),
			Base64:      strings.TrimSpace(text(first(item, base64Keys))),
			ContentType: strings.TrimSpace(text(first(item, contentTypeKeys))),
		},
	}
	if raw := first(item, priceKeys); raw != nil {
		price := text(raw)
		record.Price = &price
	}
	return record
}

// first returns the value of the first key that is present and not null.
func first(item map[string]interface{}, keys []string) interface{} {
	for _, key := range keys {
		if v, ok := item[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func flag(v interface{}, fallback bool) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return fallback
		}
		return n != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return fallback
}
