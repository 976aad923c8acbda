package validation

import (
	"testing"

	"catalogsync/internal/feed"
	"catalogsync/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecord(t *testing.T) {
	bad := "abc"
	good := "4.5"

	tests := []struct {
		name     string
		commerce bool
		record   feed.Record
		fields   []string
	}{
		{"clean", true, feed.Record{ExternalID: "1", Name: "Mug", Price: &good}, nil},
		{"missing id and name", true, feed.Record{}, []string{"external_id", "name"}},
		{"unparsable price", true, feed.Record{ExternalID: "1", Name: "Mug", Price: &bad}, []string{"price"}},
		{"commerce fields ignored", false, feed.Record{ExternalID: "1", Name: "Mug", SKU: "M"}, []string{"commerce"}},
		{"base64 without type", true, feed.Record{ExternalID: "1", Name: "Mug", Thumbnail: feed.Thumbnail{Base64: "AAAA"}}, []string{"thumbnail"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := New(tt.commerce, logger.Nop()).ValidateRecord(tt.record)

			var fields []string
			for _, i := range issues {
				fields = append(fields, i.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}
