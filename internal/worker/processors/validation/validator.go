package validation

import (
	"fmt"
	"strings"

	"catalogsync/internal/feed"
	"catalogsync/internal/logger"
	"catalogsync/internal/pricing"
)

// Severity tells whether an issue stops the record.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Issue struct {
	Field    string   `json:"field"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Severity, i.Field, i.Message)
}

// Validator reports feed record problems the importer would otherwise absorb silently.
type Validator struct {
	commerce bool
	logger   *logger.Logger
}

func New(commerce bool, logger *logger.Logger) *Validator {
	return &Validator{
		commerce: commerce,
		logger:   logger,
	}
}

func (v *Validator) ValidateRecord(record feed.Record) []Issue {
	var issues []Issue

	if record.ExternalID == "" {
		issues = append(issues, Issue{Field: "external_id", Severity: SeverityError, Message: "missing"})
	}
	if strings.TrimSpace(record.Name) == "" {
		issues = append(issues, Issue{Field: "name", Severity: SeverityWarning, Message: "empty title"})
	}

	if record.HasPrice() {
		if _, err := pricing.Coerce(*record.Price); err != nil {
			issues = append(issues, Issue{Field: "price", Severity: SeverityWarning, Message: fmt.Sprintf("%v, stored as %s", err, pricing.Zero)})
		}
	}

	if !v.commerce {
		if record.SKU != "" || record.Attribute != "" || record.HasPrice() {
			issues = append(issues, Issue{Field: "commerce", Severity: SeverityWarning, Message: "sku, price and variant attribute are ignored"})
		}
	}

	t := record.Thumbnail
	if t.Base64 != "" && t.ContentType == "" && t.LocalPath == "" && t.DataURI == "" {
		issues = append(issues, Issue{Field: "thumbnail", Severity: SeverityWarning, Message: "base64 payload without content type"})
	}

	if len(issues) > 0 {
		v.logger.Debug("Record %q has %d issues", record.ExternalID, len(issues))
	}
	return issues
}
