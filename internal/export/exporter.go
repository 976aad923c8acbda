// Package export turns a relational product table into a feed directory.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"catalogsync/internal/feed"
	"catalogsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

const (
	imagesDir  = "images"
	defaultExt = ".jpg"
	maxImage   = 32 << 20
)

var unsafeID = regexp.MustCompile(`[^0-9A-Za-z_\-]`)

// Publisher receives every exported record. kafka.Writer satisfies it.
type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Options struct {
	Table     string
	Columns   Columns
	Condition string
	// Query replaces the generated SELECT when set.
	Query       string
	OutputDir   string
	FeedFile    string
	HTTPTimeout time.Duration
}

// Report lists what a run produced.
type Report struct {
	Records  int      `json:"records"`
	Images   int      `json:"images"`
	FeedPath string   `json:"feed_path"`
	Warnings []string `json:"warnings"`
}

type Exporter struct {
	source    Querier
	opts      Options
	client    *http.Client
	publisher Publisher
	logger    *logger.Logger
	now       func() time.Time
}

func New(source Querier, opts Options, publisher Publisher, logger *logger.Logger) *Exporter {
	if opts.FeedFile == "" {
		opts.FeedFile = "products.json"
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 30 * time.Second
	}
	return &Exporter{
		source:    source,
		opts:      opts,
		client:    &http.Client{Timeout: opts.HTTPTimeout},
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// NewKafkaPublisher writes records to the feed topic keyed by external id.
func NewKafkaPublisher(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// Query is the statement the exporter runs.
func (e *Exporter) Query() string {
	if strings.TrimSpace(e.opts.Query) != "" {
		return e.opts.Query
	}
	return BuildQuery(e.opts.Table, e.opts.Columns, e.opts.Condition)
}

// Run writes one product_<id>.json per row, downloads images into images/ and writes the
// aggregated feed file. Image download failures are reported as warnings.
func (e *Exporter) Run(ctx context.Context) (Report, error) {
	report := Report{Warnings: []string{}}

	if err := os.MkdirAll(filepath.Join(e.opts.OutputDir, imagesDir), 0o755); err != nil {
		return report, fmt.Errorf("failed to create output directory: %w", err)
	}

	query := e.Query()
	e.logger.Info("Using query: %s", query)

	rows, err := e.source.QueryContext(ctx, query)
	if err != nil {
		return report, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	source, err := scanRows(rows, e.opts.Columns)
	if err != nil {
		return report, err
	}

	records := make([]feed.Record, 0, len(source))
	for _, r := range source {
		if r.id == "" {
			report.Warnings = append(report.Warnings, "row without id skipped")
			continue
		}
		safeID := unsafeID.ReplaceAllString(r.id, "_")

		if err := e.writeProduct(safeID, r); err != nil {
			return report, err
		}

		record := feed.Record{
			Index:       len(records),
			ExternalID:  r.id,
			Name:        r.title,
			Description: r.description,
			Price:       r.price,
			Active:      true,
			SKU:         r.sku,
			Attribute:   r.size,
		}

		if r.imageURL != "" {
			rel, err := e.downloadImage(ctx, safeID, r.imageURL)
			if err != nil {
				e.logger.Warn("Could not download image for %s: %v", safeID, err)
				report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", safeID, err))
			} else {
				e.logger.Info("Downloaded image for %s -> %s", safeID, rel)
				record.Thumbnail.LocalPath = rel
				report.Images++
			}
		}
		records = append(records, record)
	}

	report.Records = len(records)
	report.FeedPath = filepath.Join(e.opts.OutputDir, e.opts.FeedFile)
	if err := writeJSON(report.FeedPath, records); err != nil {
		return report, err
	}

	if e.publisher != nil && len(records) > 0 {
		if err := e.publish(ctx, records); err != nil {
			return report, err
		}
	}

	e.logger.Info("Exported %d records (%d images) to %s", report.Records, report.Images, e.opts.OutputDir)
	return report, nil
}

// Snapshot is the per-row document written by Run.
type Snapshot struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       *string `json:"price"`
	Image       string  `json:"image"`
	ExportedAt  string  `json:"exportedAt"`
}

func (e *Exporter) writeProduct(safeID string, r row) error {
	doc := Snapshot{
		ID:          r.id,
		Title:       r.title,
		Description: r.description,
		Price:       r.price,
		Image:       r.imageURL,
		ExportedAt:  e.now().Format(time.RFC3339),
	}
	return writeJSON(filepath.Join(e.opts.OutputDir, snapshotPrefix+safeID+".json"), doc)
}

func (e *Exporter) downloadImage(ctx context.Context, safeID, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid image url %q", rawURL)
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		ext = defaultExt
	}
	name := "thumb_" + safeID + ext

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImage))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.opts.OutputDir, imagesDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return imagesDir + "/" + name, nil
}

func (e *Exporter) publish(ctx context.Context, records []feed.Record) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		value, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode record %s: %w", r.ExternalID, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(r.ExternalID), Value: value})
	}
	if err := e.publisher.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish records: %w", err)
	}
	e.logger.Info("Published %d records", len(msgs))
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
