// Package media imports feed thumbnails into the blob bucket and binds them to catalog entities.
package media

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"catalogsync/internal/feed"
	"catalogsync/internal/models"
	"catalogsync/internal/repository"
	"catalogsync/internal/storage"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"
)

var (
	// ErrNoMedia is returned when a record carries no image reference.
	ErrNoMedia = errors.New("no media reference")
	// ErrMediaNotFound is returned when a local path does not exist under the data root.
	ErrMediaNotFound = errors.New("media file not found")
	// ErrMediaDecode is returned for payloads that cannot be decoded.
	ErrMediaDecode = errors.New("media payload cannot be decoded")
)

const thumbnailLabel = "thumbnail"

// DefaultMaxPixels bounds the images decoded for derivatives when Config.MaxPixels is zero.
const DefaultMaxPixels = 40_000_000

type Config struct {
	// DataRoot is the directory local paths are resolved against.
	DataRoot string
	// Prefix starts every generated file name.
	Prefix string
	// ThumbnailSize is the bounding box of the thumbnail derivative; zero disables it.
	ThumbnailSize int
	// MaxPixels caps width x height of images decoded for the thumbnail. Larger images are
	// stored without derivatives.
	MaxPixels int64
}

type Importer struct {
	repo   repository.CatalogRepository
	bucket storage.Bucket
	cfg    Config
	now    func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

func NewImporter(repo repository.CatalogRepository, bucket storage.Bucket, cfg Config) *Importer {
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	return &Importer{
		repo:    repo,
		bucket:  bucket,
		cfg:     cfg,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Import stores the first usable form of ref (local path, then data URI, then base64 with
// content type), records it as an asset of entityID and makes it the primary image.
func (i *Importer) Import(ctx context.Context, ref feed.Thumbnail, entityID uint) (*models.Asset, error) {
	p, err := i.load(ref)
	if err != nil {
		return nil, err
	}

	now := i.now().UTC()
	fileName := i.fileName(entityID, now, p.ext)
	key, err := storage.ObjectKey(now, fileName)
	if err != nil {
		return nil, err
	}
	obj, err := i.bucket.Put(ctx, key, p.contentType, p.data)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", fileName, err)
	}

	width, height := dimensions(p.data)
	derivatives, thumbKey := i.derivatives(ctx, key, p, width, height)
	asset := &models.Asset{
		ProductID:   entityID,
		FileName:    fileName,
		StorageKey:  obj.Key,
		URL:         obj.URL,
		ContentType: p.contentType,
		Size:        obj.Size,
		Width:       width,
		Height:      height,
		Derivatives: derivatives,
	}

	assetID, err := i.repo.CreateAsset(ctx, asset)
	if err != nil {
		err = fmt.Errorf("failed to record asset %s: %w", fileName, err)
		return nil, i.discard(ctx, err, key, thumbKey)
	}
	if err := i.repo.SetPrimaryImage(ctx, entityID, assetID); err != nil {
		err = fmt.Errorf("failed to bind asset %d to %d: %w", assetID, entityID, err)
		if delErr := i.repo.DeleteAsset(ctx, assetID); delErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to remove asset %d: %w", assetID, delErr))
		}
		return nil, i.discard(ctx, err, key, thumbKey)
	}
	return asset, nil
}

// discard removes blobs written for an asset that could not be recorded. Cleanup failures
// are joined onto cause.
func (i *Importer) discard(ctx context.Context, cause error, keys ...string) error {
	errs := []error{cause}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := i.bucket.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// LocalPath returns where a feed-relative path resolves under the data root.
func (i *Importer) LocalPath(rel string) string {
	return resolvePath(i.cfg.DataRoot, rel)
}

func (i *Importer) load(ref feed.Thumbnail) (payload, error) {
	if ref.IsZero() {
		return payload{}, ErrNoMedia
	}

	var errs []error
	if ref.LocalPath != "" {
		p, err := readLocal(i.cfg.DataRoot, ref.LocalPath)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
	}
	if ref.DataURI != "" {
		p, err := readDataURI(ref.DataURI)
		if err == nil {
			return p, nil
		}
		errs = append(errs, fmt.Errorf("data uri: %w", err))
	}
	if ref.Base64 != "" {
		p, err := readBase64(ref.Base64, ref.ContentType)
		if err == nil {
			return p, nil
		}
		errs = append(errs, fmt.Errorf("base64: %w", err))
	}
	return payload{}, errors.Join(errs...)
}

// derivatives stores the thumbnail rendition and returns its description and key.
func (i *Importer) derivatives(ctx context.Context, key string, p payload, width, height int) (datatypes.JSONMap, string) {
	if i.cfg.ThumbnailSize <= 0 || width == 0 || height == 0 {
		return nil, ""
	}
	if int64(width)*int64(height) > i.cfg.MaxPixels {
		return nil, ""
	}
	thumb, err := thumbnail(p.data, i.cfg.ThumbnailSize)
	if err != nil {
		return nil, ""
	}
	thumbKey := storage.DerivativeKey(key, thumbnailLabel)
	if thumb.contentType == "image/png" && p.ext != ".png" {
		thumbKey = strings.TrimSuffix(thumbKey, p.ext) + ".png"
	}
	obj, err := i.bucket.Put(ctx, thumbKey, thumb.contentType, thumb.data)
	if err != nil {
		return nil, ""
	}
	return datatypes.JSONMap{
		thumbnailLabel: map[string]interface{}{
			"key":          obj.Key,
			"url":          obj.URL,
			"content_type": thumb.contentType,
			"width":        thumb.width,
			"height":       thumb.height,
		},
	}, obj.Key
}

func (i *Importer) fileName(entityID uint, at time.Time, ext string) string {
	i.mu.Lock()
	token := ulid.MustNew(ulid.Timestamp(at), i.entropy)
	i.mu.Unlock()
	return i.cfg.Prefix + strconv.FormatUint(uint64(entityID), 10) + "_" + token.String() + ext
}
