package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// payload is image bytes with their resolved type.
type payload struct {
	data        []byte
	contentType string
	ext         string
	source      string
}

// resolvePath places a feed-relative path under root; the result never leaves root.
func resolvePath(root, rel string) string {
	return filepath.Join(root, filepath.Clean(string(filepath.Separator)+filepath.FromSlash(rel)))
}

func readLocal(root, rel string) (payload, error) {
	full := resolvePath(root, rel)
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return payload{}, fmt.Errorf("%w: %s", ErrMediaNotFound, rel)
	}
	if err != nil {
		return payload{}, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	if len(data) == 0 {
		return payload{}, fmt.Errorf("%w: %s is empty", ErrMediaDecode, rel)
	}

	contentType, ext := sniff(data, "")
	if contentType == octetStream {
		ext = normalizeExt(filepath.Ext(full))
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			contentType = guessed
		}
	}
	return payload{data: data, contentType: contentType, ext: ext, source: "local"}, nil
}

// readDataURI decodes data:<mime>;base64,<payload>. Without the base64 marker the whole
// value is taken as raw base64 of unknown type.
func readDataURI(uri string) (payload, error) {
	declared := ""
	encoded := uri
	if idx := strings.Index(uri, "base64,"); idx >= 0 {
		header := strings.TrimSuffix(uri[:idx], ";")
		declared = strings.TrimPrefix(header, "data:")
		encoded = uri[idx+len("base64,"):]
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return payload{}, err
	}
	contentType, ext := sniff(data, declared)
	return payload{data: data, contentType: contentType, ext: ext, source: "data-uri"}, nil
}

func readBase64(encoded, contentType string) (payload, error) {
	p, err := readDataURI("data:" + strings.TrimSpace(contentType) + ";base64," + encoded)
	p.source = "base64"
	return p, err
}

func decodeBase64(encoded string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, encoded)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMediaDecode)
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(cleaned); err == nil && len(data) > 0 {
			return data, nil
		}
	}
	return nil, fmt.Errorf("%w: malformed base64", ErrMediaDecode)
}

// sniff detects the content type from the bytes, falling back to the declared type.
func sniff(data []byte, declared string) (string, string) {
	detected := mimetype.Detect(data)
	if !detected.Is(octetStream) {
		return baseType(detected.String()), normalizeExt(detected.Extension())
	}

	declared = baseType(declared)
	if declared == "" || declared == octetStream {
		return octetStream, ".bin"
	}
	if m := mimetype.Lookup(declared); m != nil {
		return declared, normalizeExt(m.Extension())
	}
	if exts, _ := mime.ExtensionsByType(declared); len(exts) > 0 {
		return declared, normalizeExt(exts[0])
	}
	return declared, ".bin"
}

func baseType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		return parsed
	}
	return strings.ToLower(contentType)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ".bin"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch ext {
	case ".jpeg", ".jpe", ".jfif":
		return ".jpg"
	}
	return ext
}
