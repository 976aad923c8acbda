package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshots(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

func TestListSnapshots(t *testing.T) {
	dir := t.TempDir()
	writeSnapshots(t, dir, map[string]string{
		"product_10.json":  `{"id": "10", "title": "Ten", "price": "10.00"}`,
		"product_9.json":   `{"id": "9", "title": "Nine"}`,
		"product_abc.json": `{"id": "abc", "title": "Letters"}`,
		"product_bad.json": `{not json`,
		"products.json":    `[]`,
		"other_1.json":     `{"id": "1"}`,
	})

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all sorted by id", 0, []string{"9", "10", "abc"}},
		{"limited", 2, []string{"9", "10"}},
		{"limit above count", 10, []string{"9", "10", "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshots, err := ListSnapshots(dir, tt.limit)
			require.NoError(t, err)

			ids := make([]string, 0, len(snapshots))
			for _, s := range snapshots {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	snapshots, err := ListSnapshots(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, "Nine", snapshots[0].Title)
	assert.Nil(t, snapshots[0].Price)
	require.NotNil(t, snapshots[1].Price)
	assert.Equal(t, "10.00", *snapshots[1].Price)
}

func TestListSnapshotsMissingDir(t *testing.T) {
	snapshots, err := ListSnapshots(filepath.Join(t.TempDir(), "absent"), 0)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}
