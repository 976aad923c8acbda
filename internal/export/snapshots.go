package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const snapshotPrefix = "product_"

// ListSnapshots reads the product_*.json documents in dir ordered by id, numerically when both
// ids are numbers. Files that cannot be read or decoded are skipped. A positive limit keeps
// the first limit snapshots. A missing directory yields no snapshots.
func ListSnapshots(dir string, limit int) ([]Snapshot, error) {
	paths, err := filepath.Glob(filepath.Join(dir, snapshotPrefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]Snapshot, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		var s Snapshot
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}
		snapshots = append(snapshots, s)
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		return idLess(snapshots[i].ID, snapshots[j].ID)
	})
	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}
	return snapshots, nil
}

func idLess(a, b string) bool {
	x, errA := strconv.ParseFloat(a, 64)
	y, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil && x != y {
		return x < y
	}
	return a < b
}
