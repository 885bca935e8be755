package index

import (
	"github.com/johns/traceview/internal/discover"
	"github.com/johns/traceview/internal/trace"
)

// RebuildResult reports what a rebuild pass did.
type RebuildResult struct {
	Scanned int // sessions rescanned
	Fresh   int // sessions left alone
}

// Rebuild walks the projects root and rescans every trace whose indexed row
// is stale. Sessions are independent, so a scan failure on one file only
// costs that file its entry.
func (d *DB) Rebuild(projectsRoot string) (RebuildResult, error) {
	var res RebuildResult

	files, err := discover.Discover(projectsRoot)
	if err != nil {
		return res, err
	}

	for _, f := range files {
		fresh, err := d.Fresh(f.SessionID, f.ModTime, f.Size)
		if err != nil {
			return res, err
		}
		if fresh {
			res.Fresh++
			continue
		}

		sum, err := trace.ScanFile(f.Path, f.ProjectName, f.ProjectDir)
		if err != nil {
			// One unreadable trace keeps its stale entry; the rest of
			// the rebuild proceeds.
			continue
		}
		if sum.SessionID == "" {
			sum.SessionID = f.SessionID
		}
		if err := d.Upsert(sum, f.ModTime, f.Size); err != nil {
			return res, err
		}
		res.Scanned++
	}

	return res, nil
}
