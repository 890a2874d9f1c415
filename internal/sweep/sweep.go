// Package sweep moves time-expired catalogues from the active list into
// the archive. The partition itself is pure; the follow-up best-effort
// remote write is owned by the sync engine so every device does not redo
// the same cleanup independently.
package sweep

import (
	"time"

	"github.com/talkincode/toughkiosk/internal/domain"
)

// Result reports what a sweep changed.
type Result struct {
	Expired []string // ids moved to the archive
}

// Changed reports whether the sweep archived anything.
func (r Result) Changed() bool {
	return len(r.Expired) > 0
}

// Sweep partitions doc.Catalogues against now. Entries whose end date lies
// strictly before now move to Archive.Catalogues and get a DeletedAt
// record; entries with no end date, an unparseable end date, or a future
// end date stay active and untouched. The document is mutated in place and
// returned for convenience.
func Sweep(doc *domain.Document, now time.Time) (*domain.Document, Result) {
	var res Result
	if doc == nil {
		return doc, res
	}

	active := doc.Catalogues[:0]
	for _, c := range doc.Catalogues {
		if !c.Expired(now) {
			active = append(active, c)
			continue
		}
		doc.Archive.Catalogues = append(doc.Archive.Catalogues, c)
		if doc.Archive.DeletedAt == nil {
			doc.Archive.DeletedAt = map[string]string{}
		}
		doc.Archive.DeletedAt[c.Id] = now.UTC().Format(time.RFC3339)
		res.Expired = append(res.Expired, c.Id)
	}
	doc.Catalogues = active
	return doc, res
}
