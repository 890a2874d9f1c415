package syncer

import (
	"github.com/pkg/errors"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/migrate"
)

// Export serializes a standalone pretty-printed document file for manual
// backup. The transient fleet field is not part of a backup.
func Export(doc *domain.Document) ([]byte, error) {
	stripped := *doc
	stripped.Fleet = nil
	data, err := json.MarshalIndent(&stripped, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "export document")
	}
	return data, nil
}

// Import parses a previously exported file. Files without a brand list are
// rejected as invalid; everything else is repaired by normalization.
func Import(data []byte) (*domain.Document, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parse import file")
	}
	brands, ok := raw["brands"]
	if !ok {
		return nil, errors.New("invalid import file: missing brand list")
	}
	if _, isList := brands.([]interface{}); !isList {
		return nil, errors.New("invalid import file: brand list malformed")
	}
	return migrate.Normalize(raw), nil
}
