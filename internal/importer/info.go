package importer

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/talkincode/toughkiosk/internal/domain"
)

// parseInfo populates product scalar fields from an info.txt file of
// "key: value" lines. Recognized keys: name, sku, price, description,
// spec-<Name>, feature (repeatable), box (repeatable), dimensions
// ("W x H x D", optionally with a weight line). Unknown keys are ignored.
func parseInfo(p *domain.Product, data []byte) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		lower := strings.ToLower(key)
		switch {
		case lower == "name":
			p.Name = value
		case lower == "sku":
			p.Sku = value
		case lower == "price":
			p.Price = value
		case lower == "description":
			p.Description = value
		case lower == "feature":
			p.Features = append(p.Features, value)
		case lower == "box":
			p.BoxContents = append(p.BoxContents, value)
		case lower == "weight":
			if len(p.Dimensions) > 0 {
				p.Dimensions[len(p.Dimensions)-1].Weight = value
			}
		case lower == "dimensions":
			if d, ok := parseDimensions(value); ok {
				p.Dimensions = append(p.Dimensions, d)
			}
		case strings.HasPrefix(lower, "spec-"):
			specName := strings.TrimSpace(key[len("spec-"):])
			if specName != "" {
				p.Specs[specName] = value
			}
		}
	}
}

// parseDimensions splits a "W x H x D" value. Separator is a lone x or X.
func parseDimensions(value string) (domain.DimensionSet, bool) {
	parts := splitDims(value)
	if len(parts) != 3 {
		return domain.DimensionSet{}, false
	}
	return domain.DimensionSet{
		Label:  "Standard",
		Width:  parts[0],
		Height: parts[1],
		Depth:  parts[2],
	}, true
}

func splitDims(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == 'x' || r == 'X' || r == '×'
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
