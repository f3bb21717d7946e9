// This file implements the persisted cart format: a JSON array of line items
// with the field names id, title, image_url, price, quantity.
package cart

import (
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/gomarket/pkg/types"
)

// encodeItems serializes the full collection. An empty cart encodes as "[]".
func encodeItems(items []types.Product) (string, error) {
	if items == nil {
		items = []types.Product{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding cart: %w", err)
	}
	return string(b), nil
}

// decodeItems parses a persisted blob. Returns an error wrapping
// types.ErrParse when the blob is not a JSON array of line items.
// A JSON null decodes to an empty cart. Unknown fields are ignored.
func decodeItems(blob string) ([]types.Product, error) {
	var items []types.Product
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParse, err)
	}
	return items, nil
}
