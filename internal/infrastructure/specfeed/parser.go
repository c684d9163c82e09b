package specfeed

import (
	"encoding/xml"
	"fmt"

	"github.com/mld/backend/internal/domain/shared"
)

// specsNode is one <product_specs> element. Some feeds double-wrap the list
// (<product_specs><product_specs>…), so each node may either be a spec
// itself or hold the real spec elements.
type specsNode struct {
	Nested []ProductSpec `xml:"product_specs"`
	ProductSpec
}

type feedRoot struct {
	Specs []specsNode `xml:"product_specs"`
}

// Parse decodes a manufacturer feed document. The root element may be the
// spec container itself or a product_data wrapper, and the spec list may be
// singly or doubly wrapped; all shapes flatten into the same Feed.
func Parse(data []byte) (*Feed, error) {
	var root feedRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	feed := &Feed{}
	for _, node := range root.Specs {
		if len(node.Nested) > 0 {
			feed.Specs = append(feed.Specs, node.Nested...)
			continue
		}
		feed.Specs = append(feed.Specs, node.ProductSpec)
	}

	if len(feed.Specs) == 0 {
		return nil, fmt.Errorf("%w: feed contains no product specs", shared.ErrInvalidInput)
	}
	return feed, nil
}
