package closeoutsync

import (
	"fmt"
	"html"
	"strings"

	"github.com/mld/backend/internal/domain/closeout"
)

// FailureEmailSubject is the subject of the batched failure notification
const FailureEmailSubject = "⚠️ Inventory Sync Failures Detected"

// FailureReportHTML renders the batched failure notification body, one table
// row per unmatched inventory item.
func FailureReportHTML(failures []closeout.Failure) string {
	var rows strings.Builder
	for _, f := range failures {
		rows.WriteString(fmt.Sprintf(`
          <tr>
            <td>%s</td>
            <td>%s</td>
            <td>%s</td>
          </tr>`,
			html.EscapeString(f.AcumaticaSku),
			html.EscapeString(f.ModelNumber),
			html.EscapeString(f.Reason),
		))
	}

	return fmt.Sprintf(`
    <h2>Inventory Sync Failures</h2>
    <p>The following inventory items could not be processed because they were not found in the product catalog:</p>
    <table border="1" cellpadding="6" cellspacing="0">
      <thead>
        <tr>
          <th>Acumatica SKU</th>
          <th>Normalized Model Number</th>
          <th>Reason</th>
        </tr>
      </thead>
      <tbody>%s
      </tbody>
    </table>`, rows.String())
}

// NotFoundEmailSubject is the subject of the legacy create-path notification
const NotFoundEmailSubject = "❌ Product Not Found in Catalog (Create Endpoint)"

// NotFoundEmailBody renders the legacy create-path notification
func NotFoundEmailBody(modelNumber, acumaticaSku string) string {
	return fmt.Sprintf(
		`<p>Product not found in catalog.</p><p>Model Number: %q<br>Acumatica SKU: %q</p>`,
		html.EscapeString(modelNumber), html.EscapeString(acumaticaSku),
	)
}
