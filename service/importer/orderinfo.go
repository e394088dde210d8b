package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// orderInfoSearchRows caps the label/value scan of an order-info sheet.
const orderInfoSearchRows = 20

// OrderInfo is the order-level metadata read from an "Order Info" sheet.
type OrderInfo struct {
	SONumber     string `mapstructure:"so_number"`
	PONumber     string `mapstructure:"po_number"`
	CustomerName string `mapstructure:"customer_name"`
	OrderDate    string `mapstructure:"order_date"`
	DueDate      string `mapstructure:"due_date"`
	ToolQty      int    `mapstructure:"tool_qty"`
	ToolModel    string `mapstructure:"tool_model"`
}

var soPrefix = regexp.MustCompile(`(?i)^SO[- ]?`)

type infoRule struct {
	key   string
	match func(label string) bool
}

// infoRules resolve fuzzy row labels into fixed keys once per sheet, so
// row values are never re-matched by substring per cell.
var infoRules = []infoRule{
	{"so_number", allOf(has("so"), either(has("number"), has("#"), has("no")))},
	{"so_number", isOneOf("so number", "so#", "so")},
	{"po_number", allOf(has("po"), either(has("number"), has("#"), has("no")))},
	{"po_number", isOneOf("po number", "po#", "po")},
	{"customer_name", either(has("customer"), has("client"))},
	{"tool_qty", hasAll("tool", "qty")},
	{"tool_model", hasAll("tool", "model")},
	{"order_date", hasAll("order", "date")},
	{"due_date", hasAll("due", "date")},
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"Jan 2, 2006",
	"2-Jan-06",
	"2-Jan-2006",
}

// normalizeDate best-effort converts a cell to an ISO date, keeping the
// raw text when no layout matches.
func normalizeDate(value string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}

// ParseOrderInfo scans a grid for label/value pairs (labels in column 0,
// values in column 1) and decodes the collected fields into OrderInfo.
func ParseOrderInfo(g *Grid) (OrderInfo, error) {
	fields := make(map[string]any)

	limit := orderInfoSearchRows
	if g.RowCount() < limit {
		limit = g.RowCount()
	}
	for row := 0; row < limit; row++ {
		label := strings.ToLower(g.Cell(row, 0))
		value := g.Cell(row, 1)
		if label == "" || value == "" {
			continue
		}

		key := ""
		for _, rule := range infoRules {
			if rule.match(label) {
				key = rule.key
				break
			}
		}
		if key == "" {
			continue
		}
		if _, seen := fields[key]; seen {
			continue
		}

		switch key {
		case "so_number":
			fields[key] = soPrefix.ReplaceAllString(value, "")
		case "tool_qty":
			fields[key] = ParseQty(value)
		case "order_date", "due_date":
			fields[key] = normalizeDate(value)
		default:
			fields[key] = value
		}
	}

	var info OrderInfo
	if err := mapstructure.Decode(fields, &info); err != nil {
		return OrderInfo{}, err
	}
	return info, nil
}
