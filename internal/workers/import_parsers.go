// internal/workers/import_parsers.go
package workers

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"
)

// importColumns are the header cells a purchase sheet must carry, in any order
var importColumns = []string{
	"approval_number", "batch_number", "produce_date", "expiry_date", "quantity", "unit_price",
}

// invoiceLineRe matches one purchase line in the text of a supplier invoice:
// approval number, batch, produce date, expiry date, quantity, unit price.
var invoiceLineRe = regexp.MustCompile(
	`^\s*([A-Za-z0-9-]+)\s+(\S+)\s+(\d{4}-\d{2}-\d{2})\s+(\d{4}-\d{2}-\d{2})\s+(\d+)\s+\$?(\d+(?:\.\d{1,2})?)\s*$`)

var dateLayouts = []string{time.DateOnly, "2006/01/02", "01/02/2006", time.RFC3339}

// ImportRow is one purchase line read from an upload. Err is set when the row
// could not be parsed; such rows are reported and skipped.
type ImportRow struct {
	Row            int
	ApprovalNumber string
	BatchNumber    string
	ProduceDate    time.Time
	ExpiryDate     time.Time
	Quantity       int
	UnitPrice      decimal.Decimal
	Err            error
}

// ParseXLSX reads purchase lines from the first sheet of a workbook. The first
// row is the header; blank rows are skipped.
func ParseXLSX(data []byte) ([]ImportRow, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if len(file.Sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	var (
		rows    []ImportRow
		columns map[string]int
	)
	err = file.Sheets[0].ForEachRow(func(r *xlsx.Row) error {
		if columns == nil {
			columns = make(map[string]int)
			for i := 0; i < r.Sheet.MaxCol; i++ {
				name := strings.ToLower(strings.TrimSpace(r.GetCell(i).String()))
				columns[strings.ReplaceAll(name, " ", "_")] = i
			}
			for _, col := range importColumns {
				if _, ok := columns[col]; !ok {
					return fmt.Errorf("missing column %q", col)
				}
			}
			return nil
		}

		cell := func(name string) *xlsx.Cell { return r.GetCell(columns[name]) }
		if strings.TrimSpace(cell("approval_number").String()) == "" && strings.TrimSpace(cell("batch_number").String()) == "" {
			return nil
		}

		row := ImportRow{
			Row:            r.GetCoordinate() + 1,
			ApprovalNumber: strings.TrimSpace(cell("approval_number").String()),
			BatchNumber:    strings.TrimSpace(cell("batch_number").String()),
		}
		row.ProduceDate, row.Err = cellDate(cell("produce_date"))
		if row.Err == nil {
			row.ExpiryDate, row.Err = cellDate(cell("expiry_date"))
		}
		if row.Err == nil {
			row.Quantity, row.Err = parseQuantity(cell("quantity").Value)
		}
		if row.Err == nil {
			row.UnitPrice, row.Err = parsePrice(cell("unit_price").Value)
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if columns == nil {
		return nil, errors.New("sheet is empty")
	}
	return rows, nil
}

// ParsePDF extracts the text of every page and reads the lines that look like
// purchase lines. Anything else on the invoice is ignored.
func ParsePDF(data []byte) ([]ImportRow, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	var lines []string
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageNum, err)
		}
		lines = append(lines, strings.Split(text, "\n")...)
	}

	return ParseInvoiceLines(lines), nil
}

// ParseInvoiceLines reads purchase lines out of invoice text, one per line.
// Row numbers are the 1-based line numbers of the text.
func ParseInvoiceLines(lines []string) []ImportRow {
	var rows []ImportRow
	for i, line := range lines {
		m := invoiceLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		row := ImportRow{Row: i + 1, ApprovalNumber: m[1], BatchNumber: m[2]}
		row.ProduceDate, row.Err = parseDate(m[3])
		if row.Err == nil {
			row.ExpiryDate, row.Err = parseDate(m[4])
		}
		if row.Err == nil {
			row.Quantity, row.Err = parseQuantity(m[5])
		}
		if row.Err == nil {
			row.UnitPrice, row.Err = parsePrice(m[6])
		}
		rows = append(rows, row)
	}
	return rows
}

// cellDate accepts a date-formatted cell (an Excel serial number) or text
func cellDate(c *xlsx.Cell) (time.Time, error) {
	raw := strings.TrimSpace(c.Value)
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		return xlsx.TimeFromExcelTime(serial, false).Truncate(24 * time.Hour), nil
	}
	return parseDate(raw)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseQuantity(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid quantity %q", s)
	}
	return int(f), nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid unit price %q", s)
	}
	return d, nil
}
