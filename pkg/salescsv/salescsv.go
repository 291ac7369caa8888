// Package salescsv parses sales exports into the row shape the ledger
// importer needs: tracking code, amount, optional order id and date. Column
// names are matched loosely so exports from different storefronts load
// without remapping.
package salescsv

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

type Row struct {
	Code    string
	Amount  float64
	OrderID string
	Date    time.Time
}

var ErrNoHeader = errors.New("csv has no header row")
var ErrMissingColumns = errors.New("csv is missing a code or amount column")

var codeHeaders = []string{"code", "affiliate_code", "affiliate", "coupon", "discount_code", "discount", "tracking_id", "ref"}
var amountHeaders = []string{"amount", "total", "sale_amount", "price", "order_total", "subtotal"}
var orderHeaders = []string{"order_id", "order", "order_number", "reference", "transaction_id"}
var dateHeaders = []string{"date", "sale_date", "order_date", "created_at"}

func columnIndex(header []string, candidates []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, c := range candidates {
			if h == c {
				return i
			}
		}
	}
	return -1
}

// Parse reads the whole document. Rows with an empty code or an unparseable
// amount are dropped silently; the importer reports its own skip counts.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, ErrNoHeader
	}
	codeIdx := columnIndex(header, codeHeaders)
	amountIdx := columnIndex(header, amountHeaders)
	if codeIdx < 0 || amountIdx < 0 {
		return nil, ErrMissingColumns
	}
	orderIdx := columnIndex(header, orderHeaders)
	dateIdx := columnIndex(header, dateHeaders)

	var rows []Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if codeIdx >= len(record) || amountIdx >= len(record) {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(record[codeIdx]))
		if code == "" {
			continue
		}
		amount, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(record[amountIdx]), "$"), 64)
		if err != nil || amount < 0 {
			continue
		}
		row := Row{Code: code, Amount: amount}
		if orderIdx >= 0 && orderIdx < len(record) {
			row.OrderID = strings.TrimSpace(record[orderIdx])
		}
		if dateIdx >= 0 && dateIdx < len(record) {
			row.Date = parseDate(record[dateIdx])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02", "01/02/2006", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
