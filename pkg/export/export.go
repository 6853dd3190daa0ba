// Package export renders listing statistics as xlsx workbooks for
// operators to forward to customers.
package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sellerdesk/sellerdesk/pkg/avito"
	"github.com/sellerdesk/sellerdesk/pkg/observability"
)

// ErrNoData indicates that the statistics contained no rows at all, so
// there is nothing worth putting in a workbook.
var ErrNoData = errors.New("no statistics rows to export")

var headers = []string{"Listing", "Date", "Contacts", "Favorites", "Views"}

// Workbook builds an xlsx workbook from per-listing statistics and
// returns its serialized bytes. Rows of one listing share a merged cell
// with the listing id in the first column.
func Workbook(items []avito.ItemStats) ([]byte, error) {
	if !hasRows(items) {
		observability.ExportsTotal.WithLabelValues("empty").Inc()
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	for _, item := range items {
		if len(item.Stats) == 0 {
			continue
		}

		startRow := row
		endRow := row + len(item.Stats) - 1

		idCell, _ := excelize.CoordinatesToCellName(1, startRow)
		if err := f.SetCellValue(sheet, idCell, item.ItemID); err != nil {
			return nil, fmt.Errorf("writing listing id: %w", err)
		}
		if endRow > startRow {
			endCell, _ := excelize.CoordinatesToCellName(1, endRow)
			if err := f.MergeCell(sheet, idCell, endCell); err != nil {
				return nil, fmt.Errorf("merging listing column: %w", err)
			}
		}

		for _, entry := range item.Stats {
			values := []any{nil, entry.Date, entry.UniqContacts, entry.UniqFavorites, entry.UniqViews}
			for col := 1; col < len(values); col++ {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, values[col]); err != nil {
					return nil, fmt.Errorf("writing row %d: %w", row, err)
				}
			}
			row++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		observability.ExportsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}

	observability.ExportsTotal.WithLabelValues("ok").Inc()
	return buf.Bytes(), nil
}

// hasRows reports whether any listing carries at least one period row.
func hasRows(items []avito.ItemStats) bool {
	for _, item := range items {
		if len(item.Stats) > 0 {
			return true
		}
	}
	return false
}
