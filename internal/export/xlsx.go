package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/util"
)

const (
	SheetName   = "Inventory"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var Header = []string{"ID", "Name", "Quantity", "Price", "Image"}

var ErrNoRows = errors.New("workbook is empty or missing header row")

// WriteProducts renders products as a single sheet workbook.
func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range Header {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.ProductName)
		row.AddCell().SetInt(p.Quantity)
		row.AddCell().SetFloat(p.Price)
		image := ""
		if p.Image != nil {
			image = *p.Image
		}
		row.AddCell().SetString(image)
	}

	return file.Write(w)
}

// Row is one parsed inventory line. ID is zero for new products.
type Row struct {
	ID       uint
	Name     string
	Quantity int
	Price    float64
	Image    string
}

// ReadProducts parses the first sheet of a workbook in the WriteProducts
// layout. Rows without a name or with bad numbers are counted as skipped.
func ReadProducts(r io.ReaderAt, size int64) (rows []Row, skipped int, err error) {
	wb, err := xlsx.OpenReaderAt(r, size)
	if err != nil {
		return nil, 0, fmt.Errorf("parse workbook: %w", err)
	}
	if len(wb.Sheets) == 0 || len(wb.Sheets[0].Rows) < 2 {
		return nil, 0, ErrNoRows
	}

	for _, xr := range wb.Sheets[0].Rows[1:] {
		get := func(i int) string {
			if i < len(xr.Cells) {
				return strings.TrimSpace(xr.Cells[i].String())
			}
			return ""
		}

		name := get(1)
		qty, qerr := strconv.Atoi(get(2))
		price, ok := util.ParseFloat(get(3))
		if name == "" || qerr != nil || !ok || qty < 0 || price < 0 {
			skipped++
			continue
		}

		row := Row{Name: name, Quantity: qty, Price: price, Image: get(4)}
		if id, err := strconv.ParseUint(get(0), 10, 64); err == nil {
			row.ID = uint(id)
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}
