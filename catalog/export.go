package catalog

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"

	"github.com/judyrop/handmade-store/models"
)

var exportHeaders = []string{
	"ID", "Name", "Slug", "Category", "Price", "Available", "Description", "CreatedAt", "UpdatedAt",
}

// WriteXLSX writes products as a single "Products" sheet.
func WriteXLSX(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Slug)
		category := ""
		if p.Category != nil {
			category = p.Category.Slug
		}
		row.AddCell().SetString(category)
		row.AddCell().SetFloat(p.Price.InexactFloat64())
		row.AddCell().SetBool(p.Available)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
