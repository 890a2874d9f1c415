package adminapi

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughkiosk/internal/webserver"
)

func registerReportRoutes() {
	webserver.ApiGET("/reports/products.xlsx", exportProductsXlsx)
}

// exportProductsXlsx flattens the brand tree into a product worksheet.
func exportProductsXlsx(c echo.Context) error {
	doc := getApp(c).Engine().Fetch(c.Request().Context())

	xlsx := excelize.NewFile()
	sheet := "Products"
	xlsx.SetSheetName("Sheet1", sheet)

	headers := []string{"Brand", "Category", "Product", "SKU", "Price", "Specs", "Features"}
	for i, h := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		xlsx.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, b := range doc.Brands {
		for _, cat := range b.Categories {
			for _, p := range cat.Products {
				xlsx.SetCellValue(sheet, fmt.Sprintf("A%d", row), b.Name)
				xlsx.SetCellValue(sheet, fmt.Sprintf("B%d", row), cat.Name)
				xlsx.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Name)
				xlsx.SetCellValue(sheet, fmt.Sprintf("D%d", row), p.Sku)
				xlsx.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.Price)
				xlsx.SetCellValue(sheet, fmt.Sprintf("F%d", row), len(p.Specs))
				xlsx.SetCellValue(sheet, fmt.Sprintf("G%d", row), len(p.Features))
				row++
			}
		}
	}

	var buf bytes.Buffer
	if err := xlsx.Write(&buf); err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build workbook", err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=products.xlsx`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
