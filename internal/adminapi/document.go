package adminapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughkiosk/internal/domain"
	"github.com/talkincode/toughkiosk/internal/syncer"
	"github.com/talkincode/toughkiosk/internal/webserver"
)

func registerDocumentRoutes() {
	webserver.ApiGET("/document", getDocument)
	webserver.ApiPOST("/document", saveDocument)
	webserver.ApiGET("/document/export", exportDocument)
	webserver.ApiPOST("/document/import", importDocument)
}

func getDocument(c echo.Context) error {
	doc := getApp(c).Engine().Fetch(c.Request().Context())
	return ok(c, doc)
}

// saveDocument persists the editor's document. A remote failure is
// reported explicitly so the editor can warn that the changes are held
// locally only; the cache write already happened either way.
func saveDocument(c echo.Context) error {
	var doc domain.Document
	if err := c.Bind(&doc); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse document", nil)
	}

	a := getApp(c)
	if err := a.Engine().Save(c.Request().Context(), &doc); err != nil {
		return fail(c, http.StatusBadGateway, "SAVE_FAILED",
			"Changes saved locally only, remote store rejected the write", err.Error())
	}

	audit(c, "document.save", fmt.Sprintf("brands=%d catalogues=%d", len(doc.Brands), len(doc.Catalogues)))
	return ok(c, map[string]interface{}{"saved": true})
}

func exportDocument(c echo.Context) error {
	doc := getApp(c).Engine().Fetch(c.Request().Context())
	data, err := syncer.Export(doc)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export document", err.Error())
	}
	filename := fmt.Sprintf("toughkiosk-%s.json", time.Now().Format("20060102-150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename=`+filename)
	audit(c, "document.export", filename)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// importDocument restores from a previously exported file. Files without
// a brand list are rejected as invalid.
func importDocument(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Missing import file", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open import file", nil)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read import file", nil)
	}

	doc, err := syncer.Import(data)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "INVALID_IMPORT", "Import file rejected", err.Error())
	}

	a := getApp(c)
	if err := a.Engine().Save(c.Request().Context(), doc); err != nil {
		return fail(c, http.StatusBadGateway, "SAVE_FAILED",
			"Import parsed but remote save failed", err.Error())
	}

	audit(c, "document.import", fh.Filename)
	return ok(c, map[string]interface{}{"brands": len(doc.Brands)})
}
