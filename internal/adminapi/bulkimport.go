package adminapi

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/talkincode/toughkiosk/internal/importer"
	"github.com/talkincode/toughkiosk/internal/webserver"
)

func registerImportRoutes() {
	webserver.ApiPOST("/import/content", bulkImportContent)
}

// bulkImportContent accepts a multipart upload of a hierarchical file set
// (file names carry the Brand/Category/Product paths), builds the partial
// document and merges it into the canonical one. An oversized asset that
// fails to upload aborts the whole import; nothing is saved then.
func bulkImportContent(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Multipart form required", nil)
	}
	targetBrand := c.FormValue("brand")

	var files []importer.File
	for _, fh := range form.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to open "+fh.Filename, nil)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read "+fh.Filename, nil)
		}
		files = append(files, importer.File{Path: fh.Filename, Data: data})
	}
	if len(files) == 0 {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "No files supplied", nil)
	}

	a := getApp(c)
	ctx := c.Request().Context()

	imported, err := a.Importer().Import(ctx, files, targetBrand)
	if err != nil {
		return fail(c, http.StatusUnprocessableEntity, "IMPORT_ABORTED", "Bulk import aborted", err.Error())
	}

	doc := a.Engine().Fetch(ctx)
	importer.Merge(doc, imported)

	if err := a.Engine().Save(ctx, doc); err != nil {
		return fail(c, http.StatusBadGateway, "SAVE_FAILED",
			"Import merged locally only, remote store rejected the write", err.Error())
	}

	audit(c, "import.content", fmt.Sprintf("files=%d brands=%d", len(files), len(imported)))
	return ok(c, map[string]interface{}{"brands": len(imported), "files": len(files)})
}
