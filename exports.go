package letterpress

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/letterpress/newsletter"
)

// handleExport serves the rendered document. ?download=1 sends it as a file.
func (a *App) handleExport(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	html, err := a.Cache.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}

	filename := ""
	if download, _ := strconv.ParseBool(c.QueryParam("download")); download {
		n, err := a.Store.LoadNewsletter(c.Request().Context(), id)
		if err != nil {
			return err
		}
		filename = ExportFilename(n)
		a.countExport("download")
	} else {
		a.countExport("preview")
	}
	return renderDocument(c, templ.Raw(html), filename)
}

// handleExportFile renders a newsletter into the export directory.
func (a *App) handleExportFile(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	path, size, err := a.ExportToFile(c.Request().Context(), id, "")
	if err != nil {
		return err
	}
	a.countExport("file")
	return c.JSON(http.StatusOK, exportFileResponse{
		Message: "newsletter exported",
		Path:    path,
		Bytes:   size,
	})
}

// ExportToFile writes the rendered newsletter to path, or to
// Config.ExportDir/ExportFilename when path is empty. It returns the path
// written and its size.
func (a *App) ExportToFile(ctx context.Context, id int64, path string) (string, int, error) {
	if err := a.Setup(); err != nil {
		return "", 0, err
	}
	n, err := a.Store.LoadNewsletter(ctx, id)
	if err != nil {
		return "", 0, err
	}
	html, err := a.Cache.Get(ctx, id)
	if err != nil {
		return "", 0, err
	}

	if path == "" {
		path = filepath.Join(a.Config.ExportDir, ExportFilename(n))
	}
	if err := writeFileAtomic(path, []byte(html)); err != nil {
		return "", 0, &newsletter.PersistenceError{Op: "write export", Err: err}
	}
	a.logger.Info().Int64("newsletter_id", id).Str("path", path).Int("bytes", len(html)).Msg("newsletter exported")
	return path, len(html), nil
}

// writeFileAtomic writes data next to path and renames it into place so
// readers never see a partial document.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.html")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
