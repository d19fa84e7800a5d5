package letterpress

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/eringen/letterpress/newsletter"
)

const maxUploadSize = 10 << 20 // 10MB

// inspectImage decodes just enough of data to learn its format and size.
func inspectImage(field string, data []byte) (mimeType string, cfg image.Config, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", image.Config{}, &newsletter.ValidationError{
			Field:  field,
			Reason: "not a supported image (jpeg, png, gif, webp, bmp or tiff)",
		}
	}
	return "image/" + format, cfg, nil
}

// handleImageUpload turns a multipart "image" file into a data URI the
// editor can store on a newsletter or post. The bytes are kept as uploaded.
func (a *App) handleImageUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return &newsletter.ValidationError{Field: "image", Reason: "no image file provided"}
	}
	if file.Size > maxUploadSize {
		return &newsletter.ValidationError{Field: "image", Reason: "file too large (max 10MB)"}
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadSize+1))
	if err != nil {
		return err
	}
	if len(data) > maxUploadSize {
		return &newsletter.ValidationError{Field: "image", Reason: "file too large (max 10MB)"}
	}

	mimeType, cfg, err := inspectImage("image", data)
	if err != nil {
		return err
	}

	img := newsletter.NewImage(mimeType, data)
	a.logger.Debug().Str("mime_type", mimeType).Int("bytes", len(data)).Msg("image converted")
	return c.JSON(http.StatusOK, imageResponse{
		DataURI:  img.String(),
		MIMEType: mimeType,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Size:     len(data),
	})
}

// handleImageToBase64 checks an image sent as a data URI (or bare base64)
// and returns it as a data URI with the MIME type of its actual contents.
func (a *App) handleImageToBase64(c echo.Context) error {
	var req imageDataRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var data []byte
	raw := strings.TrimSpace(req.ImageData)
	if strings.HasPrefix(raw, "data:") {
		img, err := newsletter.ParseImage(raw)
		if err != nil {
			return &newsletter.ValidationError{Field: "imageData", Reason: err.Error()}
		}
		if data, err = img.Bytes(); err != nil {
			return &newsletter.ValidationError{Field: "imageData", Reason: err.Error()}
		}
	} else {
		var err error
		if data, err = base64.StdEncoding.DecodeString(raw); err != nil {
			return &newsletter.ValidationError{Field: "imageData", Reason: "not valid base64"}
		}
	}

	mimeType, _, err := inspectImage("imageData", data)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"base64": newsletter.NewImage(mimeType, data).String(),
	})
}
