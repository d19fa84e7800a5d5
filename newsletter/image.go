package newsletter

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

var (
	mediaTypeRe = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]*/[a-z0-9][a-z0-9.+-]*$`)
	paramRe     = regexp.MustCompile(`^[a-z0-9][a-z0-9._+-]*=[a-z0-9._+-]+$`)
)

// Image is an inline image stored as a base64 data URI, for example
// "data:image/png;base64,iVBORw0...". The zero value means "no image".
type Image string

// NewImage encodes data as a data URI with the given MIME type.
func NewImage(mimeType string, data []byte) Image {
	return Image("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// ParseImage checks that s is a base64 image data URI. An empty string is a
// valid "no image".
func ParseImage(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	mimeType, payload, err := splitDataURI(s)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", errors.New("data URI is not an image: " + mimeType)
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return "", errors.New("data URI payload is not valid base64")
	}
	return Image(s), nil
}

// IsZero reports whether the image is absent.
func (i Image) IsZero() bool {
	return i == ""
}

// MIMEType returns the media type declared in the data URI, or "" if the
// image is absent or malformed.
func (i Image) MIMEType() string {
	mimeType, _, err := splitDataURI(string(i))
	if err != nil {
		return ""
	}
	return mimeType
}

// Bytes decodes the image payload.
func (i Image) Bytes() ([]byte, error) {
	if i.IsZero() {
		return nil, nil
	}
	_, payload, err := splitDataURI(string(i))
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(payload)
}

func (i Image) String() string {
	return string(i)
}

// splitDataURI splits "data:<mime>[;params];base64,<payload>". Every part is
// restricted to token characters so the URI can be written into an HTML
// attribute as is.
func splitDataURI(s string) (mimeType, payload string, err error) {
	if !strings.HasPrefix(s, "data:") {
		return "", "", errors.New("image must be a data URI")
	}
	header, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return "", "", errors.New("data URI has no payload")
	}
	header = strings.ToLower(header)
	params, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", errors.New("data URI must be base64 encoded")
	}
	parts := strings.Split(params, ";")
	if !mediaTypeRe.MatchString(parts[0]) {
		return "", "", errors.New("data URI has a malformed media type")
	}
	for _, p := range parts[1:] {
		if !paramRe.MatchString(p) {
			return "", "", errors.New("data URI has a malformed parameter")
		}
	}
	if strings.IndexFunc(payload, notBase64) >= 0 {
		return "", "", errors.New("data URI payload is not valid base64")
	}
	return parts[0], payload, nil
}

func notBase64(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return false
	}
	return r != '+' && r != '/' && r != '='
}
