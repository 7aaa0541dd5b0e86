package models

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dailygrace/dailygrace/internal/common"
)

// Ratio is the aspect ratio a card was rendered at.
type Ratio string

const (
	Ratio1x1  Ratio = "1:1"
	Ratio4x5  Ratio = "4:5"
	Ratio9x16 Ratio = "9:16"
	Ratio16x9 Ratio = "16:9"
	Ratio3x4  Ratio = "3:4"
)

func (r Ratio) Valid() bool {
	switch r {
	case Ratio1x1, Ratio4x5, Ratio9x16, Ratio16x9, Ratio3x4:
		return true
	}
	return false
}

// VerseCard is a rendered scripture card. EditorState is the designer's
// snapshot and is stored without interpretation.
type VerseCard struct {
	Meta
	Ratio        Ratio           `json:"ratio"`
	Bg           string          `json:"bg"`
	Text         string          `json:"text"`
	Ref          string          `json:"ref"`
	Tags         []string        `json:"tags"`
	ImageDataURL string          `json:"imageDataUrl"`
	EditorState  json.RawMessage `json:"editorState,omitempty"`
}

func (c *VerseCard) Validate() error {
	if !c.Ratio.Valid() {
		return fmt.Errorf("%w: unsupported ratio %q", common.ErrorValidation, c.Ratio)
	}
	if c.ImageDataURL != "" {
		if _, _, err := ParseDataURL(c.ImageDataURL); err != nil {
			return fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
	}
	return nil
}

var ErrNotDataURL = errors.New("not a data URL")

// ParseDataURL splits "data:<mime>[;base64],<payload>" into its media type
// and decoded bytes.
func ParseDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURL
	}

	mime := header
	isBase64 := false
	if h, ok := strings.CutSuffix(header, ";base64"); ok {
		mime, isBase64 = h, true
	}
	if mime == "" {
		mime = "text/plain;charset=US-ASCII"
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("data URL payload: %w", err)
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("data URL payload: %w", err)
	}
	return mime, []byte(text), nil
}

// FormatDataURL is the inverse of ParseDataURL, always base64.
func FormatDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
