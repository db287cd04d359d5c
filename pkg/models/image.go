package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ImageKind tells whether an image entry points at an external URL or at a
// blob uploaded through /uploadImage.
type ImageKind string

const (
	ImageURL     ImageKind = "url"
	ImageBlobRef ImageKind = "blob"
)

const (
	imageURLKey  = "url"
	imageBlobKey = "image_id"
)

var ErrInvalidImage = errors.New("image must have exactly one of url or image_id")

// Image is one entry of a record's images list. Keys other than url/image_id
// (a caption, say) are carried in Attrs and written back unchanged.
type Image struct {
	Kind   ImageKind
	URL    string
	BlobID int64
	Attrs  map[string]any
}

func URLImage(url string) Image { return Image{Kind: ImageURL, URL: url} }

func BlobImage(id int64) Image { return Image{Kind: ImageBlobRef, BlobID: id} }

func (i Image) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(i.Attrs)+1)
	for k, v := range i.Attrs {
		m[k] = v
	}

	switch i.Kind {
	case ImageURL:
		m[imageURLKey] = i.URL
	case ImageBlobRef:
		m[imageBlobKey] = i.BlobID
	default:
		return nil, fmt.Errorf("image: unknown kind %q", i.Kind)
	}

	return json.Marshal(m)
}

func (i *Image) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("image: %w", err)
	}

	rawURL, hasURL := m[imageURLKey]
	rawID, hasID := m[imageBlobKey]
	if hasURL == hasID {
		return ErrInvalidImage
	}
	delete(m, imageURLKey)
	delete(m, imageBlobKey)

	img := Image{}
	if len(m) > 0 {
		img.Attrs = m
	}

	if hasURL {
		url, ok := rawURL.(string)
		if !ok || strings.TrimSpace(url) == "" {
			return fmt.Errorf("image: url must be a non-empty string")
		}
		img.Kind = ImageURL
		img.URL = url
	} else {
		num, ok := rawID.(json.Number)
		if !ok {
			return fmt.Errorf("image: image_id must be an integer")
		}
		id, err := num.Int64()
		if err != nil || id <= 0 {
			return fmt.Errorf("image: image_id must be a positive integer")
		}
		img.Kind = ImageBlobRef
		img.BlobID = id
	}

	*i = img
	return nil
}

// Images is the ordered images column.
type Images []Image

func (s Images) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Image(s))
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

func (s *Images) Scan(src any) error {
	b, err := scanBytes(src)
	if err != nil {
		return fmt.Errorf("scan images: %w", err)
	}
	if b == nil {
		*s = Images{}
		return nil
	}

	var out []Image
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan images: %w", err)
	}
	if out == nil {
		out = []Image{}
	}
	*s = out
	return nil
}
