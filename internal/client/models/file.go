// Package models defines the records exchanged between the CloudVault client
// components.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FileID is the backend-assigned identifier of a stored file. The REST
// backend sends numeric ids; the object-store backend uses the object key.
type FileID string

func (id *FileID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FileID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("file id: %w", err)
	}
	*id = FileID(n.String())
	return nil
}

func (id FileID) String() string { return string(id) }

// FileRecord is one entry of the user's file collection. FileLink is the
// absolute URL of the stored object and the only source for key, name and
// media kind.
type FileRecord struct {
	ID       FileID `json:"id"`
	FileLink string `json:"fileLink"`
}

// MediaKind is the coarse display category of a file.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaPDF   MediaKind = "pdf"
	MediaOther MediaKind = "other"
)
