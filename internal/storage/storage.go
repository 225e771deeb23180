package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when an object key does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string `json:"key"`
	Size int64  `json:"size"`
}

// ObjectStorage captures the minimal S3-compatible operations the analysis needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// IsSpreadsheet reports whether key names a file the ingestion layer can read.
func IsSpreadsheet(key string) bool {
	switch strings.ToLower(path.Ext(key)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// FilterSpreadsheets keeps the spreadsheet objects of a listing, in order.
func FilterSpreadsheets(objects []ObjectInfo) []ObjectInfo {
	out := make([]ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if IsSpreadsheet(obj.Key) {
			out = append(out, obj)
		}
	}
	return out
}
