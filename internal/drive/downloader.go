package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Downloader wraps Service to copy the spreadsheets of a folder to disk.
type Downloader struct {
	service *Service
}

// NewDownloader creates a new Downloader.
func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadFolder saves every spreadsheet of folderID into dir and returns the local paths.
// Native Google Sheets are saved as xlsx.
func (d *Downloader) DownloadFolder(ctx context.Context, folderID, dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListSpreadsheets(ctx, folderID)
	if err != nil {
		return nil, err
	}

	localPaths := make([]string, 0, len(files))
	for _, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		localPath := filepath.Join(dir, filepath.Base(f.Filename()))
		out, err := os.Create(localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create local file %s: %w", localPath, err)
		}
		if err := d.service.DownloadFile(ctx, f, out); err != nil {
			out.Close()
			_ = os.Remove(localPath)
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}
		if err := out.Close(); err != nil {
			return nil, fmt.Errorf("failed to close %s: %w", localPath, err)
		}
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}
