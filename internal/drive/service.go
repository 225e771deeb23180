package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimeFolder       = "application/vnd.google-apps.folder"
	mimeGoogleSheet  = "application/vnd.google-apps.spreadsheet"
	mimeXLSX         = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV          = "text/csv"
	maxDownloadBytes = 64 << 20
)

// Service reads inventory spreadsheets from Google Drive with a service account.
type Service struct {
	srv *drive.Service
}

func NewService(ctx context.Context, credentialsJSON string) (*Service, error) {
	if strings.TrimSpace(credentialsJSON) == "" {
		return nil, fmt.Errorf("google drive credentials must be provided")
	}

	// Parse credentials from JSON
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Drive client: %w", err)
	}

	return &Service{srv: srv}, nil
}

type File struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	Size         int64  `json:"size,string,omitempty"`
}

// IsSpreadsheet reports whether the file can be analyzed.
// Native Google Sheets are exported as xlsx.
func (f File) IsSpreadsheet() bool {
	if f.MimeType == mimeGoogleSheet {
		return true
	}
	switch strings.ToLower(path.Ext(f.Name)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}

// Filename is the name ingestion should see, with an extension matching the
// downloaded content.
func (f File) Filename() string {
	if f.MimeType == mimeGoogleSheet && !strings.EqualFold(path.Ext(f.Name), ".xlsx") {
		return f.Name + ".xlsx"
	}
	return f.Name
}

// ListSpreadsheets lists the analyzable files of a folder.
func (s *Service) ListSpreadsheets(ctx context.Context, folderID string) ([]File, error) {
	// If no folder ID is provided, use "root"
	if folderID == "" {
		folderID = "root"
	}

	var files []File
	call := s.srv.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false and mimeType!='%s'", escapeQuery(folderID), mimeFolder)).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, size)").
		OrderBy("modifiedTime desc")

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			file := File{
				ID:           f.Id,
				Name:         f.Name,
				MimeType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
				Size:         f.Size,
			}
			if file.IsSpreadsheet() {
				files = append(files, file)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve files: %w", err)
	}

	return files, nil
}

// Stat returns the metadata of a single file.
func (s *Service) Stat(ctx context.Context, fileID string) (File, error) {
	f, err := s.srv.Files.Get(fileID).Context(ctx).Fields("id, name, mimeType, modifiedTime, size").Do()
	if err != nil {
		return File{}, fmt.Errorf("unable to retrieve file %s: %w", fileID, err)
	}
	return File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, ModifiedTime: f.ModifiedTime, Size: f.Size}, nil
}

// DownloadFile writes the content of file to w, exporting Google Sheets as xlsx.
func (s *Service) DownloadFile(ctx context.Context, file File, w io.Writer) error {
	var (
		body io.ReadCloser
		err  error
	)
	if file.MimeType == mimeGoogleSheet {
		resp, exportErr := s.srv.Files.Export(file.ID, mimeXLSX).Context(ctx).Download()
		err = exportErr
		if resp != nil {
			body = resp.Body
		}
	} else {
		resp, getErr := s.srv.Files.Get(file.ID).Context(ctx).Download()
		err = getErr
		if resp != nil {
			body = resp.Body
		}
	}
	if err != nil {
		return fmt.Errorf("unable to download file %s: %w", file.Name, err)
	}
	defer body.Close()

	n, err := io.Copy(w, io.LimitReader(body, maxDownloadBytes+1))
	if err != nil {
		return fmt.Errorf("unable to read file %s: %w", file.Name, err)
	}
	if n > maxDownloadBytes {
		return fmt.Errorf("file %s exceeds %d bytes", file.Name, maxDownloadBytes)
	}
	return nil
}

// Fetch resolves fileID and returns its ingestion filename and content.
func (s *Service) Fetch(ctx context.Context, fileID string) (string, []byte, error) {
	file, err := s.Stat(ctx, fileID)
	if err != nil {
		return "", nil, err
	}
	if !file.IsSpreadsheet() {
		return "", nil, fmt.Errorf("file %s (%s) is not a spreadsheet", file.Name, file.MimeType)
	}

	var buf bytes.Buffer
	if err := s.DownloadFile(ctx, file, &buf); err != nil {
		return "", nil, err
	}
	return file.Filename(), buf.Bytes(), nil
}

func (s *Service) FindFolderByPath(ctx context.Context, folderPath string) (string, error) {
	if folderPath == "" {
		return "root", nil
	}

	currentID := "root"
	for _, folder := range strings.Split(folderPath, "/") {
		if folder == "" {
			continue
		}

		result, err := s.srv.Files.List().
			Context(ctx).
			Q(fmt.Sprintf("'%s' in parents and name='%s' and mimeType='%s' and trashed=false",
				escapeQuery(currentID), escapeQuery(folder), mimeFolder)).
			Fields("files(id, name)").
			Do()
		if err != nil {
			return "", fmt.Errorf("error finding folder %s: %w", folder, err)
		}

		if len(result.Files) == 0 {
			return "", fmt.Errorf("folder not found: %s", folder)
		}

		currentID = result.Files[0].Id
	}

	return currentID, nil
}

func escapeQuery(v string) string {
	return strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), `'`, `\'`)
}
