package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxFileSize    = 50 * 1024 * 1024 // 50 MB
	UploadsBaseDir = "./uploads"
	StaticURLBase  = "/uploads"
)

// AllowedMimeTypes defines which file types are accepted for document scans.
var AllowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// StoredFile describes a file written to local disk.
type StoredFile struct {
	URL      string
	FileName string
	MimeType string
	Size     int64
}

// Service handles document file storage on local disk.
type Service struct {
	baseDir    string // absolute path to uploads dir
	staticBase string // URL prefix for serving files
}

func NewService(baseDir, staticBase string) *Service {
	if baseDir == "" {
		baseDir = UploadsBaseDir
	}
	if staticBase == "" {
		staticBase = StaticURLBase
	}
	return &Service{baseDir: baseDir, staticBase: staticBase}
}

// Save writes an uploaded file to disk and returns its public URL.
func (s *Service) Save(fileHeader *multipart.FileHeader) (*StoredFile, error) {
	if fileHeader.Size == 0 {
		return nil, ErrEmptyFile
	}
	if fileHeader.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Detect MIME type from first 512 bytes
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := http.DetectContentType(buf[:n])
	mimeType = strings.Split(mimeType, ";")[0]

	if !AllowedMimeTypes[mimeType] {
		return nil, ErrInvalidMimeType
	}

	if seeker, ok := file.(io.Seeker); ok {
		_, _ = seeker.Seek(0, io.SeekStart)
	}

	// Build directory: uploads/YYYY/MM/DD/
	now := time.Now()
	relDir := fmt.Sprintf("%d/%02d/%02d", now.Year(), now.Month(), now.Day())
	absDir := filepath.Join(s.baseDir, relDir)
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	id := uuid.New().String()
	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = mimeToExt(mimeType)
	}
	safeOriginal := sanitizeName(fileHeader.Filename)
	filename := fmt.Sprintf("%s_%s%s", id, safeOriginal, ext)

	absPath := filepath.Join(absDir, filename)
	dst, err := os.Create(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(absPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	relPath := filepath.Join(relDir, filename)
	fileURL := s.staticBase + "/" + strings.ReplaceAll(relPath, "\\", "/")

	return &StoredFile{
		URL:      fileURL,
		FileName: fileHeader.Filename,
		MimeType: mimeType,
		Size:     fileHeader.Size,
	}, nil
}

// Delete removes the physical file behind a public URL.
// The file may already be gone; that is not an error.
func (s *Service) Delete(url string) {
	abs, ok := s.AbsPath(url)
	if !ok {
		return
	}
	_ = os.Remove(abs)
}

// AbsPath resolves a public URL back to an absolute path under baseDir.
// URLs outside the static prefix, or paths escaping baseDir, are rejected.
func (s *Service) AbsPath(url string) (string, bool) {
	if !strings.HasPrefix(url, s.staticBase+"/") {
		return "", false
	}
	rel := strings.TrimPrefix(url, s.staticBase+"/")
	abs := filepath.Join(s.baseDir, filepath.FromSlash(rel))

	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", false
	}
	resolved, err := filepath.Abs(abs)
	if err != nil {
		return "", false
	}
	if !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '_'
	}, name)
	if len(name) > 40 {
		name = name[:40]
	}
	if name == "" {
		return "file"
	}
	return name
}

func mimeToExt(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}
