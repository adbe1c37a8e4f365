package document

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"veriflow/internal/domain"
)

// WriteArchive streams every stored file of the record into a zip, grouped by
// category. Files missing on disk are skipped rather than failing the whole
// archive. The context is checked between entries so a cancelled download
// stops early.
func (s *Service) WriteArchive(ctx context.Context, userID int64, w io.Writer) error {
	rec, err := s.getRecord(ctx, userID)
	if err != nil {
		return err
	}

	groups := []struct {
		name  string
		files []domain.DocumentFile
	}{
		{"personal", rec.PersonalDocuments},
		{"financial", rec.FinancialDocuments},
		{"address", rec.AddressDocuments},
	}

	total := 0
	for _, g := range groups {
		total += len(g.files)
	}
	if total == 0 {
		return ErrNothingToArchive
	}

	zw := zip.NewWriter(w)

	for _, g := range groups {
		for _, f := range g.files {
			if err := ctx.Err(); err != nil {
				return err
			}

			abs, ok := s.files.AbsPath(f.FileURL)
			if !ok {
				continue
			}
			src, err := os.Open(abs)
			if err != nil {
				s.log.Warn("archive: file missing on disk")
				continue
			}

			name := fmt.Sprintf("%s/%s_%s", g.name, f.DocumentType, filepath.Base(f.FileName))
			dst, err := zw.Create(name)
			if err != nil {
				src.Close()
				return err
			}
			if _, err := io.Copy(dst, src); err != nil {
				src.Close()
				return err
			}
			src.Close()
		}
	}

	return zw.Close()
}
