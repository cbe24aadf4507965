package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// PDFLoader extracts plain text page by page; one section per page.
type PDFLoader struct{}

func (l *PDFLoader) Load(raw []byte, filename string) ([]domain.Section, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var sections []domain.Section
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", pageNum, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		sections = append(sections, domain.Section{
			Text: text,
			Metadata: map[string]any{
				"type":        "pdf",
				"file_path":   filename,
				"page_number": pageNum,
			},
		})
	}
	return sections, nil
}
