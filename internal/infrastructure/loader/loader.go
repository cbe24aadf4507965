package loader

import (
	"context"
	"fmt"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// TypeLoader turns raw bytes of one document type into structured sections.
type TypeLoader interface {
	Load(raw []byte, filename string) ([]domain.Section, error)
}

// Registry dispatches to the per-type loader.
type Registry struct {
	byType map[domain.DocumentType]TypeLoader
}

func NewRegistry() *Registry {
	return &Registry{
		byType: map[domain.DocumentType]TypeLoader{
			domain.TypeOpenAPI:  &OpenAPILoader{},
			domain.TypePDF:      &PDFLoader{},
			domain.TypeMarkdown: &MarkdownLoader{},
		},
	}
}

func (r *Registry) Load(_ context.Context, docType domain.DocumentType, raw []byte, filename string) ([]domain.Section, error) {
	typeLoader, ok := r.byType[docType]
	if !ok {
		return nil, domain.WrapError(domain.ErrUnsupportedType, "load document", fmt.Errorf("no loader for type %q", docType))
	}
	sections, err := typeLoader.Load(raw, filename)
	if err != nil {
		return nil, fmt.Errorf("load %s document: %w", docType, err)
	}
	return sections, nil
}
