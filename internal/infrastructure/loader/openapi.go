package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/devdocs-ai/devdocs-backend/internal/core/domain"
)

// OpenAPILoader sections a spec into the parts users actually ask about:
// the info block, one section per endpoint, one per component schema.
type OpenAPILoader struct{}

func (l *OpenAPILoader) Load(raw []byte, _ string) ([]domain.Section, error) {
	spec, err := openapi3.NewLoader().LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi spec: %w", err)
	}

	var sections []domain.Section
	if spec.Info != nil {
		sections = append(sections, domain.Section{
			Text: fmt.Sprintf("API Information:\nTitle: %s\nVersion: %s\nDescription: %s",
				orNA(spec.Info.Title), orNA(spec.Info.Version), orNA(spec.Info.Description)),
			Metadata: map[string]any{"type": "api_info", "section": "info"},
		})
	}

	sections = append(sections, endpointSections(spec)...)
	sections = append(sections, schemaSections(spec)...)
	return sections, nil
}

func endpointSections(spec *openapi3.T) []domain.Section {
	if spec.Paths == nil {
		return nil
	}
	pathMap := spec.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var sections []domain.Section
	for _, path := range paths {
		item := pathMap[path]
		operations := item.Operations()
		methods := make([]string, 0, len(operations))
		for m := range operations {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, method := range methods {
			sections = append(sections, domain.Section{
				Text: formatEndpoint(method, path, operations[method]),
				Metadata: map[string]any{
					"type":    "endpoint",
					"method":  strings.ToUpper(method),
					"path":    path,
					"section": "paths",
				},
			})
		}
	}
	return sections
}

func formatEndpoint(method, path string, op *openapi3.Operation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Endpoint: %s %s\n", strings.ToUpper(method), path)
	fmt.Fprintf(&b, "Summary: %s\n", orNA(op.Summary))
	fmt.Fprintf(&b, "Description: %s\n", orNA(op.Description))

	if len(op.Parameters) > 0 {
		b.WriteString("Parameters:\n")
		for _, ref := range op.Parameters {
			if ref.Value == nil {
				continue
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", orNA(ref.Value.Name), orNA(ref.Value.In), orNA(ref.Value.Description))
		}
	}
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		fmt.Fprintf(&b, "Request Body: %s\n", orNA(op.RequestBody.Value.Description))
	}
	if op.Responses != nil {
		responseMap := op.Responses.Map()
		statuses := make([]string, 0, len(responseMap))
		for s := range responseMap {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		b.WriteString("Responses:\n")
		for _, status := range statuses {
			desc := ""
			if ref := responseMap[status]; ref.Value != nil && ref.Value.Description != nil {
				desc = *ref.Value.Description
			}
			fmt.Fprintf(&b, "- %s: %s\n", status, orNA(desc))
		}
	}
	return b.String()
}

func schemaSections(spec *openapi3.T) []domain.Section {
	if spec.Components == nil || len(spec.Components.Schemas) == 0 {
		return nil
	}
	names := make([]string, 0, len(spec.Components.Schemas))
	for name := range spec.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]domain.Section, 0, len(names))
	for _, name := range names {
		ref := spec.Components.Schemas[name]
		if ref.Value == nil {
			continue
		}
		sections = append(sections, domain.Section{
			Text: formatSchema(name, ref.Value),
			Metadata: map[string]any{
				"type":        "schema",
				"schema_name": name,
				"section":     "components/schemas",
			},
		})
	}
	return sections
}

func formatSchema(name string, schema *openapi3.Schema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Schema: %s\n", name)
	fmt.Fprintf(&b, "Type: %s\n", orNA(typesString(schema.Type)))
	fmt.Fprintf(&b, "Description: %s\n", orNA(schema.Description))

	if len(schema.Properties) > 0 {
		props := make([]string, 0, len(schema.Properties))
		for p := range schema.Properties {
			props = append(props, p)
		}
		sort.Strings(props)
		b.WriteString("Properties:\n")
		for _, prop := range props {
			propType := ""
			if pv := schema.Properties[prop].Value; pv != nil {
				propType = typesString(pv.Type)
			}
			desc := ""
			if pv := schema.Properties[prop].Value; pv != nil {
				desc = pv.Description
			}
			fmt.Fprintf(&b, "- %s (%s): %s\n", prop, orNA(propType), orNA(desc))
		}
	}
	return b.String()
}

func typesString(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	return strings.Join(types.Slice(), ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
