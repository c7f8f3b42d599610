// Package openapi describes registered structs as OpenAPI 3 documents.
//
// Every described struct gets one operation whose request body references
// the struct schema. Data block pointers are described as name references;
// nested structs are inlined, or published as components when shared.
package openapi

import (
	"encoding/json"
	"fmt"

	rna "github.com/goliatone/go-rna"
)

// Generator builds OpenAPI documents from struct descriptors.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// Generate describes structs, one path per struct.
func (g *Generator) Generate(structs ...*rna.StructDescriptor) (map[string]any, error) {
	return newOpenAPIDocumentBuilder(g.config).build(structs)
}

// GenerateRegistry describes every data block type registered in reg, in
// registration order.
func (g *Generator) GenerateRegistry(reg *rna.Registry) (map[string]any, error) {
	if reg == nil {
		return nil, fmt.Errorf("openapi: registry cannot be nil")
	}
	var roots []*rna.StructDescriptor
	for s := range reg.Structs() {
		if s.IsID() && s != rna.IDStruct {
			roots = append(roots, s)
		}
	}
	return g.Generate(roots...)
}

// JSON renders the document for structs as indented JSON.
func (g *Generator) JSON(structs ...*rna.StructDescriptor) ([]byte, error) {
	document, err := g.Generate(structs...)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(document, "", "  ")
}
