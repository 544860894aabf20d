package usecase

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionUnavailable is returned for terms with no stored definition.
const DefinitionUnavailable = "التعريف غير متوفر"

//go:embed reference.yaml
var referenceYAML []byte

// Template is a suggested research outline for a legal field.
type Template struct {
	Structure []string `yaml:"structure" json:"structure"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
}

// ReferenceService serves static legal outlines and definitions.
type ReferenceService struct {
	templates   map[string]Template
	definitions map[string]string
}

// NewReferenceService loads the embedded reference tables.
func NewReferenceService() (*ReferenceService, error) {
	return ParseReference(referenceYAML)
}

// ParseReference loads reference tables from YAML.
func ParseReference(b []byte) (*ReferenceService, error) {
	var doc struct {
		Templates   map[string]Template `yaml:"templates"`
		Definitions map[string]string   `yaml:"definitions"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("op=usecase.ParseReference: %w", err)
	}
	return &ReferenceService{templates: doc.Templates, definitions: doc.Definitions}, nil
}

// Template returns the outline for field, or empty lists when unknown.
func (s *ReferenceService) Template(field string) Template {
	t, ok := s.templates[strings.TrimSpace(field)]
	if !ok {
		return Template{Structure: []string{}, Keywords: []string{}}
	}
	return t
}

// Definition returns the stored definition of term or DefinitionUnavailable.
func (s *ReferenceService) Definition(term string) string {
	if d, ok := s.definitions[strings.TrimSpace(term)]; ok {
		return d
	}
	return DefinitionUnavailable
}
