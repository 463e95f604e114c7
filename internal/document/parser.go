package document

import (
	"path/filepath"
	"strings"
)

// Parser turns raw bytes into a Value.
type Parser interface {
	Format() string
	Parse(data []byte) (*Value, error)
}

var parsers = map[string]Parser{
	".json":   JSON{},
	".jsonld": JSON{},
	".yaml":   YAML{},
	".yml":    YAML{},
}

// ParserFor picks a parser by file extension. JSON is the default.
func ParserFor(path string) Parser {
	if p, ok := parsers[strings.ToLower(filepath.Ext(path))]; ok {
		return p
	}
	return JSON{}
}

// Parse parses data with the parser registered for path's extension.
func Parse(path string, data []byte) (*Value, error) {
	return ParserFor(path).Parse(data)
}
