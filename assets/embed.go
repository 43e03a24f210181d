package assets

import (
	"embed"
)

//go:embed vocabulary.yaml
var FS embed.FS

// DefaultVocabulary returns the raw YAML of the bundled word list.
func DefaultVocabulary() ([]byte, error) {
	return FS.ReadFile("vocabulary.yaml")
}
