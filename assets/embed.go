// assets/embed.go
//
// Embedded defaults shipped with the binary so the server runs without any
// external files.
package assets

import "embed"

//go:embed settings.yaml
var FS embed.FS

// DefaultSettings returns the raw embedded settings.yaml.
func DefaultSettings() ([]byte, error) {
	return FS.ReadFile("settings.yaml")
}
