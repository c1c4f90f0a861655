package scene

import "errors"

var (
	ErrMissingShader = errors.New("scene: material has no shader")
)

// Binds a set of bounding volumes to the shading program that resolves
// ray hits against them.
type Material struct {
	// A name for identifying the material in logs.
	Name string

	// The hit program used for volumes bound to this material.
	Shader string

	// The shader pass selected at dispatch time.
	Pass string
}

// Validate material.
func (m *Material) Validate() error {
	if m == nil || m.Shader == "" {
		return ErrMissingShader
	}
	return nil
}
