package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Extensions lists the lower-case file extensions the backend accepts.
	//
	// Returns:
	//   - []string: extensions including the leading dot
	Extensions() []string

	// Load imports the skeleton and animation clips from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//   - name: the name given to the model when the data does not carry one
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool, name string) (model.Model, error)
}
