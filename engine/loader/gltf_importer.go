package loader

import (
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-mix/common"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter defines the interface for orchestrating a glTF/GLB import.
// It combines the parser with the skeleton and animation extractors to produce a Model.
type gltfImporter interface {
	// Import loads a glTF/GLB file and extracts its skeleton and animation clips.
	//
	// Parameters:
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if import fails
	Import(path string) (model.Model, error)

	// ImportReader loads a glTF document from a reader and extracts its skeleton and clips.
	//
	// Parameters:
	//   - r: the reader providing glTF/GLB data
	//   - isGLB: true if the reader provides GLB binary data, false for glTF JSON
	//   - fallbackName: the model name used when the document names no scene
	//
	// Returns:
	//   - model.Model: the imported model
	//   - error: error if import fails
	ImportReader(r io.Reader, isGLB bool, fallbackName string) (model.Model, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer.
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool, fallbackName string) (model.Model, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}
	return imp.importFromParser(parser, fallbackName)
}

// importFromParser builds a Model from a parser that has already loaded a document.
// Documents without skins import as a model with no skeleton and no clips.
//
// Parameters:
//   - parser: the glTF parser that has already loaded a document
//   - fallbackName: used for naming when the document names no scene
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackName string) (model.Model, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	skeletonExtractor := newGLTFSkeletonExtractor(parser)
	animationExtractor := newGLTFAnimationExtractor(parser)

	options := []model.ModelBuilderOption{
		model.WithName(gltfExtractModelName(doc, fallbackName)),
	}

	if skinIndex := skeletonExtractor.PrimarySkin(); skinIndex >= 0 {
		skeleton, boneMapping, err := skeletonExtractor.ExtractSkeleton(skinIndex)
		if err != nil {
			return nil, fmt.Errorf("skeleton extraction failed: %w", err)
		}

		clips, err := animationExtractor.ExtractAnimationsForSkeleton(skinIndex, boneMapping)
		if err != nil {
			return nil, fmt.Errorf("animation extraction failed: %w", err)
		}

		options = append(options, model.WithSkeleton(skeleton), model.WithAnimations(clips...))
	}

	return model.NewModel(options...), nil
}

// gltfExtractModelName derives a model name from the default scene or a fallback.
func gltfExtractModelName(doc *gltfDocument, fallback string) string {
	var sceneName string
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		sceneName = doc.Scenes[*doc.Scene].Name
	}
	return common.Coalesce(sceneName, fallback, "unnamed_model")
}
