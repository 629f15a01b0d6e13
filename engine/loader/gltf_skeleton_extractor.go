package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-mix/common"
	"github.com/Carmen-Shannon/oxy-mix/engine/model"
)

// gltfSkeletonExtractorImpl is the implementation of the gltfSkeletonExtractor interface.
type gltfSkeletonExtractorImpl struct {
	parser gltfParser
}

// gltfSkeletonExtractor defines the interface for extracting skeleton/bone data from a parsed glTF document.
// It converts glTF skin definitions into Skeletons whose bones are topologically sorted, so that
// every parent precedes its children.
type gltfSkeletonExtractor interface {
	// ExtractSkeleton extracts a skeleton from a skin by index, together with the
	// mapping animation channels need to address the sorted bones.
	//
	// Parameters:
	//   - skinIndex: the index of the skin to extract
	//
	// Returns:
	//   - *model.Skeleton: the skeleton with its bind pose recorded
	//   - map[int]int32: glTF node index → sorted bone index
	//   - error: error if extraction fails
	ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]int32, error)

	// FindSkeletonForMesh finds which skin is attached to a mesh.
	//
	// Parameters:
	//   - meshIndex: the mesh index to find a skin for
	//
	// Returns:
	//   - int: the skin index, or -1 if none
	FindSkeletonForMesh(meshIndex int) int

	// PrimarySkin picks the skin a model is animated through: the skin attached
	// to the first mesh, otherwise the first skin.
	//
	// Returns:
	//   - int: the skin index, or -1 if the document has no skins
	PrimarySkin() int
}

var _ gltfSkeletonExtractor = &gltfSkeletonExtractorImpl{}

// newGLTFSkeletonExtractor creates a new skeleton extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfSkeletonExtractor: the skeleton extractor
func newGLTFSkeletonExtractor(parser gltfParser) gltfSkeletonExtractor {
	return &gltfSkeletonExtractorImpl{parser: parser}
}

func (e *gltfSkeletonExtractorImpl) FindSkeletonForMesh(meshIndex int) int {
	doc := e.parser.Document()
	if doc == nil {
		return -1
	}

	for _, node := range doc.Nodes {
		if node.Mesh != nil && *node.Mesh == meshIndex && node.Skin != nil {
			return *node.Skin
		}
	}
	return -1
}

func (e *gltfSkeletonExtractorImpl) PrimarySkin() int {
	doc := e.parser.Document()
	if doc == nil || len(doc.Skins) == 0 {
		return -1
	}
	if len(doc.Meshes) > 0 {
		if si := e.FindSkeletonForMesh(0); si >= 0 && si < len(doc.Skins) {
			return si
		}
	}
	return 0
}

func (e *gltfSkeletonExtractorImpl) ExtractSkeleton(skinIndex int) (*model.Skeleton, map[int]int32, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, nil, fmt.Errorf("no document loaded")
	}
	if skinIndex < 0 || skinIndex >= len(doc.Skins) {
		return nil, nil, fmt.Errorf("skin index %d out of range", skinIndex)
	}

	skin := &doc.Skins[skinIndex]

	var inverseBindMatrices [][16]float32
	if skin.InverseBindMatrices != nil {
		var err error
		inverseBindMatrices, err = e.parser.ReadMat4Accessor(*skin.InverseBindMatrices)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read inverse bind matrices: %w", err)
		}
	}

	jointBone := make(map[int]int32, len(skin.Joints))
	bones := make([]model.Bone, len(skin.Joints))
	for i, nodeIdx := range skin.Joints {
		if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
			return nil, nil, fmt.Errorf("joint %d: invalid node index %d", i, nodeIdx)
		}
		if _, dup := jointBone[nodeIdx]; dup {
			return nil, nil, fmt.Errorf("joint %d: node %d listed twice", i, nodeIdx)
		}
		jointBone[nodeIdx] = int32(i)

		node := &doc.Nodes[nodeIdx]
		bones[i] = model.Bone{
			Name:              common.Coalesce(node.Name, fmt.Sprintf("bone_%d", i)),
			ParentIndex:       -1,
			InverseBindMatrix: gltfIdentityMatrix(),
			LocalTransform:    gltfExtractNodeTransform(node),
		}
		if i < len(inverseBindMatrices) {
			bones[i].InverseBindMatrix = inverseBindMatrices[i]
		}
	}

	// A joint's parent bone is its nearest ancestor that is also a joint.
	nodeParent := gltfNodeParents(doc)
	for i, nodeIdx := range skin.Joints {
		steps := 0
		for anc, ok := nodeParent[nodeIdx]; ok && steps < len(doc.Nodes); anc, ok = nodeParent[anc] {
			steps++
			if b, isJoint := jointBone[anc]; isJoint {
				bones[i].ParentIndex = b
				break
			}
		}
	}

	sorted, oldToNew := gltfTopologicalSortBones(bones)

	boneMapping := make(map[int]int32, len(skin.Joints))
	for nodeIdx, oldIdx := range jointBone {
		boneMapping[nodeIdx] = oldToNew[oldIdx]
	}

	return model.NewSkeleton(sorted), boneMapping, nil
}

// --- Helper Functions ---

// gltfNodeParents maps every child node index to its parent node index.
func gltfNodeParents(doc *gltfDocument) map[int]int {
	parents := make(map[int]int, len(doc.Nodes))
	for parentIdx, node := range doc.Nodes {
		for _, childIdx := range node.Children {
			parents[childIdx] = parentIdx
		}
	}
	return parents
}

// gltfExtractNodeTransform extracts the TRS transform from a glTF node.
func gltfExtractNodeTransform(node *gltfNode) model.Transform {
	if node.Matrix != nil {
		return gltfDecomposeMatrix(*node.Matrix)
	}

	transform := model.IdentityTransform()
	if node.Translation != nil {
		transform.Translation = *node.Translation
	}
	if node.Rotation != nil {
		transform.Rotation = *node.Rotation
	}
	if node.Scale != nil {
		transform.Scale = *node.Scale
	}
	return transform
}

// gltfIdentityMatrix returns a 4x4 identity matrix.
func gltfIdentityMatrix() [16]float32 {
	return [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// gltfDecomposeMatrix decomposes a 4x4 column-major matrix into translation, rotation (quaternion), and scale.
// Shear is not supported.
func gltfDecomposeMatrix(m [16]float32) model.Transform {
	var t model.Transform

	t.Translation = [3]float32{m[12], m[13], m[14]}

	sx := gltfVectorLength(m[0], m[1], m[2])
	sy := gltfVectorLength(m[4], m[5], m[6])
	sz := gltfVectorLength(m[8], m[9], m[10])
	t.Scale = [3]float32{sx, sy, sz}

	if sx < 0.0001 {
		sx = 1
	}
	if sy < 0.0001 {
		sy = 1
	}
	if sz < 0.0001 {
		sz = 1
	}

	// Row-major rotation from the normalized columns.
	r := [9]float32{
		m[0] / sx, m[4] / sy, m[8] / sz,
		m[1] / sx, m[5] / sy, m[9] / sz,
		m[2] / sx, m[6] / sy, m[10] / sz,
	}
	t.Rotation = gltfMatrixToQuaternion(r)

	return t
}

// gltfVectorLength computes the length of a 3D vector.
func gltfVectorLength(x, y, z float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y + z*z)))
}

// gltfMatrixToQuaternion converts a row-major 3x3 rotation matrix to a quaternion (x, y, z, w).
func gltfMatrixToQuaternion(m [9]float32) [4]float32 {
	r00, r01, r02 := m[0], m[1], m[2]
	r10, r11, r12 := m[3], m[4], m[5]
	r20, r21, r22 := m[6], m[7], m[8]

	trace := r00 + r11 + r22

	var x, y, z, w float32
	switch {
	case trace > 0:
		s := float32(math.Sqrt(float64(trace+1.0))) * 2
		w = 0.25 * s
		x = (r21 - r12) / s
		y = (r02 - r20) / s
		z = (r10 - r01) / s
	case r00 > r11 && r00 > r22:
		s := float32(math.Sqrt(float64(1.0+r00-r11-r22))) * 2
		w = (r21 - r12) / s
		x = 0.25 * s
		y = (r01 + r10) / s
		z = (r02 + r20) / s
	case r11 > r22:
		s := float32(math.Sqrt(float64(1.0+r11-r00-r22))) * 2
		w = (r02 - r20) / s
		x = (r01 + r10) / s
		y = 0.25 * s
		z = (r12 + r21) / s
	default:
		s := float32(math.Sqrt(float64(1.0+r22-r00-r11))) * 2
		w = (r10 - r01) / s
		x = (r02 + r20) / s
		y = (r12 + r21) / s
		z = 0.25 * s
	}

	return common.NormalizeQuat([4]float32{x, y, z, w})
}

// gltfTopologicalSortBones reorders bones breadth-first from the roots so that
// parents always precede children. Bones unreachable from a root (cycles in a
// malformed file) are appended in their original order as roots.
//
// Parameters:
//   - bones: the bones in joint order with joint-order parent indices
//
// Returns:
//   - []model.Bone: the sorted bones with remapped parent indices
//   - map[int32]int32: old bone index → new bone index
func gltfTopologicalSortBones(bones []model.Bone) ([]model.Bone, map[int32]int32) {
	children := make(map[int32][]int32)
	queue := make([]int32, 0, len(bones))
	for i, bone := range bones {
		if bone.ParentIndex >= 0 {
			children[bone.ParentIndex] = append(children[bone.ParentIndex], int32(i))
		} else {
			queue = append(queue, int32(i))
		}
	}

	order := make([]int32, 0, len(bones))
	visited := make([]bool, len(bones))
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		if visited[idx] {
			continue
		}
		visited[idx] = true
		order = append(order, idx)
		queue = append(queue, children[idx]...)
	}

	orphaned := make(map[int32]bool)
	for i := range bones {
		if !visited[i] {
			order = append(order, int32(i))
			orphaned[int32(i)] = true
		}
	}

	oldToNew := make(map[int32]int32, len(bones))
	for newIdx, oldIdx := range order {
		oldToNew[oldIdx] = int32(newIdx)
	}

	sorted := make([]model.Bone, len(bones))
	for newIdx, oldIdx := range order {
		bone := bones[oldIdx]
		if bone.ParentIndex >= 0 && !orphaned[oldIdx] {
			bone.ParentIndex = oldToNew[bone.ParentIndex]
		} else {
			bone.ParentIndex = -1
		}
		sorted[newIdx] = bone
	}

	return sorted, oldToNew
}
