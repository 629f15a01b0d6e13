package model

// NewSkeleton builds a Skeleton from a bone list.
// Root indices and the name lookup are derived from the bones, and the bones'
// current local transforms are recorded as the bind pose.
//
// Parameters:
//   - bones: the bones, ordered so that every parent precedes its children
//
// Returns:
//   - *Skeleton: the new skeleton
func NewSkeleton(bones []Bone) *Skeleton {
	s := &Skeleton{
		Bones:           bones,
		BoneNameToIndex: make(map[string]int32, len(bones)),
		BindPose:        make([]Transform, len(bones)),
	}
	for i, b := range bones {
		if b.ParentIndex < 0 {
			s.RootBoneIndices = append(s.RootBoneIndices, int32(i))
		}
		if b.Name != "" {
			s.BoneNameToIndex[b.Name] = int32(i)
		}
		s.BindPose[i] = b.LocalTransform
	}
	return s
}

// SetToBindPose restores every bone's local transform to its bind pose.
// Bones without a recorded bind pose are reset to the identity transform.
func (s *Skeleton) SetToBindPose() {
	for i := range s.Bones {
		if i < len(s.BindPose) {
			s.Bones[i].LocalTransform = s.BindPose[i]
			continue
		}
		s.Bones[i].LocalTransform = IdentityTransform()
	}
}

// Bone looks a bone up by name.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - *Bone: the bone, or nil if no bone has that name
func (s *Skeleton) Bone(name string) *Bone {
	idx, ok := s.BoneNameToIndex[name]
	if !ok || int(idx) >= len(s.Bones) {
		return nil
	}
	return &s.Bones[idx]
}

// Pose returns a copy of every bone's current local transform.
//
// Returns:
//   - []Transform: the local transforms indexed like Bones
func (s *Skeleton) Pose() []Transform {
	pose := make([]Transform, len(s.Bones))
	for i := range s.Bones {
		pose[i] = s.Bones[i].LocalTransform
	}
	return pose
}

// Clone returns a deep copy of the skeleton so that a shared, loaded skeleton
// can be posed independently by several instances.
//
// Returns:
//   - *Skeleton: the copy
func (s *Skeleton) Clone() *Skeleton {
	c := &Skeleton{
		Bones:           append([]Bone(nil), s.Bones...),
		RootBoneIndices: append([]int32(nil), s.RootBoneIndices...),
		BoneNameToIndex: make(map[string]int32, len(s.BoneNameToIndex)),
		BindPose:        append([]Transform(nil), s.BindPose...),
	}
	for k, v := range s.BoneNameToIndex {
		c.BoneNameToIndex[k] = v
	}
	return c
}
