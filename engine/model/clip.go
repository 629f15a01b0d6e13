package model

import (
	"github.com/Carmen-Shannon/oxy-mix/common"
)

// Apply samples the clip at time and writes the result onto the skeleton's
// bones, replacing whatever pose they held. Only the components a channel
// has keys for are written.
//
// Parameters:
//   - skeleton: the skeleton to pose
//   - time: the playback time in seconds
//   - loop: whether time wraps at the clip duration
func (c *AnimationClip) Apply(skeleton *Skeleton, time float32, loop bool) {
	c.Mix(skeleton, time, loop, 1)
}

// Mix samples the clip at time and blends the result into the skeleton's
// current pose by alpha. An alpha of 0 leaves the pose unchanged and an alpha
// of 1 replaces it with the sample.
//
// Parameters:
//   - skeleton: the skeleton to pose
//   - time: the playback time in seconds
//   - loop: whether time wraps at the clip duration
//   - alpha: the blend weight in [0, 1]
func (c *AnimationClip) Mix(skeleton *Skeleton, time float32, loop bool, alpha float32) {
	if skeleton == nil {
		return
	}
	alpha = common.Clamp(alpha, 0, 1)
	if loop {
		time = common.WrapTime(time, c.Duration)
	}

	for i := range c.Channels {
		ch := &c.Channels[i]
		if ch.BoneIndex < 0 || int(ch.BoneIndex) >= len(skeleton.Bones) {
			continue
		}
		local := &skeleton.Bones[ch.BoneIndex].LocalTransform

		if alpha == 1 {
			if len(ch.PositionKeys) > 0 {
				local.Translation = sampleVector(ch.PositionKeys, time)
			}
			if len(ch.RotationKeys) > 0 {
				local.Rotation = sampleQuaternion(ch.RotationKeys, time)
			}
			if len(ch.ScaleKeys) > 0 {
				local.Scale = sampleVector(ch.ScaleKeys, time)
			}
			continue
		}

		if len(ch.PositionKeys) > 0 {
			local.Translation = common.LerpVec3(local.Translation, sampleVector(ch.PositionKeys, time), alpha)
		}
		if len(ch.RotationKeys) > 0 {
			local.Rotation = common.NlerpQuat(local.Rotation, sampleQuaternion(ch.RotationKeys, time), alpha)
		}
		if len(ch.ScaleKeys) > 0 {
			local.Scale = common.LerpVec3(local.Scale, sampleVector(ch.ScaleKeys, time), alpha)
		}
	}
}

// keyframeSpan finds the pair of keyframes bracketing time and the fraction
// between them. Times outside the key range clamp to the first or last key.
func keyframeSpan(count int, timeAt func(int) float32, time float32) (int, int, float32) {
	if count == 1 || time <= timeAt(0) {
		return 0, 0, 0
	}
	last := count - 1
	if time >= timeAt(last) {
		return last, last, 0
	}

	// Binary search for the first key strictly after time.
	lo, hi := 0, last
	for lo < hi {
		mid := (lo + hi) / 2
		if timeAt(mid) <= time {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	next := lo
	prev := next - 1

	span := timeAt(next) - timeAt(prev)
	if span <= 0 {
		return next, next, 0
	}
	return prev, next, (time - timeAt(prev)) / span
}

// sampleVector linearly interpolates vector keyframes at time.
func sampleVector(keys []VectorKeyframe, time float32) [3]float32 {
	a, b, t := keyframeSpan(len(keys), func(i int) float32 { return keys[i].Time }, time)
	if a == b {
		return keys[a].Value
	}
	return common.LerpVec3(keys[a].Value, keys[b].Value, t)
}

// sampleQuaternion interpolates rotation keyframes at time along the shortest arc.
func sampleQuaternion(keys []QuaternionKeyframe, time float32) [4]float32 {
	a, b, t := keyframeSpan(len(keys), func(i int) float32 { return keys[i].Time }, time)
	if a == b {
		return keys[a].Value
	}
	return common.NlerpQuat(keys[a].Value, keys[b].Value, t)
}
