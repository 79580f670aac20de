package armature

// distinctBones reports whether every id is non-zero, present in skel, and
// different from the others.
func distinctBones(skel *Skeleton, ids ...BoneID) bool {
	for i, id := range ids {
		if _, ok := skel.bones[id]; !ok {
			return false
		}
		for _, other := range ids[:i] {
			if other == id {
				return false
			}
		}
	}
	return true
}

// parentWorld returns the world transform of bone's parent, or identity for
// the root.
func parentWorld(skel *Skeleton, world map[BoneID]Transform, bone BoneID) Transform {
	if p := skel.bones[bone].Parent; p != 0 {
		return world[p]
	}
	return IdentityTransform
}

// applySymmetry places the projected bone at the point reflection of the
// target bone about the center bone. The projected bone's own translation
// override is dropped before solving so it does not feed back into itself.
// Misconfigured constraints pass the pose through unchanged.
func (g *Graph) applySymmetry(n *Node, pose Pose, skel *Skeleton) Pose {
	c := n.Symmetry
	if skel == nil || !distinctBones(skel, c.Projected, c.Center, c.Target) {
		return pose
	}
	pose[c.Projected] = pose[c.Projected].WithoutTranslation()
	world := pose.Resolve(skel)
	want := world[c.Center].Translation.Scale(2).Sub(world[c.Target].Translation)
	local := parentWorld(skel, world, c.Projected).Unapply(want)
	pose[c.Projected] = pose[c.Projected].WithTranslation(local)
	return pose
}

// applyIK solves the chain from Start to End toward Target's world position
// and writes the result back as local rotation overrides on every chain bone
// except End. Misconfigured constraints pass the pose through unchanged.
func (g *Graph) applyIK(n *Node, pose Pose, skel *Skeleton) Pose {
	c := n.IK
	if skel == nil || !distinctBones(skel, c.Start, c.End, c.Target) {
		return pose
	}
	chain, ok := skel.Chain(c.Start, c.End)
	if !ok {
		return pose
	}
	world := pose.Resolve(skel)
	joints := make([]Vec2, len(chain))
	for i, id := range chain {
		joints[i] = world[id].Translation
	}
	res := SolveFABRIK(joints, world[c.Target].Translation, IKOptions{Clockwise: c.Clockwise})
	if g.hooks.OnSolve != nil {
		g.hooks.OnSolve(SolveEvent{Node: n.ID, Iterations: res.Iterations, Distance: res.Distance, Reached: res.Reached})
	}

	frame := parentWorld(skel, world, c.Start)
	for i, id := range chain[:len(chain)-1] {
		local, _ := pose.Local(skel, id)
		child, _ := pose.Local(skel, chain[i+1])
		dir := res.Joints[i+1].Sub(res.Joints[i])
		if child.Translation.Len() > 0 && dir.Len() > 0 {
			// world rotation that swings the child offset onto dir
			rot := dir.Angle() - child.Translation.Angle()
			local.Rotation = wrapAngle(rot - frame.Rotation)
			pose[id] = pose[id].WithRotation(local.Rotation)
		}
		frame = frame.Compose(local)
	}
	return pose
}
