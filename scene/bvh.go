package scene

import "github.com/skarab/awesome-shader-nft/types"

// Bvh node definition. Each node takes 32 bytes.
type BvhNode struct {
	// Bounding box min extent. If this is a node then the W component
	// is > 0 and contains the index to the left node; If this is a leaf
	// then W component is <= 0 and contains the negated index of the first
	// volume in the leaf.
	Min types.Vec4

	// Bounding box max extent. If this is a node then the W component
	// is > 0 and contains the index to the right node; If this is a leaf
	// then W component contains the count of volumes in the leaf.
	Max types.Vec4
}

// Set the left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.Min[3] = float32(left)
	n.Max[3] = float32(right)
}

// Get the left and right child node indices.
func (n *BvhNode) ChildNodes() (uint32, uint32) {
	return uint32(n.Min[3]), uint32(n.Max[3])
}

// Set the range of leaf items. The item indices refer to the
// leaf item list produced alongside the node list.
func (n *BvhNode) SetItems(first, count uint32) {
	n.Min[3] = -float32(first)
	n.Max[3] = -float32(count)
}

// Get the range of leaf items.
func (n *BvhNode) Items() (first, count uint32) {
	return uint32(-n.Min[3]), uint32(-n.Max[3])
}

// Check whether this node is a leaf.
func (n *BvhNode) IsLeaf() bool {
	return n.Max[3] <= 0
}

// Slab test against a ray.
func (n *BvhNode) IntersectRay(origin, invDir types.Vec3, tMin, tMax float32) (float32, float32, bool) {
	return intersectBox(n.Min.Vec3(), n.Max.Vec3(), origin, invDir, tMin, tMax)
}

// Flatten nodes to the device layout (8 float32 per node).
func FlattenBvhNodes(nodes []BvhNode) []float32 {
	out := make([]float32, len(nodes)*8)
	for i, n := range nodes {
		copy(out[i*8:], n.Min[:])
		copy(out[i*8+4:], n.Max[:])
	}
	return out
}
