// Package bvh builds bounding volume hierarchies over the per-slot bounding
// volumes of an acceleration structure.
package bvh

import (
	"math"
	"sort"
	"time"

	"github.com/skarab/awesome-shader-nft/log"
	"github.com/skarab/awesome-shader-nft/scene"
	"github.com/skarab/awesome-shader-nft/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// A split scoring strategy that uses the surface area heuristic (SAH).
var SurfaceAreaHeuristic = surfaceAreaHeuristic{}

// Implemented by all items that can be partitioned by the builder.
type BoundedVolume interface {
	BBox() [2]types.Vec3
	Center() types.Vec3
}

// Invoked whenever the builder emits a leaf. The callback is expected to
// store the leaf items in a form the tracer understands.
type LeafCallback func(leaf *scene.BvhNode, itemList []BoundedVolume)

// A split scoring strategy. Lower scores are better.
type ScoreStrategy interface {
	// Score splitting workList at splitPoint along axis. Items whose center
	// lies below the split point go to the left side.
	ScoreSplit(workList []BoundedVolume, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32)

	// Score keeping all workList items in a single node.
	ScorePartition(workList []BoundedVolume) (score float32)
}

// Build statistics.
type Stats struct {
	PartitionedItems int
	TotalItems       int
	Nodes            int
	Leafs            int
	MaxDepth         int
	BuildTime        time.Duration
}

type candidate struct {
	axis       Axis
	splitPoint float32
	score      float32
}

type builder struct {
	nodes        []scene.BvhNode
	leafCb       LeafCallback
	minLeafItems int
	strategy     ScoreStrategy
	stats        Stats
}

// Build a BVH over workList. Work lists with at most minLeafItems items
// become leafs; larger lists are split at the item center that yields the
// best score along any axis, unless no split beats keeping them together.
// Nodes are emitted depth first so the root is always node 0.
func Build(workList []BoundedVolume, minLeafItems int, leafCb LeafCallback, strategy ScoreStrategy) ([]scene.BvhNode, Stats) {
	if minLeafItems < 1 {
		minLeafItems = 1
	}
	b := &builder{
		nodes:        make([]scene.BvhNode, 0, 2*len(workList)),
		leafCb:       leafCb,
		minLeafItems: minLeafItems,
		strategy:     strategy,
		stats:        Stats{TotalItems: len(workList)},
	}

	start := time.Now()
	b.partition(workList, 0)
	b.stats.BuildTime = time.Since(start)

	log.New("bvh builder").Debugf(
		"built bvh for %d items in %s: depth %d, %d nodes, %d leafs",
		b.stats.TotalItems, b.stats.BuildTime, b.stats.MaxDepth, b.stats.Nodes, b.stats.Leafs,
	)
	return b.nodes, b.stats
}

func (b *builder) partition(workList []BoundedVolume, depth int) uint32 {
	if depth > b.stats.MaxDepth {
		b.stats.MaxDepth = depth
	}

	bmin, bmax := bounds(workList)
	node := scene.BvhNode{Min: bmin.Vec4(0), Max: bmax.Vec4(0)}

	if len(workList) <= b.minLeafItems {
		return b.emitLeaf(node, workList)
	}

	best, found := b.bestSplit(workList)
	if !found {
		return b.emitLeaf(node, workList)
	}

	var left, right []BoundedVolume
	for _, item := range workList {
		if item.Center()[best.axis] < best.splitPoint {
			left = append(left, item)
		} else {
			right = append(right, item)
		}
	}

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.Nodes++

	leftIndex := b.partition(left, depth+1)
	rightIndex := b.partition(right, depth+1)
	b.nodes[nodeIndex].SetChildNodes(leftIndex, rightIndex)
	return uint32(nodeIndex)
}

// Evaluate every distinct item center along each axis as a split plane.
// Candidates are visited in axis then split point order so ties resolve
// the same way on every run.
func (b *builder) bestSplit(workList []BoundedVolume) (candidate, bool) {
	best := candidate{score: b.strategy.ScorePartition(workList)}
	found := false

	planes := make([]float32, len(workList))
	for axis := XAxis; axis <= ZAxis; axis++ {
		for idx, item := range workList {
			planes[idx] = item.Center()[axis]
		}
		sort.Slice(planes, func(i, j int) bool { return planes[i] < planes[j] })

		for idx, splitPoint := range planes {
			if idx > 0 && planes[idx-1] == splitPoint {
				continue
			}
			_, _, score := b.strategy.ScoreSplit(workList, axis, splitPoint)
			if score < best.score {
				best = candidate{axis: axis, splitPoint: splitPoint, score: score}
				found = true
			}
		}
	}
	return best, found
}

func (b *builder) emitLeaf(node scene.BvhNode, workList []BoundedVolume) uint32 {
	b.leafCb(&node, workList)

	nodeIndex := len(b.nodes)
	b.nodes = append(b.nodes, node)
	b.stats.Leafs++
	b.stats.PartitionedItems += len(workList)
	return uint32(nodeIndex)
}

func bounds(workList []BoundedVolume) (types.Vec3, types.Vec3) {
	lo := types.XYZ(math.MaxFloat32, math.MaxFloat32, math.MaxFloat32)
	hi := types.XYZ(-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32)
	for _, item := range workList {
		bbox := item.BBox()
		lo = types.MinVec3(lo, bbox[0])
		hi = types.MaxVec3(hi, bbox[1])
	}
	return lo, hi
}

// Half the surface area of the box spanned by lo and hi.
func halfArea(lo, hi types.Vec3) float32 {
	side := hi.Sub(lo)
	return side[0]*side[1] + side[1]*side[2] + side[0]*side[2]
}

type surfaceAreaHeuristic struct{}

// Score a split as leftCount * left area + rightCount * right area. Splits
// that leave one side empty get the worst possible score.
func (surfaceAreaHeuristic) ScoreSplit(workList []BoundedVolume, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	var left, right []BoundedVolume
	for _, item := range workList {
		if item.Center()[axis] < splitPoint {
			left = append(left, item)
		} else {
			right = append(right, item)
		}
	}

	leftCount, rightCount = len(left), len(right)
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	lmin, lmax := bounds(left)
	rmin, rmax := bounds(right)
	score = float32(leftCount)*halfArea(lmin, lmax) + float32(rightCount)*halfArea(rmin, rmax)
	return leftCount, rightCount, score
}

// Score a node as item count * area. Empty work lists get the worst
// possible score.
func (surfaceAreaHeuristic) ScorePartition(workList []BoundedVolume) float32 {
	if len(workList) == 0 {
		return math.MaxFloat32
	}
	lo, hi := bounds(workList)
	return float32(len(workList)) * halfArea(lo, hi)
}
