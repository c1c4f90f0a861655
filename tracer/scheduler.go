package tracer

import "math"

// A unit of work that executes a contiguous block of frame rows.
type Lane interface {
	// Get the lane computation speed estimate compared to a baseline lane.
	SpeedEstimate() float32

	// Retrieve the statistics of the last block processed by this lane.
	BlockStats() *BlockStats
}

// Per lane block statistics.
type BlockStats struct {
	// The processed block height
	BlockH uint32

	// The time for processing this block (in nanoseconds)
	BlockTime int64
}

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of lanes using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each lane
	// in the input list. The assignments always add up to frameH.
	Schedule(lanes []Lane, frameH uint32) []uint32
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func NewPerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of lanes using feedback collected from previous frames.
//
// When previous frame information is available the scheduler uses the
// following formula for estimating the workload for lane w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(lanes []Lane, frameH uint32) []uint32 {
	if len(lanes) == 0 {
		return nil
	}

	var total float64 = 0.0

	// If this is the first time we try to schedule, the number of lanes
	// has changed or a lane has no timing information yet we need to
	// distribute rows using the speed estimates.
	if len(sch.blockAssignment) != len(lanes) || !haveFeedback(lanes) {
		sch.blockAssignment = make([]uint32, len(lanes))

		for _, l := range lanes {
			total += float64(l.SpeedEstimate())
		}
		scaler := float64(frameH) / total

		for idx, l := range lanes {
			sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(l.SpeedEstimate())*scaler)))
		}

		return sch.balance(frameH)
	}

	// Use last frame statistics
	var stats *BlockStats
	for _, l := range lanes {
		stats = l.BlockStats()
		total += float64(stats.BlockH) / float64(stats.BlockTime)
	}

	scaler := float64(frameH) / total
	for idx, l := range lanes {
		stats = l.BlockStats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockH)/float64(stats.BlockTime)*scaler)))
	}

	return sch.balance(frameH)
}

// Make the assignments add up to frameH. Missing rows are appended to the
// first lane; excess rows are removed starting from the last lane.
func (sch *perfectScheduler) balance(frameH uint32) []uint32 {
	var scheduledRows uint32 = 0
	for _, rows := range sch.blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		sch.blockAssignment[0] += frameH - scheduledRows
		return sch.blockAssignment
	}

	excess := scheduledRows - frameH
	for idx := len(sch.blockAssignment) - 1; idx >= 0 && excess > 0; idx-- {
		take := sch.blockAssignment[idx]
		if take > excess {
			take = excess
		}
		sch.blockAssignment[idx] -= take
		excess -= take
	}
	return sch.blockAssignment
}

func haveFeedback(lanes []Lane) bool {
	for _, l := range lanes {
		stats := l.BlockStats()
		if stats.BlockH == 0 || stats.BlockTime <= 0 {
			return false
		}
	}
	return true
}
