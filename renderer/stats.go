package renderer

import "time"

// The time spent between a BeginSample/EndSample pair.
type SampleStat struct {
	Name     string
	Duration time.Duration
}

// Per device statistics for the last frame.
type DeviceStat struct {
	// The device id.
	Id string

	GenerateTime time.Duration
	TraceTime    time.Duration
	Rays         int
}

type FrameStats struct {
	// Number of cameras rendered and skipped by the visibility pass.
	Cameras int
	Culled  int

	// Profiling samples in the order they completed.
	Samples []SampleStat

	Device DeviceStat

	// Total render time for entire frame.
	RenderTime time.Duration
}

// Get the total time recorded for samples with the given name.
func (fs FrameStats) Sample(name string) time.Duration {
	var total time.Duration
	for _, s := range fs.Samples {
		if s.Name == name {
			total += s.Duration
		}
	}
	return total
}
