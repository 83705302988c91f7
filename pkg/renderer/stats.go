package renderer

import (
	"sync/atomic"
	"time"
)

// RenderStats contains statistics about one Metropolis render
type RenderStats struct {
	BootstrapSamples  int           // Number of bootstrap evaluations
	Normalization     float64       // Mean bootstrap luminance b
	Chains            int           // Number of Markov chains run
	Workers           int           // Number of parallel workers
	TotalMutations    uint64        // Mutations across all chains
	AcceptedMutations uint64        // Proposals accepted
	RejectedMutations uint64        // Proposals rejected
	LargeSteps        uint64        // Mutations drawn as large steps
	SmallSteps        uint64        // Mutations drawn as small steps
	NonFiniteSamples  uint64        // Contributions discarded as NaN/Inf
	BootstrapTime     time.Duration // Wall time of the bootstrap phase
	MutationTime      time.Duration // Wall time of the chain phase
}

// AcceptanceRate returns the fraction of proposals accepted, 0 when no
// mutations ran.
func (rs RenderStats) AcceptanceRate() float64 {
	if rs.TotalMutations == 0 {
		return 0
	}
	return float64(rs.AcceptedMutations) / float64(rs.TotalMutations)
}

// mutationCounters aggregates chain-side counts across workers.
type mutationCounters struct {
	accepted   atomic.Uint64
	rejected   atomic.Uint64
	largeSteps atomic.Uint64
	smallSteps atomic.Uint64
}
