package renderer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/photometric/go-mmlt/pkg/core"
	"github.com/photometric/go-mmlt/pkg/integrator"
	"github.com/photometric/go-mmlt/pkg/scene"
)

// ErrNoLightContribution reports a scene whose bootstrap phase found no
// energy to spread: either the scene has no emissive objects, or every
// bootstrap sample evaluated to zero. Rendering on would silently
// produce a black image, so this is fatal instead.
var ErrNoLightContribution = errors.New("no light contribution found in scene")

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config controls chain execution. Scene-side sampling parameters
// (bootstrap count, mutations per pixel, path length, clamp) live in
// scene.SamplingConfig so each scene carries its own defaults.
type Config struct {
	Chains  int   // Number of Markov chains (0 = default)
	Workers int   // Number of parallel workers (0 = use CPU count)
	Seed    int64 // Root seed for bootstrap replay and chain RNGs
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Chains:  256,
		Workers: 0,
		Seed:    42,
	}
}

// MMLTRenderer runs multiplexed Metropolis light transport: a bootstrap
// phase estimates the image brightness b and seeds Markov chains, then
// the chains mutate through path space splatting onto per-worker films.
type MMLTRenderer struct {
	scene      *scene.Scene
	config     Config
	integrator *integrator.MMLTIntegrator
	logger     core.Logger
	width      int
	height     int
}

// NewMMLTRenderer creates a renderer for the given validated scene.
func NewMMLTRenderer(s *scene.Scene, config Config, logger core.Logger) *MMLTRenderer {
	if config.Chains <= 0 {
		config.Chains = DefaultConfig().Chains
	}
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	width, height := s.Camera.GetImageDimensions()
	return &MMLTRenderer{
		scene:      s,
		config:     config,
		integrator: integrator.NewMMLTIntegrator(s),
		logger:     logger,
		width:      width,
		height:     height,
	}
}

// chainTask describes one Markov chain: the bootstrap sample that seeds
// its state and the number of mutations it runs.
type chainTask struct {
	bootstrapIndex int
	rngSeed        int64
	mutations      uint64
}

// Render runs the full estimator and returns the normalized film.
func (r *MMLTRenderer) Render(ctx context.Context) (*Film, RenderStats, error) {
	stats := RenderStats{Workers: r.config.Workers}

	if len(r.scene.Lights) == 0 {
		return nil, stats, fmt.Errorf("scene has no emissive objects: %w", ErrNoLightContribution)
	}

	bootstrapStart := time.Now()
	luminances, err := r.bootstrap(ctx)
	if err != nil {
		return nil, stats, err
	}
	stats.BootstrapSamples = len(luminances)
	stats.BootstrapTime = time.Since(bootstrapStart)

	b := 0.0
	for _, luminance := range luminances {
		b += luminance
	}
	b /= float64(len(luminances))
	stats.Normalization = b
	if b <= 0 {
		return nil, stats, fmt.Errorf("all %d bootstrap samples were black: %w", len(luminances), ErrNoLightContribution)
	}
	r.logger.Printf("Bootstrap: %d samples, b=%.6f (%v)\n", len(luminances), b, stats.BootstrapTime.Round(time.Millisecond))

	mutationsPerPixel := r.scene.SamplingConfig.MutationsPerPixel
	if mutationsPerPixel < 1 {
		mutationsPerPixel = 1
	}
	totalMutations := uint64(mutationsPerPixel) * uint64(r.width*r.height)
	chains := r.config.Chains
	if uint64(chains) > totalMutations {
		chains = int(totalMutations)
	}
	stats.Chains = chains

	// Seed selection and per-chain RNG seeds come from a single root
	// stream so a run is reproducible from one seed.
	distribution := core.NewDistribution(luminances)
	root := rand.New(rand.NewSource(r.config.Seed))
	tasks := make([]chainTask, chains)
	perChain := totalMutations / uint64(chains)
	remainder := totalMutations % uint64(chains)
	for c := range tasks {
		index, _ := distribution.Sample(root.Float64())
		mutations := perChain
		if uint64(c) < remainder {
			mutations++
		}
		tasks[c] = chainTask{bootstrapIndex: index, rngSeed: root.Int63(), mutations: mutations}
	}

	r.logger.Printf("Starting %d Markov chains on %d workers (%d mutations)...\n", chains, r.config.Workers, totalMutations)
	mutationStart := time.Now()

	// Chains are striped across workers; each worker splats onto a
	// private film partition so no accumulation needs locks.
	films := make([]*Film, r.config.Workers)
	var counters mutationCounters
	var completedChains atomic.Uint64
	progressInterval := uint64(chains / 10)

	group, groupCtx := errgroup.WithContext(ctx)
	for w := 0; w < r.config.Workers; w++ {
		films[w] = NewFilm(r.width, r.height)
		film := films[w]
		first := w
		group.Go(func() error {
			for c := first; c < chains; c += r.config.Workers {
				if err := r.runChain(groupCtx, film, tasks[c], &counters); err != nil {
					return err
				}
				done := completedChains.Add(1)
				if progressInterval > 0 && done%progressInterval == 0 {
					r.logger.Printf("Chains: %d/%d complete\n", done, chains)
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, stats, err
	}

	// Merging in worker order keeps float accumulation deterministic
	// for a fixed seed and worker count.
	film := NewFilm(r.width, r.height)
	for _, partition := range films {
		film.Merge(partition)
	}
	film.Scale(b / float64(mutationsPerPixel))

	stats.AcceptedMutations = counters.accepted.Load()
	stats.RejectedMutations = counters.rejected.Load()
	stats.LargeSteps = counters.largeSteps.Load()
	stats.SmallSteps = counters.smallSteps.Load()
	stats.TotalMutations = stats.AcceptedMutations + stats.RejectedMutations
	stats.NonFiniteSamples = r.integrator.DiscardedSamples()
	stats.MutationTime = time.Since(mutationStart)

	r.logger.Printf("Render completed in %v (%.1f%% accepted, %d non-finite samples discarded)\n",
		stats.MutationTime.Round(time.Millisecond), 100*stats.AcceptanceRate(), stats.NonFiniteSamples)

	return film, stats, nil
}

// bootstrap evaluates InitialSampleCount independent uniform samples,
// sharded across workers, and returns their luminances. Sample i is
// fully determined by its index so chains can replay their seed sample
// later.
func (r *MMLTRenderer) bootstrap(ctx context.Context) ([]float64, error) {
	count := r.scene.SamplingConfig.InitialSampleCount
	if count < 1 {
		count = 1
	}
	luminances := make([]float64, count)

	group, groupCtx := errgroup.WithContext(ctx)
	shard := (count + r.config.Workers - 1) / r.config.Workers
	for w := 0; w < r.config.Workers; w++ {
		start := w * shard
		end := min(start+shard, count)
		if start >= end {
			break
		}
		group.Go(func() error {
			for i := start; i < end; i++ {
				if i%1024 == 0 {
					select {
					case <-groupCtx.Done():
						return groupCtx.Err()
					default:
					}
				}
				luminances[i] = r.sampleContribution(r.newBootstrapSampler(i)).Scalar
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return luminances, nil
}

// newBootstrapSampler builds the sampler that generates bootstrap sample
// i. Stratifying over path length classes keeps long paths represented
// in the normalization estimate.
func (r *MMLTRenderer) newBootstrapSampler(i int) *integrator.MetropolisSampler {
	return integrator.NewMetropolisSampler(
		r.config.Seed+int64(i),
		r.scene.SamplingConfig.LargeStepProbability,
		i,
		r.scene.SamplingConfig.MaxPathLength,
	)
}

// sampleContribution evaluates one technique sample and applies the
// configured luminance clamp as the sample enters the pipeline, so the
// chains target the clamped distribution consistently.
func (r *MMLTRenderer) sampleContribution(sampler integrator.StreamSampler) integrator.Contribution {
	c := r.integrator.SampleContribution(sampler)
	clamp := r.scene.SamplingConfig.SampleClamp
	if clamp > 0 && c.Scalar > clamp {
		c.Spectrum = c.Spectrum.Multiply(clamp / c.Scalar)
		c.Scalar = clamp
	}
	return c
}

// runChain replays the chain's bootstrap seed sample to recover its
// starting state, then mutates. Every step splats the proposal with
// weight a and the current state with weight 1-a, so accepted and
// rejected states both contribute.
func (r *MMLTRenderer) runChain(ctx context.Context, film *Film, task chainTask, counters *mutationCounters) error {
	sampler := r.newBootstrapSampler(task.bootstrapIndex)
	current := r.sampleContribution(sampler)
	rng := rand.New(rand.NewSource(task.rngSeed))

	for m := uint64(0); m < task.mutations; m++ {
		if m%4096 == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if sampler.Mutate() {
			counters.largeSteps.Add(1)
		} else {
			counters.smallSteps.Add(1)
		}
		proposed := r.sampleContribution(sampler)

		acceptance := integrator.AcceptanceProbability(current, proposed)
		if !proposed.IsEmpty() && acceptance > 0 {
			film.AddSplat(proposed.PixelX, proposed.PixelY, proposed.Spectrum.Multiply(1/proposed.Scalar), acceptance)
		}
		if !current.IsEmpty() && acceptance < 1 {
			film.AddSplat(current.PixelX, current.PixelY, current.Spectrum.Multiply(1/current.Scalar), 1-acceptance)
		}

		if rng.Float64() < acceptance {
			sampler.Accept()
			current = proposed
			counters.accepted.Add(1)
		} else {
			sampler.Reject()
			counters.rejected.Add(1)
		}
	}
	return nil
}
