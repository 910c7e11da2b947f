package stressserver

import (
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"
)

// Synthetic workload primitives. Each models one resource a real web
// application would burn: database latency, CPU cycles, resident memory.

// dbDelays maps query complexity to a latency range.
var dbDelays = map[string][2]time.Duration{
	"simple":  {10 * time.Millisecond, 50 * time.Millisecond},
	"medium":  {50 * time.Millisecond, 150 * time.Millisecond},
	"complex": {150 * time.Millisecond, 400 * time.Millisecond},
	"heavy":   {400 * time.Millisecond, 800 * time.Millisecond},
}

// cpuIntensities maps named workload sizes to iteration counts.
var cpuIntensities = map[string]int{
	"light":   100_000,
	"medium":  500_000,
	"heavy":   2_000_000,
	"extreme": 5_000_000,
}

// simulateDBQuery sleeps for a latency sampled from the complexity's range
// and returns the sampled delay.
func simulateDBQuery(complexity string) time.Duration {
	rng, ok := dbDelays[complexity]
	if !ok {
		rng = dbDelays["simple"]
	}
	delay := rng[0] + time.Duration(rand.Int63n(int64(rng[1]-rng[0])))
	time.Sleep(delay)
	return delay
}

type cpuStats struct {
	Iterations int64   `json:"iterations"`
	ElapsedMs  float64 `json:"elapsed_ms"`
}

// simulateCPUWork burns a fixed number of square roots, standing in for
// rendering or price calculation.
func simulateCPUWork(intensity string) cpuStats {
	iterations, ok := cpuIntensities[intensity]
	if !ok {
		iterations = cpuIntensities["light"]
	}

	start := time.Now()
	sink := 0.0
	for i := 0; i < iterations; i++ {
		sink += math.Sqrt(rand.Float64() * 999)
	}
	_ = sink
	return cpuStats{
		Iterations: int64(iterations),
		ElapsedMs:  roundMs(time.Since(start)),
	}
}

// cpuSpin burns CPU until the deadline. With a zero duration it runs one
// fixed batch, matching the quick default of the index endpoint.
func cpuSpin(duration time.Duration) cpuStats {
	start := time.Now()
	var iterations int64
	sink := 0.0

	if duration == 0 {
		for i := 0; i < 1_000_000; i++ {
			sink += math.Sqrt(rand.Float64() * 9999)
			iterations++
		}
	} else {
		deadline := start.Add(duration)
		for time.Now().Before(deadline) {
			sink += math.Sqrt(rand.Float64() * 9999)
			iterations++
		}
	}
	_ = sink
	return cpuStats{Iterations: iterations, ElapsedMs: roundMs(time.Since(start))}
}

type parallelCPUStats struct {
	TargetDurationSeconds float64 `json:"target_duration_seconds"`
	ElapsedSeconds        float64 `json:"elapsed_seconds"`
	Iterations            int64   `json:"iterations"`
	Workers               int     `json:"workers"`
}

// cpuWork spins up to `workers` goroutines burning CPU in parallel.
func cpuWork(duration time.Duration, workers int) parallelCPUStats {
	if duration < 0 {
		duration = 0
	}
	if workers < 1 {
		workers = 1
	}
	// Cap runaway worker counts relative to available cores.
	if limit := runtime.NumCPU() * 4; workers > limit {
		workers = limit
	}

	results := make([]cpuStats, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = cpuSpin(duration)
		}(i)
	}
	wg.Wait()

	var totalIterations int64
	var maxElapsed float64
	for _, r := range results {
		totalIterations += r.Iterations
		if r.ElapsedMs > maxElapsed {
			maxElapsed = r.ElapsedMs
		}
	}

	return parallelCPUStats{
		TargetDurationSeconds: round3(duration.Seconds()),
		ElapsedSeconds:        round3(maxElapsed / 1000),
		Iterations:            totalIterations,
		Workers:               workers,
	}
}

type memStats struct {
	TargetMegabytes int     `json:"target_megabytes"`
	AllocatedBytes  int     `json:"allocated_bytes"`
	HoldSeconds     float64 `json:"hold_seconds"`
	ElapsedMs       float64 `json:"elapsed_ms"`
}

// memoryWork allocates a block, touches it so it is actually resident, holds
// it for the given duration, then releases it.
func memoryWork(megabytes int, hold time.Duration) memStats {
	if megabytes < 0 {
		megabytes = 0
	}
	if hold < 0 {
		hold = 0
	}

	start := time.Now()
	size := megabytes * 1024 * 1024
	var block []byte
	if size > 0 {
		block = make([]byte, size)
		block[0] = 1
		block[len(block)-1] = 1
	}

	if hold > 0 {
		time.Sleep(hold)
	}

	allocated := len(block)
	block = nil
	_ = block

	return memStats{
		TargetMegabytes: megabytes,
		AllocatedBytes:  allocated,
		HoldSeconds:     round3(hold.Seconds()),
		ElapsedMs:       roundMs(time.Since(start)),
	}
}

func roundMs(d time.Duration) float64 {
	return math.Round(float64(d.Microseconds())/10) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
