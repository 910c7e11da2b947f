package stressserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// stressParams collects the knobs of the parameterized stress endpoints.
type stressParams struct {
	CPU     bool
	Memory  bool
	Network bool

	CPUDuration    time.Duration
	CPUWorkers     int
	MemoryMB       int
	MemoryHold     time.Duration
	NetworkMB      int
	NetworkChunkKB int
}

func stressParamsFromQuery(c *gin.Context) stressParams {
	return stressParams{
		CPU:            queryBool(c, "cpu"),
		Memory:         queryBool(c, "memory"),
		Network:        queryBool(c, "network"),
		CPUDuration:    time.Duration(queryFloat(c, "cpu_duration", 1.0) * float64(time.Second)),
		CPUWorkers:     queryInt(c, "cpu_workers", 1),
		MemoryMB:       queryInt(c, "memory_mb", 128),
		MemoryHold:     time.Duration(queryFloat(c, "memory_hold", 1.0) * float64(time.Second)),
		NetworkMB:      queryInt(c, "network_mb", 5),
		NetworkChunkKB: queryInt(c, "network_chunk_kb", 256),
	}
}

// profileFlags maps named stress profiles to the workloads they enable.
var profileFlags = map[string][3]bool{ // cpu, memory, network
	"cpu":            {true, false, false},
	"memory":         {false, true, false},
	"network":        {false, false, true},
	"cpu-memory":     {true, true, false},
	"cpu-network":    {true, false, true},
	"memory-network": {false, true, true},
	"all":            {true, true, true},
}

// stress runs any combination of CPU, memory, and network load selected via
// query flags. At least one must be selected.
func (s *Server) stress(c *gin.Context) {
	p := stressParamsFromQuery(c)
	if !p.CPU && !p.Memory && !p.Network {
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "Select at least one stress type (cpu, memory, network).",
		})
		return
	}
	s.runStress(c, p, "stress")
}

// stressProfile runs a named combination of workloads.
func (s *Server) stressProfile(c *gin.Context) {
	flags, ok := profileFlags[c.Param("profile")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown stress profile."})
		return
	}

	p := stressParamsFromQuery(c)
	p.CPU, p.Memory, p.Network = flags[0], flags[1], flags[2]
	s.runStress(c, p, "stress_profile")
}

// runStress executes the selected workloads. CPU and memory run in the
// background so a network-streaming response can overlap them, with their
// stats appended to the tail of the stream, the same shape a client sees
// from a long-polling job endpoint.
func (s *Server) runStress(c *gin.Context, p stressParams, endpoint string) {
	start := time.Now()
	stats := gin.H{
		"requested": gin.H{"cpu": p.CPU, "memory": p.Memory, "network": p.Network},
	}

	var cpuCh chan parallelCPUStats
	if p.CPU {
		cpuCh = make(chan parallelCPUStats, 1)
		go func() { cpuCh <- cpuWork(p.CPUDuration, p.CPUWorkers) }()
	}

	var memCh chan memStats
	if p.Memory {
		memCh = make(chan memStats, 1)
		go func() { memCh <- memoryWork(p.MemoryMB, p.MemoryHold) }()
	}

	if !p.Network {
		if cpuCh != nil {
			stats["cpu"] = <-cpuCh
		}
		if memCh != nil {
			stats["memory"] = <-memCh
		}
		s.tracker.Track(c, endpoint, start)
		c.JSON(http.StatusOK, gin.H{"message": "stress execution complete", "stats": stats})
		return
	}

	networkMB := max(p.NetworkMB, 0)
	chunkKB := max(p.NetworkChunkKB, 1)
	totalBytes := networkMB * 1024 * 1024
	chunkBytes := chunkKB * 1024
	stats["network"] = gin.H{
		"target_megabytes": networkMB,
		"total_bytes":      totalBytes,
		"chunk_bytes":      chunkBytes,
	}

	chunk := make([]byte, chunkBytes)
	for i := range chunk {
		chunk[i] = 'x'
	}

	s.tracker.Track(c, endpoint, start)
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	emitted := 0
	for emitted < totalBytes {
		n := min(chunkBytes, totalBytes-emitted)
		if _, err := c.Writer.Write(chunk[:n]); err != nil {
			return
		}
		emitted += n
		c.Writer.Flush()
	}

	if cpuCh != nil {
		stats["cpu"] = <-cpuCh
	}
	if memCh != nil {
		stats["memory"] = <-memCh
	}

	summary, err := json.Marshal(gin.H{"message": "stress execution complete", "stats": stats})
	if err != nil {
		return
	}
	if totalBytes > 0 {
		_, _ = c.Writer.Write([]byte("\n"))
	}
	_, _ = c.Writer.Write(summary)
}

// -- Extreme load endpoints --

// extremeCPU pins the CPU at full tilt for the requested duration.
func (s *Server) extremeCPU(c *gin.Context) {
	start := time.Now()
	duration := time.Duration(queryInt(c, "duration", 5)) * time.Second
	workers := queryInt(c, "workers", 4)

	result := cpuWork(duration, workers)

	s.tracker.Track(c, "extreme_cpu", start)
	c.JSON(http.StatusOK, gin.H{
		"type":             "extreme_cpu",
		"duration_seconds": duration.Seconds(),
		"iterations":       result.Iterations,
		"elapsed_seconds":  round3(time.Since(start).Seconds()),
		"workers":          result.Workers,
	})
}

// extremeMemory allocates a large block and holds it.
func (s *Server) extremeMemory(c *gin.Context) {
	start := time.Now()
	mb := queryInt(c, "mb", 512)
	hold := time.Duration(queryInt(c, "hold", 5)) * time.Second

	result := memoryWork(mb, hold)

	s.tracker.Track(c, "extreme_memory", start)
	c.JSON(http.StatusOK, gin.H{
		"type":            "extreme_memory",
		"requested_mb":    mb,
		"allocated_bytes": result.AllocatedBytes,
		"allocated_mb":    round3(float64(result.AllocatedBytes) / (1024 * 1024)),
		"hold_seconds":    result.HoldSeconds,
		"elapsed_seconds": round3(time.Since(start).Seconds()),
	})
}

// extremeCPUMem holds memory while burning CPU; network stays quiet.
func (s *Server) extremeCPUMem(c *gin.Context) {
	start := time.Now()
	cpuDuration := time.Duration(queryInt(c, "cpu_duration", 5)) * time.Second
	memoryMB := queryInt(c, "memory_mb", 256)

	memCh := make(chan memStats, 1)
	go func() { memCh <- memoryWork(memoryMB, cpuDuration) }()
	cpu := cpuSpin(cpuDuration)
	mem := <-memCh

	s.tracker.Track(c, "extreme_cpu_mem", start)
	c.JSON(http.StatusOK, gin.H{
		"type":                "extreme_cpu_mem",
		"cpu_iterations":      cpu.Iterations,
		"memory_allocated_mb": round3(float64(mem.AllocatedBytes) / (1024 * 1024)),
		"elapsed_seconds":     round3(time.Since(start).Seconds()),
	})
}

// extremeAll saturates CPU, memory, and the network path at the same time.
func (s *Server) extremeAll(c *gin.Context) {
	p := stressParamsFromQuery(c)
	p.CPU, p.Memory, p.Network = true, true, true
	p.CPUDuration = time.Duration(queryInt(c, "cpu_duration", 5)) * time.Second
	p.CPUWorkers = queryInt(c, "cpu_workers", 4)
	p.MemoryMB = queryInt(c, "memory_mb", 256)
	p.MemoryHold = p.CPUDuration
	p.NetworkMB = queryInt(c, "network_mb", 50)
	p.NetworkChunkKB = 1024

	s.runStress(c, p, "extreme_all")
}
