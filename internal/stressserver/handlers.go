package stressserver

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mediaChunkSize is the streaming chunk size for media responses.
const mediaChunkSize = 256 * 1024

// homepage is the lightest page: one quick lookup and minimal rendering.
func (s *Server) homepage(c *gin.Context) {
	start := time.Now()

	dbTime := simulateDBQuery("simple")
	cpu := simulateCPUWork("light")

	s.tracker.Track(c, "homepage", start)
	c.JSON(http.StatusOK, gin.H{
		"page":      "homepage",
		"message":   "Welcome to Organic Web Stress",
		"server_id": s.tracker.ServerID(),
		"processing": gin.H{
			"db_query_ms": roundMs(dbTime),
			"cpu_work_ms": cpu.ElapsedMs,
		},
	})
}

// apiData models a data-processing API call.
func (s *Server) apiData(c *gin.Context) {
	start := time.Now()

	dbTime := simulateDBQuery("medium")
	cpu := simulateCPUWork("medium")

	items := make([]gin.H, 50)
	for i := range items {
		status := "active"
		if rand.Intn(2) == 1 {
			status = "pending"
		}
		items[i] = gin.H{
			"id":     i,
			"value":  100 + rand.Intn(900),
			"status": status,
		}
	}

	s.tracker.Track(c, "api_data", start)
	c.JSON(http.StatusOK, gin.H{
		"endpoint": "api_data",
		"items":    items,
		"count":    len(items),
		"processing": gin.H{
			"db_query_ms": roundMs(dbTime),
			"cpu_work_ms": cpu.ElapsedMs,
		},
	})
}

// dashboard is the heaviest realistic page: several queries, real CPU work,
// and a memory spike for the rendered state.
func (s *Server) dashboard(c *gin.Context) {
	start := time.Now()

	dbTime := simulateDBQuery("complex") + simulateDBQuery("medium") + simulateDBQuery("simple")
	cpu := simulateCPUWork("heavy")
	mem := memoryWork(20, 100*time.Millisecond)

	lineData := make([]int, 24)
	for i := range lineData {
		lineData[i] = 10 + rand.Intn(91)
	}
	barData := make([]int, 12)
	for i := range barData {
		barData[i] = 50 + rand.Intn(151)
	}

	s.tracker.Track(c, "dashboard", start)
	c.JSON(http.StatusOK, gin.H{
		"page": "dashboard",
		"metrics": gin.H{
			"users_online":     100 + rand.Intn(401),
			"requests_per_sec": 50 + rand.Intn(151),
			"error_rate":       round3(0.1 + rand.Float64()*1.9),
			"avg_response_ms":  100 + rand.Intn(401),
		},
		"charts": []gin.H{
			{"type": "line", "data": lineData},
			{"type": "bar", "data": barData},
			{"type": "pie", "data": gin.H{"success": 95, "error": 5}},
		},
		"processing": gin.H{
			"db_queries_ms":  roundMs(dbTime),
			"cpu_work_ms":    cpu.ElapsedMs,
			"memory_work_ms": mem.ElapsedMs,
		},
	})
}

// search scales its query cost with the length of the search term.
func (s *Server) search(c *gin.Context) {
	start := time.Now()
	q := c.DefaultQuery("q", "default")

	complexity := "simple"
	switch {
	case len(q) >= 15:
		complexity = "complex"
	case len(q) >= 5:
		complexity = "medium"
	}

	dbTime := simulateDBQuery(complexity)
	cpu := simulateCPUWork("medium")

	results := make([]gin.H, 5+rand.Intn(16))
	for i := range results {
		results[i] = gin.H{
			"id":        i,
			"title":     fmt.Sprintf("Result %d for %q", i, q),
			"relevance": round3(0.5 + rand.Float64()*0.5),
			"snippet":   fmt.Sprintf("This is a search result snippet for query: %s...", q),
		}
	}

	s.tracker.Track(c, "search", start)
	c.JSON(http.StatusOK, gin.H{
		"query":   q,
		"results": results,
		"count":   len(results),
		"processing": gin.H{
			"db_query_ms": roundMs(dbTime),
			"cpu_work_ms": cpu.ElapsedMs,
			"complexity":  complexity,
		},
	})
}

// product models a product detail page, the common e-commerce pattern.
func (s *Server) product(c *gin.Context) {
	start := time.Now()
	productID := c.Param("id")

	dbTime := simulateDBQuery("medium")
	cpu := simulateCPUWork("medium")

	price := decimal.NewFromFloat(10 + rand.Float64()*990).Round(2)
	recommendations := make([]string, 6)
	for i := range recommendations {
		recommendations[i] = fmt.Sprintf("prod_%d", i)
	}

	s.tracker.Track(c, "product", start)
	c.JSON(http.StatusOK, gin.H{
		"product": gin.H{
			"id":          productID,
			"name":        "Product " + productID,
			"price":       price,
			"description": strings.Repeat("Lorem ipsum dolor sit amet ", 20),
			"stock":       rand.Intn(101),
			"rating":      round3(3 + rand.Float64()*2),
			"reviews":     rand.Intn(501),
		},
		"recommendations": recommendations,
		"processing": gin.H{
			"db_query_ms": roundMs(dbTime),
			"cpu_work_ms": cpu.ElapsedMs,
		},
	})
}

// checkout models transaction processing: reads, price calculation, session
// state, a transactional write, then receipt rendering.
func (s *Server) checkout(c *gin.Context) {
	start := time.Now()

	dbRead := simulateDBQuery("medium")
	cpuCalc := simulateCPUWork("heavy")
	mem := memoryWork(30, 150*time.Millisecond)
	dbWrite := simulateDBQuery("complex")
	cpuReceipt := simulateCPUWork("medium")

	amount := decimal.NewFromFloat(10 + rand.Float64()*490).Round(2)

	s.tracker.Track(c, "checkout", start)
	c.JSON(http.StatusOK, gin.H{
		"checkout": "success",
		"transaction": gin.H{
			"transaction_id": uuid.NewString(),
			"amount":         amount,
			"status":         "completed",
			"timestamp":      time.Now().Format(time.RFC3339),
		},
		"processing": gin.H{
			"total_db_ms":    roundMs(dbRead + dbWrite),
			"total_cpu_ms":   cpuCalc.ElapsedMs + cpuReceipt.ElapsedMs,
			"memory_work_ms": mem.ElapsedMs,
		},
	})
}

// media streams a payload of the requested size in fixed chunks, the
// network-heavy counterpart to the CPU-bound pages.
func (s *Server) media(c *gin.Context) {
	start := time.Now()
	mediaID := c.Param("id")
	sizeMB := queryInt(c, "size_mb", 2)
	if sizeMB < 0 {
		sizeMB = 0
	}

	simulateDBQuery("simple")

	totalBytes := sizeMB * 1024 * 1024
	chunk := make([]byte, mediaChunkSize)
	for i := range chunk {
		chunk[i] = 'X'
	}

	s.tracker.Track(c, "media", start)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=media_%s.bin", mediaID))
	c.Header("X-Media-Size-MB", strconv.Itoa(sizeMB))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	sent := 0
	for sent < totalBytes {
		n := min(mediaChunkSize, totalBytes-sent)
		if _, err := c.Writer.Write(chunk[:n]); err != nil {
			return
		}
		sent += n
		c.Writer.Flush()
	}
}

// -- Monitoring --

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "server_id": s.tracker.ServerID()})
}

func (s *Server) ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "server_id": s.tracker.ServerID()})
}

func (s *Server) metrics(c *gin.Context) {
	total, byEndpoint := s.tracker.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"server_id":            s.tracker.ServerID(),
		"total_requests":       total,
		"requests_by_endpoint": byEndpoint,
		"timestamp":            time.Now().Format(time.RFC3339),
	})
}

func (s *Server) requestStats(c *gin.Context) {
	total, byEndpoint := s.tracker.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"server_id":      s.tracker.ServerID(),
		"total_requests": total,
		"by_endpoint":    byEndpoint,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

// queryInt parses an integer query parameter, falling back to a default on
// absence or garbage.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// queryFloat parses a float query parameter with a fallback.
func queryFloat(c *gin.Context, name string, fallback float64) float64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// queryBool parses a boolean query parameter; absent or invalid means false.
func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}
