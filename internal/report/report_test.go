package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-kir/web-stress/internal/session"
)

func stats(requests, successes, errors int, rt time.Duration, servers ...string) session.Stats {
	s := session.NewStats()
	s.Requests = requests
	s.Successes = successes
	s.Errors = errors
	s.TotalResponseTime = rt
	for _, server := range servers {
		s.ServersHit[server] = struct{}{}
	}
	return s
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, 0, s.Sessions)
	assert.Equal(t, 0, s.Requests)
	assert.Equal(t, time.Duration(0), s.AvgResponseTime(), "no division-by-zero fault on an empty run")
	assert.Zero(t, s.SuccessPercent())
	assert.Zero(t, s.ErrorPercent())
	assert.Empty(t, s.Servers)
}

func TestSummarizeTotals(t *testing.T) {
	completed := []session.Stats{
		stats(10, 8, 2, 800*time.Millisecond, "web1", "web2"),
		stats(5, 5, 0, 200*time.Millisecond, "web2", "web3"),
	}

	s := Summarize(completed)
	assert.Equal(t, 2, s.Sessions)
	assert.Equal(t, 15, s.Requests)
	assert.Equal(t, 13, s.Successes)
	assert.Equal(t, 2, s.Errors)
	assert.Equal(t, s.Requests, s.Successes+s.Errors)
	assert.Equal(t, time.Second/15, s.AvgResponseTime())
	assert.Equal(t, []string{"web1", "web2", "web3"}, s.ServerNames())
	assert.InDelta(t, 86.7, s.SuccessPercent(), 0.1)
	assert.InDelta(t, 13.3, s.ErrorPercent(), 0.1)
}

func TestMergeMatchesPartitionedSummarize(t *testing.T) {
	all := []session.Stats{
		stats(3, 3, 0, 300*time.Millisecond, "web1"),
		stats(4, 2, 2, 100*time.Millisecond, "web2"),
		stats(1, 0, 1, 0),
		stats(7, 7, 0, 700*time.Millisecond, "web1", "web3"),
	}

	whole := Summarize(all)
	for split := 0; split <= len(all); split++ {
		parts := Merge(Summarize(all[:split]), Summarize(all[split:]))
		assert.Equal(t, whole.Sessions, parts.Sessions, "split at %d", split)
		assert.Equal(t, whole.Requests, parts.Requests, "split at %d", split)
		assert.Equal(t, whole.Successes, parts.Successes, "split at %d", split)
		assert.Equal(t, whole.Errors, parts.Errors, "split at %d", split)
		assert.Equal(t, whole.TotalResponseTime, parts.TotalResponseTime, "split at %d", split)
		assert.Equal(t, whole.ServerNames(), parts.ServerNames(), "split at %d", split)
	}
}

func TestMergeIsAssociative(t *testing.T) {
	a := Summarize([]session.Stats{stats(2, 2, 0, 50*time.Millisecond, "web1")})
	b := Summarize([]session.Stats{stats(3, 1, 2, 80*time.Millisecond, "web2")})
	c := Summarize([]session.Stats{stats(4, 4, 0, 90*time.Millisecond, "web1", "web3")})

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))

	assert.Equal(t, left.Requests, right.Requests)
	assert.Equal(t, left.Sessions, right.Sessions)
	assert.Equal(t, left.TotalResponseTime, right.TotalResponseTime)
	assert.Equal(t, left.ServerNames(), right.ServerNames())
}

func TestMergeSumsDurations(t *testing.T) {
	a := Summary{Duration: 30 * time.Second, Servers: map[string]struct{}{}}
	b := Summary{Duration: 45 * time.Second, Servers: map[string]struct{}{}}
	assert.Equal(t, 75*time.Second, Merge(a, b).Duration)
}

func TestRender(t *testing.T) {
	s := Summarize([]session.Stats{
		stats(10, 9, 1, time.Second, "web1", "web2"),
	})
	s.Duration = 90 * time.Second

	var buf bytes.Buffer
	s.Render(&buf)
	out := buf.String()

	require.Contains(t, out, "TRAFFIC GENERATION SUMMARY")
	assert.Contains(t, out, "Total Sessions:      1")
	assert.Contains(t, out, "Total Requests:      10")
	assert.Contains(t, out, "Successful:          9 (90.0%)")
	assert.Contains(t, out, "Errors:              1 (10.0%)")
	assert.Contains(t, out, "Avg Response Time:   0.100s")
	assert.Contains(t, out, "Servers Hit:         2 (web1, web2)")
	assert.Contains(t, out, "Duration:            90.0s")
}
