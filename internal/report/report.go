// Package report reduces per-session statistics into a run summary and
// renders it for the operator.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dev-kir/web-stress/internal/session"
)

// Summary aggregates every completed session of a run.
type Summary struct {
	Sessions          int
	Requests          int
	Successes         int
	Errors            int
	TotalResponseTime time.Duration
	Servers           map[string]struct{}

	// Duration is the measured wall-clock length of the run, recorded by the
	// generator. Merging summaries sums it, so a multi-stage run reports its
	// combined length.
	Duration time.Duration
}

// Summarize reduces a list of completed sessions into a single summary.
// It is a pure reduction; rendering is a separate concern.
func Summarize(completed []session.Stats) Summary {
	s := Summary{Servers: make(map[string]struct{})}
	for _, st := range completed {
		s.Sessions++
		s.Requests += st.Requests
		s.Successes += st.Successes
		s.Errors += st.Errors
		s.TotalResponseTime += st.TotalResponseTime
		for server := range st.ServersHit {
			s.Servers[server] = struct{}{}
		}
	}
	return s
}

// Merge combines two summaries. It is associative, so any partition of a
// run's sessions reduces to the same totals.
func Merge(a, b Summary) Summary {
	out := Summary{
		Sessions:          a.Sessions + b.Sessions,
		Requests:          a.Requests + b.Requests,
		Successes:         a.Successes + b.Successes,
		Errors:            a.Errors + b.Errors,
		TotalResponseTime: a.TotalResponseTime + b.TotalResponseTime,
		Duration:          a.Duration + b.Duration,
		Servers:           make(map[string]struct{}, len(a.Servers)+len(b.Servers)),
	}
	for server := range a.Servers {
		out.Servers[server] = struct{}{}
	}
	for server := range b.Servers {
		out.Servers[server] = struct{}{}
	}
	return out
}

// AvgResponseTime returns the mean response time across all successful
// requests, or zero for an empty run.
func (s Summary) AvgResponseTime() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.TotalResponseTime / time.Duration(s.Requests)
}

// SuccessPercent returns the success rate as a percentage, zero for an empty run.
func (s Summary) SuccessPercent() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Requests) * 100
}

// ErrorPercent returns the error rate as a percentage, zero for an empty run.
func (s Summary) ErrorPercent() float64 {
	if s.Requests == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Requests) * 100
}

// ServerNames returns the distinct backend identifiers in sorted order.
func (s Summary) ServerNames() []string {
	names := make([]string, 0, len(s.Servers))
	for server := range s.Servers {
		names = append(names, server)
	}
	sort.Strings(names)
	return names
}

// Render writes the human-readable summary block.
func (s Summary) Render(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "TRAFFIC GENERATION SUMMARY")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Sessions:      %d\n", s.Sessions)
	fmt.Fprintf(w, "Total Requests:      %d\n", s.Requests)
	fmt.Fprintf(w, "Successful:          %d (%.1f%%)\n", s.Successes, s.SuccessPercent())
	fmt.Fprintf(w, "Errors:              %d (%.1f%%)\n", s.Errors, s.ErrorPercent())
	fmt.Fprintf(w, "Avg Response Time:   %.3fs\n", s.AvgResponseTime().Seconds())
	fmt.Fprintf(w, "Servers Hit:         %d (%s)\n", len(s.Servers), strings.Join(s.ServerNames(), ", "))
	fmt.Fprintf(w, "Duration:            %.1fs\n", s.Duration.Seconds())
	fmt.Fprintln(w, rule)
}
