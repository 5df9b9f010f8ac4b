// Package metrics keeps process-local counters for the resume API and renders
// them in the Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

type collector interface {
	write(w io.Writer)
}

var (
	regMu    sync.Mutex
	registry []collector
)

func register[C collector](c C) C {
	regMu.Lock()
	defer regMu.Unlock()
	registry = append(registry, c)
	return c
}

// Resume lifecycle series.
var (
	ResumesCreated    = register(NewCounter("resumes_created_total", "Resumes created through save"))
	ResumesDuplicated = register(NewCounter("resumes_duplicated_total", "Resumes created by duplicate"))
	ResumesDeleted    = register(NewCounter("resumes_deleted_total", "Resumes soft-deleted"))
	LimitReached      = register(NewCounter("resume_limit_reached_total", "Creates refused by the plan limit"))
	NameCollisions    = register(NewCounter("resume_name_collisions_total", "Title checks answered with a suggestion"))
	SaveOutcomes      = register(NewCounterVec("resume_saves_total", "Save requests by outcome", "outcome"))
	SaveLatency       = register(NewHistogram("resume_save_duration_ms", "Save latency in milliseconds", 5, 10, 25, 50, 100, 250, 500, 1000, 2500))
)

// Counter is a monotonically increasing series.
type Counter struct {
	name, help string
	v          atomic.Uint64
}

func NewCounter(name, help string) *Counter {
	return &Counter{name: name, help: help}
}

func (c *Counter) Inc()          { c.v.Add(1) }
func (c *Counter) Value() uint64 { return c.v.Load() }

func (c *Counter) write(w io.Writer) {
	header(w, c.name, c.help, "counter")
	fmt.Fprintf(w, "%s %d\n", c.name, c.Value())
}

// CounterVec is a counter partitioned by one label.
type CounterVec struct {
	name, help, label string
	mu                sync.Mutex
	values            map[string]*atomic.Uint64
}

func NewCounterVec(name, help, label string) *CounterVec {
	return &CounterVec{name: name, help: help, label: label, values: map[string]*atomic.Uint64{}}
}

// Inc bumps the series for value. Empty values are recorded as "unknown".
func (v *CounterVec) Inc(value string) {
	if value == "" {
		value = "unknown"
	}
	v.mu.Lock()
	n, ok := v.values[value]
	if !ok {
		n = new(atomic.Uint64)
		v.values[value] = n
	}
	v.mu.Unlock()
	n.Add(1)
}

func (v *CounterVec) Value(value string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if n, ok := v.values[value]; ok {
		return n.Load()
	}
	return 0
}

func (v *CounterVec) write(w io.Writer) {
	header(w, v.name, v.help, "counter")
	v.mu.Lock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s{%s=%q} %d\n", v.name, v.label, k, v.values[k].Load())
	}
	v.mu.Unlock()
}

// Histogram tracks observations against fixed upper bounds.
type Histogram struct {
	name, help string
	mu         sync.Mutex
	bounds     []float64
	buckets    []uint64
	sum        float64
	count      uint64
}

func NewHistogram(name, help string, bounds ...float64) *Histogram {
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)
	return &Histogram{name: name, help: help, bounds: sorted, buckets: make([]uint64, len(sorted))}
}

// Observe records value, clamping negatives to zero.
func (h *Histogram) Observe(value float64) {
	value = math.Max(value, 0)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if i := sort.SearchFloat64s(h.bounds, value); i < len(h.bounds) {
		h.buckets[i]++
	}
}

// ObserveSince records the milliseconds elapsed since start.
func (h *Histogram) ObserveSince(start time.Time) {
	h.Observe(float64(time.Since(start)) / float64(time.Millisecond))
}

// cumulative returns per-bound running totals, the shape the exposition format expects.
func (h *Histogram) cumulative() (counts []uint64, sum float64, total uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts = make([]uint64, len(h.buckets))
	var running uint64
	for i, n := range h.buckets {
		running += n
		counts[i] = running
	}
	return counts, h.sum, h.count
}

func (h *Histogram) write(w io.Writer) {
	counts, sum, total := h.cumulative()
	header(w, h.name, h.help, "histogram")
	for i, bound := range h.bounds {
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", h.name, formatFloat(bound), counts[i])
	}
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", h.name, total)
	fmt.Fprintf(w, "%s_sum %s\n", h.name, formatFloat(sum))
	fmt.Fprintf(w, "%s_count %d\n", h.name, total)
}

func header(w io.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Render writes every registered series in registration order.
func Render() string {
	var b strings.Builder
	regMu.Lock()
	cs := append([]collector(nil), registry...)
	regMu.Unlock()
	for _, c := range cs {
		c.write(&b)
	}
	return b.String()
}

// Handler serves Render at /metrics.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(Render()))
	}
}
