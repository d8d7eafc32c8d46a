package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Recorder collects response latencies. It is safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	histogram *hdrhistogram.Histogram
	total     int64
	errors    int64
	statuses  map[int]int64
	start     time.Time
	end       time.Time
	now       func() time.Time
}

// Summary is a point-in-time view of a Recorder.
type Summary struct {
	Total    int64
	Errors   int64
	Statuses map[int]int64
	Min      time.Duration
	Mean     time.Duration
	P50      time.Duration
	P95      time.Duration
	P99      time.Duration
	Max      time.Duration
	Elapsed  time.Duration
	RPS      float64
}

func NewRecorder() *Recorder {
	return &Recorder{
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statuses:  make(map[int]int64),
		now:       time.Now,
	}
}

// Start marks the beginning of the run. Record calls it implicitly.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.start.IsZero() {
		r.start = r.now()
	}
}

// Stop marks the end of the run.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end = r.now()
}

// Record adds one response.
func (r *Recorder) Record(resp *model.HttpResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.start.IsZero() {
		r.start = r.now()
	}
	r.total++

	if resp == nil || resp.Status <= 0 {
		r.errors++
		return
	}
	r.statuses[resp.Status]++

	latencyUs := resp.Time.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}
	_ = r.histogram.RecordValue(latencyUs)
}

// Summary returns the current aggregate.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Total:    r.total,
		Errors:   r.errors,
		Statuses: make(map[int]int64, len(r.statuses)),
	}
	for code, n := range r.statuses {
		s.Statuses[code] = n
	}

	if r.histogram.TotalCount() > 0 {
		s.Min = usToDuration(r.histogram.Min())
		s.Mean = time.Duration(r.histogram.Mean() * float64(time.Microsecond))
		s.P50 = usToDuration(r.histogram.ValueAtQuantile(50))
		s.P95 = usToDuration(r.histogram.ValueAtQuantile(95))
		s.P99 = usToDuration(r.histogram.ValueAtQuantile(99))
		s.Max = usToDuration(r.histogram.Max())
	}

	if !r.start.IsZero() {
		end := r.end
		if end.IsZero() {
			end = r.now()
		}
		s.Elapsed = end.Sub(r.start)
		if s.Elapsed > 0 {
			s.RPS = float64(r.total) / s.Elapsed.Seconds()
		}
	}
	return s
}

// StatusCodes returns the recorded status codes in ascending order.
func (s Summary) StatusCodes() []int {
	codes := make([]int, 0, len(s.Statuses))
	for code := range s.Statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// ErrorRate is the share of sends that got no response.
func (s Summary) ErrorRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Errors) / float64(s.Total)
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
