package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Checker reports whether a dependency is reachable.
type Checker func(ctx context.Context) error

// CheckResult is the outcome of one named check.
type CheckResult struct {
	OK         bool    `json:"ok"`
	Error      string  `json:"error,omitempty"`
	DurationMs float64 `json:"durationMs"`
}

// Report is the readiness payload.
type Report struct {
	OK     bool                   `json:"ok"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service encapsulates health-related checks.
type Service struct {
	checks  map[string]Checker
	timeout time.Duration
}

// NewService constructs a new health service. A zero timeout defaults to 3s.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{checks: make(map[string]Checker), timeout: timeout}
}

// Register adds a named readiness check.
func (s *Service) Register(name string, check Checker) {
	if check == nil {
		return
	}
	s.checks[name] = check
}

// Names returns the registered check names, sorted.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Status returns a liveness payload.
func (s *Service) Status() map[string]bool {
	return map[string]bool{"ok": true}
}

// Ready runs every check concurrently under a shared timeout.
func (s *Service) Ready(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := Report{OK: true, Checks: make(map[string]CheckResult, len(s.checks))}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range s.checks {
		wg.Add(1)
		go func(name string, check Checker) {
			defer wg.Done()
			start := time.Now()
			err := check(ctx)
			result := CheckResult{OK: err == nil, DurationMs: float64(time.Since(start).Microseconds()) / 1000.0}
			if err != nil {
				result.Error = err.Error()
			}
			mu.Lock()
			report.Checks[name] = result
			if err != nil {
				report.OK = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()
	return report
}
