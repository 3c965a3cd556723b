// Package fixture serves generated patient summaries for demos and tests.
//
// The data set is deterministic for a given seed. Latency and failure
// injection make loading states and error recovery visible in the UI.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rshade/carelist/internal/paging"
	"github.com/rshade/carelist/internal/patient"
)

// Defaults for a fixture source.
const (
	DefaultCount = 500
	DefaultSeed  = 42

	maxPrescriptions = 9
	minAgeYears      = 1
	ageSpanYears     = 90
	pickupWindowDays = 21
	noPickupChance   = 3
	alertChance      = 6
)

// ErrInjected is returned by fetches chosen by FailEvery.
var ErrInjected = errors.New("injected fetch failure")

//nolint:gochecknoglobals // Static name pools.
var (
	firstNames = []string{
		"ada", "grace", "alan", "edsger", "barbara", "donald", "margaret", "ken",
		"frances", "dennis", "radia", "john", "katherine", "linus", "shafi", "tim",
	}
	lastNames = []string{
		"lovelace", "hopper", "turing", "dijkstra", "liskov", "knuth", "hamilton", "thompson",
		"allen", "ritchie", "perlman", "backus", "johnson", "torvalds", "goldwasser", "berners-lee",
	}
	pharmacies = []string{"Main St", "Harbor", "Northside", "Clinic Annex"}
	alerts     = []string{"allergy: penicillin", "fall risk", "controlled substance", "prior auth pending"}
)

// Options tune a fixture source.
type Options struct {
	// Count is the number of patients. Zero means DefaultCount.
	Count int
	// Seed selects the data set. Zero means DefaultSeed.
	Seed int64
	// Latency delays every fetch.
	Latency time.Duration
	// FailEvery makes every Nth fetch fail with ErrInjected. Zero disables it.
	FailEvery int
	// Now anchors birth dates and pickups. Zero means time.Now().
	Now time.Time
}

// Source serves pages of generated patients.
type Source struct {
	patients []patient.Summary
	latency  time.Duration
	every    int
	sorter   *patient.Sorter

	mu      sync.Mutex
	fetches int
}

// New generates the data set described by opts.
func New(opts Options) *Source {
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	return &Source{
		patients: Generate(opts.Count, opts.Seed, opts.Now),
		latency:  opts.Latency,
		every:    opts.FailEvery,
		sorter:   patient.NewSorter(),
	}
}

// Generate builds count patients from seed, anchored at now.
func Generate(count int, seed int64, now time.Time) []patient.Summary {
	//nolint:gosec // Deterministic fixture data, not security sensitive.
	rng := rand.New(rand.NewSource(seed))
	entropy := ulid.Monotonic(rng, 0)
	base := ulid.Timestamp(now.Truncate(time.Hour))

	out := make([]patient.Summary, count)
	for i := range out {
		p := patient.Summary{
			ID:                  ulid.MustNew(base, entropy).String(),
			MRN:                 fmt.Sprintf("MRN-%06d", i+1),
			FirstName:           firstNames[rng.Intn(len(firstNames))],
			LastName:            lastNames[rng.Intn(len(lastNames))],
			BirthDate:           now.AddDate(-(minAgeYears + rng.Intn(ageSpanYears)), 0, -rng.Intn(365)).Truncate(24 * time.Hour),
			Pharmacy:            pharmacies[rng.Intn(len(pharmacies))],
			ActivePrescriptions: rng.Intn(maxPrescriptions + 1),
		}
		if rng.Intn(noPickupChance) != 0 {
			pickup := now.AddDate(0, 0, 1+rng.Intn(pickupWindowDays)).Truncate(time.Hour)
			p.NextPickup = &pickup
		}
		if rng.Intn(alertChance) == 0 {
			p.Alerts = []string{alerts[rng.Intn(len(alerts))]}
		}
		out[i] = p
	}
	return out
}

// Len returns the size of the data set.
func (s *Source) Len() int {
	return len(s.patients)
}

// ValidSortField reports whether field can be used to sort.
func (s *Source) ValidSortField(field string) bool {
	return s.sorter.IsValidField(field)
}

// FetchPage returns the requested slice of the sorted data set.
func (s *Source) FetchPage(ctx context.Context, req paging.Request) (paging.Page[patient.Summary], error) {
	s.mu.Lock()
	s.fetches++
	n := s.fetches
	s.mu.Unlock()

	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			timer.Stop()
			return paging.Page[patient.Summary]{}, ctx.Err()
		case <-timer.C:
		}
	}

	if s.every > 0 && n%s.every == 0 {
		return paging.Page[patient.Summary]{}, fmt.Errorf("fetch %d: %w", n, ErrInjected)
	}

	data := s.patients
	if req.Sort != "" {
		data = s.sorter.Sort(data, req.Sort, req.Order)
	}

	start := min(max(req.Offset, 0), len(data))
	end := min(start+max(req.Limit, 0), len(data))
	items := make([]patient.Summary, end-start)
	copy(items, data[start:end])

	return paging.Page[patient.Summary]{
		Items:   items,
		Total:   len(data),
		HasMore: end < len(data),
	}, nil
}

// Fetches returns how many fetches were attempted.
func (s *Source) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}
