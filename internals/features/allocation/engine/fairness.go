// file: internals/features/allocation/engine/fairness.go
package engine

import (
	"fmt"
	"log"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"
)

/* =========================
   Designation
========================= */

// Designation is ordered by seniority.
type Designation int

const (
	DesignationUnknown Designation = iota
	DesignationAssistant
	DesignationAssociate
	DesignationProfessor
)

var Designations = []Designation{DesignationAssistant, DesignationAssociate, DesignationProfessor}

func (d Designation) String() string {
	switch d {
	case DesignationAssistant:
		return "Assistant"
	case DesignationAssociate:
		return "Associate"
	case DesignationProfessor:
		return "Professor"
	default:
		return "Unknown"
	}
}

// ParseDesignation accepts "Assistant", "assistant professor", "ASSOCIATE PROF.", "Professor", ...
func ParseDesignation(s string) (Designation, error) {
	v := strings.ToLower(norm.NFKC.String(strings.TrimSpace(s)))
	v = strings.Join(strings.Fields(v), " ")
	switch {
	case strings.HasPrefix(v, "assistant"), strings.HasPrefix(v, "asst"):
		return DesignationAssistant, nil
	case strings.HasPrefix(v, "associate"), strings.HasPrefix(v, "assoc"):
		return DesignationAssociate, nil
	case v == "professor", v == "prof", v == "prof.", strings.HasPrefix(v, "full professor"):
		return DesignationProfessor, nil
	default:
		return DesignationUnknown, fmt.Errorf("unknown designation %q", s)
	}
}

/* =========================
   Quotas
========================= */

type Quota struct {
	Min int
	Max int
}

type quotaShare struct{ minPct, maxPct int }

var quotaShares = map[Designation]quotaShare{
	DesignationAssistant: {minPct: 40, maxPct: 50},
	DesignationAssociate: {minPct: 20, maxPct: 35},
	DesignationProfessor: {minPct: 0, maxPct: 15},
}

// DesignationQuotas computes [floor(min% * n), ceil(max% * n)] per designation,
// in integer percent so 0.35*20 is exactly 7.
func DesignationQuotas(n int) map[Designation]Quota {
	out := make(map[Designation]Quota, len(quotaShares))
	for d, s := range quotaShares {
		out[d] = Quota{
			Min: s.minPct * n / 100,
			Max: (s.maxPct*n + 99) / 100,
		}
	}
	return out
}

// MinQuotaHook is called when a designation contributes fewer than its Min to the pool.
// Only the Max bound gates the pool; escalation to senior designations would hook in here.
type MinQuotaHook func(d Designation, q Quota, taken int)

func LogUnderfilledQuota(d Designation, q Quota, taken int) {
	log.Printf("[ALLOC] designation %s under quota: took %d, min %d", d, taken, q.Min)
}

/* =========================
   Tie-break strategy
========================= */

// TieBreaker reorders faculty that carry the same fairness count.
type TieBreaker interface {
	Shuffle(group []Faculty)
}

// RandomTieBreaker is a Fisher–Yates shuffle over a seedable source. Safe for concurrent use.
type RandomTieBreaker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomTieBreaker(seed uint64) *RandomTieBreaker {
	return &RandomTieBreaker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (tb *RandomTieBreaker) Shuffle(group []Faculty) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	for i := len(group) - 1; i > 0; i-- {
		j := tb.rng.IntN(i + 1)
		group[i], group[j] = group[j], group[i]
	}
}

// NoopTieBreaker keeps input order among ties.
type NoopTieBreaker struct{}

func (NoopTieBreaker) Shuffle([]Faculty) {}

var (
	defaultTieBreakerOnce sync.Once
	defaultTieBreaker     *RandomTieBreaker
)

// DefaultTieBreaker is the process-wide source, seeded once from the clock.
func DefaultTieBreaker() TieBreaker {
	defaultTieBreakerOnce.Do(func() {
		defaultTieBreaker = NewRandomTieBreaker(uint64(time.Now().UnixNano()))
	})
	return defaultTieBreaker
}

// OrderByFairness: stable ascending by PreviousAllocations, then each run of equal counts is shuffled.
func OrderByFairness(group []Faculty, tb TieBreaker) []Faculty {
	out := slices.Clone(group)
	slices.SortStableFunc(out, func(a, b Faculty) int { return a.PreviousAllocations - b.PreviousAllocations })
	if tb == nil {
		return out
	}
	for i := 0; i < len(out); {
		j := i + 1
		for j < len(out) && out[j].PreviousAllocations == out[i].PreviousAllocations {
			j++
		}
		if j-i > 1 {
			tb.Shuffle(out[i:j])
		}
		i = j
	}
	return out
}
