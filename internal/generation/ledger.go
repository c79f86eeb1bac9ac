package generation

import (
	"fmt"
	"sort"
	"sync"
)

// Ledger accumulates cost estimates for one pipeline run. Each course
// generation or validation pass constructs its own Ledger; it is safe for
// the concurrent goroutines of that single run to share it.
type Ledger struct {
	mu        sync.Mutex
	budget    float64
	total     float64
	breakdown map[string]float64
	calls     map[string]int
}

// NewLedger creates an empty ledger. A budget of zero or less means the run
// is not capped.
func NewLedger(budget float64) *Ledger {
	return &Ledger{
		budget:    budget,
		breakdown: make(map[string]float64),
		calls:     make(map[string]int),
	}
}

// Track adds cost to the running total of operation and to the grand total.
func (l *Ledger) Track(operation string, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.breakdown[operation] += cost
	l.calls[operation]++
	l.total += cost
}

// Total returns the grand total recorded so far.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// CheckBudget returns ErrBudgetExceeded once the grand total has reached
// the budget.
func (l *Ledger) CheckBudget() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.budget > 0 && l.total >= l.budget {
		return fmt.Errorf("%w: spent %.4f of %.4f", ErrBudgetExceeded, l.total, l.budget)
	}
	return nil
}

// OperationCost is one line of a ledger summary.
type OperationCost struct {
	Operation string  `json:"operation"`
	Cost      float64 `json:"cost"`
	Calls     int     `json:"calls"`
}

// Summary is a read-only snapshot of a ledger.
type Summary struct {
	Total     float64         `json:"total"`
	Breakdown []OperationCost `json:"breakdown"`
}

// Summary returns the grand total and the per-operation breakdown, sorted
// by operation name.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Summary{
		Total:     l.total,
		Breakdown: make([]OperationCost, 0, len(l.breakdown)),
	}
	for op, cost := range l.breakdown {
		s.Breakdown = append(s.Breakdown, OperationCost{
			Operation: op,
			Cost:      cost,
			Calls:     l.calls[op],
		})
	}
	sort.Slice(s.Breakdown, func(i, j int) bool {
		return s.Breakdown[i].Operation < s.Breakdown[j].Operation
	})
	return s
}
