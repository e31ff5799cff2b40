package pagination

// Plan sizes the page requests of one fetch.
//
// Hint is the number of rows the caller expects; zero means unknown. With a
// hint that fits into one page, the probe page is the whole fetch.
type Plan struct {
	Hint        int
	MaxPageSize int
}

// NewPlan creates a plan. Non-positive hints mean "no hint".
func NewPlan(hint, maxPageSize int) Plan {
	if hint < 0 {
		hint = 0
	}
	if maxPageSize < 1 {
		maxPageSize = 1
	}
	return Plan{Hint: hint, MaxPageSize: maxPageSize}
}

// HasHint reports whether the caller supplied an expected count.
func (p Plan) HasHint() bool {
	return p.Hint > 0
}

// SinglePage reports whether the probe page alone satisfies the hint.
func (p Plan) SinglePage() bool {
	return p.HasHint() && p.Hint <= p.MaxPageSize
}

// FirstRequestSize is the pSize of page 1. Every later page uses the same
// size so that page boundaries line up.
func (p Plan) FirstRequestSize() int {
	if p.SinglePage() {
		return p.Hint
	}
	return p.MaxPageSize
}

// TotalPages returns the number of pages for the fetch, rounding up.
//
// The declared total bounds the page count when the service reports one; a
// larger hint never adds requests for rows that do not exist.
func (p Plan) TotalPages(observedTotal int, hasTotal bool) int {
	if p.SinglePage() {
		return 1
	}

	rows := p.Hint
	switch {
	case hasTotal && p.HasHint():
		rows = min(p.Hint, observedTotal)
	case hasTotal:
		rows = observedTotal
	case !p.HasHint():
		// Without a total or a hint only the probe page is known to exist.
		return 1
	}

	if rows <= 0 {
		return 0
	}
	return ceilDiv(rows, p.FirstRequestSize())
}

// RemainingPages returns how many pages follow the probe page.
func (p Plan) RemainingPages(observedTotal int, hasTotal bool) int {
	return max(p.TotalPages(observedTotal, hasTotal)-1, 0)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
