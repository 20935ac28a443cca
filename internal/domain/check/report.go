package check

// Report is the ordered outcome of evaluating a full catalog.
// Results keep catalog order so output stays deterministic and diffable.
type Report struct {
	// Results holds one entry per evaluated spec, in catalog order.
	Results []Result
}

// Append records one evaluated result.
func (r *Report) Append(result Result) {
	r.Results = append(r.Results, result)
}

// FailCount returns the number of failed checks. It is computed from the
// results rather than carried as a mutable counter, so it cannot drift.
func (r *Report) FailCount() int {
	return r.countStatus(StatusFail)
}

// WarnCount returns the number of checks that produced warnings.
func (r *Report) WarnCount() int {
	return r.countStatus(StatusWarn)
}

// OK reports whether the host is ready: no check failed.
// Warnings never affect the disposition.
func (r *Report) OK() bool {
	return r.FailCount() == 0
}

func (r *Report) countStatus(status Status) int {
	count := 0

	for _, result := range r.Results {
		if result.Status == status {
			count++
		}
	}

	return count
}
