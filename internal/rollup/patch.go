package rollup

// Patch describes what Reconcile did to the backend summary.
type Patch struct {
	// Applied is true when any today discrepancy was found and corrected.
	Applied bool
	// Clamped is true when applying the diff would have driven a month or
	// last7 component negative and it was floored at zero instead. Callers
	// should log this; it indicates the backend summary disagrees with the
	// local one beyond the today delta.
	Clamped bool
	// Diff is local.today − backend.today as seen before patching.
	Diff Breakdown
}

// Reconcile corrects a backend-computed summary whose today bucket may be
// stale (the backend copy can predate recent partial returns) using a
// freshly computed local summary. The local today bucket is ground truth:
// on any discrepancy in the today totals, backend.today is replaced
// wholesale and the delta is added to month and last7, which are assumed to
// already include today as a subset. Yesterday is considered settled and is
// never touched.
//
// Reconcile is idempotent: patching an already-patched summary with the same
// local summary finds a zero diff and changes nothing.
func Reconcile(backend, local Summary) (Summary, Patch) {
	diff := local.Today.Sub(backend.Today)

	patch := Patch{Diff: diff}
	if diff.Total.IsZero() {
		return backend, patch
	}
	patch.Applied = true

	out := backend
	out.Today = local.Today

	var clampedMonth, clampedLast7 bool
	out.Month, clampedMonth = applyDiff(backend.Month, diff)
	out.Last7, clampedLast7 = applyDiff(backend.Last7, diff)
	patch.Clamped = clampedMonth || clampedLast7

	return out, patch
}

func applyDiff(b, diff Breakdown) (Breakdown, bool) {
	sum := b.Add(diff)
	var c1, c2, c3 bool
	sum.Total, c1 = sum.Total.clampZero()
	sum.Cash, c2 = sum.Cash.clampZero()
	sum.Card, c3 = sum.Card.clampZero()
	return sum, c1 || c2 || c3
}
