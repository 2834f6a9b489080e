package reservation

import "time"

// Horizon is the cutoff for "expiring soon": now plus the lookahead window.
// It is computed once per run and shared by every source.
func Horizon(now time.Time, lookahead time.Duration) time.Time {
	return now.UTC().Add(lookahead)
}

// Expiring returns the rows ending at or before horizon, in input order.
func Expiring(rows []Row, horizon time.Time) []Row {
	expiring := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.ExpiresBy(horizon) {
			expiring = append(expiring, r)
		}
	}
	return expiring
}
