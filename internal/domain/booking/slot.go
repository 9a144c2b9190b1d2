package booking

// Slot is a booked time range on one day. Both ends are treated as inclusive,
// so two slots that only touch (10:00-12:00 and 12:00-13:00) still conflict.
type Slot struct {
	Start Clock
	End   Clock
}

// Conflicts applies the inclusive-boundary rule: other's start lies in [s.Start, s.End],
// other's end lies in [s.Start, s.End], or other covers s entirely.
func (s Slot) Conflicts(other Slot) bool {
	startWithin := other.Start >= s.Start && other.Start <= s.End
	endWithin := other.End >= s.Start && other.End <= s.End
	covers := other.Start <= s.Start && other.End >= s.End
	return startWithin || endWithin || covers
}

// IsAvailable reports whether candidate is free among the existing bookings of one
// studio and day. Cancelled bookings and excludeID (the booking being edited) are ignored.
// A stored booking whose times cannot be read counts as a conflict.
func IsAvailable(existing []Booking, candidate Slot, excludeID int64) bool {
	for i := range existing {
		b := &existing[i]
		if b.Status == StatusCancelled {
			continue
		}
		if excludeID != 0 && b.ID == excludeID {
			continue
		}

		slot, err := b.Slot()
		if err != nil || candidate.Conflicts(slot) {
			return false
		}
	}
	return true
}
