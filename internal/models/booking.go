package models

import "time"

// Nights returns the number of billable nights in [checkIn, checkOut).
// Partial days round up.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}

// Overlaps reports whether the half-open windows [aIn, aOut) and [bIn, bOut) intersect
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// Covers reports whether t falls inside the booking window
func (b *Booking) Covers(t time.Time) bool {
	return !t.Before(b.CheckIn) && t.Before(b.CheckOut)
}

// ReservesRoom reports whether the booking keeps its room marked booked:
// deposit paid or confirmed stays, and pending stays paid by a prepaid method.
func (b *Booking) ReservesRoom() bool {
	switch b.Status {
	case BookingDepositPaid, BookingConfirmed:
		return true
	case BookingPending:
		return b.PaymentMethod.Prepaid()
	}
	return false
}

// ServicesTotalOf sums quantity × unit price over the given rows
func ServicesTotalOf(services []BookingService) int64 {
	var total int64
	for _, s := range services {
		total += s.Total()
	}
	return total
}
