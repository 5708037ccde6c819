package models

import "fmt"

type BookingStatus string

const (
	BookingPending     BookingStatus = "pending"
	BookingDepositPaid BookingStatus = "deposit_paid"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomBooked      RoomStatus = "booked"
	RoomMaintenance RoomStatus = "maintenance"
)

type PaymentMethod string

const (
	PaymentCard         PaymentMethod = "card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCash         PaymentMethod = "cash"
)

// Payment statuses recorded on the booking
const (
	PaymentStatusPending  = "pending"
	PaymentStatusDeposit  = "deposit"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// bookingTransitions is the full set of allowed status edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:     {BookingDepositPaid, BookingCancelled},
	BookingDepositPaid: {BookingConfirmed, BookingCancelled},
	BookingConfirmed:   {BookingCompleted, BookingCancelled},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingPending, BookingDepositPaid, BookingConfirmed, BookingCompleted, BookingCancelled:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable from s in one step
func NextStatuses(s BookingStatus) []BookingStatus {
	return append([]BookingStatus(nil), bookingTransitions[s]...)
}

// HoldsRoom reports whether a booking in status s is still open.
// Cancelled and completed bookings are closed.
func (s BookingStatus) HoldsRoom() bool {
	return s != BookingCancelled && s != BookingCompleted
}

// BlocksWindow reports whether a booking in status s takes part in the
// overlap invariant.
func (s BookingStatus) BlocksWindow() bool {
	return s != BookingCancelled
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentCard, PaymentBankTransfer, PaymentCash:
		return m, nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Prepaid methods reserve the room as soon as the booking is created.
func (m PaymentMethod) Prepaid() bool {
	return m == PaymentCard || m == PaymentBankTransfer
}

// PaymentStatusFor returns the payment status that accompanies a booking status
func PaymentStatusFor(s BookingStatus, current string) string {
	switch s {
	case BookingDepositPaid:
		return PaymentStatusDeposit
	case BookingConfirmed, BookingCompleted:
		return PaymentStatusPaid
	case BookingCancelled:
		if current == PaymentStatusDeposit || current == PaymentStatusPaid {
			return PaymentStatusRefunded
		}
	}
	return current
}

// RoomStatusAfter returns the room status after a booking moves to target.
// otherActive reports whether another booking still reserves the room for a
// current or future stay.
func RoomStatusAfter(target BookingStatus, current RoomStatus, otherActive bool) RoomStatus {
	if current == RoomMaintenance {
		return current
	}
	switch target {
	case BookingDepositPaid, BookingConfirmed:
		return RoomBooked
	case BookingCancelled, BookingCompleted:
		if otherActive {
			return RoomBooked
		}
		return RoomAvailable
	}
	return current
}
