package reservation

import "github.com/iliyamo/movie-show-booking/internal/model"

// Authorize reports whether the principal owns the booking. It is a pure
// equality check with no side effects, used by the cancel and lookup paths.
func Authorize(principalID uint64, b *model.Booking) bool {
	if b == nil {
		return false
	}
	return b.UserID == principalID
}
