package state

// UserState is the dialog step a user is currently in
type UserState string

const (
	StateNone UserState = ""

	// Client booking: waiting for a phone number before confirming
	StateAwaitingPhone UserState = "awaiting_phone"

	// Barber: waiting for a standing weekly block description
	StateAwaitingRecurring UserState = "awaiting_recurring"
)

// Keys of the per-dialog data
const (
	KeyServiceIndex = "service_index"
	KeyDate         = "date"
	KeyStartTime    = "start_time"
)

// UserData holds a user's dialog state and its temporary values
type UserData struct {
	State UserState
	Data  map[string]interface{}
}
