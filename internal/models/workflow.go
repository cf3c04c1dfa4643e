package models

const (
	// TaskQueue is the Temporal task queue shared by the API server and worker
	TaskQueue = "tour-booking-queue"
	// BookingWorkflowName is the registered name of the booking workflow
	BookingWorkflowName = "BookingWorkflow"
	// BookingConfirmedEvent is the routing key published after a booking is stored
	BookingConfirmedEvent = "booking.confirmed"
)

// BookingWorkflowInput represents input for the booking workflow
type BookingWorkflowInput struct {
	RequestID string               `json:"requestId"`
	Request   CreateBookingRequest `json:"request"`
}

// BookingConfirmedMessage is the broker payload for a stored booking
type BookingConfirmedMessage struct {
	BookingID      int64  `json:"booking_id"`
	TourID         int64  `json:"tour_id"`
	CustomerEmail  string `json:"customer_email"`
	CustomerName   string `json:"customer_name"`
	NumberOfPeople int    `json:"number_of_people"`
	TotalPrice     string `json:"total_price"`
}
