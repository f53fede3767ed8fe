package request

type BookingRequest struct {
	ShowID string   `json:"show_id" validate:"required,uuid4"`
	Seats  []string `json:"seats" validate:"required,min=1,max=10,unique,dive,required,min=2,max=4"`
}

type CheckoutRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
}

// PaymentWebhookRequest is the provider callback payload.
type PaymentWebhookRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=paid expired failed"`
}
