package ports

import (
	"context"
)

// CourierLeg describes the next delivery leg sent to a courier: where to
// go, whom to hand the order to, and what the trip looks like.
type CourierLeg struct {
	CourierPhone     string  `json:"courierPhone"`
	BatchID          int64   `json:"batchId"`
	OrderID          string  `json:"orderId"`
	Address          string  `json:"address"`
	DistanceKm       float64 `json:"distanceKm"`
	EtaMin           float64 `json:"etaMin"`
	RouteImageRef    string  `json:"routeImageRef,omitempty"`
	VerificationCode int     `json:"verificationCode"`
	StopsLeft        int     `json:"stopsLeft"`
}

// CustomerUpdate tells a customer their order is on the way and which code
// to give the courier at the door.
type CustomerUpdate struct {
	CustomerRef      string  `json:"customerRef"`
	OrderID          string  `json:"orderId"`
	CourierName      string  `json:"courierName"`
	EtaMin           float64 `json:"etaMin"`
	VerificationCode int     `json:"verificationCode"`
}

// BatchSummary reports a finished batch back to the courier, including the
// leg home.
type BatchSummary struct {
	CourierPhone  string  `json:"courierPhone"`
	BatchID       int64   `json:"batchId"`
	Delivered     int     `json:"delivered"`
	TotalKm       float64 `json:"totalKm"`
	ReturnKm      float64 `json:"returnKm"`
	ReturnEtaMin  float64 `json:"returnEtaMin"`
	RouteImageRef string  `json:"routeImageRef,omitempty"`
}

// RatingRequest asks a customer to rate a completed delivery.
type RatingRequest struct {
	CustomerRef string `json:"customerRef"`
	OrderID     string `json:"orderId"`
}

// Notifier sends outbound messages to couriers and customers. Delivery is
// best effort: dispatch state never depends on a notification outcome.
type Notifier interface {
	// NotifyCourier sends the courier their next delivery leg.
	NotifyCourier(ctx context.Context, leg CourierLeg) error

	// NotifyCustomer tells a customer their order is out for delivery.
	NotifyCustomer(ctx context.Context, update CustomerUpdate) error

	// NotifyBatchComplete reports a finished batch to its courier.
	NotifyBatchComplete(ctx context.Context, summary BatchSummary) error

	// RequestRating asks a customer for a delivery rating.
	RequestRating(ctx context.Context, request RatingRequest) error
}
