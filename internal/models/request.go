package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pasugo/internal/utils"
)

type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusAssigned   RequestStatus = "assigned"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"
)

// IsTerminal reports whether no further lifecycle transitions apply.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// ValidRequestStatus reports whether s names a known lifecycle status.
func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusPending, RequestStatusAssigned, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnset     PaymentStatus = ""
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSubmitted PaymentStatus = "submitted"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "cash"
	PaymentMethodElectronic PaymentMethod = "electronic"
)

type ServiceCategory string

const (
	CategoryGroceries ServiceCategory = "groceries"
	CategoryBills     ServiceCategory = "bills"
	CategoryDelivery  ServiceCategory = "delivery"
	CategoryPharmacy  ServiceCategory = "pharmacy"
	CategoryPickup    ServiceCategory = "pickup"
	CategoryDocuments ServiceCategory = "documents"
)

// ValidServiceCategory reports whether c names a known category.
func ValidServiceCategory(c ServiceCategory) bool {
	switch c {
	case CategoryGroceries, CategoryBills, CategoryDelivery,
		CategoryPharmacy, CategoryPickup, CategoryDocuments:
		return true
	}
	return false
}

type DeliveryOption string

const (
	DeliveryCurrentLocation DeliveryOption = "current-location"
	DeliveryCustomAddress   DeliveryOption = "custom-address"
)

// Request is an errand posted by a customer, optionally offered to a
// specific rider, and carried through the lifecycle by the assigned
// rider.
type Request struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CustomerID primitive.ObjectID  `json:"customer_id" bson:"customer_id"`
	RiderID    *primitive.ObjectID `json:"rider_id,omitempty" bson:"rider_id,omitempty"`

	// SelectedRiderID and OfferedAt track a direct offer that has not
	// been accepted yet. Both clear when the offer resolves or expires.
	SelectedRiderID *primitive.ObjectID `json:"selected_rider_id,omitempty" bson:"selected_rider_id,omitempty"`
	OfferedAt       *time.Time          `json:"offered_at,omitempty" bson:"offered_at,omitempty"`

	// TimedOut persists that the last direct offer expired unanswered.
	// It stays visible on reads until a new offer or claim clears it.
	TimedOut bool `json:"timed_out" bson:"timed_out,omitempty"`

	ServiceCategory     ServiceCategory `json:"service_category" bson:"service_category"`
	ItemsDescription    string          `json:"items_description" bson:"items_description"`
	BudgetLimit         *float64        `json:"budget_limit,omitempty" bson:"budget_limit,omitempty"`
	SpecialInstructions string          `json:"special_instructions,omitempty" bson:"special_instructions,omitempty"`

	// PickupLocation is set when the customer pins where the errand
	// starts. Only the delivery category requires it.
	PickupLocation  *utils.Point   `json:"pickup_location,omitempty" bson:"pickup_location,omitempty"`
	DeliveryAddress string         `json:"delivery_address,omitempty" bson:"delivery_address,omitempty"`
	DeliveryOption  DeliveryOption `json:"delivery_option" bson:"delivery_option"`

	PaymentMethod PaymentMethod `json:"payment_method" bson:"payment_method"`
	Status        RequestStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty" bson:"payment_status,omitempty"`

	ItemCost    *float64 `json:"item_cost,omitempty" bson:"item_cost,omitempty"`
	ServiceFee  *float64 `json:"service_fee,omitempty" bson:"service_fee,omitempty"`
	TotalAmount *float64 `json:"total_amount,omitempty" bson:"total_amount,omitempty"`

	PaymentReference   string `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	PaymentProofURL    string `json:"payment_proof_url,omitempty" bson:"payment_proof_url,omitempty"`
	CollectionProofURL string `json:"collection_proof_url,omitempty" bson:"collection_proof_url,omitempty"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// HasActiveOffer reports whether a direct offer is outstanding as of now.
func (r *Request) HasActiveOffer(now time.Time, timeout time.Duration) bool {
	if r.Status != RequestStatusPending || r.SelectedRiderID == nil || r.OfferedAt == nil {
		return false
	}
	return now.Sub(*r.OfferedAt) < timeout
}
