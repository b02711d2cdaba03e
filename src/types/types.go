package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Role string

const (
	ROLE_CUSTOMER   Role = "customer"
	ROLE_STAFF      Role = "staff"
	ROLE_TECHNICIAN Role = "technician"
	ROLE_OWNER      Role = "owner"
	ROLE_ADMIN      Role = "admin"
)

// Actor is the authenticated party behind a request. Handlers fill it from
// the auth middleware context and every transition re-checks it against the
// target shop's employee roster.
type Actor struct {
	ID   uint
	Role Role
}

type BookingStatus string

const (
	BOOKING_PENDING_CONFIRMATION BookingStatus = "pending_confirmation"
	BOOKING_CONFIRMED            BookingStatus = "confirmed"
	BOOKING_IN_PROGRESS          BookingStatus = "in_progress"
	BOOKING_COMPLETED            BookingStatus = "completed"
	BOOKING_CANCELLED            BookingStatus = "cancelled"
)

// bookingOrder is the forward path; cancellation is handled separately.
var bookingOrder = map[BookingStatus]BookingStatus{
	BOOKING_PENDING_CONFIRMATION: BOOKING_CONFIRMED,
	BOOKING_CONFIRMED:            BOOKING_IN_PROGRESS,
	BOOKING_IN_PROGRESS:          BOOKING_COMPLETED,
}

func (s BookingStatus) Terminal() bool {
	return s == BOOKING_COMPLETED || s == BOOKING_CANCELLED
}

// CanTransitionBooking reports whether a booking may move from one status to
// the next. Forward moves follow the ordered path one step at a time;
// cancellation is reachable from pending_confirmation and confirmed only.
func CanTransitionBooking(from, to BookingStatus) bool {
	if to == BOOKING_CANCELLED {
		return from == BOOKING_PENDING_CONFIRMATION || from == BOOKING_CONFIRMED
	}
	next, ok := bookingOrder[from]
	return ok && next == to
}

type PaymentStatus string

const (
	PAYMENT_UNPAID               PaymentStatus = "unpaid"
	PAYMENT_PENDING_CONFIRMATION PaymentStatus = "pending_confirmation"
	PAYMENT_PAID                 PaymentStatus = "paid"
)

type ShiftSlot string

const (
	SHIFT_MORNING   ShiftSlot = "morning"
	SHIFT_AFTERNOON ShiftSlot = "afternoon"
	SHIFT_EVENING   ShiftSlot = "evening"
)

var ShiftSlots = []ShiftSlot{SHIFT_MORNING, SHIFT_AFTERNOON, SHIFT_EVENING}

// ShiftSlotWindow returns the fixed start/end hour of a slot.
func ShiftSlotWindow(s ShiftSlot) (startHour, endHour int, ok bool) {
	switch s {
	case SHIFT_MORNING:
		return 8, 12, true
	case SHIFT_AFTERNOON:
		return 12, 17, true
	case SHIFT_EVENING:
		return 17, 21, true
	}
	return 0, 0, false
}

type SubscriptionStatus string

const (
	SUBSCRIPTION_TRIAL                SubscriptionStatus = "trial"
	SUBSCRIPTION_UNPAID               SubscriptionStatus = "unpaid"
	SUBSCRIPTION_PENDING_CONFIRMATION SubscriptionStatus = "pending_confirmation"
	SUBSCRIPTION_CONFIRMED            SubscriptionStatus = "confirmed"
	SUBSCRIPTION_REJECTED             SubscriptionStatus = "rejected"
	SUBSCRIPTION_EXPIRED              SubscriptionStatus = "expired"
)

type ApprovalStatus string

const (
	APPROVAL_PENDING  ApprovalStatus = "pending"
	APPROVAL_APPROVED ApprovalStatus = "approved"
	APPROVAL_REJECTED ApprovalStatus = "rejected"
)

type ApprovalKind string

const (
	APPROVAL_SHOP_REGISTRATION    ApprovalKind = "shop_registration"
	APPROVAL_SERVICE_PROPOSAL     ApprovalKind = "service_proposal"
	APPROVAL_PAYMENT_CONFIRMATION ApprovalKind = "payment_confirmation"
)

type ShopStatus string

const (
	SHOP_PENDING   ShopStatus = "pending"
	SHOP_APPROVED  ShopStatus = "approved"
	SHOP_REJECTED  ShopStatus = "rejected"
	SHOP_SUSPENDED ShopStatus = "suspended"
)

type EmployeeRole string

const (
	EMPLOYEE_OWNER      EmployeeRole = "owner"
	EMPLOYEE_STAFF      EmployeeRole = "staff"
	EMPLOYEE_TECHNICIAN EmployeeRole = "technician"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type BookingServiceLineRequest struct {
	ShopServiceID uint `json:"shop_service" binding:"required"`
}

type BookingPetRequest struct {
	Name      string                      `json:"name" binding:"required"`
	PetTypeID uint                        `json:"pet_type" binding:"required"`
	Age       *uint8                      `json:"age,omitempty"`
	Notes     string                      `json:"notes,omitempty"`
	Services  []BookingServiceLineRequest `json:"services" binding:"required,min=1,dive"`
}

type CreateBookingRequestBody struct {
	ShopID      uint                `json:"shop" binding:"required"`
	ScheduledAt string              `json:"scheduled_at" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Note        string              `json:"note,omitempty"`
	Pets        []BookingPetRequest `json:"pets" binding:"required,min=1,dive"`
}

type AdvanceBookingRequestBody struct {
	Status string `json:"status" binding:"required"`
}

type AssignTechnicianRequestBody struct {
	TechnicianID uint `json:"technician" binding:"required"`
}

type AssignShiftRequestBody struct {
	EmployeeID uint   `json:"employee" binding:"required"`
	ShiftSlot  string `json:"shift_slot" binding:"required,oneof=morning afternoon evening"`
	WorkDate   string `json:"work_date" binding:"required"`
}

type BulkAssignShiftsRequestBody struct {
	Assignments []AssignShiftRequestBody `json:"assignments" binding:"required,min=1,dive"`
}

// ShiftAssignResult is one entry of a BulkAssignShifts response. Failed
// entries carry the error kind so callers can report which collided.
type ShiftAssignResult struct {
	Index        int       `json:"index"`
	AssignmentID *uint     `json:"assignment_id,omitempty"`
	ErrorKind    ErrorKind `json:"error_kind,omitempty"`
	Message      string    `json:"message,omitempty"`
}

type PurchaseSubscriptionRequestBody struct {
	PackageID uint `json:"package" binding:"required"`
}

type SubmitReceiptRequestBody struct {
	ReceiptRef string `json:"receipt_ref" binding:"required"`
}

type ResolveApprovalRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type RegisterUserRequestBody struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

type RegisterShopRequestBody struct {
	Name         string `json:"name" binding:"required"`
	About        string `json:"about,omitempty"`
	Address      string `json:"address" binding:"required"`
	ContactEmail string `json:"email" binding:"required,email"`
}

type ProposeServiceRequestBody struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

type AddEmployeeRequestBody struct {
	UserID uint   `json:"user" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=staff technician"`
}
