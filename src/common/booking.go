package common

import (
	"fmt"
	"log"
	"time"

	"pbs/src/config"
	"pbs/src/db"
	"pbs/src/lib"
	"pbs/src/models"
	"pbs/src/models/scopes"
	"pbs/src/types"

	"gorm.io/gorm"
)

// CreateBooking validates and persists a new booking in pending_confirmation.
// Prices are snapshotted from the shop's current catalog so later price edits
// never touch the booking. A client-supplied idempotency key makes retries
// resolve to the original record.
func CreateBooking(params *types.CreateBookingRequestBody, actor types.Actor, idempotencyKey string) (*models.Booking, error) {
	if idempotencyKey != "" {
		if id, ok := lib.LookupIdempotencyKey("booking", idempotencyKey); ok {
			return GetBooking(id)
		}
	}

	scheduledAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.ScheduledAt)
	if err != nil {
		return nil, types.ErrValidation("scheduled_at is not a valid timestamp")
	}
	if !scheduledAt.After(time.Now()) {
		return nil, types.ErrValidation("scheduled_at must be in the future")
	}
	if len(params.Pets) == 0 {
		return nil, types.ErrValidation("booking requires at least one pet")
	}
	for _, pet := range params.Pets {
		if len(pet.Services) == 0 {
			return nil, types.ErrValidation(fmt.Sprintf("pet %q requires at least one service", pet.Name))
		}
	}

	booking := models.Booking{
		CustomerID:  actor.ID,
		ShopID:      params.ShopID,
		ScheduledAt: scheduledAt,
		Note:        params.Note,
		Status:      types.BOOKING_PENDING_CONFIRMATION,
	}
	if idempotencyKey != "" {
		booking.IdempotencyKey = &idempotencyKey
	}

	dbi := db.GetDb()
	err = dbi.Transaction(func(tx *gorm.DB) error {
		var shop models.Shop
		if err := tx.
			Model(&models.Shop{}).
			Where(&models.Shop{ID: params.ShopID}).
			First(&shop).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("shop not found"))
		}
		if shop.Status != types.SHOP_APPROVED {
			return types.ErrValidation("shop is not accepting bookings")
		}
		active, err := isShopActiveTx(tx, params.ShopID, time.Now())
		if err != nil {
			return err
		}
		if !active {
			return types.ErrValidation("shop has no active subscription")
		}

		serviceIds := make([]uint, 0)
		for _, pet := range params.Pets {
			for _, line := range pet.Services {
				serviceIds = append(serviceIds, line.ShopServiceID)
			}
		}
		var services []models.ShopService
		if err := tx.
			Model(&models.ShopService{}).
			Where("shop_id = ? AND active = ?", params.ShopID, true).
			Where("id IN (?)", serviceIds).
			Find(&services).
			Error; err != nil {
			return err
		}
		priceById := make(map[uint]float64, len(services))
		for _, svc := range services {
			priceById[svc.ID] = svc.Price
		}

		pets, total, err := snapshotBookingPets(params.Pets, priceById, params.ShopID)
		if err != nil {
			return err
		}
		booking.Pets = pets
		booking.TotalAmount = total

		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) && idempotencyKey != "" {
			return getBookingByIdempotencyKey(idempotencyKey)
		}
		return nil, err
	}

	if idempotencyKey != "" {
		lib.ClaimIdempotencyKey("booking", idempotencyKey, booking.ID)
	}
	go models.BookingCreatedProducer(booking.ID, types.JSONB{
		"id":       booking.ID,
		"shop":     booking.ShopID,
		"customer": booking.CustomerID,
		"total":    booking.TotalAmount,
	})
	return &booking, nil
}

// snapshotBookingPets prices each requested service line from the catalog
// as it stands right now. The returned lines carry their own price copy, so
// later catalog edits never change what the booking charges.
func snapshotBookingPets(pets []types.BookingPetRequest, priceById map[uint]float64, shopId uint) ([]models.BookingPet, float64, error) {
	var total float64
	out := make([]models.BookingPet, 0, len(pets))
	for _, pet := range pets {
		bp := models.BookingPet{
			Name:      pet.Name,
			PetTypeID: pet.PetTypeID,
			Age:       pet.Age,
			Notes:     pet.Notes,
		}
		for _, line := range pet.Services {
			price, ok := priceById[line.ShopServiceID]
			if !ok {
				return nil, 0, types.ErrValidation(fmt.Sprintf("service %d does not belong to shop %d", line.ShopServiceID, shopId))
			}
			bp.Services = append(bp.Services, models.BookingServiceLine{
				ShopServiceID:  line.ShopServiceID,
				PriceAtBooking: price,
			})
			total += price
		}
		out = append(out, bp)
	}
	return out, total, nil
}

// ConfirmBooking moves a pending booking to confirmed. Staff or owner only.
// Concurrent transitions are resolved by the version check; the loser gets
// a conflict and must re-read.
func ConfirmBooking(bookingId uint, actor types.Actor) (*models.Booking, error) {
	booking, err := advanceBooking(bookingId, types.BOOKING_CONFIRMED, actor)
	if err != nil {
		return nil, err
	}
	go models.BookingConfirmedProducer(booking.ID, types.JSONB{
		"id":       booking.ID,
		"shop":     booking.ShopID,
		"customer": booking.CustomerID,
	})
	return booking, nil
}

// AdvanceBookingStatus enforces the ordered transition table. Cancellation is
// reachable only from non-terminal states and never by a technician.
func AdvanceBookingStatus(bookingId uint, target types.BookingStatus, actor types.Actor) (*models.Booking, error) {
	switch target {
	case types.BOOKING_CONFIRMED, types.BOOKING_IN_PROGRESS, types.BOOKING_COMPLETED, types.BOOKING_CANCELLED:
	default:
		return nil, types.ErrValidation(fmt.Sprintf("unknown booking status %q", target))
	}
	booking, err := advanceBooking(bookingId, target, actor)
	if err != nil {
		return nil, err
	}
	if target == types.BOOKING_CONFIRMED {
		go models.BookingConfirmedProducer(booking.ID, types.JSONB{
			"id":       booking.ID,
			"shop":     booking.ShopID,
			"customer": booking.CustomerID,
		})
	}
	return booking, nil
}

func advanceBooking(bookingId uint, target types.BookingStatus, actor types.Actor) (*models.Booking, error) {
	var booking models.Booking
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("booking not found"))
		}
		if err := authorizeBookingTransition(tx, &booking, target, actor); err != nil {
			return err
		}
		if !types.CanTransitionBooking(booking.Status, target) {
			return types.ErrInvalidTransition(fmt.Sprintf("cannot move booking from %s to %s", booking.Status, target))
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND version = ?", booking.ID, booking.Version).
			Updates(map[string]any{"status": target, "version": booking.Version + 1})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrConflict("booking was modified concurrently; refresh and retry")
		}
		booking.Status = target
		booking.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func authorizeBookingTransition(tx *gorm.DB, booking *models.Booking, target types.BookingStatus, actor types.Actor) error {
	role, member, err := ShopRoleOf(tx, booking.ShopID, actor.ID)
	if err != nil {
		return err
	}
	switch target {
	case types.BOOKING_CANCELLED:
		if booking.CustomerID == actor.ID {
			return nil
		}
		if member && (role == types.EMPLOYEE_OWNER || role == types.EMPLOYEE_STAFF) {
			return nil
		}
		return types.ErrForbidden("cancellation requires the customer, shop staff, or owner")
	case types.BOOKING_CONFIRMED:
		if member && (role == types.EMPLOYEE_OWNER || role == types.EMPLOYEE_STAFF) {
			return nil
		}
		return types.ErrForbidden("confirmation requires shop staff or owner")
	default:
		if member {
			return nil
		}
		return types.ErrForbidden("operation requires a shop employee")
	}
}

// AssignTechnician sets the working technician on a confirmed or in-progress
// booking. Re-assigning the same technician is a no-op; a different one
// overwrites while the booking is non-terminal.
func AssignTechnician(bookingId uint, technicianId uint, actor types.Actor) (*models.Booking, error) {
	var booking models.Booking
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("booking not found"))
		}
		if err := requireShopStaff(tx, booking.ShopID, actor); err != nil {
			return err
		}
		if booking.Status != types.BOOKING_CONFIRMED && booking.Status != types.BOOKING_IN_PROGRESS {
			return types.ErrInvalidTransition(fmt.Sprintf("cannot assign technician while booking is %s", booking.Status))
		}
		if booking.AssignedTechnicianID != nil && *booking.AssignedTechnicianID == technicianId {
			return nil
		}
		var employee models.Employee
		if err := tx.
			Model(&models.Employee{}).
			Where(&models.Employee{ID: technicianId, ShopID: booking.ShopID, Active: true}).
			Where("role IN (?)", []types.EmployeeRole{types.EMPLOYEE_STAFF, types.EMPLOYEE_TECHNICIAN}).
			First(&employee).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotEligible("technician must be an active staff or technician of this shop"))
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND version = ?", booking.ID, booking.Version).
			Updates(map[string]any{"assigned_technician_id": technicianId, "version": booking.Version + 1})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrConflict("booking was modified concurrently; refresh and retry")
		}
		booking.AssignedTechnicianID = &employee.ID
		booking.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ConfirmBookingPayment settles a completed booking. Staff or owner only;
// a second call finds paymentStatus already paid and fails.
func ConfirmBookingPayment(bookingId uint, actor types.Actor) (*models.Booking, error) {
	var booking models.Booking
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			return notFoundAs(err, types.ErrNotFound("booking not found"))
		}
		if err := requireShopStaff(tx, booking.ShopID, actor); err != nil {
			return err
		}
		if booking.Status != types.BOOKING_COMPLETED {
			return types.ErrInvalidTransition("payment can only be confirmed on a completed booking")
		}
		if booking.PaymentStatus == types.PAYMENT_PAID {
			return types.ErrInvalidTransition("booking is already paid")
		}
		res := tx.
			Model(&models.Booking{}).
			Where("id = ? AND version = ?", booking.ID, booking.Version).
			Updates(map[string]any{"payment_status": types.PAYMENT_PAID, "version": booking.Version + 1})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return types.ErrConflict("booking was modified concurrently; refresh and retry")
		}
		booking.PaymentStatus = types.PAYMENT_PAID
		booking.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}
	go models.PaymentResolvedProducer(booking.ID, types.JSONB{
		"booking": booking.ID,
		"shop":    booking.ShopID,
		"status":  string(types.PAYMENT_PAID),
	})
	return &booking, nil
}

func GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	dbi := db.GetDb()
	if err := dbi.
		Model(&models.Booking{}).
		Scopes(scopes.WithID(id)).
		Preload("Pets").
		Preload("Pets.Services").
		Preload("AssignedTechnician").
		First(&booking).
		Error; err != nil {
		return nil, notFoundAs(err, types.ErrNotFound("booking not found"))
	}
	return &booking, nil
}

func GetShopBookings(shopId uint, actor types.Actor) ([]models.Booking, error) {
	dbi := db.GetDb()
	var bookings []models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := requireShopStaff(tx, shopId, actor); err != nil {
			return err
		}
		return tx.
			Model(&models.Booking{}).
			Scopes(scopes.WithShop(shopId)).
			Preload("Pets").
			Order("scheduled_at asc").
			Find(&bookings).
			Error
	})
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func GetOwnBookings(customerId uint) ([]models.Booking, error) {
	dbi := db.GetDb()
	var bookings []models.Booking
	if err := dbi.
		Model(&models.Booking{}).
		Where(&models.Booking{CustomerID: customerId}).
		Preload("Pets").
		Preload("Pets.Services").
		Order("scheduled_at desc").
		Find(&bookings).
		Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func getBookingByIdempotencyKey(key string) (*models.Booking, error) {
	var booking models.Booking
	dbi := db.GetDb()
	if err := dbi.
		Model(&models.Booking{}).
		Where("idempotency_key = ?", key).
		Preload("Pets").
		Preload("Pets.Services").
		First(&booking).
		Error; err != nil {
		log.Printf("Error resolving idempotency key: %s\n", err.Error())
		return nil, notFoundAs(err, types.ErrNotFound("booking not found"))
	}
	return &booking, nil
}
