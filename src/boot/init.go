package boot

import (
	"log"
	"time"

	"pbs/src/common"
	"pbs/src/db"
	"pbs/src/lib"

	"pbs/src/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Shop{},
		&models.Employee{},
		&models.PetType{},
		&models.ServiceDefinition{},
		&models.ShopService{},
		&models.Booking{},
		&models.BookingPet{},
		&models.BookingServiceLine{},
		&models.ShiftAssignment{},
		&models.PaymentPackage{},
		&models.SubscriptionPayment{},
		&models.ApprovalRequest{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(
		"bookings-created",
		"bookings-confirmed",
		"shifts-assigned",
		"payments-resolved",
		"shops-approved",
	)
	go common.NotificationConsumers()
}

// InitScheduler starts the daily subscription sweep. The lazy read-path
// check stays authoritative; this only keeps the ledger tidy.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	go common.UpdateExpiredSubscriptions()
	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(common.UpdateExpiredSubscriptions),
	)
	if err != nil {
		log.Printf("Error scheduling subscription sweep: %s\n", err.Error())
		return
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
