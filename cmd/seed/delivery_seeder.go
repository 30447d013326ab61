package main

import (
	"fmt"
	"log"
	"time"

	"mealbox-be/internal/model"
	"mealbox-be/pkg/delivery"
	"mealbox-be/pkg/orderstatus"

	"gorm.io/gorm"
)

var staff = []model.User{
	{Email: "admin@mealbox.local", FullName: "Ops Admin", Role: "admin"},
	{Email: "kitchen@mealbox.local", FullName: "Kitchen Lead", Role: "kitchen"},
	{Email: "rider@mealbox.local", FullName: "Rider One", Role: "rider"},
}

// SeedStaff creates one account per staff role. Existing emails are skipped.
func SeedStaff(db *gorm.DB) {
	for _, u := range staff {
		user := u
		created, err := firstOrCreateUser(db, &user)
		if err != nil {
			log.Printf("Error creating %s: %v", user.Email, err)
			continue
		}
		if created {
			log.Printf("Created %s account: %s (%s)", user.Role, user.Email, user.Id)
		} else {
			log.Printf("Account '%s' already exists, skipping...", user.Email)
		}
	}
}

// SeedDeliveries gives each demo customer an active subscription with one
// line per delivery day in the next weeks.
func SeedDeliveries(db *gorm.DB, schedule *delivery.Schedule, customers, weeks int, now time.Time) {
	dates := upcomingDeliveryDates(schedule, now, weeks)
	if len(dates) == 0 {
		log.Println("No delivery days configured, nothing to schedule")
		return
	}

	for i := 1; i <= customers; i++ {
		user := model.User{
			Email:    fmt.Sprintf("customer%02d@mealbox.local", i),
			FullName: fmt.Sprintf("Customer %02d", i),
			Role:     "user",
		}
		created, err := firstOrCreateUser(db, &user)
		if err != nil {
			log.Printf("Error creating %s: %v", user.Email, err)
			continue
		}
		if !created {
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			sub := model.Subscription{
				UserId:          user.Id,
				LifecycleStatus: string(orderstatus.LifecycleActive),
				WorkflowStatus:  string(orderstatus.WorkflowOrderReceived),
			}
			if err := tx.Create(&sub).Error; err != nil {
				return err
			}
			rows := make([]model.DeliverySchedule, 0, len(dates))
			for _, d := range dates {
				rows = append(rows, model.DeliverySchedule{
					SubscriptionId: sub.Id,
					DeliveryDate:   d,
					Quantity:       1 + i%3,
					LineStatus:     string(orderstatus.LineScheduled),
					WorkflowStatus: string(orderstatus.WorkflowOrderReceived),
				})
			}
			return tx.Create(&rows).Error
		})
		if err != nil {
			log.Printf("Error scheduling deliveries for %s: %v", user.Email, err)
			continue
		}
		log.Printf("Scheduled %d deliveries for %s", len(dates), user.Email)
	}
}

func firstOrCreateUser(db *gorm.DB, user *model.User) (bool, error) {
	var existing model.User
	if err := db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		*user = existing
		return false, nil
	}
	if err := db.Create(user).Error; err != nil {
		return false, err
	}
	return true, nil
}

// upcomingDeliveryDates lists configured delivery days from today on, as
// UTC midnights to match the date column.
func upcomingDeliveryDates(schedule *delivery.Schedule, now time.Time, weeks int) []time.Time {
	loc := schedule.Location()
	today := delivery.CalendarDate(now.In(loc), loc)
	var out []time.Time
	for i := 0; i < weeks*7; i++ {
		d := today.AddDate(0, 0, i)
		if schedule.IsDeliveryDay(d.Weekday()) {
			out = append(out, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
		}
	}
	return out
}
