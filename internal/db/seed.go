package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedTestData resets the database and populates it with demo accounts.
//
// Behavior:
//  1. Clears users, profiles, swipes, blocks, plans and subscriptions.
//  2. Creates one admin plus 20 verified users (10 male, 10 female) with
//     profiles placed around a common city centre.
//  3. Creates two plans (one monthly, one unlimited) and subscribes a few
//     users to the monthly plan.
//  4. Generates ~100 swipes with ~70% right swipes.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tables := []string{
		"swipes", "blocks", "subscriptions", "subscription_plans",
		"videos", "video_analysis_results", "verification_codes",
		"device_sessions", "profiles", "users", "faqs", "social_links",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		for _, table := range tables {
			db.Exec("ALTER TABLE " + table + " AUTO_INCREMENT = 1")
		}
	case "sqlite":
		for _, table := range tables {
			db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", table)
		}
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := User{
		Email:        "admin@example.com",
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		Verified:     true,
		Status:       AccountActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}

	// --- Users (10 male, 10 female), scattered around central London ---
	const baseLat, baseLng = 51.5074, -0.1278
	userIDs := make([]uint64, 0, 20)
	for i := 1; i <= 20; i++ {
		gender, interestedIn := "male", "female"
		if i > 10 {
			gender, interestedIn = "female", "male"
		}

		user := User{
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Role:         RoleUser,
			Verified:     true,
			Status:       AccountActive,
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		profile := Profile{
			UserID:         user.ID,
			Name:           fmt.Sprintf("User %d", i),
			Phone:          fmt.Sprintf("+4477009%05d", i),
			Dob:            time.Now().UTC().AddDate(-(22 + r.Intn(15)), 0, -r.Intn(300)),
			Gender:         gender,
			InterestedIn:   interestedIn,
			AgeMin:         20,
			AgeMax:         40,
			ZipCode:        "SW1A 1AA",
			Lat:            baseLat + (r.Float64()-0.5)*0.2,
			Lng:            baseLng + (r.Float64()-0.5)*0.2,
			HasLocation:    true,
			WillingToDrive: 25,
			Active:         true,
			FreeSwipes:     5,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
		userIDs = append(userIDs, user.ID)
	}
	log.Println("Seeded 20 users with profiles.")

	// --- Plans ---
	monthly := SubscriptionPlan{
		CreatedByID: &admin.ID,
		Name:        "Plus",
		Description: "100 swipes per billing period",
		Price:       9.99,
		Currency:    "usd",
		Interval:    "month",
		SwipeLimit:  100,
		Active:      true,
	}
	unlimited := SubscriptionPlan{
		CreatedByID:     &admin.ID,
		Name:            "Unlimited",
		Description:     "No swipe limit",
		Price:           24.99,
		Currency:        "usd",
		Interval:        "month",
		UnlimitedSwipes: true,
		Active:          true,
	}
	if err := db.Create(&monthly).Error; err != nil {
		return fmt.Errorf("failed to seed plan: %w", err)
	}
	if err := db.Create(&unlimited).Error; err != nil {
		return fmt.Errorf("failed to seed plan: %w", err)
	}

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		sub := Subscription{
			UserID:   userIDs[i],
			PlanID:   monthly.ID,
			Status:   SubscriptionActive,
			StartsAt: now.AddDate(0, 0, -7),
			EndsAt:   now.AddDate(0, 0, 23),
		}
		if err := db.Create(&sub).Error; err != nil {
			return fmt.Errorf("failed to seed subscription: %w", err)
		}
	}

	// --- Swipes (~100, 70% right) ---
	for _, userID := range userIDs {
		for j := 0; j < 5; j++ {
			targetID := userIDs[r.Intn(len(userIDs))]
			if targetID == userID {
				continue
			}

			direction := SwipeLeft
			if r.Intn(100) < 70 {
				direction = SwipeRight
			}
			swipe := Swipe{UserID: userID, TargetID: targetID, Direction: direction}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&swipe).Error; err != nil {
				return fmt.Errorf("failed to seed swipe: %w", err)
			}
		}
	}

	// --- Content ---
	faqs := []FAQ{
		{Question: "How do matches work?", Answer: "We show nearby people whose age preferences contain yours.", Active: true},
		{Question: "How many swipes do I get?", Answer: "Five free swipes per month, more with a subscription.", Active: true},
	}
	if err := db.Create(&faqs).Error; err != nil {
		return fmt.Errorf("failed to seed faqs: %w", err)
	}
	links := []SocialLink{
		{Title: "Instagram", URL: "https://instagram.com/realtruedate", Active: true},
		{Title: "X", URL: "https://x.com/realtruedate", Active: true},
	}
	if err := db.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to seed social links: %w", err)
	}

	return nil
}
