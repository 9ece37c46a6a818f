package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type AccountStatus string

const (
	AccountInactive AccountStatus = "inactive"
	AccountActive   AccountStatus = "active"
	AccountDeleted  AccountStatus = "deleted"
)

// User is the account record. Admin accounts are verified and activated at
// creation time by the registration flow, not by a persistence hook.
type User struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement"`
	Email        string        `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string        `gorm:"size:255;not null"`
	Role         Role          `gorm:"size:20;not null;default:user"`
	Verified     bool          `gorm:"not null;default:false"`
	Status       AccountStatus `gorm:"size:10;not null;default:inactive"`
	TimeZone     string        `gorm:"size:50"`
	CreatedAt    time.Time     `gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime"`
}

// StringList stores a JSON array of object-storage keys in a text column,
// portable across MySQL and SQLite.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported StringList source %T", src)
}

// JSONMap stores loose key/value metadata as JSON text, portable across
// MySQL and SQLite.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		m = JSONMap{}
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("unsupported JSONMap source %T", src)
}

// Profile is 1:1 with User. Lat/Lng mirror the original's lat/lng pair; the
// geo point is considered set only when HasLocation is true.
type Profile struct {
	ID             uint64     `gorm:"primaryKey;autoIncrement"`
	UserID         uint64     `gorm:"uniqueIndex;not null"`
	User           User       `gorm:"foreignKey:UserID"`
	Name           string     `gorm:"size:255"`
	Phone          string     `gorm:"size:15"`
	Dob            time.Time  `gorm:"not null"`
	Gender         string     `gorm:"size:10"`
	InterestedIn   string     `gorm:"size:10"`
	AgeMin         int        `gorm:"default:18"`
	AgeMax         int        `gorm:"default:35"`
	ZipCode        string     `gorm:"size:10"`
	Lat            float64
	Lng            float64
	HasLocation    bool       `gorm:"not null;default:false"`
	WillingToDrive float64    `gorm:"default:0"`
	Active         bool       `gorm:"not null;default:true"`
	Images         StringList `gorm:"type:text"`
	Videos         StringList `gorm:"type:text"`
	// No column default: a zero here must stay zero, and registration sets
	// the starting allowance explicitly.
	FreeSwipes     int        `gorm:"not null"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

// VerificationCode is the OTP record. Issuing a new code deletes the user's
// unexpired codes first, so at most one is valid at any instant.
type VerificationCode struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index;not null"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Attempts  int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type DeviceSession struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	UserID       uint64    `gorm:"index;not null"`
	DeviceID     string    `gorm:"size:100;not null"`
	RefreshToken string    `gorm:"size:512;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Block is a directed exclusion edge, unique per (blocker, blocked).
type Block struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	BlockerID uint64    `gorm:"not null;uniqueIndex:idx_blocker_blocked,priority:1"`
	BlockedID uint64    `gorm:"not null;uniqueIndex:idx_blocker_blocked,priority:2"`
	Reason    string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

// Swipe is an append-only ledger row.
//
// Composite PK (UserID, TargetID) enforces at most one swipe per ordered
// pair, ever: a concurrent duplicate resolves to one winner and one
// constraint violation. Rows are never updated.
type Swipe struct {
	UserID    uint64         `gorm:"primaryKey"`
	TargetID  uint64         `gorm:"primaryKey"`
	Direction SwipeDirection `gorm:"size:5;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

type SubscriptionPlan struct {
	ID              uint64     `gorm:"primaryKey;autoIncrement"`
	CreatedByID     *uint64    `gorm:"index"`
	Name            string     `gorm:"size:255;not null"`
	Description     string     `gorm:"type:text"`
	Price           float64    `gorm:"not null"`
	Currency        string     `gorm:"size:10;not null;default:usd"`
	Interval        string     `gorm:"size:10;not null"`
	TrialPeriodDays int        `gorm:"not null;default:0"`
	Features        StringList `gorm:"type:text"`
	UnlimitedSwipes bool       `gorm:"not null;default:false"`
	SwipeLimit      int        `gorm:"not null;default:0"`
	Active          bool       `gorm:"not null;default:true"`
	StripeProductID string     `gorm:"size:255"`
	StripePriceID   string     `gorm:"size:255"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription mirrors a payment-processor subscription. At most one
// active/trialing row per (user, plan) is enforced at creation time, not by a
// DB constraint.
type Subscription struct {
	ID                   uint64             `gorm:"primaryKey;autoIncrement"`
	UserID               uint64             `gorm:"index;not null"`
	PlanID               uint64             `gorm:"index;not null"`
	Plan                 SubscriptionPlan   `gorm:"foreignKey:PlanID"`
	Status               SubscriptionStatus `gorm:"size:50;not null"`
	StartsAt             time.Time          `gorm:"not null"`
	EndsAt               time.Time          `gorm:"not null"`
	StripeSubscriptionID string             `gorm:"size:255"`
	CreatedAt            time.Time          `gorm:"autoCreateTime"`
	UpdatedAt            time.Time          `gorm:"autoUpdateTime"`
}

type VideoStatus string

const (
	VideoPending    VideoStatus = "pending"
	VideoProcessing VideoStatus = "processing"
	VideoCompleted  VideoStatus = "completed"
	VideoFailed     VideoStatus = "failed"
)

// Video status is monotonic pending → processing → completed/failed, except
// for explicit re-analysis which resets a terminal row to processing.
type Video struct {
	ID         uint64      `gorm:"primaryKey;autoIncrement"`
	UserID     uint64      `gorm:"index;not null"`
	StorageKey string      `gorm:"size:512;not null"`
	Status     VideoStatus `gorm:"size:20;not null;default:pending"`
	Metadata   JSONMap     `gorm:"type:text"`
	UploadedAt time.Time   `gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime"`
}

// VideoAnalysisResult is created exactly once per successfully completed job.
type VideoAnalysisResult struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	VideoID         uint64    `gorm:"uniqueIndex;not null"`
	SkinColor       *string   `gorm:"size:50"`
	EyeColor        *string   `gorm:"size:50"`
	HairColor       *string   `gorm:"size:50"`
	TattoosDetected bool      `gorm:"not null;default:false"`
	ResultKey       string    `gorm:"size:512"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

type FAQ struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Question  string    `gorm:"size:255;not null"`
	Answer    string    `gorm:"type:text;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// AboutUs and PrivacyPolicy are single-row documents.
type AboutUs struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Content string `gorm:"type:text;not null"`
}

type PrivacyPolicy struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Content string `gorm:"type:text;not null"`
}

type ContactMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:128;not null"`
	Message   string    `gorm:"type:text;not null"`
	Reply     string    `gorm:"type:text"`
	Replied   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type Feedback struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Username  string    `gorm:"size:100;not null"`
	Email     string    `gorm:"size:128;not null"`
	Message   string    `gorm:"type:text;not null"`
	Reply     string    `gorm:"type:text"`
	Replied   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

type SocialLink struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"uniqueIndex;size:100;not null"`
	URL       string    `gorm:"size:512;not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
