package domain

import "time"

// Robot is a catalog entry. LifespanDays == 0 means the robot never expires.
type Robot struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	TapPower      int64      `json:"tap_power"`
	Price         int64      `json:"price"`
	LifespanDays  int64      `json:"lifespan_days"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
}

// Expires reports whether the robot has a finite lifespan
func (r Robot) Expires() bool {
	return r.LifespanDays > 0
}

// AvailableAt reports whether the robot can be bought at t
func (r Robot) AvailableAt(t time.Time) bool {
	return r.AvailableFrom == nil || !t.Before(*r.AvailableFrom)
}

// OwnedRobot is the single active robot slot of a user
type OwnedRobot struct {
	RobotID           string    `json:"robot_id"`
	PurchaseTimestamp time.Time `json:"purchase_timestamp"`
}

// RobotPurchase is an entry of the purchase history log
type RobotPurchase struct {
	RobotID     string    `json:"robot_id"`
	Price       int64     `json:"price"`
	PurchasedAt time.Time `json:"purchased_at"`
}
