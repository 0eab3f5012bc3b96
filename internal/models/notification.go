package models

import "time"

// Notification is one alert-deduplication record. The host hashes the alert
// message and uses the previous record plus today's count to decide whether
// to suppress a recurring alert.
type Notification struct {
	ID            int64     `json:"id"`
	ExternalID    int64     `json:"external_id,omitempty"`
	Hostname      string    `json:"hostname"`
	HashedMessage string    `json:"hashed_message"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NotificationReceipt is returned by InsertNotificationItem. TodayCount
// includes the row inserted by the call itself.
type NotificationReceipt struct {
	Previous   *Notification `json:"previous_notification_item,omitempty"`
	TodayCount int           `json:"today_notification_count"`
}
