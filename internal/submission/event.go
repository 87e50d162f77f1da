package submission

import "time"

// EventTypeQueued tags Queued messages on the submission stream.
const EventTypeQueued = "submission.queued"

// Queued is emitted when a document hash is accepted for notarization.
type Queued struct {
	ID         string    `json:"id"`
	Hash       string    `json:"hash"`
	KMSKeyARN  string    `json:"kmsKeyArn"`
	GatewayURL string    `json:"gatewayUrl"`
	QueuedAt   time.Time `json:"queuedAt"`
	ClientIP   string    `json:"clientIp"`
	UserAgent  string    `json:"userAgent"`
}
