package models

import "time"

// Subscriber is a mailing-list signup as published to Kafka and stored in Elasticsearch.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email" validate:"required,email,max=254"`
	Source       string    `json:"source"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
