// Package queue defines the rating event payloads exchanged over RabbitMQ
// together with their publisher and consumer.
package queue

// RatingSubmittedQueue is the durable queue rating events are routed to.
const RatingSubmittedQueue = "rating.submitted"

// RatingSubmittedEvent is published after a rating is created or overwritten.
type RatingSubmittedEvent struct {
    RatingID    uint64 `json:"rating_id"`
    StoreID     uint64 `json:"store_id"`
    UserID      uint64 `json:"user_id"`
    Value       int    `json:"value"`
    SubmittedAt string `json:"submitted_at"`
}
