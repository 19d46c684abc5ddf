package model

import "time"

// Concert is one live-streamed or in-person event recovered from a feed
// entry. It is built once by the aggregator and never mutated afterwards.
type Concert struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Format      Format    `json:"format"`
	Price       Price     `json:"jpy_price"`
	Platform    Platform  `json:"platform"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`

	// Optional links. nil means the extractor found nothing usable.
	ImageURL    *string `json:"image_url"`
	TwitterURL  *string `json:"twitter_url"`
	YoutubeURL  *string `json:"youtube_link"`
	TicketURL   *string `json:"ticket_link"`
	OfficialURL *string `json:"official_site"`
}
