package models

import "time"

type Link struct {
	ID        string    `db:"id" json:"id"`
	LongURL   string    `db:"long_url" json:"longUrl"`
	ShortCode string    `db:"short_code" json:"shortCode"`
	OwnerID   string    `db:"owner_id" json:"owner"`
	Clicks    int64     `db:"clicks" json:"clicks"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
