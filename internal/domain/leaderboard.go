package domain

import "time"

// LeaderboardEntry es un resultado persistido en el ranking.
type LeaderboardEntry struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	UserEmail       string    `json:"user_email,omitempty"`
	UserDisplayName string    `json:"user_display_name,omitempty"`
	IsGuest         bool      `json:"is_guest"`
	BeautyScore     float64   `json:"beauty_score"`
	ImageData       string    `json:"image_data,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RankedEntry es la vista pública de una entrada ya resuelta.
type RankedEntry struct {
	Rank          int       `json:"rank"`
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	Image         string    `json:"image"`
	FallbackImage string    `json:"fallback_image"`
	BeautyScore   float64   `json:"beauty_score"`
	DisplayScore  int       `json:"display_score"`
	IsGuest       bool      `json:"is_guest"`
	CreatedAt     time.Time `json:"created_at"`
}

type LeaderboardView struct {
	Period      string        `json:"period"`
	WindowStart *time.Time    `json:"window_start,omitempty"`
	Entries     []RankedEntry `json:"entries"`
	Seq         string        `json:"seq,omitempty"`
}
