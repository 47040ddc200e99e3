package domain

import "time"

const (
	ConsentAcceptAll     = "accept-all"
	ConsentNecessaryOnly = "necessary-only"
	ConsentCustom        = "custom"
)

type ConsentPreferences struct {
	Choice          string     `json:"choice,omitempty"`
	Necessary       bool       `json:"necessary"`
	Analytics       bool       `json:"analytics"`
	Marketing       bool       `json:"marketing"`
	Personalization bool       `json:"personalization"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Settings reemplaza el estado global del navegador: se resuelve por visitante.
type Settings struct {
	Language string             `json:"language"`
	Consent  ConsentPreferences `json:"consent"`
}
