package domain

import "time"

// Project is one configured call-simulation scenario. It is immutable input
// to a call session; changes only land through the store's upsert.
type Project struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	DomainUser     string    `json:"domain_user"`
	DomainCall     string    `json:"domain_call"`
	CallerName     string    `json:"caller_name"`
	AvatarURL      string    `json:"avatar_url"`
	Bg             string    `json:"bg"`
	AudioURL       string    `json:"audio_url"`
	InitialMessage string    `json:"initial_message"`
	IntroCTAText   string    `json:"intro_cta_text"`
	CTAText        string    `json:"cta_text"`
	CTAURL         string    `json:"cta_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Presentation defaults applied when a project leaves a field blank.
const (
	DefaultAvatarURL    = "/assets/avatar-default.png"
	DefaultBg           = "linear-gradient(180deg,#0f172a,#1e293b)"
	DefaultIntroCTAText = "Iniciar chamada"
)

// WithDefaults returns a copy with blank presentation fields filled in.
func (p Project) WithDefaults() Project {
	if p.AvatarURL == "" {
		p.AvatarURL = DefaultAvatarURL
	}
	if p.Bg == "" {
		p.Bg = DefaultBg
	}
	if p.IntroCTAText == "" {
		p.IntroCTAText = DefaultIntroCTAText
	}
	return p
}
