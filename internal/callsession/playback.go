package callsession

import (
	"strings"
	"time"
)

// Voice identifies a speech synthesis voice by name and BCP-47 tag.
type Voice struct {
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// VoiceCatalog lists the voices available to the speech fallback.
type VoiceCatalog interface {
	Voices() []Voice
}

// StaticVoices is a fixed catalog, enough for a server that only tells the
// client which voice to use.
type StaticVoices []Voice

func (v StaticVoices) Voices() []Voice { return v }

// ChooseVoice picks the best voice for the target locale: the first whose
// language tag starts with the locale (case-insensitive), else the first
// voice at all. ok is false only when the catalog is empty.
func ChooseVoice(voices []Voice, locale string) (Voice, bool) {
	if len(voices) == 0 {
		return Voice{}, false
	}
	want := strings.ToLower(locale)
	for _, v := range voices {
		if want != "" && strings.HasPrefix(strings.ToLower(v.Lang), want) {
			return v, true
		}
	}
	return voices[0], true
}

// MediaController executes the playback effects. Implementations must not
// invoke the done callback synchronously from PlayAudio or Speak; completion
// arrives later, as its own event. Playback failures are swallowed: the call
// proceeds silently rather than blocking the machine.
type MediaController interface {
	PlayRingtone(url string, volume float64)
	StopRingtone()
	PlayAudio(url string, volume float64, done func())
	Speak(text string, voice Voice, volume float64, done func())
	CancelSpeech()
	StopContent()
	SetContentVolume(v float64)
}

// NopMedia is the production controller: actual playback happens on the
// visitor's device, which follows the media description in the session
// snapshot and reports completion back as a playback_done event.
type NopMedia struct{}

func (NopMedia) PlayRingtone(string, float64)         {}
func (NopMedia) StopRingtone()                        {}
func (NopMedia) PlayAudio(string, float64, func())    {}
func (NopMedia) Speak(string, Voice, float64, func()) {}
func (NopMedia) CancelSpeech()                        {}
func (NopMedia) StopContent()                         {}
func (NopMedia) SetContentVolume(float64)             {}

// Haptics issues the vibration pulse on ring start. Best-effort by contract.
type Haptics interface {
	Pulse(d time.Duration)
}

type NopHaptics struct{}

func (NopHaptics) Pulse(time.Duration) {}

// Media kinds as they appear in session snapshots.
const (
	MediaRingtone = "ringtone"
	MediaAudio    = "audio"
	MediaSpeech   = "speech"
)

// MediaState describes what should be audible right now. Exactly one
// playback mechanism is active at a time; an empty Kind means silence.
type MediaState struct {
	Kind      string  `json:"kind,omitempty"`
	URL       string  `json:"url,omitempty"`
	Text      string  `json:"text,omitempty"`
	VoiceLang string  `json:"voice_lang,omitempty"`
	Volume    float64 `json:"volume"`
	Loop      bool    `json:"loop,omitempty"`
}
