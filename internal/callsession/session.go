package callsession

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/click-call/click-call-backend/internal/feedback"
	"github.com/click-call/click-call-backend/internal/projects/domain"
)

var (
	ErrSessionClosed  = errors.New("session closed")
	ErrInvalidQuality = errors.New("feedback quality must be good or bad")
)

const (
	ringtoneVolume  = 0.7
	hapticPulse     = 200 * time.Millisecond
	defaultRingWait = 2500 * time.Millisecond
	defaultTick     = time.Second
	defaultReset    = 1500 * time.Millisecond
)

// Deps are the capabilities a session drives. All of them are injected so
// the machine runs identically under test fakes and in production.
type Deps struct {
	Media   MediaController
	Voices  VoiceCatalog
	Haptics Haptics
	Sched   Scheduler
	Sink    feedback.Sink
}

type Options struct {
	RingDelay          time.Duration
	TickInterval       time.Duration
	FeedbackResetDelay time.Duration
	RingtoneURL        string
	VoiceLocale        string
}

func (o Options) withDefaults() Options {
	if o.RingDelay <= 0 {
		o.RingDelay = defaultRingWait
	}
	if o.TickInterval <= 0 {
		o.TickInterval = defaultTick
	}
	if o.FeedbackResetDelay <= 0 {
		o.FeedbackResetDelay = defaultReset
	}
	return o
}

// Snapshot is the externally visible session state, persisted after every
// transition and served to the call page.
type Snapshot struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	User      string     `json:"user"`
	Call      string     `json:"call"`
	State     State      `json:"state"`
	Elapsed   int        `json:"elapsed"`
	Muted     bool       `json:"muted"`
	Media     MediaState `json:"media"`
	StartedAt time.Time  `json:"started_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Session is the runtime around the transition function: it owns the two
// timers, the active playback and the elapsed counter for one call.
type Session struct {
	mu sync.Mutex

	id      string
	project domain.Project
	user    string
	call    string

	state   State
	elapsed int
	muted   bool
	media   MediaState
	closed  bool

	ringTimer  Timer
	resetTimer Timer
	tick       Timer

	deps Deps
	opts Options

	startedAt time.Time
	updatedAt time.Time

	onChange func(Snapshot)
}

func newSession(id string, project domain.Project, user, call string, deps Deps, opts Options, onChange func(Snapshot)) *Session {
	if deps.Media == nil {
		deps.Media = NopMedia{}
	}
	if deps.Haptics == nil {
		deps.Haptics = NopHaptics{}
	}
	if deps.Sched == nil {
		deps.Sched = NewScheduler()
	}
	if deps.Voices == nil {
		deps.Voices = StaticVoices{}
	}

	now := time.Now().UTC()
	return &Session{
		id:        id,
		project:   project,
		user:      user,
		call:      call,
		state:     StateIntro,
		deps:      deps,
		opts:      opts.withDefaults(),
		startedAt: now,
		updatedAt: now,
		onChange:  onChange,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Project() domain.Project { return s.project }

// Start rings the call.
func (s *Session) Start() bool { applied, _ := s.dispatch(Event{Type: EventStart}); return applied }

// Accept connects before the auto-connect delay fires.
func (s *Session) Accept() bool { applied, _ := s.dispatch(Event{Type: EventAccept}); return applied }

// Reject cancels ringing and returns to intro.
func (s *Session) Reject() bool { applied, _ := s.dispatch(Event{Type: EventReject}); return applied }

// End hangs up a connected call.
func (s *Session) End() bool { applied, _ := s.dispatch(Event{Type: EventEnd}); return applied }

// NotifyPlaybackDone reports that the content (audio asset or utterance)
// finished playing on the visitor's device.
func (s *Session) NotifyPlaybackDone() bool {
	applied, _ := s.dispatch(Event{Type: EventPlaybackDone})
	return applied
}

// SubmitFeedback records the rating and returns to intro. The transition
// happens regardless of the sink outcome; a sink failure is returned so the
// caller can report it, but the call is already over.
func (s *Session) SubmitFeedback(q feedback.Quality) (bool, error) {
	if !q.Valid() {
		return false, ErrInvalidQuality
	}
	return s.dispatch(Event{Type: EventFeedback, Quality: q})
}

// SetMuted applies to whichever content playback is active, by volume only:
// muting never stops playback and never touches the elapsed counter.
func (s *Session) SetMuted(muted bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.muted = muted
	vol := 1.0
	if muted {
		vol = 0
	}
	if s.media.Kind == MediaAudio || s.media.Kind == MediaSpeech {
		s.media.Volume = vol
		s.deps.Media.SetContentVolume(vol)
	}
	s.updatedAt = time.Now().UTC()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Close tears the session down from any state: every timer stopped, every
// playback silenced. Nothing survives it.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked(&s.ringTimer)
	s.stopTimerLocked(&s.resetTimer)
	s.stopTimerLocked(&s.tick)
	s.deps.Media.StopRingtone()
	s.deps.Media.StopContent()
	s.deps.Media.CancelSpeech()
	s.media = MediaState{}
	s.mu.Unlock()
}

// dispatch feeds one event through the transition function and executes the
// resulting effects under the session lock. The feedback append runs after
// unlock so a slow sink never stalls timers.
func (s *Session) dispatch(ev Event) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrSessionClosed
	}

	next, effects, ok := Transition(s.state, ev)
	if !ok {
		s.mu.Unlock()
		return false, nil
	}

	s.state = next
	var rec *feedback.Record
	for _, ef := range effects {
		if r := s.runEffectLocked(ef, ev); r != nil {
			rec = r
		}
	}
	s.updatedAt = time.Now().UTC()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)

	if rec != nil {
		return true, s.appendFeedback(*rec)
	}
	return true, nil
}

func (s *Session) runEffectLocked(ef Effect, ev Event) *feedback.Record {
	switch ef {
	case EffectStartRingtone:
		s.media = MediaState{Kind: MediaRingtone, URL: s.opts.RingtoneURL, Volume: ringtoneVolume, Loop: true}
		s.deps.Media.PlayRingtone(s.opts.RingtoneURL, ringtoneVolume)

	case EffectStopRingtone:
		s.deps.Media.StopRingtone()
		if s.media.Kind == MediaRingtone {
			s.media = MediaState{}
		}

	case EffectVibrate:
		s.deps.Haptics.Pulse(hapticPulse)

	case EffectArmRingTimer:
		s.ringTimer = s.deps.Sched.AfterFunc(s.opts.RingDelay, func() {
			s.dispatch(Event{Type: EventRingTimeout})
		})

	case EffectCancelRingTimer:
		s.stopTimerLocked(&s.ringTimer)

	case EffectResetElapsed:
		s.elapsed = 0

	case EffectStartTick:
		s.stopTimerLocked(&s.tick)
		s.tick = s.deps.Sched.TickEvery(s.opts.TickInterval, s.onTick)

	case EffectStopTick:
		s.stopTimerLocked(&s.tick)

	case EffectStartPlayback:
		s.startPlaybackLocked()

	case EffectStopPlayback:
		s.deps.Media.StopContent()
		s.deps.Media.CancelSpeech()
		if s.media.Kind != MediaRingtone {
			s.media = MediaState{}
		}

	case EffectAppendFeedback:
		return &feedback.Record{
			ProjectID:      s.project.ID,
			User:           s.user,
			Call:           s.call,
			ElapsedSeconds: s.elapsed,
			Quality:        ev.Quality,
			Timestamp:      time.Now().UTC(),
		}

	case EffectArmResetTimer:
		s.stopTimerLocked(&s.resetTimer)
		s.resetTimer = s.deps.Sched.AfterFunc(s.opts.FeedbackResetDelay, func() {
			s.dispatch(Event{Type: EventResetDelay})
		})

	case EffectCancelReset:
		s.stopTimerLocked(&s.resetTimer)
	}

	return nil
}

// startPlaybackLocked picks the single active playback mechanism: the
// pre-recorded asset when the project has one, synthesized speech of the
// initial message otherwise. Any pending utterance is canceled first so two
// sources never overlap.
func (s *Session) startPlaybackLocked() {
	vol := 1.0
	if s.muted {
		vol = 0
	}

	done := func() {
		s.dispatch(Event{Type: EventPlaybackDone})
	}

	if s.project.AudioURL != "" {
		s.media = MediaState{Kind: MediaAudio, URL: s.project.AudioURL, Volume: vol}
		s.deps.Media.PlayAudio(s.project.AudioURL, vol, done)
		return
	}

	voice, _ := ChooseVoice(s.deps.Voices.Voices(), s.opts.VoiceLocale)
	s.media = MediaState{Kind: MediaSpeech, Text: s.project.InitialMessage, VoiceLang: voice.Lang, Volume: vol}
	s.deps.Media.CancelSpeech()
	s.deps.Media.Speak(s.project.InitialMessage, voice, vol, done)
}

func (s *Session) onTick() {
	s.mu.Lock()
	if s.closed || s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	s.elapsed++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Session) stopTimerLocked(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.id,
		ProjectID: s.project.ID,
		User:      s.user,
		Call:      s.call,
		State:     s.state,
		Elapsed:   s.elapsed,
		Muted:     s.muted,
		Media:     s.media,
		StartedAt: s.startedAt,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

func (s *Session) appendFeedback(rec feedback.Record) error {
	if s.deps.Sink == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.deps.Sink.Append(ctx, rec); err != nil {
		log.Printf("[callsession] feedback append failed for session %s: %v", s.id, err)
		return err
	}
	return nil
}
