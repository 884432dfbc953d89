package callsession

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/click-call/click-call-backend/internal/feedback"
	"github.com/click-call/click-call-backend/internal/projects/domain"
)

// fakeTimer fires only when the test says so, and only if not stopped.
type fakeTimer struct {
	mu      sync.Mutex
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTimer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	fn := t.fn
	t.mu.Unlock()
	if !stopped {
		fn()
	}
}

type fakeScheduler struct {
	mu       sync.Mutex
	oneShots []*fakeTimer
	tickers  []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{fn: f}
	s.mu.Lock()
	s.oneShots = append(s.oneShots, t)
	s.mu.Unlock()
	return t
}

func (s *fakeScheduler) TickEvery(d time.Duration, f func()) Timer {
	t := &fakeTimer{fn: f}
	s.mu.Lock()
	s.tickers = append(s.tickers, t)
	s.mu.Unlock()
	return t
}

func (s *fakeScheduler) lastOneShot() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.oneShots[len(s.oneShots)-1]
}

func (s *fakeScheduler) tick(n int) {
	s.mu.Lock()
	tickers := append([]*fakeTimer(nil), s.tickers...)
	s.mu.Unlock()
	for i := 0; i < n; i++ {
		for _, t := range tickers {
			t.fire()
		}
	}
}

// fakeMedia records every playback operation in order.
type fakeMedia struct {
	mu sync.Mutex

	ops             []string
	ringtoneActive  bool
	ringtoneOverlap bool
	audioURLs       []string
	speechTexts     []string
	speechVoices    []Voice
	contentVolumes  []float64
	audioDone       func()
	speechDone      func()
}

func (m *fakeMedia) op(name string) {
	m.ops = append(m.ops, name)
}

func (m *fakeMedia) PlayRingtone(url string, volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ringtoneActive {
		m.ringtoneOverlap = true
	}
	m.ringtoneActive = true
	m.op("play_ringtone")
}

func (m *fakeMedia) StopRingtone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ringtoneActive = false
	m.op("stop_ringtone")
}

func (m *fakeMedia) PlayAudio(url string, volume float64, done func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audioURLs = append(m.audioURLs, url)
	m.audioDone = done
	m.op("play_audio")
}

func (m *fakeMedia) Speak(text string, voice Voice, volume float64, done func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speechTexts = append(m.speechTexts, text)
	m.speechVoices = append(m.speechVoices, voice)
	m.speechDone = done
	m.op("speak")
}

func (m *fakeMedia) CancelSpeech() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.op("cancel_speech")
}

func (m *fakeMedia) StopContent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.op("stop_content")
}

func (m *fakeMedia) SetContentVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contentVolumes = append(m.contentVolumes, v)
}

func (m *fakeMedia) finishAudio() {
	m.mu.Lock()
	done := m.audioDone
	m.mu.Unlock()
	done()
}

func (m *fakeMedia) finishSpeech() {
	m.mu.Lock()
	done := m.speechDone
	m.mu.Unlock()
	done()
}

type fakeHaptics struct {
	mu     sync.Mutex
	pulses int
}

func (h *fakeHaptics) Pulse(time.Duration) {
	h.mu.Lock()
	h.pulses++
	h.mu.Unlock()
}

type fakeSink struct {
	mu      sync.Mutex
	records []feedback.Record
	err     error
}

func (s *fakeSink) Append(ctx context.Context, rec feedback.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, rec)
	return nil
}

type testRig struct {
	sess    *Session
	sched   *fakeScheduler
	media   *fakeMedia
	haptics *fakeHaptics
	sink    *fakeSink
}

func newRig(t *testing.T, project domain.Project) *testRig {
	t.Helper()
	r := &testRig{
		sched:   &fakeScheduler{},
		media:   &fakeMedia{},
		haptics: &fakeHaptics{},
		sink:    &fakeSink{},
	}
	deps := Deps{
		Media:   r.media,
		Haptics: r.haptics,
		Sched:   r.sched,
		Sink:    r.sink,
		Voices: StaticVoices{
			{Name: "Samantha", Lang: "en-US"},
			{Name: "Luciana", Lang: "pt-BR"},
		},
	}
	opts := Options{RingtoneURL: "/assets/ringtone.mp3", VoiceLocale: "pt"}
	r.sess = newSession("sess-1", project, project.DomainUser, project.DomainCall, deps, opts, nil)
	return r
}

func audioProject() domain.Project {
	return domain.Project{
		ID:             "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		DomainUser:     "clickc",
		DomainCall:     "noel",
		CallerName:     "Papai Noel",
		AudioURL:       "https://cdn.example.com/noel.mp3",
		InitialMessage: "Oi! Aqui é o Noel.",
	}
}

func TestAudioCallLifecycle(t *testing.T) {
	r := newRig(t, audioProject())

	require.True(t, r.sess.Start())
	assert.Equal(t, StateRinging, r.sess.State())
	assert.True(t, r.media.ringtoneActive)
	assert.Equal(t, 1, r.haptics.pulses)

	// Auto-connect after the ringing delay.
	r.sched.lastOneShot().fire()
	assert.Equal(t, StateConnected, r.sess.State())
	assert.False(t, r.media.ringtoneActive)
	require.Equal(t, []string{"https://cdn.example.com/noel.mp3"}, r.media.audioURLs)
	assert.Empty(t, r.media.speechTexts, "exactly one playback mechanism")

	r.sched.tick(3)
	assert.Equal(t, 3, r.sess.Elapsed())

	// Natural completion of the asset ends the call.
	r.media.finishAudio()
	assert.Equal(t, StateEnded, r.sess.State())

	// No further elapsed increments after the call ended.
	r.sched.tick(5)
	assert.Equal(t, 3, r.sess.Elapsed())
}

func TestAcceptBeatsAutoConnect(t *testing.T) {
	r := newRig(t, audioProject())

	require.True(t, r.sess.Start())
	ringTimer := r.sched.lastOneShot()

	require.True(t, r.sess.Accept())
	assert.Equal(t, StateConnected, r.sess.State())

	// The stale ring timer must have been canceled on the way out of
	// ringing; firing it changes nothing.
	ringTimer.fire()
	assert.Equal(t, StateConnected, r.sess.State())
	assert.Len(t, r.media.audioURLs, 1, "playback started once")
}

func TestRejectReturnsToIntroAndResets(t *testing.T) {
	r := newRig(t, audioProject())

	require.True(t, r.sess.Start())
	require.True(t, r.sess.Reject())

	assert.Equal(t, StateIntro, r.sess.State())
	assert.Equal(t, 0, r.sess.Elapsed())
	assert.False(t, r.media.ringtoneActive)

	t.Run("ring again without overlapping ringtones", func(t *testing.T) {
		require.True(t, r.sess.Start())
		assert.True(t, r.media.ringtoneActive)
		assert.False(t, r.media.ringtoneOverlap, "no two ringtones ever play concurrently")
	})
}

func TestSpeechFallbackWhenNoAudioAsset(t *testing.T) {
	p := audioProject()
	p.AudioURL = ""
	p.InitialMessage = "Olá, tudo bem?"
	r := newRig(t, p)

	require.True(t, r.sess.Start())
	r.sched.lastOneShot().fire()

	require.Equal(t, []string{"Olá, tudo bem?"}, r.media.speechTexts)
	assert.Empty(t, r.media.audioURLs)
	require.Len(t, r.media.speechVoices, 1)
	assert.Equal(t, "pt-BR", r.media.speechVoices[0].Lang, "locale-matching voice preferred")

	// Pending synthesis is canceled before speaking, never stacked.
	cancelIdx, speakIdx := -1, -1
	for i, op := range r.media.ops {
		switch op {
		case "cancel_speech":
			if speakIdx == -1 {
				cancelIdx = i
			}
		case "speak":
			speakIdx = i
		}
	}
	require.GreaterOrEqual(t, cancelIdx, 0)
	assert.Less(t, cancelIdx, speakIdx)

	// Utterance completion is the playback-complete event.
	r.media.finishSpeech()
	assert.Equal(t, StateEnded, r.sess.State())
}

func TestMuteChangesVolumeNotTiming(t *testing.T) {
	r := newRig(t, audioProject())
	require.True(t, r.sess.Start())
	r.sched.lastOneShot().fire()
	r.sched.tick(2)

	r.sess.SetMuted(true)
	require.NotEmpty(t, r.media.contentVolumes)
	assert.Equal(t, 0.0, r.media.contentVolumes[len(r.media.contentVolumes)-1])
	assert.Equal(t, 2, r.sess.Elapsed(), "muting does not alter the counter")

	r.sched.tick(2)
	assert.Equal(t, 4, r.sess.Elapsed(), "muting does not stop the counter")
	assert.Equal(t, StateConnected, r.sess.State())

	r.sess.SetMuted(false)
	assert.Equal(t, 1.0, r.media.contentVolumes[len(r.media.contentVolumes)-1])

	snap := r.sess.Snapshot()
	assert.Equal(t, MediaAudio, snap.Media.Kind)
}

func TestFeedbackAppendsOneRecordThenResets(t *testing.T) {
	r := newRig(t, audioProject())
	require.True(t, r.sess.Start())
	r.sched.lastOneShot().fire()
	r.sched.tick(42)
	require.True(t, r.sess.End())
	require.Equal(t, StateEnded, r.sess.State())

	applied, err := r.sess.SubmitFeedback(feedback.QualityGood)
	require.True(t, applied)
	require.NoError(t, err)

	require.Len(t, r.sink.records, 1)
	rec := r.sink.records[0]
	assert.Equal(t, "7c9e6679-7425-40de-944b-e07fc1f90ae7", rec.ProjectID)
	assert.Equal(t, "clickc", rec.User)
	assert.Equal(t, "noel", rec.Call)
	assert.Equal(t, 42, rec.ElapsedSeconds)
	assert.Equal(t, feedback.QualityGood, rec.Quality)
	assert.False(t, rec.Timestamp.IsZero())

	assert.Equal(t, StateIntro, r.sess.State())
	assert.Equal(t, 42, r.sess.Elapsed(), "elapsed survives until the display delay")

	// The fixed display delay resets the counter.
	r.sched.lastOneShot().fire()
	assert.Equal(t, 0, r.sess.Elapsed())

	t.Run("second submission is ignored", func(t *testing.T) {
		applied, err := r.sess.SubmitFeedback(feedback.QualityBad)
		assert.False(t, applied)
		assert.NoError(t, err)
		assert.Len(t, r.sink.records, 1)
	})

	t.Run("invalid quality is rejected", func(t *testing.T) {
		_, err := r.sess.SubmitFeedback(feedback.Quality("meh"))
		assert.ErrorIs(t, err, ErrInvalidQuality)
	})
}

func TestEndDuringRingingActsAsReject(t *testing.T) {
	r := newRig(t, audioProject())
	require.True(t, r.sess.Start())
	require.True(t, r.sess.End())

	assert.Equal(t, StateIntro, r.sess.State())
	assert.False(t, r.media.ringtoneActive)
}

func TestCloseLeavesNothingRunning(t *testing.T) {
	r := newRig(t, audioProject())
	require.True(t, r.sess.Start())
	r.sched.lastOneShot().fire()
	r.sched.tick(1)
	require.Equal(t, 1, r.sess.Elapsed())

	r.sess.Close()

	r.sched.tick(3)
	assert.Equal(t, 1, r.sess.Elapsed(), "ticker stopped on close")
	assert.False(t, r.media.ringtoneActive)
	assert.False(t, r.sess.Start(), "closed session accepts no events")
}

func TestChooseVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Samantha", Lang: "en-US"},
		{Name: "Luciana", Lang: "pt-BR"},
	}

	t.Run("locale prefix match wins", func(t *testing.T) {
		v, ok := ChooseVoice(voices, "pt")
		require.True(t, ok)
		assert.Equal(t, "Luciana", v.Name)
	})

	t.Run("no match falls back to the first voice", func(t *testing.T) {
		v, ok := ChooseVoice(voices, "ja")
		require.True(t, ok)
		assert.Equal(t, "Samantha", v.Name)
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, ok := ChooseVoice(nil, "pt")
		assert.False(t, ok)
	})
}
