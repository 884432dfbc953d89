package callsession

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/click-call/click-call-backend/internal/feedback"
)

func step(t *testing.T, s State, ev EventType) State {
	t.Helper()
	next, _, ok := Transition(s, Event{Type: ev})
	assert.True(t, ok, "event %s must apply in state %s", ev, s)
	return next
}

func TestForwardPath(t *testing.T) {
	t.Run("via auto-connect timeout and playback completion", func(t *testing.T) {
		s := step(t, StateIntro, EventStart)
		assert.Equal(t, StateRinging, s)
		s = step(t, s, EventRingTimeout)
		assert.Equal(t, StateConnected, s)
		s = step(t, s, EventPlaybackDone)
		assert.Equal(t, StateEnded, s)
	})

	t.Run("via explicit accept and hang up", func(t *testing.T) {
		s := step(t, StateIntro, EventStart)
		s = step(t, s, EventAccept)
		assert.Equal(t, StateConnected, s)
		s = step(t, s, EventEnd)
		assert.Equal(t, StateEnded, s)
	})
}

func TestRejectReturnsToIntro(t *testing.T) {
	s := step(t, StateIntro, EventStart)
	next, effects, ok := Transition(s, Event{Type: EventReject})
	assert.True(t, ok)
	assert.Equal(t, StateIntro, next)
	assert.Contains(t, effects, EffectCancelRingTimer)
	assert.Contains(t, effects, EffectStopRingtone)
	assert.Contains(t, effects, EffectResetElapsed)
}

func TestFeedbackTransition(t *testing.T) {
	next, effects, ok := Transition(StateEnded, Event{Type: EventFeedback, Quality: feedback.QualityGood})
	assert.True(t, ok)
	assert.Equal(t, StateIntro, next)
	assert.Contains(t, effects, EffectAppendFeedback)
	assert.Contains(t, effects, EffectArmResetTimer)
}

// No event may skip a state or move backwards except the ones the table
// names. Everything else is ignored in place.
func TestUnreachableTransitionsAreIgnored(t *testing.T) {
	cases := []struct {
		state State
		ev    EventType
	}{
		{StateIntro, EventAccept},
		{StateIntro, EventReject},
		{StateIntro, EventRingTimeout},
		{StateIntro, EventPlaybackDone},
		{StateIntro, EventEnd},
		{StateIntro, EventFeedback},
		{StateRinging, EventStart},
		{StateRinging, EventPlaybackDone},
		{StateRinging, EventFeedback},
		{StateConnected, EventStart},
		{StateConnected, EventAccept},
		{StateConnected, EventReject},
		{StateConnected, EventRingTimeout},
		{StateConnected, EventFeedback},
		{StateEnded, EventStart},
		{StateEnded, EventAccept},
		{StateEnded, EventEnd},
		{StateEnded, EventPlaybackDone},
	}

	for _, tc := range cases {
		next, effects, ok := Transition(tc.state, Event{Type: tc.ev})
		assert.False(t, ok, "%s in %s must be ignored", tc.ev, tc.state)
		assert.Equal(t, tc.state, next)
		assert.Empty(t, effects)
	}
}

func TestLeavingAStateCancelsItsTimers(t *testing.T) {
	t.Run("ringing exit cancels ring timer", func(t *testing.T) {
		for _, ev := range []EventType{EventAccept, EventRingTimeout, EventReject} {
			_, effects, ok := Transition(StateRinging, Event{Type: ev})
			assert.True(t, ok)
			assert.Contains(t, effects, EffectCancelRingTimer)
		}
	})

	t.Run("connected exit stops the tick", func(t *testing.T) {
		for _, ev := range []EventType{EventEnd, EventPlaybackDone} {
			_, effects, ok := Transition(StateConnected, Event{Type: ev})
			assert.True(t, ok)
			assert.Contains(t, effects, EffectStopTick)
		}
	})

	t.Run("intro exit cancels the pending feedback reset", func(t *testing.T) {
		_, effects, ok := Transition(StateIntro, Event{Type: EventStart})
		assert.True(t, ok)
		assert.Contains(t, effects, EffectCancelReset)
	})
}
