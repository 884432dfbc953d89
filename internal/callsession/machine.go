// Package callsession runs the lifecycle of one simulated phone call:
// intro -> ringing -> connected -> ended, driven by user actions, timers and
// playback completion.
package callsession

import "github.com/click-call/click-call-backend/internal/feedback"

type State string

const (
	StateIntro     State = "intro"
	StateRinging   State = "ringing"
	StateConnected State = "connected"
	StateEnded     State = "ended"
)

type EventType string

const (
	EventStart        EventType = "start"
	EventAccept       EventType = "accept"
	EventReject       EventType = "reject"
	EventRingTimeout  EventType = "ring_timeout"
	EventPlaybackDone EventType = "playback_done"
	EventEnd          EventType = "end"
	EventFeedback     EventType = "feedback"
	EventResetDelay   EventType = "reset_delay"
)

type Event struct {
	Type    EventType
	Quality feedback.Quality // set on EventFeedback
}

type Effect string

const (
	EffectStartRingtone   Effect = "start_ringtone"
	EffectStopRingtone    Effect = "stop_ringtone"
	EffectVibrate         Effect = "vibrate"
	EffectArmRingTimer    Effect = "arm_ring_timer"
	EffectCancelRingTimer Effect = "cancel_ring_timer"
	EffectResetElapsed    Effect = "reset_elapsed"
	EffectStartTick       Effect = "start_tick"
	EffectStopTick        Effect = "stop_tick"
	EffectStartPlayback   Effect = "start_playback"
	EffectStopPlayback    Effect = "stop_playback"
	EffectAppendFeedback  Effect = "append_feedback"
	EffectArmResetTimer   Effect = "arm_reset_timer"
	EffectCancelReset     Effect = "cancel_reset_timer"
)

// Transition is the single step function of the machine. It is pure: timers
// and media show up only as effects for the session runtime to execute.
// ok is false when the event does not apply in the given state; such events
// are ignored, they never fault the machine.
//
// Every transition that leaves a state cancels the timers that state owns,
// so a stale timer can never fire into a later state.
func Transition(s State, ev Event) (next State, effects []Effect, ok bool) {
	switch s {
	case StateIntro:
		switch ev.Type {
		case EventStart:
			// Stop anything still audible from an earlier round before the
			// new ringtone starts; two sources never play at once.
			return StateRinging, []Effect{
				EffectCancelReset,
				EffectStopPlayback,
				EffectStopRingtone,
				EffectStartRingtone,
				EffectVibrate,
				EffectArmRingTimer,
			}, true
		case EventResetDelay:
			return StateIntro, []Effect{EffectResetElapsed}, true
		}

	case StateRinging:
		switch ev.Type {
		case EventAccept, EventRingTimeout:
			return StateConnected, []Effect{
				EffectCancelRingTimer,
				EffectStopRingtone,
				EffectResetElapsed,
				EffectStartTick,
				EffectStartPlayback,
			}, true
		case EventReject, EventEnd:
			return StateIntro, []Effect{
				EffectCancelRingTimer,
				EffectStopRingtone,
				EffectResetElapsed,
			}, true
		}

	case StateConnected:
		switch ev.Type {
		case EventPlaybackDone:
			return StateEnded, []Effect{EffectStopTick}, true
		case EventEnd:
			return StateEnded, []Effect{EffectStopPlayback, EffectStopTick}, true
		}

	case StateEnded:
		if ev.Type == EventFeedback {
			return StateIntro, []Effect{EffectAppendFeedback, EffectArmResetTimer}, true
		}
	}

	return s, nil, false
}
