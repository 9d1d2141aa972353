package tui

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/tonhe/meerkat/internal/alert"
	"github.com/tonhe/meerkat/internal/dashboard"
	"github.com/tonhe/meerkat/internal/icinga"
	"github.com/tonhe/meerkat/tui/views"
)

// LiveSession is the alerting side of viewing a dashboard: it compares
// element states between refreshes, feeds transitions to the alert
// coordinator and keeps audio stream elements playing.
type LiveSession struct {
	coord   *alert.Coordinator
	player  alert.Player
	resolve func(string) string
	tracker *alert.Tracker
	streams []alert.Handle
	muted   bool
	log     zerolog.Logger
}

// NewLiveSession creates a session that alerts through coord and plays
// audio streams with player. resolve turns stored references into
// loadable URLs; nil leaves them unchanged.
func NewLiveSession(coord *alert.Coordinator, player alert.Player, resolve func(string) string, logger zerolog.Logger) *LiveSession {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	return &LiveSession{
		coord:   coord,
		player:  player,
		resolve: resolve,
		tracker: alert.NewTracker(),
		log:     logger.With().Str("component", "live").Logger(),
	}
}

// Muted reports whether the user silenced every alert.
func (l *LiveSession) Muted() bool { return l.muted }

// SetMuted silences or re-enables alerts and audio streams for doc.
func (l *LiveSession) SetMuted(muted bool, doc *dashboard.Dashboard) {
	if l.muted == muted {
		return
	}
	l.muted = muted
	l.stopStreams()
	if !muted && doc != nil {
		l.startStreams(*doc)
	}
}

// Load switches the session to doc. Remembered states are dropped so the
// first refresh of the new document never alerts.
func (l *LiveSession) Load(doc *dashboard.Dashboard) {
	l.tracker.Reset()
	l.stopStreams()
	if doc != nil && !l.muted {
		l.startStreams(*doc)
	}
}

// Observe records the current state of every monitored element of doc
// and returns how many alerts played.
func (l *LiveSession) Observe(doc dashboard.Dashboard, snaps views.Snapshots) int {
	played := 0
	seen := make(map[string]bool, len(doc.Elements))
	for i, el := range doc.Elements {
		if !el.Type.Monitored() {
			continue
		}
		sel := doc.Selector(i)
		next := icinga.StateNone
		if !sel.Idle() && snaps != nil {
			if snap, err := snaps.GetSnapshot(sel.Key()); err == nil {
				next = snap.DisplayState()
			}
		}
		id := elementID(el, sel, seen)
		seen[id] = true
		prev := l.tracker.Swap(id, next)
		mute := alert.Mute{Global: doc.GlobalMute || l.muted, Element: el.Options.MuteAlerts()}
		if l.coord.OnStateChange(id, prev, next, el.Options.Sounds(), doc.Sounds(), mute) {
			played++
		}
	}
	l.tracker.Retain(seen)
	return played
}

// elementID names an element by what it watches rather than where it sits
// in the list, so edits that delete or reorder elements keep each
// remembered state with its element. Identical elements are told apart by
// occurrence.
func elementID(el dashboard.Element, sel icinga.Selector, seen map[string]bool) string {
	watch := "-"
	if !sel.Idle() {
		watch = sel.Key()
	}
	base := string(el.Type) + "|" + watch + "|" + el.Title
	id := base
	for n := 2; seen[id]; n++ {
		id = base + "#" + strconv.Itoa(n)
	}
	return id
}

func (l *LiveSession) startStreams(doc dashboard.Dashboard) {
	if l.player == nil {
		return
	}
	for i, el := range doc.Elements {
		if el.Type != dashboard.AudioStream {
			continue
		}
		src := el.Options.String("source")
		if src == "" {
			continue
		}
		h, err := l.player.Load(l.resolve(src))
		if err != nil {
			l.log.Warn().Err(err).Int("element", i).Msg("load audio stream")
			continue
		}
		if err := h.Play(); err != nil {
			l.log.Warn().Err(err).Int("element", i).Msg("play audio stream")
			h.Close()
			continue
		}
		l.streams = append(l.streams, h)
	}
}

func (l *LiveSession) stopStreams() {
	for _, h := range l.streams {
		if err := h.Close(); err != nil {
			l.log.Debug().Err(err).Msg("close audio stream")
		}
	}
	l.streams = nil
}

// Close stops audio streams and releases cached alert sounds.
func (l *LiveSession) Close() error {
	l.stopStreams()
	return l.coord.Close()
}
