package testutil

import (
	"sync"

	"github.com/arthur-debert/dodex/pkg/types"
)

// RecordingNotifier keeps every message shown through it.
type RecordingNotifier struct {
	mu      sync.Mutex
	notices []*RecordedNotice
	alerts  []string
}

// RecordedNotice is a notice and its successive texts.
type RecordedNotice struct {
	mu       sync.Mutex
	Messages []string
	Hidden   bool
}

func (n *RecordedNotice) Update(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
}

func (n *RecordedNotice) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Hidden = true
}

// Last returns the current text of the notice.
func (n *RecordedNotice) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Messages) == 0 {
		return ""
	}
	return n.Messages[len(n.Messages)-1]
}

// IsHidden reports whether Hide was called.
func (n *RecordedNotice) IsHidden() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Hidden
}

func (r *RecordingNotifier) Notice(msg string) types.NoticeHandle {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := &RecordedNotice{Messages: []string{msg}}
	r.notices = append(r.notices, n)
	return n
}

func (r *RecordingNotifier) Alert(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, msg)
}

// Notices returns the notices shown so far.
func (r *RecordingNotifier) Notices() []*RecordedNotice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*RecordedNotice(nil), r.notices...)
}

// Alerts returns the alerts shown so far.
func (r *RecordingNotifier) Alerts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.alerts...)
}

// LastNotice returns the text of the most recent notice, or "".
func (r *RecordingNotifier) LastNotice() string {
	notices := r.Notices()
	if len(notices) == 0 {
		return ""
	}
	return notices[len(notices)-1].Last()
}
