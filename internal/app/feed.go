package app

import (
	"sync"
	"time"

	"actuator-quiz/internal/domain"
)

// FeedSnapshot is what display screens receive: today's leaderboard and the
// participant count.
type FeedSnapshot struct {
	Leaderboard  []domain.LeaderboardEntry `json:"leaderboard"`
	Participants int64                     `json:"participants"`
	UpdatedAt    time.Time                 `json:"updatedAt"`
}

// Feed fans out snapshot updates to subscribers. Slow subscribers only ever
// see the newest snapshot.
type Feed struct {
	now         func() time.Time
	mu          sync.Mutex
	current     FeedSnapshot
	subscribers map[chan FeedSnapshot]struct{}
}

func NewFeed() *Feed {
	return newFeedWithClock(time.Now)
}

func newFeedWithClock(now func() time.Time) *Feed {
	return &Feed{
		now:         now,
		current:     FeedSnapshot{Leaderboard: []domain.LeaderboardEntry{}, UpdatedAt: now()},
		subscribers: make(map[chan FeedSnapshot]struct{}),
	}
}

// Subscribe returns a channel primed with the current snapshot. The caller
// must invoke cancel to release it.
func (f *Feed) Subscribe() (<-chan FeedSnapshot, func()) {
	ch := make(chan FeedSnapshot, 8)

	// primed under the lock so no broadcast can overtake the initial snapshot
	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	ch <- f.current
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// PublishLeaderboard replaces the leaderboard part of the snapshot.
func (f *Feed) PublishLeaderboard(entries []domain.LeaderboardEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.Leaderboard = append([]domain.LeaderboardEntry{}, entries...)
	f.broadcastLocked()
}

// PublishParticipants replaces the participant count of the snapshot.
func (f *Feed) PublishParticipants(n int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.Participants = n
	f.broadcastLocked()
}

// Current returns the latest snapshot.
func (f *Feed) Current() FeedSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Feed) broadcastLocked() {
	f.current.UpdatedAt = f.now()
	snap := f.current
	for ch := range f.subscribers {
		select {
		case ch <- snap:
		default:
			// drop the oldest pending snapshot so publishers never block
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
