package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jordanlanch/outreach/pkg/cache"
	"github.com/jordanlanch/outreach/pkg/logger"
)

// ActivityCapacity bounds the dashboard feed; the oldest entry is evicted
const ActivityCapacity = 20

// ActivityEntry is one row of the dashboard-visible activity feed
type ActivityEntry struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Company      string    `json:"company"`
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	Timestamp    time.Time `json:"timestamp"`
	RecordingURL string    `json:"recording_url,omitempty"`
}

// ActivityLog is a bounded, newest-first activity feed. It outlives any
// single campaign run. When a redis client is provided the feed is
// mirrored there (LPUSH + LTRIM) so it survives restarts; redis failures
// only degrade persistence, never the in-memory feed.
type ActivityLog struct {
	mu      sync.Mutex
	entries []ActivityEntry
	seq     int
	redis   *cache.Client
	key     string
	log     logger.Logger
}

// NewActivityLog creates an activity log; redisClient may be nil
func NewActivityLog(redisClient *cache.Client, log logger.Logger) *ActivityLog {
	if log == nil {
		log = logger.Default()
	}

	al := &ActivityLog{
		redis: redisClient,
		key:   "outreach:activity",
		log:   log,
	}
	al.restore()
	return al
}

// restore reloads the feed from redis on startup
func (al *ActivityLog) restore() {
	if al.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := al.redis.ListRange(ctx, al.key, 0, ActivityCapacity-1)
	if err != nil {
		al.log.Warn("failed to restore activity feed from redis", "error", err)
		return
	}

	for _, item := range raw {
		var entry ActivityEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		al.entries = append(al.entries, entry)
	}
	al.seq = len(al.entries)
}

// Add prepends an entry, evicting the oldest past capacity
func (al *ActivityLog) Add(fullName, status, company, notes, recordingURL string) ActivityEntry {
	al.mu.Lock()

	al.seq++
	first := fullName
	last := ""
	if i := strings.LastIndex(fullName, " "); i > 0 {
		first = strings.Fields(fullName)[0]
		last = fullName[i+1:]
	}

	entry := ActivityEntry{
		ID:           fmt.Sprintf("act_%d", al.seq),
		FullName:     fullName,
		FirstName:    first,
		LastName:     last,
		Company:      company,
		Status:       status,
		Description:  notes,
		Timestamp:    time.Now(),
		RecordingURL: recordingURL,
	}

	al.entries = append([]ActivityEntry{entry}, al.entries...)
	if len(al.entries) > ActivityCapacity {
		al.entries = al.entries[:ActivityCapacity]
	}
	al.mu.Unlock()

	if al.redis != nil {
		payload, err := json.Marshal(entry)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := al.redis.PushCapped(ctx, al.key, payload, ActivityCapacity); err != nil {
				al.log.Warn("failed to persist activity entry", "error", err)
			}
		}
	}

	return entry
}

// Recent returns up to limit entries, newest first
func (al *ActivityLog) Recent(limit int) []ActivityEntry {
	al.mu.Lock()
	defer al.mu.Unlock()

	if limit <= 0 || limit > len(al.entries) {
		limit = len(al.entries)
	}
	out := make([]ActivityEntry, limit)
	copy(out, al.entries[:limit])
	return out
}

// Len returns the current number of entries
func (al *ActivityLog) Len() int {
	al.mu.Lock()
	defer al.mu.Unlock()
	return len(al.entries)
}
