package realtime

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PresenceTTL is how long a heartbeat keeps a user online.
const PresenceTTL = 2 * time.Minute

// Presence records which users are online. Heartbeats refresh the entry;
// entries older than PresenceTTL count as offline and are removed by Sweep.
type Presence interface {
	Heartbeat(ctx context.Context, userID primitive.ObjectID) error
	SetOffline(ctx context.Context, userID primitive.ObjectID) error
	Online(ctx context.Context, userIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	Sweep(ctx context.Context) (int64, error)
}

// MemoryPresence is the single-process Presence used when no Redis is configured.
type MemoryPresence struct {
	mu       sync.Mutex
	lastSeen map[primitive.ObjectID]time.Time
	now      func() time.Time
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{lastSeen: make(map[primitive.ObjectID]time.Time), now: time.Now}
}

func (p *MemoryPresence) Heartbeat(_ context.Context, userID primitive.ObjectID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen[userID] = p.now()
	return nil
}

func (p *MemoryPresence) SetOffline(_ context.Context, userID primitive.ObjectID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.lastSeen, userID)
	return nil
}

func (p *MemoryPresence) Online(_ context.Context, userIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-PresenceTTL)
	online := make([]primitive.ObjectID, 0, len(userIDs))
	for _, id := range userIDs {
		if seen, ok := p.lastSeen[id]; ok && seen.After(cutoff) {
			online = append(online, id)
		}
	}
	return online, nil
}

func (p *MemoryPresence) Sweep(_ context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := p.now().Add(-PresenceTTL)
	var removed int64
	for id, seen := range p.lastSeen {
		if !seen.After(cutoff) {
			delete(p.lastSeen, id)
			removed++
		}
	}
	return removed, nil
}
