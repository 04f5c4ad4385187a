package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Publisher ships a digest batch. The kafka producer satisfies it.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

type DigestConfig struct {
	Interval  time.Duration // flush period
	MaxUnique int           // flush once this many distinct entries are buffered
	Topic     string
	Publisher Publisher
}

// DigestEntry is one distinct warn/error line and how often it was seen.
type DigestEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// Digest collapses repeated warnings and errors (for example the same degraded
// timeframe reason over and over) and publishes them in periodic batches.
type Digest struct {
	cfg     DigestConfig
	mu      sync.Mutex
	entries map[string]*DigestEntry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	now     func() time.Time
}

func NewDigest(cfg *DigestConfig) *Digest {
	c := *cfg
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.MaxUnique <= 0 {
		c.MaxUnique = 100
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Digest{
		cfg:     c,
		entries: make(map[string]*DigestEntry),
		cancel:  cancel,
		now:     time.Now,
	}

	d.wg.Add(1)
	go d.loop(ctx)
	return d
}

func (d *Digest) Add(level, message string, fields map[string]interface{}, caller string) {
	now := d.now()
	key := digestKey(level, message, fields, caller)

	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.entries[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		d.entries[key] = &DigestEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(d.entries) >= d.cfg.MaxUnique {
		d.flushLocked()
	}
}

// Pending returns the number of distinct buffered entries.
func (d *Digest) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Digest) loop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.mu.Lock()
			d.flushLocked()
			d.mu.Unlock()
		case <-ctx.Done():
			d.mu.Lock()
			d.flushLocked()
			d.mu.Unlock()
			return
		}
	}
}

func (d *Digest) flushLocked() {
	if len(d.entries) == 0 {
		return
	}

	batch := make([]DigestEntry, 0, len(d.entries))
	for _, e := range d.entries {
		batch = append(batch, *e)
	}
	d.entries = make(map[string]*DigestEntry)

	if d.cfg.Publisher == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := d.cfg.Publisher.PublishMessage(ctx, d.cfg.Topic, batch); err != nil {
			// the logger itself may be the thing failing, so go straight to stderr
			fmt.Fprintf(os.Stderr, "log digest publish failed: %v\n", err)
		}
	}()
}

// Close flushes what is buffered and waits for in-flight publishes.
func (d *Digest) Close() {
	d.cancel()
	d.wg.Wait()
}

func digestKey(level, message string, fields map[string]interface{}, caller string) string {
	b, _ := json.Marshal(struct {
		Level   string                 `json:"level"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields"`
		Caller  string                 `json:"caller"`
	}{level, message, fields, caller})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
