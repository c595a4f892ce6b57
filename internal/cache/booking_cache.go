// Package cache holds the in-process booking cache.  It keeps the
// current user's bookings behind a fixed validity window so kiosk
// screens do not hit the gateway on every visit, enriches records with
// station display fields, and broadcasts list-level updates to
// subscribers.
package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/evcharge-agent/internal/model"
)

// ValidityWindow is how long a refreshed booking list stays fresh.
const ValidityWindow = 5 * time.Minute

// Gateway is the slice of the reservation API the cache needs.
type Gateway interface {
	ListMyBookings(ctx context.Context) ([]model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	GetStation(ctx context.Context, id string) (model.Station, error)
}

// EnrichmentFailure records one station lookup that failed during a
// refresh.  The booking it belongs to keeps its original (missing)
// station fields.
type EnrichmentFailure struct {
	BookingID string
	StationID string
	Err       error
}

// RefreshResult reports what a refresh produced.  A non-empty Failures
// slice means the list was only partially enriched; the refresh as a
// whole still succeeded.
type RefreshResult struct {
	Bookings []model.Booking
	Failures []EnrichmentFailure
}

// FullyEnriched reports whether every station lookup succeeded.
func (r RefreshResult) FullyEnriched() bool { return len(r.Failures) == 0 }

// BookingCache caches the current user's bookings.  The id index
// supports concurrent point lookups from multiple kiosk surfaces; the
// list is copy-on-write so readers never observe a partial update.
type BookingCache struct {
	gw  Gateway
	now func() time.Time

	mu         sync.RWMutex
	fetchedAt  time.Time
	list       []model.Booking
	index      map[string]model.Booking
	refreshing bool

	subMu   sync.Mutex
	subs    map[int]chan []model.Booking
	nextSub int
}

// NewBookingCache builds an empty cache over the given gateway.
func NewBookingCache(gw Gateway) *BookingCache {
	return &BookingCache{
		gw:    gw,
		now:   time.Now,
		index: make(map[string]model.Booking),
		subs:  make(map[int]chan []model.Booking),
	}
}

// GetAll returns the current snapshot.  When the envelope is missing
// or expired it also kicks off an asynchronous refresh; callers see
// the update through Subscribe once it lands, and must not assume the
// returned snapshot is fresh.
func (c *BookingCache) GetAll() []model.Booking {
	c.mu.Lock()
	snapshot := append([]model.Booking(nil), c.list...)
	stale := !c.validLocked()
	start := stale && !c.refreshing
	if start {
		c.refreshing = true
	}
	c.mu.Unlock()

	if start {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := c.Refresh(ctx); err != nil {
				log.Printf("cache: background refresh failed: %v", err)
			}
		}()
	}
	return snapshot
}

// Subscribe registers a listener for list-level updates.  The returned
// cancel function must be called when the listener goes away.  Each
// channel holds the latest snapshot only; a slow consumer sees the
// most recent list, not every intermediate one.
func (c *BookingCache) Subscribe() (<-chan []model.Booking, func()) {
	ch := make(chan []model.Booking, 1)
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.subMu.Unlock()
	cancel := func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
	return ch, cancel
}

// Refresh fetches the full booking list, enriches bookings that lack
// station display fields with concurrent per-station lookups, and
// replaces the envelope and index.  A failed list fetch leaves the
// cache in its last-known-good state.  Individual station lookup
// failures never fail the refresh; they are logged and reported in the
// result.
func (c *BookingCache) Refresh(ctx context.Context) (RefreshResult, error) {
	defer func() {
		c.mu.Lock()
		c.refreshing = false
		c.mu.Unlock()
	}()

	bookings, err := c.gw.ListMyBookings(ctx)
	if err != nil {
		return RefreshResult{}, err
	}

	failures := c.enrich(ctx, bookings)

	index := make(map[string]model.Booking, len(bookings))
	for _, b := range bookings {
		index[b.ID] = b
	}

	c.mu.Lock()
	c.list = bookings
	c.index = index
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.publish(bookings)
	return RefreshResult{Bookings: bookings, Failures: failures}, nil
}

// enrich fans out one station lookup per booking missing display
// fields and waits for all of them.  Results are merged in list order;
// completion order does not matter.
func (c *BookingCache) enrich(ctx context.Context, bookings []model.Booking) []EnrichmentFailure {
	var (
		wg       sync.WaitGroup
		failMu   sync.Mutex
		failures []EnrichmentFailure
	)
	for i := range bookings {
		if !bookings[i].NeedsStationDetail() {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b := bookings[i]
			st, err := c.gw.GetStation(ctx, b.StationID)
			if err != nil {
				log.Printf("cache: station %s lookup failed for booking %s: %v", b.StationID, b.ID, err)
				failMu.Lock()
				failures = append(failures, EnrichmentFailure{BookingID: b.ID, StationID: b.StationID, Err: err})
				failMu.Unlock()
				return
			}
			bookings[i].StationName = st.Name
			bookings[i].StationLocation = st.Location
		}(i)
	}
	wg.Wait()
	return failures
}

// GetByID returns the indexed booking when present, otherwise fetches
// it from the gateway and inserts it into the index.  The list
// envelope and its timestamp are left untouched either way.
func (c *BookingCache) GetByID(ctx context.Context, id string) (model.Booking, error) {
	c.mu.RLock()
	b, ok := c.index[id]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}
	b, err := c.gw.GetBooking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	c.mu.Lock()
	c.index[b.ID] = b
	c.mu.Unlock()
	return b, nil
}

// Upsert inserts or replaces one booking in the index and the list and
// refreshes the envelope timestamp, so point mutations after a
// create/update do not force a full round trip.
func (c *BookingCache) Upsert(b model.Booking) {
	c.mu.Lock()
	c.index[b.ID] = b
	next := make([]model.Booking, 0, len(c.list)+1)
	replaced := false
	for _, cur := range c.list {
		if cur.ID == b.ID {
			next = append(next, b)
			replaced = true
			continue
		}
		next = append(next, cur)
	}
	if !replaced {
		next = append(next, b)
	}
	c.list = next
	c.fetchedAt = c.now()
	snapshot := next
	c.mu.Unlock()

	c.publish(snapshot)
}

// Remove drops a booking from the index and the list, refreshing the
// envelope timestamp.  Used after a successful cancellation.
func (c *BookingCache) Remove(id string) {
	c.mu.Lock()
	delete(c.index, id)
	next := make([]model.Booking, 0, len(c.list))
	for _, cur := range c.list {
		if cur.ID != id {
			next = append(next, cur)
		}
	}
	c.list = next
	c.fetchedAt = c.now()
	snapshot := next
	c.mu.Unlock()

	c.publish(snapshot)
}

// Clear empties the cache and broadcasts an empty list.  Called on
// logout.
func (c *BookingCache) Clear() {
	c.mu.Lock()
	c.list = nil
	c.index = make(map[string]model.Booking)
	c.fetchedAt = time.Time{}
	c.mu.Unlock()

	c.publish(nil)
}

// IsValid reports whether an envelope exists, is inside the validity
// window and holds a non-empty list.
func (c *BookingCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked()
}

func (c *BookingCache) validLocked() bool {
	if c.fetchedAt.IsZero() || len(c.list) == 0 {
		return false
	}
	return c.now().Sub(c.fetchedAt) < ValidityWindow
}

// publish hands the latest snapshot to every subscriber, replacing any
// undelivered previous snapshot.
func (c *BookingCache) publish(list []model.Booking) {
	snapshot := append([]model.Booking(nil), list...)
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, ch := range c.subs {
		select {
		case <-ch: // drop the stale snapshot
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}
