package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

/*========================Fakes===================================*/

type memCache struct {
	mu     sync.Mutex
	data   map[string][]byte
	hashes map[string]map[string]float64
	getErr error
}

func newMemCache() *memCache {
	return &memCache{
		data:   make(map[string][]byte),
		hashes: make(map[string]map[string]float64),
	}
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memCache) SetEx(ctx context.Context, key string, value any, _ time.Duration) error {
	return c.Set(ctx, key, value)
}

func (c *memCache) HIncrByFloat(_ context.Context, key, field string, delta float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]float64)
		c.hashes[key] = h
	}
	h[field] += delta
	return h[field], nil
}

type fakeGeo struct {
	mu   sync.Mutex
	adds []models.Location
	err  error
}

func (f *fakeGeo) AddDriverLocation(_ context.Context, _ uuid.UUID, latitude, longitude float64) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds = append(f.adds, models.Location{Latitude: latitude, Longitude: longitude})
	return nil
}

type fakeAvail struct {
	mu      sync.Mutex
	upserts []models.AvailabilityUpsert
}

func (f *fakeAvail) Upsert(_ context.Context, params models.AvailabilityUpsert) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, params)
	return 1, nil
}

type pushRecord struct {
	connID string
	event  string
}

type fakeGate struct {
	mu     sync.Mutex
	pushes []pushRecord
}

func (f *fakeGate) Push(connID string, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, pushRecord{connID: connID, event: event})
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []models.DriverAvailableMessage
	err      error
}

func (f *fakePublisher) PublishDriverAvailable(_ context.Context, msg models.DriverAvailableMessage) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

type deps struct {
	cache *memCache
	geo   *fakeGeo
	avail *fakeAvail
	gate  *fakeGate
	pub   *fakePublisher
}

func newTestService(mode types.AvailabilityMode) (*Service, deps) {
	d := deps{
		cache: newMemCache(),
		geo:   &fakeGeo{},
		avail: &fakeAvail{},
		gate:  &fakeGate{},
		pub:   &fakePublisher{},
	}
	l := logger.InitLogger("tracking-test", logger.LevelError)
	return New(d.cache, d.geo, d.avail, d.gate, d.pub, mode, l), d
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.New()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	return id
}

/*=====================Location Update============================*/

func TestLocationUpdate_StoreMode(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	driver := mustUUID(t)

	ack, err := svc.LocationUpdate(context.Background(), driver, "conn-1", 43.24, 76.89)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.DriverID != driver || ack.Latitude != 43.24 || ack.Longitude != 76.89 {
		t.Errorf("ack = %+v", ack)
	}
	if len(d.geo.adds) != 1 {
		t.Fatalf("expected 1 geo update, got %d", len(d.geo.adds))
	}
	if len(d.avail.upserts) != 1 {
		t.Fatalf("expected 1 availability upsert, got %d", len(d.avail.upserts))
	}
	up := d.avail.upserts[0]
	if !up.IsAvailable || up.Status != types.AvailabilityOnline || up.ConnectionID != "conn-1" {
		t.Errorf("upsert = %+v", up)
	}
	if len(d.pub.messages) != 0 {
		t.Errorf("store mode must not publish, got %d messages", len(d.pub.messages))
	}
}

func TestLocationUpdate_PublishMode(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModePublish)
	driver := mustUUID(t)

	if _, err := svc.LocationUpdate(context.Background(), driver, "conn-1", 43.24, 76.89); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.avail.upserts) != 0 {
		t.Errorf("publish mode must not upsert, got %d", len(d.avail.upserts))
	}
	if len(d.pub.messages) != 1 {
		t.Fatalf("expected 1 driver-available message, got %d", len(d.pub.messages))
	}
	msg := d.pub.messages[0]
	if msg.DriverID != driver || msg.ConnectionID != "conn-1" {
		t.Errorf("message = %+v", msg)
	}
}

func TestLocationUpdate_BothMode(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeBoth)

	if _, err := svc.LocationUpdate(context.Background(), mustUUID(t), "conn-1", 43.24, 76.89); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.avail.upserts) != 1 || len(d.pub.messages) != 1 {
		t.Errorf("both mode: upserts=%d messages=%d, want 1 and 1", len(d.avail.upserts), len(d.pub.messages))
	}
}

func TestLocationUpdate_MidClaimRejected(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	driver := mustUUID(t)
	if err := d.cache.Set(context.Background(), types.IdleClaimKey(driver), true); err != nil {
		t.Fatal(err)
	}

	_, err := svc.LocationUpdate(context.Background(), driver, "conn-1", 43.24, 76.89)
	if !errors.Is(err, types.ErrDriverMidClaim) {
		t.Fatalf("expected ErrDriverMidClaim, got %v", err)
	}
	// A rejected sample leaves no trace anywhere.
	if len(d.geo.adds) != 0 || len(d.avail.upserts) != 0 {
		t.Errorf("mid-claim rejection must not mutate state: geo=%d upserts=%d", len(d.geo.adds), len(d.avail.upserts))
	}
}

func TestLocationUpdate_RedeliversPendingOffer(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	driver := mustUUID(t)
	passenger := mustUUID(t)
	offer := models.PickupOffer{
		DriverID:    driver,
		PassengerID: passenger,
		RouteSummary: models.RouteSummary{
			Origin: models.Location{Latitude: 43.2, Longitude: 76.8},
		},
		ConnectionID: "conn-old",
	}
	if err := d.cache.Set(context.Background(), types.PickupOfferKey(driver), offer); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.LocationUpdate(context.Background(), driver, "conn-new", 43.24, 76.89); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.gate.pushes) != 1 {
		t.Fatalf("expected 1 redelivery push, got %d", len(d.gate.pushes))
	}
	// Redelivery targets the connection the update arrived on, not the one
	// recorded when the offer was made.
	if d.gate.pushes[0].connID != "conn-new" {
		t.Errorf("push went to %q, want conn-new", d.gate.pushes[0].connID)
	}
	if d.gate.pushes[0].event != types.EventPickupPassenger.String() {
		t.Errorf("push event = %q", d.gate.pushes[0].event)
	}
}

func TestLocationUpdate_GeoFailure(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	d.geo.err = errors.New("redis down")

	if _, err := svc.LocationUpdate(context.Background(), mustUUID(t), "conn-1", 43.24, 76.89); err == nil {
		t.Fatal("expected error when the geo index is unreachable")
	}
	if len(d.avail.upserts) != 0 {
		t.Error("availability must not be touched after a failed geo update")
	}
}

func TestLocationUpdate_PublishFailureIsNotFatal(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModePublish)
	d.pub.err = errors.New("broker down")

	if _, err := svc.LocationUpdate(context.Background(), mustUUID(t), "conn-1", 43.24, 76.89); err != nil {
		t.Fatalf("publish failure must not reject the sample: %v", err)
	}
}

/*======================Trip Tracking=============================*/

func TestTripTracker_FirstSampleIsZero(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	order := mustUUID(t)
	driver := mustUUID(t)

	total, err := svc.TripTracker(context.Background(), order, driver, 43.24, 76.89)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 0 {
		t.Errorf("first sample total = %f, want 0", total)
	}

	var sample models.TripSample
	found, _ := d.cache.Get(context.Background(), types.TripSampleKey(order, driver), &sample)
	if !found || sample.Latitude != 43.24 || sample.Longitude != 76.89 {
		t.Errorf("stored sample = %+v found=%v", sample, found)
	}
}

func TestTripTracker_AccumulatesAndSnapshots(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	order := mustUUID(t)
	driver := mustUUID(t)
	ctx := context.Background()

	if _, err := svc.TripTracker(ctx, order, driver, 43.0, 76.0); err != nil {
		t.Fatal(err)
	}
	// 0.008993 degrees of latitude is very close to one kilometre.
	total, err := svc.TripTracker(ctx, order, driver, 43.008993, 76.0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1.00 {
		t.Errorf("total after ~1km = %f, want 1.00", total)
	}

	var snap models.TripDistanceSnapshot
	found, _ := d.cache.Get(ctx, types.TripSnapshotKey(order), &snap)
	if !found {
		t.Fatal("expected distance snapshot")
	}
	if snap.DriverID != driver || snap.Distance != "1.00" {
		t.Errorf("snapshot = %+v, want driver %s distance 1.00", snap, driver)
	}
}

func TestTripTracker_SampleReadFailure(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	d.cache.getErr = errors.New("cache down")

	if _, err := svc.TripTracker(context.Background(), mustUUID(t), mustUUID(t), 43.0, 76.0); err == nil {
		t.Fatal("expected error when the previous sample cannot be read")
	}
}

// Distances for different drivers on the same order accumulate in
// independent hash fields.
func TestTripTracker_ConcurrentDrivers(t *testing.T) {
	svc, d := newTestService(types.AvailabilityModeStore)
	order := mustUUID(t)
	drivers := []uuid.UUID{mustUUID(t), mustUUID(t), mustUUID(t)}
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, driver := range drivers {
		wg.Add(1)
		go func(driver uuid.UUID) {
			defer wg.Done()
			if _, err := svc.TripTracker(ctx, order, driver, 43.0, 76.0); err != nil {
				t.Errorf("first sample: %v", err)
				return
			}
			if _, err := svc.TripTracker(ctx, order, driver, 43.008993, 76.0); err != nil {
				t.Errorf("second sample: %v", err)
			}
		}(driver)
	}
	wg.Wait()

	d.cache.mu.Lock()
	fields := d.cache.hashes[types.TripDistanceKey(order)]
	d.cache.mu.Unlock()
	if len(fields) != len(drivers) {
		t.Fatalf("expected %d hash fields, got %d", len(drivers), len(fields))
	}
	for _, driver := range drivers {
		got := fields[driver.String()]
		if got < 0.99 || got > 1.01 {
			t.Errorf("driver %s accumulated %f, want ~1.0", driver, got)
		}
	}
}
