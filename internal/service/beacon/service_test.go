package beacon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

const testEndpoint = "wss://dispatch.example.com/ws/drivers"

/*========================Fakes===================================*/

type fakeUserRepo struct {
	accounts map[string]*models.DriverAccount
	err      error
}

func (f *fakeUserRepo) FindDriverAccount(_ context.Context, userID uuid.UUID) (*models.DriverAccount, error) {
	if f.err != nil {
		return nil, f.err
	}
	acc, ok := f.accounts[userID.String()]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return acc, nil
}

type fakeWorkLogRepo struct {
	mu sync.Mutex

	worklogs   map[string]*models.WorkLog // keyed by driverID + workDate
	activities map[string][]models.Activity

	createErr error
	findErr   error
	insertErr error

	created  int
	inserted int
}

func newFakeWorkLogRepo() *fakeWorkLogRepo {
	return &fakeWorkLogRepo{
		worklogs:   make(map[string]*models.WorkLog),
		activities: make(map[string][]models.Activity),
	}
}

func (f *fakeWorkLogRepo) FindByDriverAndDate(_ context.Context, driverID uuid.UUID, workDate string) (*models.WorkLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	wl, ok := f.worklogs[driverID.String()+workDate]
	if !ok {
		return nil, types.ErrWorkLogNotFound
	}
	return wl, nil
}

func (f *fakeWorkLogRepo) Create(_ context.Context, driverID uuid.UUID, workDate string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return uuid.UUID{}, f.createErr
	}
	id, _ := uuid.New()
	f.worklogs[driverID.String()+workDate] = &models.WorkLog{
		ID:       id,
		DriverID: driverID,
		WorkDate: workDate,
	}
	f.created++
	return id, nil
}

func (f *fakeWorkLogRepo) ActivitiesByWorkLog(_ context.Context, workLogID uuid.UUID) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	history := f.activities[workLogID.String()]
	out := make([]models.Activity, len(history))
	copy(out, history)
	return out, nil
}

func (f *fakeWorkLogRepo) InsertActivity(_ context.Context, workLogID uuid.UUID, workTime time.Time, active bool, status types.BeaconStatus) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return uuid.UUID{}, f.insertErr
	}
	id, _ := uuid.New()
	f.activities[workLogID.String()] = append(f.activities[workLogID.String()], models.Activity{
		ID:        id,
		WorkLogID: workLogID,
		WorkTime:  workTime,
		Active:    active,
		Status:    status,
	})
	f.inserted++
	return id, nil
}

// seedEmpty installs a work log for the given date with no activities.
func (f *fakeWorkLogRepo) seedEmpty(driverID uuid.UUID, workDate string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := uuid.New()
	f.worklogs[driverID.String()+workDate] = &models.WorkLog{ID: id, DriverID: driverID, WorkDate: workDate}
	return id
}

// seed installs a work log for today with the given last activity.
func (f *fakeWorkLogRepo) seed(driverID uuid.UUID, workTime time.Time, active bool, status types.BeaconStatus) uuid.UUID {
	workDate := time.Now().Format(workDateLayout)
	id, _ := uuid.New()
	f.worklogs[driverID.String()+workDate] = &models.WorkLog{ID: id, DriverID: driverID, WorkDate: workDate}
	aID, _ := uuid.New()
	f.activities[id.String()] = append(f.activities[id.String()], models.Activity{
		ID:        aID,
		WorkLogID: id,
		WorkTime:  workTime,
		Active:    active,
		Status:    status,
	})
	return id
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []models.BeaconChangedMessage
	err      error
}

func (f *fakePublisher) PublishBeaconChanged(_ context.Context, msg models.BeaconChangedMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

type fakeGeo struct {
	mu      sync.Mutex
	removed []uuid.UUID
}

func (f *fakeGeo) RemoveDriver(_ context.Context, driverID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, driverID)
	return nil
}

// fakeTx runs the callback directly, no transaction semantics.
type fakeTx struct{}

func (fakeTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

// abortingWorkLogRepo mimics postgres transaction aborts: the first Create
// loses the driver-day insert race to another replica, which both returns
// ErrWorkLogExists and poisons the current transaction. Every later
// statement fails with errTxAborted until abortingTx begins a fresh one.
type abortingWorkLogRepo struct {
	*fakeWorkLogRepo

	raceMu  sync.Mutex
	aborted bool
	raced   bool
}

func (f *abortingWorkLogRepo) isAborted() bool {
	f.raceMu.Lock()
	defer f.raceMu.Unlock()
	return f.aborted
}

func (f *abortingWorkLogRepo) FindByDriverAndDate(ctx context.Context, driverID uuid.UUID, workDate string) (*models.WorkLog, error) {
	if f.isAborted() {
		return nil, errTxAborted
	}
	return f.fakeWorkLogRepo.FindByDriverAndDate(ctx, driverID, workDate)
}

func (f *abortingWorkLogRepo) Create(ctx context.Context, driverID uuid.UUID, workDate string) (uuid.UUID, error) {
	if f.isAborted() {
		return uuid.UUID{}, errTxAborted
	}
	f.raceMu.Lock()
	first := !f.raced
	if first {
		f.raced = true
		f.aborted = true
	}
	f.raceMu.Unlock()
	if first {
		// The other replica's row is committed and visible to a fresh
		// transaction.
		f.seedEmpty(driverID, workDate)
		return uuid.UUID{}, types.ErrWorkLogExists
	}
	return f.fakeWorkLogRepo.Create(ctx, driverID, workDate)
}

func (f *abortingWorkLogRepo) ActivitiesByWorkLog(ctx context.Context, workLogID uuid.UUID) ([]models.Activity, error) {
	if f.isAborted() {
		return nil, errTxAborted
	}
	return f.fakeWorkLogRepo.ActivitiesByWorkLog(ctx, workLogID)
}

func (f *abortingWorkLogRepo) InsertActivity(ctx context.Context, workLogID uuid.UUID, workTime time.Time, active bool, status types.BeaconStatus) (uuid.UUID, error) {
	if f.isAborted() {
		return uuid.UUID{}, errTxAborted
	}
	return f.fakeWorkLogRepo.InsertActivity(ctx, workLogID, workTime, active, status)
}

// abortingTx begins a fresh fake transaction per Do call, clearing any
// abort left by the previous one.
type abortingTx struct {
	repo *abortingWorkLogRepo
}

func (t abortingTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	t.repo.raceMu.Lock()
	t.repo.aborted = false
	t.repo.raceMu.Unlock()
	return fn(ctx)
}

func newTestService(users *fakeUserRepo, worklogs *fakeWorkLogRepo, pub *fakePublisher) *Service {
	l := logger.InitLogger("beacon-test", logger.LevelError)
	return New(users, worklogs, &fakeGeo{}, pub, fakeTx{}, testEndpoint, l)
}

func eligibleDriver(t *testing.T) (uuid.UUID, *fakeUserRepo) {
	t.Helper()
	id, err := uuid.New()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	return id, &fakeUserRepo{accounts: map[string]*models.DriverAccount{
		id.String(): {ID: id, IsDriver: true, IsVerified: true, IsCompleted: true},
	}}
}

/*========================Tests===================================*/

func TestActivateBeacon_DriverNotFound(t *testing.T) {
	id, _ := uuid.New()
	svc := newTestService(&fakeUserRepo{accounts: map[string]*models.DriverAccount{}}, newFakeWorkLogRepo(), &fakePublisher{})

	_, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if !errors.Is(err, types.ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
	if types.Code(err) != 4004 {
		t.Errorf("expected code 4004, got %d", types.Code(err))
	}
}

func TestActivateBeacon_NotEligible(t *testing.T) {
	id, _ := uuid.New()
	users := &fakeUserRepo{accounts: map[string]*models.DriverAccount{
		id.String(): {ID: id, IsDriver: true, IsVerified: false, IsCompleted: true},
	}}
	svc := newTestService(users, newFakeWorkLogRepo(), &fakePublisher{})

	_, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if !errors.Is(err, types.ErrDriverNotEligible) {
		t.Fatalf("expected ErrDriverNotEligible, got %v", err)
	}
}

func TestActivateBeacon_FreshActivation(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	pub := &fakePublisher{}
	svc := newTestService(users, worklogs, pub)

	result, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Active {
		t.Error("expected active result")
	}
	want := fmt.Sprintf("%s?driver=%s", testEndpoint, id)
	if result.Endpoint != want {
		t.Errorf("endpoint = %q, want %q", result.Endpoint, want)
	}
	if worklogs.created != 1 {
		t.Errorf("expected 1 worklog created, got %d", worklogs.created)
	}
	if worklogs.inserted != 1 {
		t.Errorf("expected 1 activity inserted, got %d", worklogs.inserted)
	}
	if len(pub.messages) != 1 || !pub.messages[0].Active {
		t.Errorf("expected one active beacon-changed message, got %+v", pub.messages)
	}
}

func TestActivateBeacon_DuplicateTransition(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.seed(id, time.Now().Add(-time.Hour), true, types.BeaconWork)
	svc := newTestService(users, worklogs, &fakePublisher{})

	_, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if !errors.Is(err, types.ErrDuplicateTransition) {
		t.Fatalf("expected ErrDuplicateTransition, got %v", err)
	}
	if worklogs.inserted != 0 {
		t.Errorf("duplicate must not append, inserted = %d", worklogs.inserted)
	}
}

func TestActivateBeacon_DeactivationWithinDwell(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.seed(id, time.Now().Add(-3*time.Minute), true, types.BeaconWork)
	svc := newTestService(users, worklogs, &fakePublisher{})

	_, err := svc.ActivateBeacon(context.Background(), id, types.BeaconRest)
	if !errors.Is(err, types.ErrDwellTooShort) {
		t.Fatalf("expected ErrDwellTooShort, got %v", err)
	}
	if worklogs.inserted != 0 {
		t.Errorf("blocked deactivation must not append, inserted = %d", worklogs.inserted)
	}
}

func TestActivateBeacon_DeactivationAfterDwell(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.seed(id, time.Now().Add(-15*time.Minute), true, types.BeaconWork)
	geo := &fakeGeo{}
	l := logger.InitLogger("beacon-test", logger.LevelError)
	svc := New(users, worklogs, geo, &fakePublisher{}, fakeTx{}, testEndpoint, l)

	result, err := svc.ActivateBeacon(context.Background(), id, types.BeaconRest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Active {
		t.Error("expected inactive result")
	}
	if result.Endpoint != models.RestingEndpoint {
		t.Errorf("endpoint = %q, want %q", result.Endpoint, models.RestingEndpoint)
	}
	if len(geo.removed) != 1 || geo.removed[0] != id {
		t.Errorf("expected driver removed from geo index, got %v", geo.removed)
	}
}

func TestActivateBeacon_ActivationNeverDwellBlocked(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.seed(id, time.Now().Add(-time.Minute), false, types.BeaconRest)
	svc := newTestService(users, worklogs, &fakePublisher{})

	result, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if err != nil {
		t.Fatalf("activation must not be dwell-blocked: %v", err)
	}
	if !strings.HasPrefix(result.Endpoint, testEndpoint) {
		t.Errorf("endpoint = %q, want prefix %q", result.Endpoint, testEndpoint)
	}
}

func TestActivateBeacon_WorkLogCreateFailure(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.createErr = errors.New("insert failed")
	svc := newTestService(users, worklogs, &fakePublisher{})

	_, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if !errors.Is(err, types.ErrWorkLogCreateFailed) {
		t.Fatalf("expected ErrWorkLogCreateFailed, got %v", err)
	}
}

func TestActivateBeacon_ActivityInsertFailure(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.insertErr = errors.New("insert failed")
	svc := newTestService(users, worklogs, &fakePublisher{})

	_, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if !errors.Is(err, types.ErrActivityInsertFailed) {
		t.Fatalf("expected ErrActivityInsertFailed, got %v", err)
	}
}

func TestActivateBeacon_PublishFailureIsNotFatal(t *testing.T) {
	id, users := eligibleDriver(t)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(users, newFakeWorkLogRepo(), pub)

	if _, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork); err != nil {
		t.Fatalf("publish failure must not fail the transition: %v", err)
	}
}

// Losing the driver-day creation race to another replica aborts the whole
// transaction, so the transition must be retried in a fresh one rather
// than re-reading on the poisoned transaction.
func TestActivateBeacon_CreateRaceRetriesInFreshTransaction(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := &abortingWorkLogRepo{fakeWorkLogRepo: newFakeWorkLogRepo()}
	l := logger.InitLogger("beacon-test", logger.LevelError)
	svc := New(users, worklogs, &fakeGeo{}, &fakePublisher{}, abortingTx{repo: worklogs}, testEndpoint, l)

	result, err := svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Active {
		t.Error("expected active result")
	}
	if !worklogs.raced {
		t.Fatal("fake never exercised the creation race")
	}
	if worklogs.created != 0 {
		t.Errorf("racing replica owns the work log, created = %d", worklogs.created)
	}
	if worklogs.inserted != 1 {
		t.Errorf("expected 1 appended activity after the retry, got %d", worklogs.inserted)
	}
}

// Two concurrent identical transitions must resolve to exactly one accepted
// append and one duplicate rejection.
func TestActivateBeacon_ConcurrentSameTransition(t *testing.T) {
	id, users := eligibleDriver(t)
	worklogs := newFakeWorkLogRepo()
	worklogs.seed(id, time.Now().Add(-time.Hour), false, types.BeaconRest)
	svc := newTestService(users, worklogs, &fakePublisher{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ActivateBeacon(context.Background(), id, types.BeaconWork)
		}(i)
	}
	wg.Wait()

	var accepted, duplicated int
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, types.ErrDuplicateTransition):
			duplicated++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 || duplicated != 1 {
		t.Errorf("expected 1 accepted and 1 duplicate, got %d accepted %d duplicated", accepted, duplicated)
	}
	if worklogs.inserted != 1 {
		t.Errorf("expected exactly 1 appended activity, got %d", worklogs.inserted)
	}
}
