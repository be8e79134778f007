package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"pubudu-echanneling/internal/domain/entity"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrSlotsFull is returned when every slot of a schedule is taken.
	ErrSlotsFull = errors.New("schedule is fully booked")
	// ErrSlotCounterMissing is returned when a schedule has no counter even after a resync.
	ErrSlotCounterMissing = errors.New("slot counter is not available")
)

const (
	scriptSlotsFull      = -1
	scriptCounterMissing = -2
)

// reserveSlotScript takes one slot and hands out the next appointment number
// in a single atomic step:
// 1. No remaining key → return -2 (caller resyncs from the database)
// 2. DECR remaining key
// 3. If result < 0 → INCR back and return -1
// 4. Otherwise INCR number key and return it
var reserveSlotScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -2
	end
	local remaining = redis.call('DECR', KEYS[1])
	if remaining < 0 then
		redis.call('INCR', KEYS[1])
		return -1
	end
	return redis.call('INCR', KEYS[2])
`)

// releaseSlotScript only gives a slot back to an existing counter. A missing
// counter is rebuilt from the database on the next reservation.
var releaseSlotScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -2
	end
	return redis.call('INCR', KEYS[1])
`)

const (
	RedisSlotsKeyPrefix  = "schedule:slots:"
	RedisNumberKeyPrefix = "schedule:appointment_no:"

	// Batch size for startup sync; a new pipeline is executed per batch
	syncBatchSize = 500

	mutexCleanupInterval = 10 * time.Minute
	mutexStaleThreshold  = 10 * time.Minute
)

// SlotReserver is what booking and scheduling need from the slot counters.
type SlotReserver interface {
	Reserve(ctx context.Context, scheduleID int) (int, error)
	Release(ctx context.Context, scheduleID int) error
	SyncSchedule(ctx context.Context, scheduleID int, totalQuota int, scheduleDate time.Time) error
	DeleteScheduleKeys(ctx context.Context, scheduleID int) error
	Remaining(ctx context.Context, scheduleIDs []int) (map[int]int, error)
}

// SlotService keeps per-schedule slot counters in Redis, rebuilt from the
// appointments table.
//
// Lock ordering: acquire the schedule mutex first, then touch DB/Redis.
// Reserve takes no mutex; the Lua script is atomic on its own.
type SlotService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	loc         *time.Location

	scheduleMu sync.Map // map[int]*mutexWithTimestamp

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// slotSnapshot holds counter values computed from the database.
type slotSnapshot struct {
	ScheduleID       int
	TotalQuota       int
	RemainingSlots   int
	MaxAppointmentNo int
	ScheduleDate     time.Time
}

// NewSlotService starts a background goroutine for mutex cleanup; call Stop on shutdown.
func NewSlotService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, loc *time.Location) *SlotService {
	if loc == nil {
		loc = time.Local
	}
	svc := &SlotService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		loc:         loc,
		stopChan:    make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop is safe to call multiple times.
func (s *SlotService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotService stopped")
	}
}

func slotsKey(scheduleID int) string {
	return fmt.Sprintf("%s%d", RedisSlotsKeyPrefix, scheduleID)
}

func numberKey(scheduleID int) string {
	return fmt.Sprintf("%s%d", RedisNumberKeyPrefix, scheduleID)
}

// SyncOnStartup rebuilds the counters of every schedule from today onwards.
// Must run before the server accepts bookings.
func (s *SlotService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Rebuilding appointment slot counters from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	today := s.today()
	offset := 0
	totalSynced := 0

	for {
		var results []slotSnapshot

		err := s.db.WithContext(ctx).Model(&entity.DoctorSchedule{}).
			Select(`
				doctor_schedules.id AS schedule_id,
				doctor_schedules.total_quota,
				doctor_schedules.total_quota - COUNT(CASE WHEN appointments.status IS NOT NULL AND appointments.status != ? THEN 1 END) AS remaining_slots,
				COALESCE(MAX(appointments.appointment_no), 0) AS max_appointment_no,
				doctor_schedules.schedule_date
			`, string(entity.AppointmentStatusCancelled)).
			Joins("LEFT JOIN appointments ON appointments.schedule_id = doctor_schedules.id").
			Where("doctor_schedules.schedule_date >= ?", today.Format("2006-01-02")).
			Group("doctor_schedules.id, doctor_schedules.total_quota, doctor_schedules.schedule_date").
			Order("doctor_schedules.id").
			Limit(syncBatchSize).
			Offset(offset).
			Scan(&results).Error
		if err != nil {
			s.log.Errorf("Failed to query schedules at offset %d: %+v", offset, err)
			return fmt.Errorf("query schedules at offset %d: %w", offset, err)
		}

		if len(results) == 0 {
			if offset == 0 {
				s.log.Info("No upcoming schedules found for sync")
			}
			break
		}

		pipe := s.redisClient.TxPipeline()
		for _, result := range results {
			ttl := s.calculateTTL(result.ScheduleDate)
			pipe.Set(ctx, slotsKey(result.ScheduleID), max(result.RemainingSlots, 0), ttl)
			pipe.Set(ctx, numberKey(result.ScheduleID), result.MaxAppointmentNo, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			s.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(results)
		if len(results) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.log.Infof("Slot counters rebuilt: %d schedules in %v", totalSynced, time.Since(startTime))
	return nil
}

// SyncSchedule sets the counters of one schedule from the database.
// Appointment numbers continue from the highest number ever issued, so they
// are never reused after a cancellation.
func (s *SlotService) SyncSchedule(ctx context.Context, scheduleID int, totalQuota int, scheduleDate time.Time) error {
	mt := s.getScheduleMutex(scheduleID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if s.isPast(scheduleDate) {
		s.log.Debugf("Skipping sync for past schedule %d", scheduleID)
		return nil
	}

	var data struct {
		BookedCount      int64
		MaxAppointmentNo int
	}
	err := s.db.WithContext(ctx).Model(&entity.Appointment{}).
		Select("COUNT(CASE WHEN status != ? THEN 1 END) AS booked_count, COALESCE(MAX(appointment_no), 0) AS max_appointment_no",
			entity.AppointmentStatusCancelled).
		Where("schedule_id = ?", scheduleID).
		Scan(&data).Error
	if err != nil {
		s.log.Warnf("Failed to query appointment data for schedule %d: %+v", scheduleID, err)
		return fmt.Errorf("query appointment data for schedule %d: %w", scheduleID, err)
	}

	remaining := max(totalQuota-int(data.BookedCount), 0)
	ttl := s.calculateTTL(scheduleDate)

	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, slotsKey(scheduleID), remaining, ttl)
	pipe.Set(ctx, numberKey(scheduleID), data.MaxAppointmentNo, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnf("Failed to sync Redis for schedule %d: %+v", scheduleID, err)
		return fmt.Errorf("redis sync for schedule %d: %w", scheduleID, err)
	}

	s.log.Debugf("Synced schedule %d: remaining=%d, last_no=%d, TTL=%v", scheduleID, remaining, data.MaxAppointmentNo, ttl)
	return nil
}

// DeleteScheduleKeys removes the counters and drops the schedule's mutex.
func (s *SlotService) DeleteScheduleKeys(ctx context.Context, scheduleID int) error {
	mt := s.getScheduleMutex(scheduleID)
	mt.mu.Lock()
	defer func() {
		mt.mu.Unlock()
		s.scheduleMu.Delete(scheduleID)
	}()

	if err := s.redisClient.Del(ctx, slotsKey(scheduleID), numberKey(scheduleID)).Err(); err != nil {
		s.log.Warnf("Failed to delete Redis keys for schedule %d: %+v", scheduleID, err)
		return fmt.Errorf("delete redis keys for schedule %d: %w", scheduleID, err)
	}
	return nil
}

// Reserve takes one slot and returns the appointment number (1-based).
// A schedule whose counters are gone (Redis restart, failed sync at create
// time) is resynced from the database once before giving up.
func (s *SlotService) Reserve(ctx context.Context, scheduleID int) (int, error) {
	result, err := s.runReserve(ctx, scheduleID)
	if err != nil {
		return 0, err
	}

	if result == scriptCounterMissing {
		s.log.Warnf("Slot counter missing for schedule %d, resyncing", scheduleID)
		if err := s.resync(ctx, scheduleID); err != nil {
			return 0, err
		}
		if result, err = s.runReserve(ctx, scheduleID); err != nil {
			return 0, err
		}
	}

	switch result {
	case scriptSlotsFull:
		return 0, ErrSlotsFull
	case scriptCounterMissing:
		return 0, ErrSlotCounterMissing
	}

	s.log.Debugf("Reserved slot for schedule %d: appointment_no=%d", scheduleID, result)
	return result, nil
}

// Release gives a slot back. The appointment number counter is left alone.
func (s *SlotService) Release(ctx context.Context, scheduleID int) error {
	mt := s.getScheduleMutex(scheduleID)
	mt.mu.Lock()
	defer mt.mu.Unlock()

	result, err := releaseSlotScript.Run(ctx, s.redisClient, []string{slotsKey(scheduleID)}).Int()
	if err != nil {
		s.log.Warnf("Failed to release slot for schedule %d: %+v", scheduleID, err)
		return fmt.Errorf("release slot for schedule %d: %w", scheduleID, err)
	}
	if result == scriptCounterMissing {
		s.log.Debugf("No slot counter for schedule %d, nothing to release", scheduleID)
	}
	return nil
}

func (s *SlotService) runReserve(ctx context.Context, scheduleID int) (int, error) {
	result, err := reserveSlotScript.Run(ctx, s.redisClient, []string{slotsKey(scheduleID), numberKey(scheduleID)}).Int()
	if err != nil {
		s.log.Warnf("Failed to reserve slot for schedule %d: %+v", scheduleID, err)
		return 0, fmt.Errorf("reserve slot for schedule %d: %w", scheduleID, err)
	}
	return result, nil
}

// resync reloads one schedule and rebuilds its counters.
func (s *SlotService) resync(ctx context.Context, scheduleID int) error {
	var schedule entity.DoctorSchedule
	err := s.db.WithContext(ctx).Select("id", "total_quota", "schedule_date").
		Where("id = ?", scheduleID).Take(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotCounterMissing
		}
		s.log.Warnf("Failed to load schedule %d for resync: %+v", scheduleID, err)
		return fmt.Errorf("load schedule %d: %w", scheduleID, err)
	}
	return s.SyncSchedule(ctx, schedule.ID, schedule.TotalQuota, schedule.ScheduleDate)
}

// Remaining reads the free slot count of each schedule. Schedules without a
// counter are left out of the result.
func (s *SlotService) Remaining(ctx context.Context, scheduleIDs []int) (map[int]int, error) {
	out := make(map[int]int, len(scheduleIDs))
	if len(scheduleIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(scheduleIDs))
	for i, id := range scheduleIDs {
		keys[i] = slotsKey(id)
	}

	values, err := s.redisClient.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read slot counters: %w", err)
	}

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(str); err == nil {
			out[scheduleIDs[i]] = n
		}
	}
	return out, nil
}

func (s *SlotService) getScheduleMutex(scheduleID int) *mutexWithTimestamp {
	mt, _ := s.scheduleMu.LoadOrStore(scheduleID, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *SlotService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes checks lastUsed while holding the lock so a concurrent
// getScheduleMutex cannot slip in between.
func (s *SlotService) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	s.scheduleMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}
		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.scheduleMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale mutexes", cleaned)
	}
}

func (s *SlotService) today() time.Time {
	now := time.Now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func (s *SlotService) isPast(scheduleDate time.Time) bool {
	d := time.Date(scheduleDate.Year(), scheduleDate.Month(), scheduleDate.Day(), 0, 0, 0, 0, s.loc)
	return d.Before(s.today())
}

// calculateTTL keeps counters until the end of the day after the session.
func (s *SlotService) calculateTTL(scheduleDate time.Time) time.Duration {
	expireAt := time.Date(scheduleDate.Year(), scheduleDate.Month(), scheduleDate.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 2)
	ttl := time.Until(expireAt)
	if ttl <= 0 {
		return time.Minute
	}
	return ttl
}
