package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"pubudu-echanneling/internal/delivery/dto"
	"pubudu-echanneling/internal/delivery/http/middleware"
	"pubudu-echanneling/internal/domain/entity"
	"pubudu-echanneling/internal/domain/repository"
	"pubudu-echanneling/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repositories are faked; only BEGIN/COMMIT/ROLLBACK reach the mocked driver.

type fakeSlots struct {
	service.SlotReserver
	next       int
	reserveErr error
	reserved   int
	released   int
}

func (f *fakeSlots) Reserve(ctx context.Context, scheduleID int) (int, error) {
	if f.reserveErr != nil {
		return 0, f.reserveErr
	}
	f.reserved++
	f.next++
	return f.next, nil
}

func (f *fakeSlots) Release(ctx context.Context, scheduleID int) error {
	f.released++
	return nil
}

type fakeAppointments struct {
	repository.AppointmentRepository
	byID      *entity.Appointment
	existing  *entity.Appointment
	createErr error
	created   []*entity.Appointment
	rows      int64
}

func (f *fakeAppointments) Create(db *gorm.DB, appointment *entity.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	appointment.ID = uuid.New()
	f.created = append(f.created, appointment)
	return nil
}

func (f *fakeAppointments) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return f.byID, nil
}

func (f *fakeAppointments) FindByPatientAndSchedule(db *gorm.DB, patientID uuid.UUID, scheduleID int) (*entity.Appointment, error) {
	return f.existing, nil
}

func (f *fakeAppointments) Cancel(db *gorm.DB, id uuid.UUID) (int64, error) {
	return f.rows, nil
}

func (f *fakeAppointments) MarkPaid(db *gorm.DB, id uuid.UUID) (int64, error) {
	return f.rows, nil
}

func (f *fakeAppointments) Complete(db *gorm.DB, id uuid.UUID) (int64, error) {
	return f.rows, nil
}

type fakeSchedules struct {
	repository.DoctorScheduleRepository
	schedule *entity.DoctorSchedule
}

func (f *fakeSchedules) FindByID(db *gorm.DB, id int) (*entity.DoctorSchedule, error) {
	return f.schedule, nil
}

type fakePatients struct {
	repository.PatientProfileRepository
	patient *entity.PatientProfile
}

func (f *fakePatients) FindByUserID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	return f.patient, nil
}

type fakePayments struct {
	repository.PaymentRepository
	createErr error
	created   []*entity.Payment
}

func (f *fakePayments) Create(db *gorm.DB, payment *entity.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	payment.ID = uuid.New()
	f.created = append(f.created, payment)
	return nil
}

type fakeAudit struct {
	service.AuditService
	actions []string
}

func (f *fakeAudit) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) LogAction(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, details map[string]interface{}) error {
	f.actions = append(f.actions, action)
	return nil
}

type fakeNotifier struct {
	service.NotificationService
	booked    int
	cancelled int
	paid      int
}

func (f *fakeNotifier) AppointmentBooked(ctx context.Context, user *entity.User, appointment *entity.Appointment) {
	f.booked++
}

func (f *fakeNotifier) AppointmentCancelled(ctx context.Context, user *entity.User, appointment *entity.Appointment) {
	f.cancelled++
}

func (f *fakeNotifier) PaymentReceived(ctx context.Context, user *entity.User, payment *entity.Payment) {
	f.paid++
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	return db, mock
}

var (
	testNow      = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	testPatient  = uuid.MustParse("0b8f3f5e-2b7d-4c59-9d0c-1f7a2d9e6a01")
	testDoctor   = uuid.MustParse("7c1e9a44-5d2b-4f0e-8a6b-3e9d0c2f1b02")
	testFrontOff = uuid.MustParse("e4a2c6b8-1f3d-4a5e-9b7c-8d6f0a2e4c03")
	validCard    = &dto.CardDetails{CardHolder: "K Perera", CardNumber: "4111 1111 1111 1111", Expiry: "12/30", CVV: "123"}
)

type bookingFixture struct {
	u            *appointmentUsecase
	mock         sqlmock.Sqlmock
	slots        *fakeSlots
	appointments *fakeAppointments
	schedules    *fakeSchedules
	patients     *fakePatients
	payments     *fakePayments
	audit        *fakeAudit
	notifier     *fakeNotifier
}

func newBookingFixture(t *testing.T) *bookingFixture {
	db, mock := newMockDB(t)
	f := &bookingFixture{
		mock:         mock,
		slots:        &fakeSlots{},
		appointments: &fakeAppointments{rows: 1},
		schedules: &fakeSchedules{schedule: &entity.DoctorSchedule{
			ID:           3,
			DoctorID:     testDoctor,
			ScheduleDate: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC),
			StartTime:    "09:00:00",
			TotalQuota:   10,
			Doctor: entity.DoctorProfile{
				UserID:          testDoctor,
				FullName:        "Dr. Silva",
				ConsultationFee: decimal.NewFromInt(2500),
				User:            entity.User{ID: testDoctor, IsActive: true},
			},
		}},
		patients: &fakePatients{patient: &entity.PatientProfile{
			UserID:   testPatient,
			FullName: "Kamal Perera",
			User:     entity.User{ID: testPatient, IsActive: true},
		}},
		payments: &fakePayments{},
		audit:    &fakeAudit{},
		notifier: &fakeNotifier{},
	}
	f.u = NewAppointmentUsecase(db, quietLogger(), time.UTC, f.appointments, f.schedules, f.patients, f.payments, f.slots, f.audit, f.notifier).(*appointmentUsecase)
	f.u.now = func() time.Time { return testNow }
	return f
}

func TestAppointmentUsecase_BookAppointment(t *testing.T) {
	tests := []struct {
		name         string
		payNow       bool
		setup        func(f *bookingFixture)
		wantErr      error
		wantFailure  bool
		wantStatus   entity.AppointmentStatus
		wantReserved int
		wantReleased int
		wantPayments int
	}{
		{
			name:         "pay later stays pending",
			setup:        func(f *bookingFixture) { f.mock.ExpectBegin(); f.mock.ExpectCommit() },
			wantStatus:   entity.AppointmentStatusPending,
			wantReserved: 1,
		},
		{
			name:         "pay now is upcoming with a card payment",
			payNow:       true,
			setup:        func(f *bookingFixture) { f.mock.ExpectBegin(); f.mock.ExpectCommit() },
			wantStatus:   entity.AppointmentStatusUpcoming,
			wantReserved: 1,
			wantPayments: 1,
		},
		{
			name: "insert failure releases the slot",
			setup: func(f *bookingFixture) {
				f.appointments.createErr = errors.New("insert failed")
				f.mock.ExpectBegin()
				f.mock.ExpectRollback()
			},
			wantFailure:  true,
			wantReserved: 1,
			wantReleased: 1,
		},
		{
			name: "unique index race is reported as already booked",
			setup: func(f *bookingFixture) {
				f.appointments.createErr = &pgconn.PgError{Code: "23505", ConstraintName: "uq_appointments_patient_schedule"}
				f.mock.ExpectBegin()
				f.mock.ExpectRollback()
			},
			wantErr:      ErrAlreadyBooked,
			wantReserved: 1,
			wantReleased: 1,
		},
		{
			name:   "payment failure releases the slot",
			payNow: true,
			setup: func(f *bookingFixture) {
				f.payments.createErr = errors.New("payment insert failed")
				f.mock.ExpectBegin()
				f.mock.ExpectRollback()
			},
			wantFailure:  true,
			wantReserved: 1,
			wantReleased: 1,
		},
		{
			name: "commit failure releases the slot",
			setup: func(f *bookingFixture) {
				f.mock.ExpectBegin()
				f.mock.ExpectCommit().WillReturnError(errors.New("connection reset"))
			},
			wantFailure:  true,
			wantReserved: 1,
			wantReleased: 1,
		},
		{
			name:    "full session",
			setup:   func(f *bookingFixture) { f.slots.reserveErr = service.ErrSlotsFull },
			wantErr: ErrSlotsFull,
		},
		{
			name:    "second booking in the same session",
			setup:   func(f *bookingFixture) { f.appointments.existing = &entity.Appointment{ID: uuid.New()} },
			wantErr: ErrAlreadyBooked,
		},
		{
			name: "session already started",
			setup: func(f *bookingFixture) {
				f.schedules.schedule.ScheduleDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
			},
			wantErr: ErrSchedulePast,
		},
		{
			name:    "inactive doctor",
			setup:   func(f *bookingFixture) { f.schedules.schedule.Doctor.User.IsActive = false },
			wantErr: ErrDoctorInactive,
		},
		{
			name:    "unknown schedule",
			setup:   func(f *bookingFixture) { f.schedules.schedule = nil },
			wantErr: ErrScheduleNotFound,
		},
		{
			name:    "disabled patient",
			setup:   func(f *bookingFixture) { f.patients.patient.User.IsActive = false },
			wantErr: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			tt.setup(f)

			req := &dto.BookAppointmentRequest{ScheduleID: 3, PaymentOption: dto.PaymentOptionPayLater}
			if tt.payNow {
				req.PaymentOption = dto.PaymentOptionPayNow
				req.Card = validCard
			}
			ctx := middleware.WithUser(context.Background(), testPatient, entity.RoleIDPatient)
			resp, err := f.u.BookAppointment(ctx, req)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.wantFailure:
				if err == nil {
					t.Fatal("expected an error")
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Status != string(tt.wantStatus) || resp.AppointmentNo != 1 || !resp.Fee.Equal(decimal.NewFromInt(2500)) {
					t.Errorf("unexpected response %+v", resp)
				}
				if tt.payNow && (resp.Payment == nil || resp.PaymentStatus != string(entity.PaymentStatusPaid)) {
					t.Errorf("expected a paid appointment with a payment, got %+v", resp)
				}
				if f.notifier.booked != 1 || f.notifier.paid != tt.wantPayments {
					t.Errorf("notifications: booked=%d paid=%d", f.notifier.booked, f.notifier.paid)
				}
				if len(f.audit.actions) != 1 || f.audit.actions[0] != entity.AuditActionAppointmentBook {
					t.Errorf("unexpected audit trail %v", f.audit.actions)
				}
			}

			if f.slots.reserved != tt.wantReserved || f.slots.released != tt.wantReleased {
				t.Errorf("slots: reserved=%d released=%d, want %d/%d", f.slots.reserved, f.slots.released, tt.wantReserved, tt.wantReleased)
			}
			if len(f.payments.created) != tt.wantPayments {
				t.Errorf("expected %d payments, got %d", tt.wantPayments, len(f.payments.created))
			}
			if err != nil && f.notifier.booked != 0 {
				t.Error("failed bookings must not notify")
			}
			if err := f.mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestAppointmentUsecase_BookForPatientPaysCash(t *testing.T) {
	f := newBookingFixture(t)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	ctx := middleware.WithUser(context.Background(), testFrontOff, entity.RoleIDReceptionist)
	resp, err := f.u.BookForPatient(ctx, &dto.FrontDeskBookRequest{
		PatientID:     testPatient,
		ScheduleID:    3,
		PaymentOption: dto.PaymentOptionPayNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.payments.created) != 1 || f.payments.created[0].PaymentMethod != entity.PaymentMethodCash {
		t.Fatalf("expected one cash payment, got %+v", f.payments.created)
	}
	booked := f.appointments.created[0]
	if booked.PatientID != testPatient || booked.BookedBy == nil || *booked.BookedBy != testFrontOff {
		t.Errorf("expected booking for the patient by the receptionist, got %+v", booked)
	}
	if resp.Status != string(entity.AppointmentStatusUpcoming) {
		t.Errorf("expected upcoming, got %s", resp.Status)
	}
}

func TestAppointmentUsecase_CancelAppointment(t *testing.T) {
	tests := []struct {
		name         string
		appointment  *entity.Appointment
		rows         int64
		commit       bool
		wantErr      error
		wantReleased int
	}{
		{
			name:         "pending appointment",
			appointment:  &entity.Appointment{PatientID: testPatient, ScheduleID: 3, Status: entity.AppointmentStatusPending},
			rows:         1,
			commit:       true,
			wantReleased: 1,
		},
		{
			name:         "paid appointment keeps its payment",
			appointment:  &entity.Appointment{PatientID: testPatient, ScheduleID: 3, Status: entity.AppointmentStatusUpcoming, PaymentStatus: entity.PaymentStatusPaid},
			rows:         1,
			commit:       true,
			wantReleased: 1,
		},
		{
			name:    "missing",
			wantErr: ErrAppointmentNotFound,
		},
		{
			name:        "someone else's",
			appointment: &entity.Appointment{PatientID: uuid.New(), ScheduleID: 3, Status: entity.AppointmentStatusPending},
			wantErr:     ErrAppointmentNotOwned,
		},
		{
			name:        "already completed",
			appointment: &entity.Appointment{PatientID: testPatient, ScheduleID: 3, Status: entity.AppointmentStatusCompleted},
			wantErr:     ErrAppointmentNotCancellable,
		},
		{
			name:        "lost a concurrent cancel",
			appointment: &entity.Appointment{PatientID: testPatient, ScheduleID: 3, Status: entity.AppointmentStatusPending},
			rows:        0,
			wantErr:     ErrAppointmentNotCancellable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			f.appointments.byID = tt.appointment
			f.appointments.rows = tt.rows
			f.mock.ExpectBegin()
			if tt.commit {
				f.mock.ExpectCommit()
			} else {
				f.mock.ExpectRollback()
			}

			ctx := middleware.WithUser(context.Background(), testPatient, entity.RoleIDPatient)
			err := f.u.CancelAppointment(ctx, uuid.New())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if f.slots.released != tt.wantReleased {
				t.Errorf("expected %d releases, got %d", tt.wantReleased, f.slots.released)
			}
			if tt.wantErr == nil {
				if tt.appointment.Status != entity.AppointmentStatusCancelled || f.notifier.cancelled != 1 {
					t.Errorf("status=%s notifications=%d", tt.appointment.Status, f.notifier.cancelled)
				}
				if len(f.audit.actions) != 1 || f.audit.actions[0] != entity.AuditActionAppointmentCancel {
					t.Errorf("unexpected audit trail %v", f.audit.actions)
				}
			}
			if err := f.mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestAppointmentUsecase_CompleteAppointment(t *testing.T) {
	tests := []struct {
		name        string
		appointment *entity.Appointment
		rows        int64
		wantErr     error
	}{
		{"own upcoming appointment", &entity.Appointment{DoctorID: testDoctor, Status: entity.AppointmentStatusUpcoming}, 1, nil},
		{"another doctor's patient", &entity.Appointment{DoctorID: uuid.New(), Status: entity.AppointmentStatusUpcoming}, 1, ErrAppointmentNotOwned},
		{"not upcoming", &entity.Appointment{DoctorID: testDoctor, Status: entity.AppointmentStatusPending}, 0, ErrAppointmentNotUpcoming},
		{"missing", nil, 0, ErrAppointmentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			f.appointments.byID = tt.appointment
			f.appointments.rows = tt.rows
			f.mock.ExpectBegin()
			if tt.wantErr == nil {
				f.mock.ExpectCommit()
			} else {
				f.mock.ExpectRollback()
			}

			ctx := middleware.WithUser(context.Background(), testDoctor, entity.RoleIDDoctor)
			resp, err := f.u.CompleteAppointment(ctx, uuid.New())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Status != string(entity.AppointmentStatusCompleted) {
					t.Errorf("expected completed, got %s", resp.Status)
				}
			}
			if f.slots.released != 0 {
				t.Error("completing must not release the slot")
			}
			if err := f.mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func newTestPaymentUsecase(t *testing.T, appointments *fakeAppointments, payments *fakePayments, audit *fakeAudit, notifier *fakeNotifier) (*paymentUsecase, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	u := NewPaymentUsecase(db, quietLogger(), appointments, payments, audit, notifier).(*paymentUsecase)
	u.now = func() time.Time { return testNow }
	return u, mock
}

func TestPaymentUsecase_PayAppointment(t *testing.T) {
	pending := func() *entity.Appointment {
		return &entity.Appointment{
			ID:            uuid.New(),
			PatientID:     testPatient,
			Status:        entity.AppointmentStatusPending,
			PaymentStatus: entity.PaymentStatusUnpaid,
			Fee:           decimal.NewFromInt(2500),
			BookingCode:   "BK-20250620-ABC123",
		}
	}

	tests := []struct {
		name        string
		appointment func() *entity.Appointment
		rows        int64
		wantErr     error
	}{
		{"pending unpaid", pending, 1, nil},
		{"already paid", func() *entity.Appointment {
			a := pending()
			a.MarkPaid()
			return a
		}, 1, ErrAppointmentNotPayable},
		{"cancelled", func() *entity.Appointment {
			a := pending()
			a.Cancel()
			return a
		}, 1, ErrAppointmentNotPayable},
		{"someone else's", func() *entity.Appointment {
			a := pending()
			a.PatientID = uuid.New()
			return a
		}, 1, ErrAppointmentNotOwned},
		{"lost a concurrent payment", pending, 0, ErrAppointmentNotPayable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appointment := tt.appointment()
			payments, audit, notifier := &fakePayments{}, &fakeAudit{}, &fakeNotifier{}
			u, mock := newTestPaymentUsecase(t, &fakeAppointments{byID: appointment, rows: tt.rows}, payments, audit, notifier)
			mock.ExpectBegin()
			if tt.wantErr == nil {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			ctx := middleware.WithUser(context.Background(), testPatient, entity.RoleIDPatient)
			resp, err := u.PayAppointment(ctx, &dto.PaymentRequest{AppointmentID: appointment.ID, Card: *validCard})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(payments.created) != 0 || notifier.paid != 0 {
					t.Error("rejected payments must not be recorded")
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if resp.Status != string(entity.AppointmentStatusUpcoming) || resp.PaymentStatus != string(entity.PaymentStatusPaid) {
					t.Errorf("expected upcoming/paid, got %s/%s", resp.Status, resp.PaymentStatus)
				}
				if len(payments.created) != 1 || payments.created[0].PaymentMethod != entity.PaymentMethodCard || !payments.created[0].Amount.Equal(appointment.Fee) {
					t.Errorf("unexpected payments %+v", payments.created)
				}
				if notifier.paid != 1 || len(audit.actions) != 1 || audit.actions[0] != entity.AuditActionPaymentCreate {
					t.Errorf("notifications=%d audit=%v", notifier.paid, audit.actions)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestPaymentUsecase_ConfirmPaymentRecordsCash(t *testing.T) {
	appointment := &entity.Appointment{
		ID:            uuid.New(),
		PatientID:     testPatient,
		Status:        entity.AppointmentStatusPending,
		PaymentStatus: entity.PaymentStatusUnpaid,
		Fee:           decimal.NewFromInt(1800),
	}
	payments, audit := &fakePayments{}, &fakeAudit{}
	u, mock := newTestPaymentUsecase(t, &fakeAppointments{byID: appointment, rows: 1}, payments, audit, &fakeNotifier{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := middleware.WithUser(context.Background(), testFrontOff, entity.RoleIDReceptionist)
	resp, err := u.ConfirmPayment(ctx, appointment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Payment == nil || resp.Payment.PaymentMethod != entity.PaymentMethodCash {
		t.Errorf("expected a cash payment, got %+v", resp.Payment)
	}
	if len(audit.actions) != 1 || audit.actions[0] != entity.AuditActionPaymentConfirm {
		t.Errorf("unexpected audit trail %v", audit.actions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
