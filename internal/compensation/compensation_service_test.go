package compensation

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	compensationerrors "go-payledger/internal/compensation/errors"
	"go-payledger/internal/document"
	"go-payledger/internal/messaging/kafka"
	"go-payledger/internal/shared/apperror"

	"gorm.io/gorm"
)

type fakeRepo struct {
	loadLedgerFn   func(ctx context.Context, companyID, employeeID string) (Ledger, error)
	replaceFn      func(ctx context.Context, led Ledger) error
	loadBaselineFn func(ctx context.Context, companyID, employeeID string) (EmployeeBaseline, error)

	txScoped      bool
	baselineViaTx *bool
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository {
	scoped := *f
	scoped.txScoped = true
	return &scoped
}

func (f *fakeRepo) LoadLedger(ctx context.Context, companyID, employeeID string) (Ledger, error) {
	return f.loadLedgerFn(ctx, companyID, employeeID)
}

func (f *fakeRepo) ReplaceLedger(ctx context.Context, led Ledger) error {
	return f.replaceFn(ctx, led)
}

func (f *fakeRepo) LoadEmployeeBaseline(ctx context.Context, companyID, employeeID string) (EmployeeBaseline, error) {
	if f.baselineViaTx != nil {
		*f.baselineViaTx = f.txScoped
	}
	return f.loadBaselineFn(ctx, companyID, employeeID)
}

type fakeDocStore struct {
	uploadFn func(ctx context.Context, companyID string, data []byte, name, mime string) (document.StoredDocument, error)
}

func (f *fakeDocStore) Upload(ctx context.Context, companyID string, data []byte, name, mime string) (document.StoredDocument, error) {
	return f.uploadFn(ctx, companyID, data, name, mime)
}

func (f *fakeDocStore) Fetch(ctx context.Context, companyID, id string) (document.Document, error) {
	return document.Document{}, errors.New("not implemented")
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error   { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, r string) error { return nil }

func setupServiceTest(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func storedLedger() Ledger {
	led := Ledger{
		EmployeeID: uuid.New(),
		CompanyID:  uuid.New(),
		Version:    3,
		Periods: []Period{testPeriod(
			time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), nil, "5000",
		)},
	}
	led.refreshBaseline()
	return led
}

func TestService_GetLedger(t *testing.T) {
	db, _ := setupServiceTest(t)
	led := storedLedger()

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, companyID, employeeID string) (Ledger, error) {
				return led, nil
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		resp, err := svc.GetLedger(context.Background(), led.CompanyID.String(), led.EmployeeID.String())
		assert.NoError(t, err)
		assert.Equal(t, led.EmployeeID.String(), resp.EmployeeID)
		assert.Equal(t, int64(3), resp.Version)
		assert.Len(t, resp.Periods, 1)
		assert.NotNil(t, resp.ActivePeriod)
	})

	t.Run("Unknown employee", func(t *testing.T) {
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, companyID, employeeID string) (Ledger, error) {
				return Ledger{}, gorm.ErrRecordNotFound
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		_, err := svc.GetLedger(context.Background(), uuid.NewString(), uuid.NewString())
		assert.ErrorIs(t, err, compensationerrors.ErrEmployeeNotFound)
	})
}

func TestService_AddPeriod(t *testing.T) {
	t.Run("Commits and bumps the version", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		led := storedLedger()
		var replaced Ledger
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, companyID, employeeID string) (Ledger, error) {
				return led, nil
			},
			replaceFn: func(ctx context.Context, out Ledger) error {
				replaced = out
				return nil
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		resp, err := svc.AddPeriod(context.Background(), led.CompanyID.String(), led.EmployeeID.String(), PeriodRequest{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
		})
		assert.NoError(t, err)
		assert.Len(t, replaced.Periods, 2)
		assert.Equal(t, int64(4), resp.Version)
		assert.Equal(t, "6000", resp.Baseline.Basic)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Validation failure rolls back", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		led := storedLedger()
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, companyID, employeeID string) (Ledger, error) {
				return led, nil
			},
			replaceFn: func(ctx context.Context, out Ledger) error {
				t.Fatal("replace must not be called on validation failure")
				return nil
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		_, err := svc.AddPeriod(context.Background(), led.CompanyID.String(), led.EmployeeID.String(), PeriodRequest{
			EffectiveFrom: "2022-01-01",
			Basic:         "6000",
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
		assert.Contains(t, appErr.Fields["effective_from"], "must be later than the current period")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate month surfaces with its own code", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		led := storedLedger()
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, companyID, employeeID string) (Ledger, error) {
				return led, nil
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		_, err := svc.AddPeriod(context.Background(), led.CompanyID.String(), led.EmployeeID.String(), PeriodRequest{
			EffectiveFrom: "2023-03-15",
			Basic:         "6000",
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeDuplicatePeriod, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Upload failure aborts before the transaction", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		// No Begin expected: the upload happens first.

		repo := &fakeRepo{}
		docs := &fakeDocStore{
			uploadFn: func(ctx context.Context, companyID string, data []byte, name, mime string) (document.StoredDocument, error) {
				return document.StoredDocument{}, errors.New("bucket unavailable")
			},
		}
		svc := NewService(db, repo, docs)

		_, err := svc.AddPeriod(context.Background(), uuid.NewString(), uuid.NewString(), PeriodRequest{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
			Letter: &LetterUpload{
				FileName: "letter.pdf",
				MimeType: "application/pdf",
				Data:     base64.StdEncoding.EncodeToString([]byte("%PDF-1.4")),
			},
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeUploadFailed, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Garbled letter encoding is a validation error", func(t *testing.T) {
		db, _ := setupServiceTest(t)
		svc := NewService(db, &fakeRepo{}, &fakeDocStore{})

		_, err := svc.AddPeriod(context.Background(), uuid.NewString(), uuid.NewString(), PeriodRequest{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
			Letter: &LetterUpload{
				FileName: "letter.pdf",
				MimeType: "application/pdf",
				Data:     "not base64!!",
			},
		})

		var appErr *apperror.AppError
		assert.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	})

	t.Run("Version conflict maps to ledger conflict", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		led := storedLedger()
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, companyID, employeeID string) (Ledger, error) {
				return led, nil
			},
			replaceFn: func(ctx context.Context, out Ledger) error {
				return ErrVersionConflict
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		_, err := svc.AddPeriod(context.Background(), led.CompanyID.String(), led.EmployeeID.String(), PeriodRequest{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
		})
		assert.ErrorIs(t, err, compensationerrors.ErrLedgerConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_AddInitial(t *testing.T) {
	t.Run("Seeds from the employee baseline", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		employeeID := uuid.New()
		companyID := uuid.New()
		baselineViaTx := false
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, cid, eid string) (Ledger, error) {
				return Ledger{EmployeeID: employeeID, CompanyID: companyID, Version: 0}, nil
			},
			loadBaselineFn: func(ctx context.Context, cid, eid string) (EmployeeBaseline, error) {
				return EmployeeBaseline{
					JoinDate: time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC),
					Basic:    decimal.NewFromInt(5000),
				}, nil
			},
			replaceFn:     func(ctx context.Context, out Ledger) error { return nil },
			baselineViaTx: &baselineViaTx,
		}
		svc := NewService(db, repo, &fakeDocStore{})

		resp, err := svc.AddInitial(context.Background(), companyID.String(), employeeID.String())
		assert.NoError(t, err)
		assert.Len(t, resp.Periods, 1)
		assert.True(t, resp.Periods[0].IsInitial)
		assert.Equal(t, "2023-03-01", resp.Periods[0].EffectiveFrom)
		// The baseline read shares the mutation's transaction.
		assert.True(t, baselineViaTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already seeded", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		led := storedLedger()
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, cid, eid string) (Ledger, error) {
				return led, nil
			},
			loadBaselineFn: func(ctx context.Context, cid, eid string) (EmployeeBaseline, error) {
				return EmployeeBaseline{Basic: decimal.NewFromInt(5000)}, nil
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		_, err := svc.AddInitial(context.Background(), led.CompanyID.String(), led.EmployeeID.String())
		assert.ErrorIs(t, err, compensationerrors.ErrLedgerNotEmpty)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_Outbox(t *testing.T) {
	t.Run("Stages one event per mutation", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		led := storedLedger()
		outbox := &fakeOutbox{}
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, cid, eid string) (Ledger, error) {
				return led, nil
			},
			replaceFn: func(ctx context.Context, out Ledger) error { return nil },
		}
		svc := NewServiceWithOutbox(db, repo, &fakeDocStore{}, outbox)

		_, err := svc.AddPeriod(context.Background(), led.CompanyID.String(), led.EmployeeID.String(), PeriodRequest{
			EffectiveFrom: "2024-01-01",
			Basic:         "6000",
		})
		assert.NoError(t, err)
		assert.Len(t, outbox.created, 1)
		assert.Equal(t, "compensation_ledger", outbox.created[0].AggregateType)
		assert.Equal(t, led.EmployeeID.String(), outbox.created[0].AggregateID)
		assert.Equal(t, kafka.OutboxStatusPending, outbox.created[0].Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_DeletePeriod(t *testing.T) {
	t.Run("Removes the period", func(t *testing.T) {
		db, mock := setupServiceTest(t)
		mock.ExpectBegin()
		mock.ExpectCommit()

		led := storedLedger()
		target := led.Periods[0].ID
		var replaced Ledger
		repo := &fakeRepo{
			loadLedgerFn: func(ctx context.Context, cid, eid string) (Ledger, error) {
				return led, nil
			},
			replaceFn: func(ctx context.Context, out Ledger) error {
				replaced = out
				return nil
			},
		}
		svc := NewService(db, repo, &fakeDocStore{})

		resp, err := svc.DeletePeriod(context.Background(), led.CompanyID.String(), led.EmployeeID.String(), target.String())
		assert.NoError(t, err)
		assert.Empty(t, replaced.Periods)
		assert.Empty(t, resp.Periods)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Malformed period id", func(t *testing.T) {
		db, _ := setupServiceTest(t)
		svc := NewService(db, &fakeRepo{}, &fakeDocStore{})

		_, err := svc.DeletePeriod(context.Background(), uuid.NewString(), uuid.NewString(), "not-a-uuid")
		assert.ErrorIs(t, err, compensationerrors.ErrPeriodNotFound)
	})
}
