package compensation

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	compensationerrors "go-payledger/internal/compensation/errors"
	"go-payledger/internal/document"
	"go-payledger/internal/events"
	"go-payledger/internal/messaging/kafka"
	"go-payledger/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetLedger(ctx context.Context, companyID, employeeID string) (LedgerResponse, error)
	AddInitial(ctx context.Context, companyID, employeeID string) (LedgerResponse, error)
	AddPeriod(ctx context.Context, companyID, employeeID string, req PeriodRequest) (LedgerResponse, error)
	IncrementPeriod(ctx context.Context, companyID, employeeID string, req PeriodRequest) (LedgerResponse, error)
	EditPeriod(ctx context.Context, companyID, employeeID, periodID string, req PeriodRequest) (LedgerResponse, error)
	DeletePeriod(ctx context.Context, companyID, employeeID, periodID string) (LedgerResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	docs    document.Store
	outbox  kafka.OutboxRepository
	mutator Mutator
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, docs document.Store, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, docs, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	docs document.Store,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("compensation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("compensation.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		docs:   docs,
		outbox: outboxRepo,
		logger: l,
	}
}

func (s *service) GetLedger(
	ctx context.Context,
	companyID, employeeID string,
) (LedgerResponse, error) {
	led, err := s.repo.LoadLedger(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LedgerResponse{}, compensationerrors.ErrEmployeeNotFound
		}
		return LedgerResponse{}, err
	}
	return mapLedgerResponse(led), nil
}

func (s *service) AddInitial(
	ctx context.Context,
	companyID, employeeID string,
) (LedgerResponse, error) {
	return s.mutate(ctx, companyID, employeeID, events.CompensationInitialSeeded,
		func(qtx Repository, led Ledger) (Ledger, string, error) {
			baseline, err := qtx.LoadEmployeeBaseline(ctx, companyID, employeeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return led, "", compensationerrors.ErrEmployeeNotFound
				}
				return led, "", err
			}

			out, err := s.mutator.AddInitial(led, baseline)
			if err != nil {
				return led, "", err
			}
			return out, out.Periods[0].ID.String(), nil
		})
}

func (s *service) AddPeriod(
	ctx context.Context,
	companyID, employeeID string,
	req PeriodRequest,
) (LedgerResponse, error) {
	attachment, err := s.uploadLetter(ctx, companyID, req.Letter)
	if err != nil {
		return LedgerResponse{}, mapDomainError(err)
	}

	return s.mutate(ctx, companyID, employeeID, events.CompensationPeriodAdded,
		func(qtx Repository, led Ledger) (Ledger, string, error) {
			out, err := s.mutator.AddNew(led, candidateFromRequest(req, attachment))
			if err != nil {
				return led, "", err
			}
			return out, out.Periods[0].ID.String(), nil
		})
}

func (s *service) IncrementPeriod(
	ctx context.Context,
	companyID, employeeID string,
	req PeriodRequest,
) (LedgerResponse, error) {
	// An increment always carries its own letter; the validator rejects a
	// missing one, so only attempt the upload when the caller sent a file.
	attachment, err := s.uploadLetter(ctx, companyID, req.Letter)
	if err != nil {
		return LedgerResponse{}, mapDomainError(err)
	}

	targetID := uuid.Nil
	if req.TargetPeriodID != "" {
		targetID, err = uuid.Parse(req.TargetPeriodID)
		if err != nil {
			return LedgerResponse{}, compensationerrors.ErrPeriodNotFound
		}
	}

	return s.mutate(ctx, companyID, employeeID, events.CompensationIncremented,
		func(qtx Repository, led Ledger) (Ledger, string, error) {
			out, err := s.mutator.Increment(led, candidateFromRequest(req, attachment), targetID)
			if err != nil {
				return led, "", err
			}
			return out, out.Periods[0].ID.String(), nil
		})
}

func (s *service) EditPeriod(
	ctx context.Context,
	companyID, employeeID, periodID string,
	req PeriodRequest,
) (LedgerResponse, error) {
	targetID, err := uuid.Parse(periodID)
	if err != nil {
		return LedgerResponse{}, compensationerrors.ErrPeriodNotFound
	}

	attachment, err := s.uploadLetter(ctx, companyID, req.Letter)
	if err != nil {
		return LedgerResponse{}, mapDomainError(err)
	}

	return s.mutate(ctx, companyID, employeeID, events.CompensationPeriodEdited,
		func(qtx Repository, led Ledger) (Ledger, string, error) {
			out, err := s.mutator.Edit(led, targetID, candidateFromRequest(req, attachment))
			if err != nil {
				return led, "", err
			}
			return out, targetID.String(), nil
		})
}

func (s *service) DeletePeriod(
	ctx context.Context,
	companyID, employeeID, periodID string,
) (LedgerResponse, error) {
	targetID, err := uuid.Parse(periodID)
	if err != nil {
		return LedgerResponse{}, compensationerrors.ErrPeriodNotFound
	}

	return s.mutate(ctx, companyID, employeeID, events.CompensationPeriodDeleted,
		func(qtx Repository, led Ledger) (Ledger, string, error) {
			out, err := s.mutator.Delete(led, targetID)
			if err != nil {
				return led, "", err
			}
			return out, targetID.String(), nil
		})
}

// mutate runs one ledger write end to end: load inside a transaction, apply
// the mutation to the in-memory value, replace the persisted array
// atomically and stage the outbox event. Validation failures abort before
// any state is touched; failures after the local mutation surface as
// persistence errors so the caller can retry or reload.
func (s *service) mutate(
	ctx context.Context,
	companyID, employeeID, action string,
	apply func(qtx Repository, led Ledger) (Ledger, string, error),
) (LedgerResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LedgerResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	led, err := qtx.LoadLedger(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LedgerResponse{}, compensationerrors.ErrEmployeeNotFound
		}
		return LedgerResponse{}, err
	}

	newLed, periodID, err := apply(qtx, led)
	if err != nil {
		s.logger.Warn("ledger mutation rejected",
			zap.String("request_id", rid),
			zap.String("employee_id", employeeID),
			zap.String("action", action),
			zap.Error(err),
		)
		return LedgerResponse{}, mapDomainError(err)
	}

	if err := qtx.ReplaceLedger(ctx, newLed); err != nil {
		return LedgerResponse{}, mapDomainError(&PersistenceError{Err: mapRepositoryError(err)})
	}

	if s.outbox != nil {
		if err := s.stageEvent(ctx, tx, rid, action, newLed, periodID); err != nil {
			return LedgerResponse{}, mapDomainError(&PersistenceError{Err: err})
		}
	}

	if err := tx.Commit(); err != nil {
		return LedgerResponse{}, mapDomainError(&PersistenceError{Err: err})
	}

	// The committed array replaced the old one wholesale, so the stored
	// version is now ours plus one.
	newLed.Version = led.Version + 1

	s.logger.Info("ledger mutated",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("action", action),
		zap.String("period_id", periodID),
		zap.Int("periods", len(newLed.Periods)),
	)
	return mapLedgerResponse(newLed), nil
}

func (s *service) stageEvent(
	ctx context.Context,
	tx *sql.Tx,
	rid, action string,
	led Ledger,
	periodID string,
) error {
	event := events.CompensationChangedEvent{
		EventType:  "compensation.changed",
		Action:     action,
		EmployeeID: led.EmployeeID.String(),
		CompanyID:  led.CompanyID.String(),
		PeriodID:   periodID,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     rid,
		AggregateType: "compensation_ledger",
		AggregateID:   led.EmployeeID.String(),
		EventType:     event.EventType,
		Topic:         events.CompensationChangedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// uploadLetter pushes the letter to the document store before any ledger
// state is read or written; a failure here aborts the whole operation and
// the caller can retry without re-entering other fields.
func (s *service) uploadLetter(ctx context.Context, companyID string, letter *LetterUpload) (Attachment, error) {
	if letter == nil {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(letter.Data)
	if err != nil {
		return nil, &ValidationError{Fields: FieldErrors{
			"letter_attachment": "file data must be base64 encoded",
		}}
	}

	stored, err := s.docs.Upload(ctx, companyID, data, letter.FileName, letter.MimeType)
	if err != nil {
		return nil, &UploadError{Err: err}
	}
	return URLAttachment{Name: stored.Name, URL: stored.URL}, nil
}

func candidateFromRequest(req PeriodRequest, attachment Attachment) Candidate {
	return Candidate{
		EffectiveFrom: req.EffectiveFrom,
		Label:         req.Label,
		Basic:         req.Basic,
		Housing:       req.HousingAllowance,
		Vehicle:       req.VehicleAllowance,
		Fuel:          req.FuelAllowance,
		Other:         req.OtherAllowance,
		Total:         req.TotalCompensation,
		Attachment:    attachment,
	}
}
