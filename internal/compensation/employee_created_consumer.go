package compensation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	compensationerrors "go-payledger/internal/compensation/errors"
	"go-payledger/internal/events"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EmployeeCreatedConsumer seeds the initial compensation period as soon as an
// employee record lands, so every ledger starts with exactly one period.
type EmployeeCreatedConsumer struct {
	reader  *kafka.Reader
	service Service
	logger  *zap.Logger
}

func NewEmployeeCreatedConsumer(
	broker string,
	groupID string,
	service Service,
	logger ...*zap.Logger,
) *EmployeeCreatedConsumer {
	l := zap.L().Named("compensation.consumer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("compensation.consumer")
	}

	return &EmployeeCreatedConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{broker},
			Topic:          events.EmployeeCreatedTopic,
			GroupID:        groupID,
			CommitInterval: time.Second,
			StartOffset:    kafka.FirstOffset,
		}),
		service: service,
		logger:  l,
	}
}

func (c *EmployeeCreatedConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("consume employee_created failed", zap.Error(err))
				continue
			}

			var event events.EmployeeCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error("decode employee_created event failed", zap.Error(err))
				if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
					c.logger.Error("commit invalid employee_created event failed", zap.Error(commitErr))
				}
				continue
			}

			_, err = c.service.AddInitial(ctx, event.CompanyID, event.EmployeeID)
			if err != nil {
				if isBenignSeedFailure(err) {
					c.logger.Warn("initial compensation period not seeded, skipping",
						zap.String("employee_id", event.EmployeeID),
						zap.String("company_id", event.CompanyID),
						zap.Error(err),
					)
					if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
						c.logger.Error("commit skipped employee_created event failed", zap.Error(commitErr))
					}
					continue
				}

				c.logger.Error("seed initial compensation period failed",
					zap.String("employee_id", event.EmployeeID),
					zap.String("company_id", event.CompanyID),
					zap.Error(err),
				)
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("commit employee_created event failed", zap.Error(err))
				continue
			}

			c.logger.Info("initial compensation period seeded",
				zap.String("employee_id", event.EmployeeID),
				zap.String("company_id", event.CompanyID),
			)
		}
	}()
}

// A redelivered event finds the ledger already seeded; an employee created
// without any baseline amounts has nothing to seed from. Neither case should
// block the partition.
func isBenignSeedFailure(err error) bool {
	return errors.Is(err, compensationerrors.ErrLedgerNotEmpty) ||
		errors.Is(err, compensationerrors.ErrNoBaseline)
}
