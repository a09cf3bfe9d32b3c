package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/shoppinglist"
)

const (
	ShoppingListSubject      = "Ваш список покупок"
	shoppingListBody         = "Ваш список покупок во вложении."
	shoppingListEmptyBody    = "Ваш список покупок пуст."
	MsgShoppingListBuildFail = "Не удалось сформировать список покупок"
	MsgShoppingListSendFail  = "Не удалось отправить список покупок"
)

// Shopping list failures. Both wrap the underlying cause.
var (
	ErrShoppingListBuild = errors.New(MsgShoppingListBuildFail)
	ErrShoppingListSend  = errors.New(MsgShoppingListSendFail)
)

// ShoppingListService aggregates a user's cart, renders it and delivers it
type ShoppingListService struct {
	aggregator *shoppinglist.Aggregator
	exporter   *shoppinglist.Exporter
	mailer     Mailer
}

func NewShoppingListService(aggregator *shoppinglist.Aggregator, exporter *shoppinglist.Exporter, mailer Mailer) *ShoppingListService {
	return &ShoppingListService{
		aggregator: aggregator,
		exporter:   exporter,
		mailer:     mailer,
	}
}

// Build renders the user's shopping list for download
func (s *ShoppingListService) Build(ctx context.Context, userID uuid.UUID, format shoppinglist.Format) (*shoppinglist.Artifact, error) {
	_, artifact, err := s.build(ctx, userID, format)
	if err != nil {
		return nil, err
	}
	metrics.ShoppingListExports.WithLabelValues(string(artifact.Format), metrics.DeliveryDownload).Inc()
	return artifact, nil
}

// Email sends the user's shopping list to address. An empty list produces a
// message without attachment.
func (s *ShoppingListService) Email(ctx context.Context, userID uuid.UUID, to string, format shoppinglist.Format) error {
	items, artifact, err := s.build(ctx, userID, format)
	if err != nil {
		return err
	}

	msg := &Message{
		To:      to,
		Subject: ShoppingListSubject,
		Body:    shoppingListEmptyBody,
	}
	if len(items) > 0 {
		msg.Body = shoppingListBody
		msg.Attachments = []Attachment{{
			Filename:    artifact.Filename,
			ContentType: artifact.ContentType,
			Data:        artifact.Data,
		}}
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		metrics.ShoppingListFailures.WithLabelValues(metrics.StageSend).Inc()
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("failed to send shopping list")
		return fmt.Errorf("%w: %w", ErrShoppingListSend, err)
	}
	metrics.ShoppingListExports.WithLabelValues(string(artifact.Format), metrics.DeliveryEmail).Inc()
	return nil
}

func (s *ShoppingListService) build(ctx context.Context, userID uuid.UUID, format shoppinglist.Format) ([]shoppinglist.Item, *shoppinglist.Artifact, error) {
	items, err := s.aggregator.Aggregate(ctx, userID)
	if err != nil {
		metrics.ShoppingListFailures.WithLabelValues(metrics.StageAggregate).Inc()
		logging.Ctx(ctx).Error().Err(err).Str("user_id", userID.String()).Msg("failed to aggregate shopping list")
		return nil, nil, fmt.Errorf("%w: %w", ErrShoppingListBuild, err)
	}
	metrics.ShoppingListItems.Observe(float64(len(items)))

	artifact, err := s.exporter.Render(format, items)
	if err != nil {
		metrics.ShoppingListFailures.WithLabelValues(metrics.StageRender).Inc()
		logging.Ctx(ctx).Error().Err(err).Str("format", string(format)).Msg("failed to render shopping list")
		return nil, nil, fmt.Errorf("%w: %w", ErrShoppingListBuild, err)
	}
	return items, artifact, nil
}
