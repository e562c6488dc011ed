package messages

import (
	"context"

	"github.com/dmitrijs2005/fe/internal/models"
)

type Repository interface {
	Create(ctx context.Context, m *models.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	// ListForParticipant returns messages username sent or received, oldest
	// first. Content is left nil unless withContent is set.
	ListForParticipant(ctx context.Context, username string, withContent bool) ([]models.Message, error)
}
