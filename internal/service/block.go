package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
	"github.com/sakif/creator-lounge/internal/repository"
)

type BlockService struct {
	blocks repository.BlockRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewBlockService(blocks repository.BlockRepository, users repository.UserRepository, logger *slog.Logger) *BlockService {
	return &BlockService{blocks: blocks, users: users, logger: logger}
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) (*model.UserBlock, error) {
	if blockerID == blockedID {
		return nil, apperror.ValidationFailed("userId", "you cannot block yourself")
	}
	target, err := s.users.GetUserByID(ctx, blockedID)
	if err != nil {
		return nil, err
	}
	if target.IsDeleted() {
		return nil, apperror.NotFound("user", blockedID)
	}

	block, err := s.blocks.CreateBlock(ctx, blockerID, blockedID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user blocked", slog.String("blockerID", blockerID), slog.String("blockedID", blockedID))
	return block, nil
}

// Unblock removes a block; never having blocked is not found.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	return s.blocks.DeleteBlock(ctx, blockerID, blockedID)
}

func (s *BlockService) ListBlocked(ctx context.Context, blockerID string) ([]model.UserBlock, error) {
	blocks, err := s.blocks.ListBlocks(ctx, blockerID)
	if err != nil {
		return nil, fmt.Errorf("service/block: listing blocks: %w", err)
	}
	for i := range blocks {
		labelAuthor(blocks[i].Blocked)
	}
	return blocks, nil
}
