package bookkeeping

import (
	"context"
	"errors"
	"fmt"

	archivestore "github.com/dalemusser/tutorhub/internal/app/store/archive"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/app/system/metrics"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (s *Service) existingArchive(ctx context.Context, id primitive.ObjectID) (*models.ArchivedGroup, error) {
	a, err := s.Archive.Get(ctx, id)
	switch {
	case err == nil:
		return &a, nil
	case errors.Is(err, archivestore.ErrNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("load archive: %w", err)
	}
}

// ArchiveAndDeleteGroup closes the group's current fee into its archive
// entry and then deletes it. The archive is written first; if that fails
// the group is left in place.
func (s *Service) ArchiveAndDeleteGroup(ctx context.Context, id primitive.ObjectID) (models.ArchivedGroup, error) {
	g, err := s.Groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			return models.ArchivedGroup{}, ErrGroupNotFound
		}
		return models.ArchivedGroup{}, fmt.Errorf("load group: %w", err)
	}
	existing, err := s.existingArchive(ctx, id)
	if err != nil {
		return models.ArchivedGroup{}, err
	}

	rec := ledger.Archive(g, existing, s.opts.Now())
	r := s.begin(OpArchive, zap.String("group_id", id.Hex()))
	if err := r.step("archive_put", func() error { return s.Archive.Put(ctx, rec) }); err != nil {
		return models.ArchivedGroup{}, err
	}
	if err := r.step("group_delete", func() error {
		n, err := s.Groups.Delete(ctx, id)
		if err == nil && n == 0 {
			return ErrGroupNotFound
		}
		return err
	}); err != nil {
		return rec, err
	}

	s.count(OpArchive, metrics.OutcomeApplied)
	r.log.Info("group archived",
		zap.Float64("fee", g.FeePerSession),
		zap.Int("intervals", len(rec.FeeHistory)))
	return rec, nil
}

// UpdateGroup saves an edited group. When the fee changes, the old fee is
// recorded as a closed interval first so sessions before the edit keep
// their price once the group is deleted.
func (s *Service) UpdateGroup(ctx context.Context, g models.Group) (feeChanged bool, err error) {
	before, err := s.Groups.GetByID(ctx, g.ID)
	if err != nil {
		if errors.Is(err, groupstore.ErrNotFound) {
			return false, ErrGroupNotFound
		}
		return false, fmt.Errorf("load group: %w", err)
	}
	feeChanged = !ledger.Money(before.FeePerSession).Equal(ledger.Money(g.FeePerSession))
	if !feeChanged {
		if err := s.Groups.Update(ctx, g); err != nil {
			if errors.Is(err, groupstore.ErrNotFound) {
				return false, ErrGroupNotFound
			}
			return false, err
		}
		return false, nil
	}

	existing, err := s.existingArchive(ctx, g.ID)
	if err != nil {
		return false, err
	}
	rec := ledger.RecordFeeChange(before, existing, s.opts.Now())

	r := s.begin(OpFeeChange,
		zap.String("group_id", g.ID.Hex()),
		zap.Float64("old_fee", before.FeePerSession),
		zap.Float64("new_fee", g.FeePerSession))
	if err := r.step("archive_put", func() error { return s.Archive.Put(ctx, rec) }); err != nil {
		return true, err
	}
	if err := r.step("group_update", func() error { return s.Groups.Update(ctx, g) }); err != nil {
		return true, err
	}
	s.count(OpFeeChange, metrics.OutcomeApplied)
	r.log.Info("group fee changed", zap.Int("intervals", len(rec.FeeHistory)))
	return true, nil
}

// ArchivedGroups lists archive entries of deleted groups, most recent first.
func (s *Service) ArchivedGroups(ctx context.Context) ([]models.ArchivedGroup, error) {
	all, err := s.Archive.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ArchivedGroup, 0, len(all))
	for _, a := range all {
		if a.DeletedAt != nil {
			out = append(out, a)
		}
	}
	return out, nil
}

// RestoreGroup recreates a deleted group under its original id. The fee
// history is kept and the entry is marked live again.
func (s *Service) RestoreGroup(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	a, err := s.Archive.Get(ctx, id)
	if err != nil {
		if errors.Is(err, archivestore.ErrNotFound) {
			return models.Group{}, ErrArchiveNotFound
		}
		return models.Group{}, fmt.Errorf("load archive: %w", err)
	}
	if a.DeletedAt == nil {
		return models.Group{}, ErrGroupLive
	}

	r := s.begin(OpRestore, zap.String("group_id", id.Hex()))
	var g models.Group
	if err := r.step("group_create", func() error {
		created, err := s.Groups.Create(ctx, a.Snapshot())
		if errors.Is(err, groupstore.ErrDuplicateID) {
			return ErrGroupLive
		}
		g = created
		return err
	}); err != nil {
		return models.Group{}, err
	}

	a.DeletedAt = nil
	if err := r.step("archive_put", func() error { return s.Archive.Put(ctx, a) }); err != nil {
		return g, err
	}
	s.count(OpRestore, metrics.OutcomeApplied)
	r.log.Info("group restored", zap.Int("intervals", len(a.FeeHistory)))
	return g, nil
}
