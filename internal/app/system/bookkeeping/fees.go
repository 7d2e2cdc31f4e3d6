package bookkeeping

import (
	"context"
	"errors"
	"fmt"

	archivestore "github.com/dalemusser/tutorhub/internal/app/store/archive"
	groupstore "github.com/dalemusser/tutorhub/internal/app/store/groups"
	"github.com/dalemusser/tutorhub/internal/domain/ledger"
	"github.com/dalemusser/tutorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// FeeQuote is a resolved session fee and where it came from.
type FeeQuote struct {
	GroupID primitive.ObjectID `json:"groupId"`
	Date    string             `json:"date"`
	Fee     float64            `json:"fee"`
	Source  ledger.FeeSource   `json:"source"`
}

// groupRefs is what is known about one group id: its live document and/or
// its archive entry. Both nil means unknown.
type groupRefs struct {
	live     *models.Group
	archived *models.ArchivedGroup
}

func (s *Service) lookupGroup(ctx context.Context, id primitive.ObjectID) (groupRefs, error) {
	g, err := s.Groups.GetByID(ctx, id)
	switch {
	case err == nil:
		return groupRefs{live: &g}, nil
	case !errors.Is(err, groupstore.ErrNotFound):
		return groupRefs{}, fmt.Errorf("load group: %w", err)
	}

	a, err := s.Archive.Get(ctx, id)
	switch {
	case err == nil:
		return groupRefs{archived: &a}, nil
	case errors.Is(err, archivestore.ErrNotFound):
		return groupRefs{}, nil
	default:
		return groupRefs{}, fmt.Errorf("load archived group: %w", err)
	}
}

func (s *Service) quote(id primitive.ObjectID, refs groupRefs, date string) FeeQuote {
	fee, src := ledger.FeeForDate(refs.live, refs.archived, date)
	if src == ledger.FeeUnknown {
		s.log.Warn("fee lookup for unknown group; using 0",
			zap.String("group_id", id.Hex()),
			zap.String("date", date))
		if s.opts.Metrics != nil {
			s.opts.Metrics.UnknownFees.Inc()
		}
	}
	return FeeQuote{GroupID: id, Date: date, Fee: fee, Source: src}
}

// FeeForDate resolves the fee of a session of groupID on date: the live
// group's fee, else the archived interval covering date, else the archived
// fee, else 0.
func (s *Service) FeeForDate(ctx context.Context, groupID primitive.ObjectID, date string) (FeeQuote, error) {
	refs, err := s.lookupGroup(ctx, groupID)
	if err != nil {
		return FeeQuote{}, err
	}
	return s.quote(groupID, refs, date), nil
}

// feeCache resolves fees for many records while loading each group once.
type feeCache struct {
	s    *Service
	ctx  context.Context
	refs map[primitive.ObjectID]groupRefs
	err  error
}

func (s *Service) newFeeCache(ctx context.Context) *feeCache {
	return &feeCache{s: s, ctx: ctx, refs: map[primitive.ObjectID]groupRefs{}}
}

// fee has the ledger.FeeFunc shape. After the first lookup error it
// returns 0 and the error is kept in c.err.
func (c *feeCache) fee(groupHex, date string) float64 {
	if c.err != nil {
		return 0
	}
	id, err := primitive.ObjectIDFromHex(groupHex)
	if err != nil {
		c.err = err
		return 0
	}
	refs, ok := c.refs[id]
	if !ok {
		refs, err = c.s.lookupGroup(c.ctx, id)
		if err != nil {
			c.err = err
			return 0
		}
		c.refs[id] = refs
	}
	return c.s.quote(id, refs, date).Fee
}
