package session

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Tiered writes through a primary store and falls back to a secondary one
// when the primary fails, so sessions survive a Redis outage in memory.
type Tiered struct {
	Primary  Store
	Fallback Store
	Log      *zap.Logger
}

func NewTiered(primary, fallback Store, logger *zap.Logger) *Tiered {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiered{Primary: primary, Fallback: fallback, Log: logger}
}

func (t *Tiered) Save(ctx context.Context, s *Session) error {
	err := t.Primary.Save(ctx, s)
	if err == nil {
		return nil
	}
	t.Log.Warn("session primary store save failed, using fallback", zap.Error(err))
	return t.Fallback.Save(ctx, s)
}

func (t *Tiered) Load(ctx context.Context, id string) (*Session, error) {
	s, err := t.Primary.Load(ctx, id)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNoSession) {
		t.Log.Warn("session primary store load failed, using fallback", zap.Error(err))
	}
	return t.Fallback.Load(ctx, id)
}

// Delete removes id from both tiers. A primary failure is logged and does
// not stop the fallback delete.
func (t *Tiered) Delete(ctx context.Context, id string) error {
	if err := t.Primary.Delete(ctx, id); err != nil {
		t.Log.Warn("session primary store delete failed", zap.Error(err))
	}
	return t.Fallback.Delete(ctx, id)
}
