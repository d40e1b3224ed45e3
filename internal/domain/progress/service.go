package progress

import (
	"context"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service applies the optimistic-update pattern: local first, durable write
// best-effort.
type Service struct {
	local  *Store
	remote Persister

	// sf coalesces concurrent persists of the same owner/lesson pair; rapid
	// playback ticks would otherwise stack identical writes.
	sf singleflight.Group
}

// NewService creates a progress Service.
func NewService(local *Store, remote Persister) *Service {
	return &Service{local: local, remote: remote}
}

// Mark records progress for a lesson. The local store is updated immediately
// and stays updated even when the durable write fails; a persist error is
// returned so the caller can surface it, nothing more.
func (s *Service) Mark(ctx context.Context, owner, lessonID string, watchedSeconds int, completed bool) error {
	e := Entry{
		LessonID:       lessonID,
		WatchedSeconds: watchedSeconds,
		Completed:      completed,
		UpdatedAt:      time.Now().UTC(),
	}
	s.local.Put(owner, e)

	_, err, _ := s.sf.Do(owner+"/"+lessonID, func() (interface{}, error) {
		return nil, s.remote.Save(ctx, owner, e)
	})
	if err != nil {
		zctx.From(ctx).Warn("Progress persist failed, local state retained",
			zap.String("lesson_id", lessonID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Get returns the locally recorded progress for a lesson.
func (s *Service) Get(owner, lessonID string) (Entry, bool) {
	return s.local.Get(owner, lessonID)
}
