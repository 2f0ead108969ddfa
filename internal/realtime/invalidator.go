package realtime

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reloader refreshes local playback state.
type Reloader interface {
	Reload()
}

// Publisher announces video list changes to other instances.
type Publisher interface {
	PublishVideosUpdated(origin string) error
}

// Subscriber receives change announcements.
type Subscriber interface {
	SubscribeVideosUpdated(handler func(origin string)) (cancel func(), err error)
}

// Invalidator reloads the local engine on upload and tells other instances to do the same.
// With a nil publisher it only reloads locally.
type Invalidator struct {
	id       string
	reloader Reloader
	pub      Publisher
	sub      Subscriber
	logger   *zap.Logger

	mu     sync.Mutex
	cancel func()
}

// NewInvalidator creates an invalidator with a random instance id.
func NewInvalidator(reloader Reloader, pub Publisher, sub Subscriber, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{id: uuid.NewString(), reloader: reloader, pub: pub, sub: sub, logger: logger}
}

// VideosChanged reloads locally and publishes the change.
func (i *Invalidator) VideosChanged() {
	i.reloader.Reload()
	if i.pub == nil {
		return
	}
	if err := i.pub.PublishVideosUpdated(i.id); err != nil {
		i.logger.Warn("publish videos_updated failed", zap.Error(err))
	}
}

// Listen subscribes to announcements from other instances. Own messages are ignored.
func (i *Invalidator) Listen() error {
	if i.sub == nil {
		return nil
	}
	cancel, err := i.sub.SubscribeVideosUpdated(func(origin string) {
		if origin == i.id {
			return
		}
		i.logger.Debug("videos updated on another instance", zap.String("origin", origin))
		i.reloader.Reload()
	})
	if err != nil {
		return err
	}
	i.mu.Lock()
	i.cancel = cancel
	i.mu.Unlock()
	return nil
}

// Close stops listening.
func (i *Invalidator) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
}
