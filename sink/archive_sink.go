package sink

import (
	"context"
	"fmt"
	"log/slog"

	"chat-relay/domain/event"
	"chat-relay/repositories"
)

// ArchiveSink writes accepted messages through to BadgerDB. Write only:
// nothing in the serving path ever reads the archive back.
type ArchiveSink struct {
	repository repositories.IArchiveRepository
	log        *slog.Logger
}

func NewArchiveSink(repository repositories.IArchiveRepository, log *slog.Logger) ArchiveSink {
	return ArchiveSink{repository: repository, log: log}
}

func (a ArchiveSink) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageAppended:
		return a.repository.Store(evt.Message)
	default:
		a.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}
