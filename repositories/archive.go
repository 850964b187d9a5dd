//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=../mocks/mock_archive_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
)

type IArchiveRepository interface {
	Store(message domain.Message) error
	Replay() ([]domain.Message, error)
}

// ArchiveRepository keeps a durable trace of the live store in BadgerDB.
// The live store stays authoritative, the archive is write behind and is
// never consulted to answer client reads.
type ArchiveRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewArchiveRepository(db *badger.DB, log *slog.Logger) ArchiveRepository {
	return ArchiveRepository{db: db, log: log}
}

type archivedMessage struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	At       int64  `json:"at"`
}

// Store persists a message under a 19-digit zero padded key so that a
// forward prefix scan yields the archive in ID order (lexicographical order).
func (a ArchiveRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("msg:%019d", message.ID)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return err
	}
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Replay reads the whole archive back in ID order.
func (a ArchiveRepository) Replay() ([]domain.Message, error) {
	var byteMessages [][]byte
	err := a.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var archived archivedMessage
		if err = json.Unmarshal(b, &archived); err != nil {
			return nil, err
		}
		messages = append(messages, toMessage(archived))
	}
	a.log.Debug(fmt.Sprintf("Replayed %d archived messages", len(messages)))
	return messages, nil
}

func fromMessage(message domain.Message) archivedMessage {
	return archivedMessage{
		ID:       message.ID,
		Username: message.Username,
		Text:     message.Text,
		At:       message.At.UnixNano(),
	}
}

func toMessage(archived archivedMessage) domain.Message {
	return domain.Message{
		ID:       archived.ID,
		Username: archived.Username,
		Text:     archived.Text,
		At:       time.Unix(0, archived.At).UTC(),
	}
}
