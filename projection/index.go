// Package projection builds read side views from observed events.
// Views consume domain events and never write back to the live store.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISearcher interface {
	Search(ctx context.Context, terms string, limit int) ([]domain.Message, error)
}

// SearchIndex keeps a full text view of the history in Bluge.
// It consumes MessageAppended events off the fanout, so indexing is near
// real time: a freshly accepted message can take a moment to show up in
// search results.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(writer *bluge.Writer, log *slog.Logger) *SearchIndex {
	return &SearchIndex{writer: writer, log: log}
}

func (s *SearchIndex) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MessageAppended:
		return s.Index(evt.Message)
	}
	return nil
}

// Index upserts a message document keyed by its ID.
func (s *SearchIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(strconv.Itoa(message.ID)).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewKeywordField("username", message.Username).StoreValue()).
		AddField(bluge.NewKeywordField("at", strconv.FormatInt(message.At.UnixNano(), 10)).StoreValue())
	return s.writer.Update(doc.ID(), doc)
}

// Search matches terms against message bodies and returns up to limit
// messages. Bluge ranks by relevance, the console wants chronology, so
// results are re-sorted by ID before returning.
func (s *SearchIndex) Search(ctx context.Context, terms string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	query := bluge.NewMatchQuery(terms).SetField("text")
	request := bluge.NewTopNSearch(limit, query)
	iter, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var messages []domain.Message
	match, err := iter.Next()
	for err == nil && match != nil {
		var message domain.Message
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				message.ID, _ = strconv.Atoi(string(value))
			case "text":
				message.Text = string(value)
			case "username":
				message.Username = string(value)
			case "at":
				if nanos, parseErr := strconv.ParseInt(string(value), 10, 64); parseErr == nil {
					message.At = time.Unix(0, nanos).UTC()
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
		match, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(messages, func(i, j int) bool { return messages[i].ID < messages[j].ID })
	s.log.Debug(fmt.Sprintf("Search %q matched %d messages", terms, len(messages)))
	return messages, nil
}
