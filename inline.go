package telemock

import (
	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/lang"
)

// Inline mode simulation. The bot under test receives inline queries like
// any other update; the results it answers with are kept in a bounded
// cache so a test can assert on what the bot would have shown the user.

// InlineQueryOptions customizes an injected inline query. The zero value
// means the configured test user with no pagination offset.
type InlineQueryOptions struct {
	From   User
	Offset string
}

// SendInlineQuery injects an inline query, as if a user typed
// "@mock_bot <query>" in some chat. The query id is random, the way real
// Telegram ids are opaque.
func (s *Server) SendInlineQuery(query string, opts ...InlineQueryOptions) Update {
	opt := lang.First(opts)
	if opt.From.ID == 0 {
		opt.From = s.cfg.testUser()
	}

	iq := &InlineQuery{
		ID:       abstract.GetRandomString(16),
		From:     &opt.From,
		Query:    query,
		Offset:   opt.Offset,
		ChatType: "sender",
	}

	upd := Update{UpdateID: s.seq.nextUpdateID(), InlineQuery: iq}
	s.enqueue(upd)
	return upd
}

// SendChosenInlineResult injects the follow-up update a bot gets when a
// user picks one of its inline answers.
func (s *Server) SendChosenInlineResult(resultID, query string, from ...User) Update {
	user := lang.First(from)
	if user.ID == 0 {
		user = s.cfg.testUser()
	}

	chosen := &ChosenInlineResult{
		ResultID:        resultID,
		From:            &user,
		Query:           query,
		InlineMessageID: "inline_" + abstract.GetRandomString(10),
	}

	upd := Update{UpdateID: s.seq.nextUpdateID(), ChosenInlineResult: chosen}
	s.enqueue(upd)
	return upd
}

// CacheInlineResults records the results a bot answered an inline query
// with. Old entries are evicted once the cache is full.
func (s *Server) CacheInlineResults(queryID string, results []any) {
	s.inlineCache.Set(queryID, results)
}

// CachedInlineResults returns the results the bot answered the given
// inline query with, if they are still cached.
func (s *Server) CachedInlineResults(queryID string) ([]any, bool) {
	return s.inlineCache.Get(queryID)
}

// ClearInlineCache drops every cached inline answer.
func (s *Server) ClearInlineCache() {
	s.inlineCache.Clear()
}
