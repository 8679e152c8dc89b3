package telemock

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/maxbolgarin/lang"
)

// Simulated API methods. Each is a pure function of the request fields plus
// the shared id generator and history log: it validates nothing, degrades
// missing fields to defaults, allocates ids, and returns the canonical
// entity the real API would. Every outbound message-producing method
// appends to history; edits do not, since an edit is not a new observable
// send and reuses the existing message id.

const defaultUpdatesLimit = 100

// GetMe reports the fixed synthetic bot identity.
func (s *Server) GetMe() BotProfile {
	return BotProfile{
		User:          s.cfg.bot(),
		CanJoinGroups: true,
	}
}

// GetUpdates delivers queued updates to the bot. With timeout == 0 it
// drains up to limit updates that are ready right now; with timeout > 0 it
// long-polls for a single update, waiting at most 30 seconds. Non-positive
// limits fall back to 100. An empty result after the wait is a normal
// outcome, not an error.
func (s *Server) GetUpdates(offset int64, limit int, timeout time.Duration) []Update {
	if limit <= 0 {
		limit = defaultUpdatesLimit
	}

	var out []Update
	if timeout > 0 {
		started := time.Now()
		out = s.queue.waitOne(offset, timeout)
		s.metrics.observeLongPollWait(time.Since(started))
	} else {
		out = s.queue.drain(offset, limit)
	}

	s.metrics.addDelivered(len(out), s.queue.len())
	return out
}

// SendMessage simulates the bot sending a text message.
func (s *Server) SendMessage(chatID int64, text string, replyMarkup json.RawMessage) *Message {
	msg := s.newOutbound(chatID)
	msg.Text = text
	msg.ReplyMarkup = replyMarkup
	s.recordOutbound(msg)
	return msg
}

// SendPhoto simulates the bot sending a photo with a fixed mock file.
func (s *Server) SendPhoto(chatID int64, caption string) *Message {
	msg := s.newOutbound(chatID)
	msg.Photo = []PhotoSize{{FileID: "mock_photo_id", Width: 100, Height: 100}}
	msg.Caption = caption
	s.recordOutbound(msg)
	return msg
}

// SendVideo simulates the bot sending a video with a fixed mock file.
func (s *Server) SendVideo(chatID int64, caption string) *Message {
	msg := s.newOutbound(chatID)
	msg.Video = &Video{FileID: "mock_video_id", Width: 1920, Height: 1080, Duration: 10}
	msg.Caption = caption
	s.recordOutbound(msg)
	return msg
}

// SendAudio simulates the bot sending an audio track.
func (s *Server) SendAudio(chatID int64, caption string) *Message {
	msg := s.newOutbound(chatID)
	msg.Audio = &Audio{FileID: "mock_audio_id", Duration: 180, Title: "Mock Audio"}
	msg.Caption = caption
	s.recordOutbound(msg)
	return msg
}

// SendVoice simulates the bot sending a voice note.
func (s *Server) SendVoice(chatID int64) *Message {
	msg := s.newOutbound(chatID)
	msg.Voice = &Voice{FileID: "mock_voice_id", Duration: 5}
	s.recordOutbound(msg)
	return msg
}

// SendSticker simulates the bot sending a sticker.
func (s *Server) SendSticker(chatID int64) *Message {
	msg := s.newOutbound(chatID)
	msg.Sticker = &Sticker{FileID: "mock_sticker_id", Width: 512, Height: 512, Emoji: "😀"}
	s.recordOutbound(msg)
	return msg
}

// SendDocument simulates the bot sending a document.
func (s *Server) SendDocument(chatID int64, caption string) *Message {
	msg := s.newOutbound(chatID)
	msg.Document = &Document{FileID: "mock_doc_id", FileName: "document.txt"}
	msg.Caption = caption
	s.recordOutbound(msg)
	return msg
}

// SendLocation simulates the bot sending a location pin.
func (s *Server) SendLocation(chatID int64, latitude, longitude float64) *Message {
	msg := s.newOutbound(chatID)
	msg.Location = &Location{Latitude: latitude, Longitude: longitude}
	s.recordOutbound(msg)
	return msg
}

// SendPoll simulates the bot sending a regular anonymous poll. Every
// option starts with zero votes.
func (s *Server) SendPoll(chatID int64, question string, options []string) *Message {
	question = lang.Check(question, "Poll question?")
	if len(options) == 0 {
		options = []string{"Option 1", "Option 2"}
	}

	msg := s.newOutbound(chatID)

	opts := make([]PollOption, 0, len(options))
	for _, o := range options {
		opts = append(opts, PollOption{Text: o})
	}
	msg.Poll = &Poll{
		ID:          fmt.Sprintf("poll_%d", msg.MessageID),
		Question:    question,
		Options:     opts,
		IsAnonymous: true,
		Type:        "regular",
	}

	s.recordOutbound(msg)
	return msg
}

// EditMessageText reconstructs an edited message from the caller-supplied
// ids. Editing reuses the existing message id and is not recorded in
// history.
func (s *Server) EditMessageText(messageID, chatID int64, text string) *Message {
	bot := s.cfg.bot()
	return &Message{
		MessageID: lang.Check(messageID, int64(1)),
		From:      &bot,
		Chat:      &Chat{ID: chatID, Type: ChatPrivate},
		Date:      s.now(),
		Text:      text,
		EditDate:  s.now(),
	}
}

// EditMessageReplyMarkup acknowledges a markup edit with a canned message.
// Like EditMessageText it allocates no id and touches no history.
func (s *Server) EditMessageReplyMarkup(messageID, chatID int64) *Message {
	msg := s.EditMessageText(messageID, chatID, "Message with updated markup")
	return msg
}

// SetWebhook remembers the webhook URL and acks with a description the
// way the real API words it. The URL is never called: delivery in
// telemock happens only through getUpdates.
func (s *Server) SetWebhook(url string) string {
	s.webhookMu.Lock()
	s.webhookURL = url
	s.webhookMu.Unlock()

	if url == "" {
		return "Webhook was deleted"
	}
	return "Webhook was set to " + url
}

// DeleteWebhook clears the stored webhook URL.
func (s *Server) DeleteWebhook() string {
	s.webhookMu.Lock()
	s.webhookURL = ""
	s.webhookMu.Unlock()
	return "Webhook was deleted"
}

// GetWebhookInfo reports the stored webhook state.
func (s *Server) GetWebhookInfo() WebhookInfo {
	s.webhookMu.Lock()
	defer s.webhookMu.Unlock()
	return WebhookInfo{URL: s.webhookURL}
}

// GetChat reports the default private test chat.
func (s *Server) GetChat() Chat {
	user := s.cfg.testUser()
	return Chat{
		ID:        s.cfg.ChatID,
		Type:      ChatPrivate,
		FirstName: user.FirstName,
		Username:  user.Username,
	}
}

// GetChatMember reports any user id as an ordinary member.
func (s *Server) GetChatMember(userID int64) ChatMember {
	user := s.cfg.testUser()
	user.ID = lang.Check(userID, user.ID)
	return ChatMember{User: &user, Status: "member"}
}

// SendUserMessage injects a private message from a synthetic user, as if a
// real person wrote to the bot. The update lands on the queue and the
// message is recorded as inbound history.
func (s *Server) SendUserMessage(text string, from ...User) Update {
	user := lang.First(from)
	if user.ID == 0 {
		user = s.cfg.testUser()
	}

	msg := &Message{
		MessageID: s.seq.nextMessageID(),
		From:      &user,
		Chat: &Chat{
			ID:        s.cfg.ChatID,
			Type:      ChatPrivate,
			FirstName: user.FirstName,
			Username:  user.Username,
		},
		Date: s.now(),
		Text: text,
	}

	upd := Update{UpdateID: s.seq.nextUpdateID(), Message: msg}
	s.enqueue(upd)
	s.recordInbound(msg)
	return upd
}

// SendCallbackQuery injects a button press on a bot message. When no
// message id is given the most recently issued one is referenced.
func (s *Server) SendCallbackQuery(data string, messageID ...int64) Update {
	user := s.cfg.testUser()
	bot := s.cfg.bot()

	msgID := lang.First(messageID)
	if msgID == 0 {
		msgID = s.seq.lastMessageID()
	}

	cb := &CallbackQuery{
		ID:   strconv.FormatInt(s.seq.nextUpdateID(), 10),
		From: &user,
		Message: &Message{
			MessageID: msgID,
			From:      &bot,
			Chat:      &Chat{ID: s.cfg.ChatID, Type: ChatPrivate},
			Date:      s.now(),
			Text:      "Button message",
		},
		ChatInstance: strconv.FormatInt(bot.ID, 10),
		Data:         data,
	}

	upd := Update{UpdateID: s.seq.nextUpdateID(), CallbackQuery: cb}
	s.enqueue(upd)
	return upd
}

// History returns a snapshot of everything observed so far, in
// chronological call order.
func (s *Server) History() []HistoryEntry {
	return s.history.snapshot()
}

// ClearHistory empties the observation log. The id counters keep running:
// the next send still gets the next sequential message id.
func (s *Server) ClearHistory() {
	s.history.clear()
}

func (s *Server) newOutbound(chatID int64) *Message {
	bot := s.cfg.bot()
	return &Message{
		MessageID: s.seq.nextMessageID(),
		From:      &bot,
		Chat:      &Chat{ID: chatID, Type: ChatPrivate},
		Date:      s.now(),
	}
}

func (s *Server) enqueue(upd Update) {
	s.queue.put(upd)
	s.metrics.incEnqueued(s.queue.len())
}

func (s *Server) recordOutbound(msg *Message) {
	s.history.append(HistoryEntry{Direction: DirectionOutbound, Message: msg})
	s.metrics.incMessage(DirectionOutbound)
}

func (s *Server) recordInbound(msg *Message) {
	s.history.append(HistoryEntry{Direction: DirectionInbound, Message: msg})
	s.metrics.incMessage(DirectionInbound)
}
