package telemock_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telemock/telemock"
)

func newServer(t *testing.T, opts ...telemock.Options) *telemock.Server {
	t.Helper()

	o := telemock.Options{Logger: telemock.NoopLogger{}}
	if len(opts) > 0 {
		o = opts[0]
		if o.Logger == nil {
			o.Logger = telemock.NoopLogger{}
		}
	}

	s, err := telemock.New(o)
	require.NoError(t, err)
	return s
}

func TestGetMe(t *testing.T) {
	s := newServer(t)

	me := s.BotUser()
	assert.Equal(t, int64(123456789), me.ID)
	assert.True(t, me.IsBot)
	assert.Equal(t, "MockBot", me.FirstName)
	assert.Equal(t, "mock_bot", me.Username)
}

func TestSendMessageAllocatesIDs(t *testing.T) {
	s := newServer(t)

	m1 := s.SendMessage(12345, "first", nil)
	m2 := s.SendMessage(12345, "second", nil)

	assert.Equal(t, int64(1), m1.MessageID)
	assert.Equal(t, int64(2), m2.MessageID)
	assert.Equal(t, "first", m1.Text)
	assert.Equal(t, s.BotUser(), *m1.From)
	assert.Equal(t, "private", m1.Chat.Type)
}

func TestHistoryOrderAndDirections(t *testing.T) {
	s := newServer(t)

	s.SendUserMessage("hi")
	s.SendMessage(12345, "hello", nil)

	history := s.History()
	require.Len(t, history, 2)

	assert.Equal(t, telemock.DirectionInbound, history[0].Direction)
	assert.Equal(t, "hi", history[0].Message.Text)
	assert.Equal(t, telemock.DirectionOutbound, history[1].Direction)
	assert.Equal(t, "hello", history[1].Message.Text)
}

func TestClearHistoryKeepsCounters(t *testing.T) {
	s := newServer(t)

	m1 := s.SendMessage(12345, "one", nil)
	require.Equal(t, int64(1), m1.MessageID)

	s.ClearHistory()
	assert.Empty(t, s.History())

	m2 := s.SendMessage(12345, "two", nil)
	assert.Equal(t, int64(2), m2.MessageID)
	assert.Len(t, s.History(), 1)
}

func TestGetUpdatesDrainAndAck(t *testing.T) {
	s := newServer(t)

	s.SendUserMessage("a")
	s.SendUserMessage("b")
	s.SendUserMessage("c")

	updates := s.GetUpdates(0, 100, 0)
	require.Len(t, updates, 3)
	for i, upd := range updates {
		assert.Equal(t, int64(i+1), upd.UpdateID)
	}

	// Acknowledging past the last id yields nothing new.
	assert.Empty(t, s.GetUpdates(updates[2].UpdateID+1, 100, 0))
	assert.Zero(t, s.PendingUpdates())
}

func TestGetUpdatesLongPoll(t *testing.T) {
	s := newServer(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.SendUserMessage("late")
	}()

	started := time.Now()
	updates := s.GetUpdates(0, 100, 5*time.Second)
	require.Len(t, updates, 1)
	assert.Equal(t, "late", updates[0].Message.Text)
	assert.Less(t, time.Since(started), time.Second)
}

func TestSendCallbackQueryDefaults(t *testing.T) {
	s := newServer(t)

	markup := json.RawMessage(`{"inline_keyboard":[[{"text":"Go","callback_data":"go"}]]}`)
	msg := s.SendMessage(12345, "pick one", markup)

	upd := s.SendCallbackQuery("go")
	require.NotNil(t, upd.CallbackQuery)

	cb := upd.CallbackQuery
	assert.Equal(t, "go", cb.Data)
	assert.Equal(t, msg.MessageID, cb.Message.MessageID)
	assert.Equal(t, s.TestUser(), *cb.From)
	assert.NotEmpty(t, cb.ID)

	delivered := s.GetUpdates(0, 100, 0)
	require.Len(t, delivered, 1)
	assert.Equal(t, upd.UpdateID, delivered[0].UpdateID)
}

func TestSendCallbackQueryExplicitMessage(t *testing.T) {
	s := newServer(t)

	upd := s.SendCallbackQuery("data", 42)
	assert.Equal(t, int64(42), upd.CallbackQuery.Message.MessageID)
}

func TestWebhookLifecycle(t *testing.T) {
	s := newServer(t)

	assert.Equal(t, "Webhook was set to https://example.com/hook", s.SetWebhook("https://example.com/hook"))
	assert.Equal(t, "https://example.com/hook", s.GetWebhookInfo().URL)

	assert.Equal(t, "Webhook was deleted", s.DeleteWebhook())

	info := s.GetWebhookInfo()
	assert.Empty(t, info.URL)
	assert.False(t, info.HasCustomCertificate)
	assert.Zero(t, info.PendingUpdateCount)
}

func TestSendPollDefaults(t *testing.T) {
	s := newServer(t)

	msg := s.SendPoll(12345, "", nil)
	require.NotNil(t, msg.Poll)

	assert.Equal(t, "Poll question?", msg.Poll.Question)
	require.Len(t, msg.Poll.Options, 2)
	assert.Equal(t, "Option 1", msg.Poll.Options[0].Text)
	assert.Zero(t, msg.Poll.Options[0].VoterCount)
	assert.True(t, msg.Poll.IsAnonymous)
	assert.Equal(t, "regular", msg.Poll.Type)
}

func TestMediaDescriptors(t *testing.T) {
	s := newServer(t)

	photo := s.SendPhoto(12345, "a caption")
	require.Len(t, photo.Photo, 1)
	assert.Equal(t, "mock_photo_id", photo.Photo[0].FileID)
	assert.Equal(t, 100, photo.Photo[0].Width)
	assert.Equal(t, "a caption", photo.Caption)

	video := s.SendVideo(12345, "")
	assert.Equal(t, "mock_video_id", video.Video.FileID)
	assert.Equal(t, 1920, video.Video.Width)
	assert.Equal(t, 10, video.Video.Duration)

	audio := s.SendAudio(12345, "")
	assert.Equal(t, "Mock Audio", audio.Audio.Title)
	assert.Equal(t, 180, audio.Audio.Duration)

	voice := s.SendVoice(12345)
	assert.Equal(t, "mock_voice_id", voice.Voice.FileID)

	sticker := s.SendSticker(12345)
	assert.Equal(t, 512, sticker.Sticker.Width)

	doc := s.SendDocument(12345, "")
	assert.Equal(t, "document.txt", doc.Document.FileName)

	loc := s.SendLocation(12345, 51.5, -0.12)
	assert.Equal(t, 51.5, loc.Location.Latitude)

	// Each of the sends above landed in history.
	assert.Len(t, s.History(), 7)
}

func TestEditMessageDoesNotTouchHistory(t *testing.T) {
	s := newServer(t)

	msg := s.SendMessage(12345, "original", nil)
	require.Len(t, s.History(), 1)

	edited := s.EditMessageText(msg.MessageID, 12345, "changed")
	assert.Equal(t, "changed", edited.Text)
	assert.Equal(t, msg.MessageID, edited.MessageID)
	assert.NotZero(t, edited.EditDate)
	assert.Len(t, s.History(), 1)

	markup := s.EditMessageReplyMarkup(msg.MessageID, 12345)
	assert.Equal(t, "Message with updated markup", markup.Text)
	assert.Len(t, s.History(), 1)
}

func TestGetChatAndMember(t *testing.T) {
	s := newServer(t)

	chat := s.GetChat()
	assert.Equal(t, int64(12345), chat.ID)
	assert.Equal(t, "private", chat.Type)
	assert.Equal(t, "TestUser", chat.FirstName)

	member := s.GetChatMember(777)
	assert.Equal(t, int64(777), member.User.ID)
	assert.Equal(t, "member", member.Status)
}

func TestCustomIdentities(t *testing.T) {
	s := newServer(t, telemock.Options{
		Config: telemock.Config{
			Bot:  telemock.IdentityConfig{ID: 1, FirstName: "Other", Username: "other_bot"},
			User: telemock.IdentityConfig{ID: 2, FirstName: "Alice", Username: "alice"},
		},
		Logger: telemock.NoopLogger{},
	})

	assert.Equal(t, "other_bot", s.BotUser().Username)

	upd := s.SendUserMessage("hi")
	assert.Equal(t, "Alice", upd.Message.From.FirstName)
}
