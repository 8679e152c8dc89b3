package telemock_test

import (
	"testing"

	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telemock/telemock"
)

func firstMemberPicker(members []telemock.User) telemock.User {
	return members[0]
}

func TestCreateGroupNegativeIDs(t *testing.T) {
	s := newServer(t)

	g1 := s.CreateGroup("First")
	g2 := s.CreateGroup("Second")

	assert.Equal(t, int64(-1000000000), g1.ID)
	assert.Equal(t, int64(-1000000001), g2.ID)
	assert.Equal(t, "group", g1.Type)
	assert.Equal(t, "First", g1.Title)
	assert.False(t, g1.AllMembersAreAdministrators)
}

func TestCreateGroupMembers(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team")

	members, err := s.GroupMembers(chat.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)

	assert.Equal(t, int64(10000), members[0].ID)
	assert.Equal(t, "User1", members[0].FirstName)
	assert.Equal(t, "user1", members[0].Username)
	assert.Equal(t, "User3", members[2].FirstName)
}

func TestSendGroupMessage(t *testing.T) {
	s := newServer(t, telemock.Options{
		Logger:     telemock.NoopLogger{},
		PickSender: firstMemberPicker,
	})

	chat := s.CreateGroup("Team")

	upd, err := s.SendGroupMessage(chat.ID, "hello group")
	require.NoError(t, err)

	msg := upd.Message
	assert.Equal(t, "hello group", msg.Text)
	assert.Equal(t, chat.ID, msg.Chat.ID)
	assert.Equal(t, "group", msg.Chat.Type)
	assert.Equal(t, "User1", msg.From.FirstName)

	// The message is queued for the bot and recorded in history.
	require.Len(t, s.GetUpdates(0, 100, 0), 1)
	require.Len(t, s.History(), 1)
	assert.Equal(t, telemock.DirectionInbound, s.History()[0].Direction)
}

func TestSendGroupCommandAddressesBot(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team")

	upd, err := s.SendGroupCommand(chat.ID, "/start")
	require.NoError(t, err)
	assert.Equal(t, "/start@mock_bot", upd.Message.Text)
}

func TestSendGroupCommandWithoutMention(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team")

	upd, err := s.SendGroupCommand(chat.ID, "/help", false)
	require.NoError(t, err)
	assert.Equal(t, "/help", upd.Message.Text)
}

func TestSendGroupMessageExplicitSender(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team")
	sender := telemock.User{ID: 555, FirstName: "Eve", Username: "eve"}

	upd, err := s.SendGroupMessage(chat.ID, "hi", sender)
	require.NoError(t, err)
	assert.Equal(t, int64(555), upd.Message.From.ID)
}

func TestSimulateUserJoined(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team")

	upd, err := s.SimulateUserJoined(chat.ID)
	require.NoError(t, err)

	require.Len(t, upd.Message.NewChatMembers, 1)
	joined := upd.Message.NewChatMembers[0]
	assert.Equal(t, "User4", joined.FirstName)

	members, err := s.GroupMembers(chat.ID)
	require.NoError(t, err)
	assert.Len(t, members, 4)
}

func TestSimulateUserLeft(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team")
	members, err := s.GroupMembers(chat.ID)
	require.NoError(t, err)

	upd, err := s.SimulateUserLeft(chat.ID, members[1])
	require.NoError(t, err)

	require.NotNil(t, upd.Message.LeftChatMember)
	assert.Equal(t, members[1].ID, upd.Message.LeftChatMember.ID)

	after, err := s.GroupMembers(chat.ID)
	require.NoError(t, err)
	assert.Len(t, after, 2)
	for _, m := range after {
		assert.NotEqual(t, members[1].ID, m.ID)
	}
}

func TestAddRemoveGroupMember(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team", 1)

	require.NoError(t, s.AddGroupMember(chat.ID, telemock.User{ID: 900, FirstName: "Zed"}))
	members, err := s.GroupMembers(chat.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	require.NoError(t, s.RemoveGroupMember(chat.ID, 900))
	members, err = s.GroupMembers(chat.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	// Quiet membership changes produce no updates.
	assert.Zero(t, s.PendingUpdates())
}

func TestGroupNotFound(t *testing.T) {
	s := newServer(t)

	_, err := s.SendGroupMessage(-42, "hello")
	require.Error(t, err)
	assert.True(t, errorx.IsOfType(err, telemock.ErrGroupNotFound))

	_, err = s.GroupMembers(-42)
	assert.True(t, errorx.IsOfType(err, telemock.ErrGroupNotFound))

	_, err = s.SimulateUserJoined(-42)
	assert.Error(t, err)
}

func TestGroupInfo(t *testing.T) {
	s := newServer(t)

	chat := s.CreateGroup("Team", 2)

	info, err := s.Group(chat.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, info.Chat.ID)
	assert.Equal(t, "Team", info.Chat.Title)
	assert.Len(t, info.Members, 2)
}
