package telemock

import (
	"fmt"

	"github.com/maxbolgarin/lang"
)

// groupIDStart is the first synthetic group chat id. Telegram group ids
// are negative; each created group gets the next strictly smaller id.
const groupIDStart = -1000000000

const defaultGroupMembers = 3

// group is the in-memory state of one simulated group chat. Access is
// guarded by Server.groupsMu.
type group struct {
	id      int64
	title   string
	members []User
}

// GroupInfo is a point-in-time view of a simulated group.
type GroupInfo struct {
	Chat    Chat   `json:"chat"`
	Members []User `json:"members"`
}

// CreateGroup registers a new simulated group chat and returns its Chat.
// Besides the bot itself the group starts with memberCount synthetic
// members (3 when omitted or non-positive), named User1, User2 and so on.
func (s *Server) CreateGroup(title string, memberCount ...int) Chat {
	n := lang.First(memberCount)
	if n <= 0 {
		n = defaultGroupMembers
	}

	members := make([]User, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, User{
			ID:        10000 + int64(i),
			FirstName: fmt.Sprintf("User%d", i+1),
			Username:  fmt.Sprintf("user%d", i+1),
		})
	}

	s.groupsMu.Lock()
	g := &group{
		id:      s.nextGroupID,
		title:   title,
		members: members,
	}
	s.nextGroupID--
	s.groups[g.id] = g
	s.groupsMu.Unlock()

	s.log.Debug("group created", "group_id", g.id, "title", title, "members", n)

	return g.chat()
}

// SendGroupMessage injects a text message into a group chat. The sender is
// the named user when given, otherwise one of the group members chosen by
// the configured picker.
func (s *Server) SendGroupMessage(groupID int64, text string, from ...User) (Update, error) {
	return s.injectGroupMessage(groupID, text, lang.First(from))
}

// SendGroupCommand injects a bot command the way clients send commands in
// groups: "/start" becomes "/start@mock_bot". Pass mentionBot=false for a
// bare command without the bot mention. The sender is picked from the
// group members by the configured picker.
func (s *Server) SendGroupCommand(groupID int64, command string, mentionBot ...bool) (Update, error) {
	text := command
	if len(mentionBot) == 0 || mentionBot[0] {
		text += "@" + s.cfg.Bot.Username
	}
	return s.injectGroupMessage(groupID, text, User{})
}

// SimulateUserJoined injects a service message about a user joining the
// group. Without an explicit user a fresh synthetic member is created and
// added to the member list.
func (s *Server) SimulateUserJoined(groupID int64, user ...User) (Update, error) {
	s.groupsMu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.groupsMu.Unlock()
		return Update{}, ErrGroupNotFound.New("group %d", groupID)
	}

	joined := lang.First(user)
	if joined.ID == 0 {
		n := len(g.members)
		joined = User{
			ID:        10000 + int64(n),
			FirstName: fmt.Sprintf("User%d", n+1),
			Username:  fmt.Sprintf("user%d", n+1),
		}
	}
	g.members = append(g.members, joined)
	chat := g.chat()
	s.groupsMu.Unlock()

	msg := &Message{
		MessageID:      s.seq.nextMessageID(),
		From:           &joined,
		Chat:           &chat,
		Date:           s.now(),
		NewChatMembers: []User{joined},
	}

	// Service messages are queued for the bot but kept out of history:
	// membership noise is not conversation.
	upd := Update{UpdateID: s.seq.nextUpdateID(), Message: msg}
	s.enqueue(upd)
	return upd, nil
}

// SimulateUserLeft injects a service message about a user leaving the
// group and drops them from the member list. Without an explicit user one
// of the current members is picked.
func (s *Server) SimulateUserLeft(groupID int64, user ...User) (Update, error) {
	s.groupsMu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.groupsMu.Unlock()
		return Update{}, ErrGroupNotFound.New("group %d", groupID)
	}

	left := lang.First(user)
	if left.ID == 0 && len(g.members) > 0 {
		left = s.pickSender(g.members)
	}
	for i, m := range g.members {
		if m.ID == left.ID {
			g.members = append(g.members[:i], g.members[i+1:]...)
			break
		}
	}
	chat := g.chat()
	s.groupsMu.Unlock()

	msg := &Message{
		MessageID:      s.seq.nextMessageID(),
		From:           &left,
		Chat:           &chat,
		Date:           s.now(),
		LeftChatMember: &left,
	}

	upd := Update{UpdateID: s.seq.nextUpdateID(), Message: msg}
	s.enqueue(upd)
	return upd, nil
}

// AddGroupMember adds a user to the member list without producing an
// update. Use SimulateUserJoined when the bot should observe the change.
func (s *Server) AddGroupMember(groupID int64, user User) error {
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return ErrGroupNotFound.New("group %d", groupID)
	}
	g.members = append(g.members, user)
	return nil
}

// RemoveGroupMember silently drops a user from the member list.
func (s *Server) RemoveGroupMember(groupID, userID int64) error {
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return ErrGroupNotFound.New("group %d", groupID)
	}
	for i, m := range g.members {
		if m.ID == userID {
			g.members = append(g.members[:i], g.members[i+1:]...)
			return nil
		}
	}
	return nil
}

// GroupMembers returns a copy of the current member list.
func (s *Server) GroupMembers(groupID int64) ([]User, error) {
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound.New("group %d", groupID)
	}
	return lang.Copy(g.members), nil
}

// Group returns the chat and member list of a simulated group.
func (s *Server) Group(groupID int64) (GroupInfo, error) {
	s.groupsMu.Lock()
	defer s.groupsMu.Unlock()

	g, ok := s.groups[groupID]
	if !ok {
		return GroupInfo{}, ErrGroupNotFound.New("group %d", groupID)
	}
	return GroupInfo{Chat: g.chat(), Members: lang.Copy(g.members)}, nil
}

func (s *Server) injectGroupMessage(groupID int64, text string, from User) (Update, error) {
	s.groupsMu.Lock()
	g, ok := s.groups[groupID]
	if !ok {
		s.groupsMu.Unlock()
		return Update{}, ErrGroupNotFound.New("group %d", groupID)
	}
	if from.ID == 0 {
		if len(g.members) == 0 {
			from = s.cfg.testUser()
		} else {
			from = s.pickSender(g.members)
		}
	}
	chat := g.chat()
	s.groupsMu.Unlock()

	msg := &Message{
		MessageID: s.seq.nextMessageID(),
		From:      &from,
		Chat:      &chat,
		Date:      s.now(),
		Text:      text,
	}

	upd := Update{UpdateID: s.seq.nextUpdateID(), Message: msg}
	s.enqueue(upd)
	s.recordInbound(msg)
	return upd, nil
}

func (g *group) chat() Chat {
	return Chat{
		ID:    g.id,
		Type:  ChatGroup,
		Title: g.title,
	}
}
