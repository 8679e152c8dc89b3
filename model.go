package telemock

import "encoding/json"

// User is a Telegram user or bot identity as it appears on the wire.
// Users are immutable once constructed.
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username,omitempty"`
}

// BotProfile is the extended identity returned by getMe.
type BotProfile struct {
	User
	CanJoinGroups           bool `json:"can_join_groups"`
	CanReadAllGroupMessages bool `json:"can_read_all_group_messages"`
	SupportsInlineQueries   bool `json:"supports_inline_queries"`
}

// Chat types. Private chats carry a fixed positive id, group chats get
// strictly decreasing negative ids.
const (
	ChatPrivate = "private"
	ChatGroup   = "group"
)

// Chat is a private or group chat.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	Username  string `json:"username,omitempty"`

	AllMembersAreAdministrators bool `json:"all_members_are_administrators,omitempty"`
}

// Message is a single chat message. Exactly one content field is set:
// Text, Photo, Video, Audio, Voice, Sticker, Document, Location, Poll,
// NewChatMembers or LeftChatMember.
type Message struct {
	MessageID int64 `json:"message_id"`
	From      *User `json:"from,omitempty"`
	Chat      *Chat `json:"chat"`
	Date      int64 `json:"date"`

	Text           string      `json:"text,omitempty"`
	Photo          []PhotoSize `json:"photo,omitempty"`
	Video          *Video      `json:"video,omitempty"`
	Audio          *Audio      `json:"audio,omitempty"`
	Voice          *Voice      `json:"voice,omitempty"`
	Sticker        *Sticker    `json:"sticker,omitempty"`
	Document       *Document   `json:"document,omitempty"`
	Location       *Location   `json:"location,omitempty"`
	Poll           *Poll       `json:"poll,omitempty"`
	NewChatMembers []User      `json:"new_chat_members,omitempty"`
	LeftChatMember *User       `json:"left_chat_member,omitempty"`

	Caption     string          `json:"caption,omitempty"`
	ReplyMarkup json.RawMessage `json:"reply_markup,omitempty"`
	EditDate    int64           `json:"edit_date,omitempty"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type Video struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Duration int    `json:"duration"`
}

type Audio struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
	Title    string `json:"title,omitempty"`
}

type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
}

type Sticker struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Emoji  string `json:"emoji,omitempty"`
}

type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Poll struct {
	ID                    string       `json:"id"`
	Question              string       `json:"question"`
	Options               []PollOption `json:"options"`
	IsClosed              bool         `json:"is_closed"`
	IsAnonymous           bool         `json:"is_anonymous"`
	Type                  string       `json:"type"`
	AllowsMultipleAnswers bool         `json:"allows_multiple_answers"`
}

type PollOption struct {
	Text       string `json:"text"`
	VoterCount int    `json:"voter_count"`
}

// Update is one unit of inbound activity delivered to a polling bot.
// Exactly one payload field is non-nil. Updates are immutable once created.
type Update struct {
	UpdateID           int64               `json:"update_id"`
	Message            *Message            `json:"message,omitempty"`
	CallbackQuery      *CallbackQuery      `json:"callback_query,omitempty"`
	InlineQuery        *InlineQuery        `json:"inline_query,omitempty"`
	ChosenInlineResult *ChosenInlineResult `json:"chosen_inline_result,omitempty"`
}

// CallbackQuery models a user pressing an inline keyboard button.
type CallbackQuery struct {
	ID           string   `json:"id"`
	From         *User    `json:"from"`
	Message      *Message `json:"message,omitempty"`
	ChatInstance string   `json:"chat_instance"`
	Data         string   `json:"data"`
}

// InlineQuery models a user typing @botname <query> in any chat.
type InlineQuery struct {
	ID       string `json:"id"`
	From     *User  `json:"from"`
	Query    string `json:"query"`
	Offset   string `json:"offset"`
	ChatType string `json:"chat_type,omitempty"`
}

// ChosenInlineResult models a user picking one of the bot's inline answers.
type ChosenInlineResult struct {
	ResultID        string `json:"result_id"`
	From            *User  `json:"from"`
	Query           string `json:"query"`
	InlineMessageID string `json:"inline_message_id,omitempty"`
}

type ChatMember struct {
	User   *User  `json:"user"`
	Status string `json:"status"`
}

type WebhookInfo struct {
	URL                  string `json:"url"`
	HasCustomCertificate bool   `json:"has_custom_certificate"`
	PendingUpdateCount   int    `json:"pending_update_count"`
}

// Direction of a history entry relative to the bot under test.
type Direction string

const (
	// DirectionInbound marks messages flowing towards the bot (user activity).
	DirectionInbound Direction = "inbound"
	// DirectionOutbound marks messages produced by the bot (send* calls).
	DirectionOutbound Direction = "outbound"
)

// HistoryEntry is one observed message with its direction.
type HistoryEntry struct {
	Direction Direction `json:"direction" bson:"direction"`
	Message   *Message  `json:"message" bson:"message"`
}

// apiResponse is the envelope every simulated method answers with.
// The emulator never produces error envelopes: every call "succeeds".
type apiResponse struct {
	OK          bool   `json:"ok"`
	Result      any    `json:"result"`
	Description string `json:"description,omitempty"`
}
