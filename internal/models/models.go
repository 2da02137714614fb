package models

const (
	TypeMessage               = "message"
	TypeConversationUpdate    = "conversationUpdate"
	TypeContactRelationUpdate = "contactRelationUpdate"
	TypeTyping                = "typing"
	TypeDeleteUserData        = "deleteUserData"
	TypePing                  = "ping"
)

type ChannelAccount struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ConversationAccount struct {
	ID string `json:"id"`
}

type Attachment struct {
	ContentType string `json:"contentType"`
	ContentURL  string `json:"contentUrl"`
	Name        string `json:"name,omitempty"`
}

type Activity struct {
	Type         string              `json:"type"`
	ID           string              `json:"id,omitempty"`
	Text         string              `json:"text,omitempty"`
	Attachments  []Attachment        `json:"attachments,omitempty"`
	ServiceURL   string              `json:"serviceUrl,omitempty"`
	ChannelID    string              `json:"channelId,omitempty"`
	Conversation ConversationAccount `json:"conversation"`
	From         ChannelAccount      `json:"from"`
	Recipient    ChannelAccount      `json:"recipient"`
	MembersAdded []ChannelAccount    `json:"membersAdded,omitempty"`
	ReplyToID    string              `json:"replyToId,omitempty"`
}

// CreateReply builds a message activity addressed back into the conversation
// the receiver came from, with from/recipient swapped.
func (a *Activity) CreateReply(text string) *Activity {
	return &Activity{
		Type:         TypeMessage,
		Text:         text,
		ServiceURL:   a.ServiceURL,
		ChannelID:    a.ChannelID,
		Conversation: a.Conversation,
		From:         a.Recipient,
		Recipient:    a.From,
		ReplyToID:    a.ID,
	}
}
