package message

import (
	"time"

	"journey-chat/internal/domain/room"
	"journey-chat/internal/domain/user"

	"github.com/google/uuid"
)

// MaxContentLength is the longest content, in characters, a non-system
// message may carry.
const MaxContentLength = 1000

// DeletedContent replaces the content of soft-deleted messages.
const DeletedContent = "This message was deleted"

type Type string

const (
	TypeText     Type = "text"
	TypeImage    Type = "image"
	TypeFile     Type = "file"
	TypeLocation Type = "location"
	TypeSystem   Type = "system"
)

func (t Type) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeFile, TypeLocation, TypeSystem:
		return true
	}
	return false
}

type Status string

const (
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
)

// Location is attached to messages posted in location rooms.
type Location struct {
	Name        string           `json:"name,omitempty"`
	Coordinates room.Coordinates `json:"coordinates"`
}

// Reaction is one user's emoji on a message. A user holds at most one.
type Reaction struct {
	UserID    string    `json:"userId"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReadReceipt records the first time a user read a message.
type ReadReceipt struct {
	UserID string    `json:"userId"`
	ReadAt time.Time `json:"readAt"`
}

// Message is a chat message in any room category.
type Message struct {
	ID              uuid.UUID           `json:"id"`
	SenderID        string              `json:"senderId"`
	Sender          *user.PublicProfile `json:"sender,omitempty"`
	Content         string              `json:"content"`
	Type            Type                `json:"messageType"`
	RoomID          string              `json:"roomId"`
	RoomCategory    room.Category       `json:"roomType"`
	JourneyID       string              `json:"journeyId,omitempty"`
	Location        *Location           `json:"location,omitempty"`
	ParentMessageID *uuid.UUID          `json:"parentMessageId,omitempty"`
	Attachments     []Attachment        `json:"attachments"`
	Status          Status              `json:"status"`
	ReadBy          []ReadReceipt       `json:"readBy"`
	Reactions       []Reaction          `json:"reactions"`
	IsEdited        bool                `json:"isEdited"`
	EditedAt        *time.Time          `json:"editedAt,omitempty"`
	OriginalContent string              `json:"originalContent,omitempty"`
	IsDeleted       bool                `json:"isDeleted"`
	DeletedAt       *time.Time          `json:"deletedAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// HasReadBy reports whether userID already has a read receipt.
func (m *Message) HasReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// SetReaction adds or replaces userID's reaction.
func (m *Message) SetReaction(userID, emoji string, at time.Time) {
	for i := range m.Reactions {
		if m.Reactions[i].UserID == userID {
			m.Reactions[i].Emoji = emoji
			m.Reactions[i].CreatedAt = at
			return
		}
	}
	m.Reactions = append(m.Reactions, Reaction{UserID: userID, Emoji: emoji, CreatedAt: at})
}

// RemoveReaction drops userID's reaction. It reports whether one existed.
func (m *Message) RemoveReaction(userID string) bool {
	for i := range m.Reactions {
		if m.Reactions[i].UserID == userID {
			m.Reactions = append(m.Reactions[:i], m.Reactions[i+1:]...)
			return true
		}
	}
	return false
}

// Edit replaces the content, keeping the content from before the first edit.
func (m *Message) Edit(content string, at time.Time) {
	if !m.IsEdited {
		m.OriginalContent = m.Content
	}
	m.Content = content
	m.IsEdited = true
	m.EditedAt = &at
	m.UpdatedAt = at
}

// MarkDeleted tombstones the message. Deleted messages are kept in the store.
func (m *Message) MarkDeleted(at time.Time) {
	m.IsDeleted = true
	m.DeletedAt = &at
	m.Content = DeletedContent
	m.UpdatedAt = at
}

// MarkRead appends a receipt unless userID already has one. It reports
// whether a receipt was added.
func (m *Message) MarkRead(userID string, at time.Time) bool {
	if m.HasReadBy(userID) {
		return false
	}
	m.ReadBy = append(m.ReadBy, ReadReceipt{UserID: userID, ReadAt: at})
	if userID != m.SenderID {
		m.Status = StatusRead
	}
	return true
}
