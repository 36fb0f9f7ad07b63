package events

// EventType names an event published on the backbone.
type EventType string

// Room channel events
const (
	EventNewMessage      EventType = "new_message"
	EventReactionAdded   EventType = "reaction_added"
	EventReactionRemoved EventType = "reaction_removed"
	EventMessageEdited   EventType = "message_edited"
	EventMessageDeleted  EventType = "message_deleted"
	EventMessagesRead    EventType = "messages_read"
)

// User channel events
const (
	EventNotification EventType = "notification"
)

// Channel prefixes and the patterns the relay subscribes to.
const (
	ChannelPrefixRoom = "channel:room:"
	ChannelPrefixUser = "channel:user:"

	PatternRooms = ChannelPrefixRoom + "*"
	PatternUsers = ChannelPrefixUser + "*"
)
