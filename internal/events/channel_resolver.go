package events

import "strings"

func RoomChannel(roomID string) string {
	return ChannelPrefixRoom + roomID
}

func UserChannel(userID string) string {
	return ChannelPrefixUser + userID
}

// ChannelResolver determines which backbone channel an envelope goes to.
type ChannelResolver interface {
	ResolveChannel(env Envelope) string
}

// RoomUserChannelResolver routes user-addressed events to the user channel
// and everything else to the room channel.
type RoomUserChannelResolver struct{}

func NewRoomUserChannelResolver() *RoomUserChannelResolver {
	return &RoomUserChannelResolver{}
}

func (r *RoomUserChannelResolver) ResolveChannel(env Envelope) string {
	switch env.Type {
	case EventNotification:
		if env.UserID == "" {
			return ""
		}
		return UserChannel(env.UserID)
	default:
		if env.RoomID == "" {
			return ""
		}
		return RoomChannel(env.RoomID)
	}
}

// SplitChannel returns the prefix and the id of a room or user channel.
func SplitChannel(channel string) (prefix, id string, ok bool) {
	for _, p := range []string{ChannelPrefixRoom, ChannelPrefixUser} {
		if strings.HasPrefix(channel, p) && len(channel) > len(p) {
			return p, channel[len(p):], true
		}
	}
	return "", "", false
}

// MatchPattern reports whether channel matches a subscription pattern. Only a
// trailing '*' wildcard is supported, which is all the relay uses.
func MatchPattern(pattern, channel string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok {
		return strings.HasPrefix(channel, prefix)
	}
	return pattern == channel
}

// EscapeGlob escapes the characters Redis treats as glob metacharacters.
func EscapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
