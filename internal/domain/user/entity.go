package user

// PublicProfile is the part of a user account shown next to chat messages.
// Accounts themselves are owned by the user service.
type PublicProfile struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatar,omitempty"`
}
