package journey

// Journey is the slice of a journey post the chat layer needs for access
// checks. Journeys are owned by the journey service.
type Journey struct {
	ID            string
	CreatorID     string
	Collaborators []string
}

// IsCreator reports whether userID created the journey.
func (j Journey) IsCreator(userID string) bool {
	return userID != "" && j.CreatorID == userID
}

// IsMember reports whether userID is the creator or a collaborator.
func (j Journey) IsMember(userID string) bool {
	if j.IsCreator(userID) {
		return true
	}
	for _, c := range j.Collaborators {
		if c == userID {
			return true
		}
	}
	return false
}
