package message

// Attachment is metadata about a file carried by a message. Uploads happen
// elsewhere; Key identifies the stored object when URL must be signed.
type Attachment struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Key      string `json:"key,omitempty"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
}
