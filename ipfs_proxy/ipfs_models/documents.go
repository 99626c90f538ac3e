package ipfs_models

// AppTag is stamped into every document the dApp pins so the mobile client can
// recognise its own content.
const AppTag = "ExplorMate"

// MetadataAppTag is the lowercase tag used in the pinning service's keyvalues.
const MetadataAppTag = "explormate"

const ChatMessageVersion = "1.0"

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UserProfile is the off-chain part of a tourist or guide profile. The
// returned content id is what gets registered on-chain.
type UserProfile struct {
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Bio            string   `json:"bio,omitempty"`
	Experience     string   `json:"experience,omitempty"`
	Certifications []string `json:"certifications,omitempty"`

	// Extra carries any additional fields (languages, favourite destinations...)
	// and is merged into the top level of the pinned document.
	Extra map[string]interface{} `json:"-"`
}

type ChatMessage struct {
	Text      string    `json:"text"`
	MediaType string    `json:"mediaType,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Timestamp int64     `json:"timestamp"` // unix millis

	Extra map[string]interface{} `json:"-"`
}
