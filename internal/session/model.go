package session

// Mode controls how a voting round is scored: one score for the whole
// group, or a group score plus individual participant scores.
type Mode string

const (
	ModeGroup Mode = "group"
	ModeMixed Mode = "mixed"
)

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Endpoint struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Vote is immutable once appended to the log. Subject is the display
// subject derived at submission time; MainSubject is the round's subject.
type Vote struct {
	MainSubject  string             `json:"mainSubject"`
	Subject      string             `json:"subject"`
	Scores       map[string]float64 `json:"scores"`
	DeviceID     string             `json:"deviceId"`
	ConnectionID string             `json:"connectionId"`
	Address      string             `json:"address"`
}

// State is the full session snapshot broadcast to every client.
type State struct {
	SessionID            string     `json:"sessionId"`
	Name                 string     `json:"name"`
	Categories           []Category `json:"categories"`
	CurrentSubject       string     `json:"currentSubject"`
	Participants         []string   `json:"participants"`
	VotingMode           Mode       `json:"votingMode"`
	VotingOpen           bool       `json:"votingOpen"`
	Votes                []Vote     `json:"votes"`
	Endpoints            []Endpoint `json:"endpoints"`
	SelectedEndpoint     int        `json:"selectedEndpoint"`
	ConnectedClients     int        `json:"connectedClients"`
	LastRoundClientCount int        `json:"lastRoundClientCount"`
}

type VoteItemType string

const (
	VoteItemGroup       VoteItemType = "group"
	VoteItemParticipant VoteItemType = "participant"
)

// VoteItem is one scored entry of a ballot. Name is only set for
// participant items.
type VoteItem struct {
	Type   VoteItemType       `json:"type"`
	Name   string             `json:"name,omitempty"`
	Scores map[string]float64 `json:"scores"`
}

// StatusUpdate applies only the fields that are present.
type StatusUpdate struct {
	Subject      *string   `json:"currentSubject,omitempty"`
	VotingOpen   *bool     `json:"votingOpen,omitempty"`
	Participants *[]string `json:"participants,omitempty"`
	Mode         *Mode     `json:"votingMode,omitempty"`
}
