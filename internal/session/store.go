package session

import (
	"errors"
	"sync"

	"github.com/eleven-am/peergrade/internal/shared"
)

var (
	ErrVotingClosed  = errors.New("voting is closed")
	ErrNotIdentified = errors.New("connection not identified")
	ErrDuplicateVote = errors.New("device already voted for this subject")
)

// Store owns the single in-memory session. Every mutation goes through a
// named operation; each operation is atomic behind the store's mutex.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore(name string) *Store {
	return &Store{
		state: State{
			Name:         name,
			Categories:   []Category{},
			Participants: []string{},
			VotingMode:   ModeGroup,
			Votes:        []Vote{},
			Endpoints:    []Endpoint{{Label: "Initializing tunnel...", URL: "#"}},
		},
	}
}

// Create starts a fresh session: new id, new categories, empty vote log.
// Subject, participants and voting mode deliberately survive so a host can
// reuse a round setup across sessions.
func (s *Store) Create(name string, categories []Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.SessionID = shared.NewID("sess_")
	s.state.Name = name
	s.state.Categories = append([]Category{}, categories...)
	s.state.Votes = []Vote{}
}

// SelectEndpoint ignores out-of-range indexes rather than failing the host.
func (s *Store) SelectEndpoint(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.state.Endpoints) {
		return false
	}
	s.state.SelectedEndpoint = index
	return true
}

func (s *Store) UpdateStatus(update StatusUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Capture the turnout of the round being closed before the flag flips.
	if s.state.VotingOpen && update.VotingOpen != nil && !*update.VotingOpen {
		s.state.LastRoundClientCount = s.state.ConnectedClients
	}

	if update.Subject != nil {
		s.state.CurrentSubject = *update.Subject
	}
	if update.VotingOpen != nil {
		s.state.VotingOpen = *update.VotingOpen
	}
	if update.Participants != nil {
		s.state.Participants = append([]string{}, (*update.Participants)...)
	}
	if update.Mode != nil {
		s.state.VotingMode = *update.Mode
	}
}

func (s *Store) RecordEndpoints(endpoints []Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Endpoints = append([]Endpoint{}, endpoints...)
	if s.state.SelectedEndpoint >= len(s.state.Endpoints) {
		s.state.SelectedEndpoint = 0
	}
}

func (s *Store) SetConnectedClients(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ConnectedClients = count
}

// SubmitVote appends one Vote per item, all sharing the round's subject and
// the submitter's identity. The whole submission is accepted or rejected.
func (s *Store) SubmitVote(deviceID, connectionID, address string, items []VoteItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.VotingOpen {
		return ErrVotingClosed
	}
	if deviceID == "" {
		return ErrNotIdentified
	}

	subject := s.state.CurrentSubject
	for _, v := range s.state.Votes {
		if v.MainSubject == subject && v.DeviceID == deviceID {
			return ErrDuplicateVote
		}
	}

	for _, item := range items {
		scores := make(map[string]float64, len(item.Scores))
		for id, score := range item.Scores {
			scores[id] = score
		}
		s.state.Votes = append(s.state.Votes, Vote{
			MainSubject:  subject,
			Subject:      displaySubject(subject, s.state.VotingMode, item),
			Scores:       scores,
			DeviceID:     deviceID,
			ConnectionID: connectionID,
			Address:      address,
		})
	}
	return nil
}

func displaySubject(subject string, mode Mode, item VoteItem) string {
	switch item.Type {
	case VoteItemParticipant:
		return subject + " - " + item.Name
	case VoteItemGroup:
		if mode == ModeMixed {
			return subject + " (Group)"
		}
	}
	return subject
}

// Snapshot returns a copy safe to hand to broadcasting and export. Votes
// are immutable once recorded, so a shallow copy of the log is enough.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Categories = append([]Category{}, s.state.Categories...)
	snap.Participants = append([]string{}, s.state.Participants...)
	snap.Votes = append([]Vote{}, s.state.Votes...)
	snap.Endpoints = append([]Endpoint{}, s.state.Endpoints...)
	return snap
}
