package domain_test

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradelink/backend/internal/domain"
)

// In-memory repositories backing the service tests. They mirror the
// guarantees the SQL schema provides: unordered-pair uniqueness on
// connections, one conversation per normalized pair, conditional
// status updates.

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*domain.Profile
}

func newFakeProfileRepo(profiles ...*domain.Profile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
	for _, p := range profiles {
		repo.profiles[p.ID] = p
	}
	return repo
}

func (r *fakeProfileRepo) GetProfileByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) UpdateProfile(_ context.Context, id uuid.UUID, params domain.UpdateProfileParams) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if params.Name != nil {
		p.Name = *params.Name
	}
	if params.Phone != nil {
		p.Phone = params.Phone
	}
	if params.Address != nil {
		p.Address = params.Address
	}
	if params.GSTNumber != nil {
		p.GSTNumber = params.GSTNumber
	}
	if params.Categories != nil {
		p.Categories = params.Categories
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

func (r *fakeProfileRepo) SearchProfiles(_ context.Context, query string, excludeID uuid.UUID, limit int) ([]*domain.Profile, error) {
	q := strings.ToLower(query)
	var out []*domain.Profile
	for _, p := range r.profiles {
		if p.ID == excludeID {
			continue
		}
		if q != "" {
			name := strings.ToLower(p.Name)
			addr := ""
			if p.Address != nil {
				addr = strings.ToLower(*p.Address)
			}
			if !strings.Contains(name, q) && !strings.Contains(addr, q) {
				continue
			}
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) ProfileExists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.profiles[id]
	return ok, nil
}

func (r *fakeProfileRepo) GetProfileSummaries(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.ProfileSummary, error) {
	out := make(map[uuid.UUID]domain.ProfileSummary)
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			out[id] = p.Summary()
		}
	}
	return out, nil
}

type fakeConnectionRepo struct {
	conns map[uuid.UUID]*domain.Connection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: make(map[uuid.UUID]*domain.Connection)}
}

func (r *fakeConnectionRepo) CreateConnection(_ context.Context, requesterID, responderID uuid.UUID) (*domain.Connection, error) {
	for _, c := range r.conns {
		samePair := (c.RequesterID == requesterID && c.ResponderID == responderID) ||
			(c.RequesterID == responderID && c.ResponderID == requesterID)
		if samePair {
			return nil, domain.ErrAlreadyExists
		}
	}
	now := time.Now()
	conn := &domain.Connection{
		ID:          uuid.New(),
		RequesterID: requesterID,
		ResponderID: responderID,
		Status:      domain.ConnectionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.conns[conn.ID] = conn
	return conn, nil
}

func (r *fakeConnectionRepo) GetConnectionByID(_ context.Context, id uuid.UUID) (*domain.Connection, error) {
	c, ok := r.conns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *fakeConnectionRepo) ResolveConnection(_ context.Context, id uuid.UUID, status domain.ConnectionStatus) (*domain.Connection, error) {
	c, ok := r.conns[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if c.Status != domain.ConnectionStatusPending {
		return nil, domain.ErrInvalidState
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	return c, nil
}

func (r *fakeConnectionRepo) ListConnectionsByUser(_ context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	var out []*domain.Connection
	for _, c := range r.conns {
		if c.RequesterID == userID || c.ResponderID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConnectionRepo) AcceptedConnectionExists(_ context.Context, a, b uuid.UUID) (bool, error) {
	for _, c := range r.conns {
		samePair := (c.RequesterID == a && c.ResponderID == b) ||
			(c.RequesterID == b && c.ResponderID == a)
		if samePair && c.Status == domain.ConnectionStatusAccepted {
			return true, nil
		}
	}
	return false, nil
}

type fakeConversationRepo struct {
	convs    map[uuid.UUID]*domain.Conversation
	messages map[uuid.UUID][]*domain.Message
	clock    time.Time
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		convs:    make(map[uuid.UUID]*domain.Conversation),
		messages: make(map[uuid.UUID][]*domain.Message),
		clock:    time.Now(),
	}
}

func (r *fakeConversationRepo) UpsertConversation(_ context.Context, p1, p2 uuid.UUID) (*domain.Conversation, error) {
	for _, c := range r.convs {
		if c.Participant1 == p1 && c.Participant2 == p2 {
			return c, nil
		}
	}
	now := time.Now()
	conv := &domain.Conversation{
		ID:           uuid.New(),
		Participant1: p1,
		Participant2: p2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.convs[conv.ID] = conv
	return conv, nil
}

func (r *fakeConversationRepo) GetConversationByID(_ context.Context, id uuid.UUID) (*domain.Conversation, error) {
	c, ok := r.convs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *fakeConversationRepo) ListConversationsByUser(_ context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	var out []*domain.Conversation
	for _, c := range r.convs {
		if c.HasParticipant(userID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) CreateMessage(_ context.Context, conversationID, senderID uuid.UUID, content string) (*domain.Message, error) {
	if _, ok := r.convs[conversationID]; !ok {
		return nil, domain.ErrNotFound
	}
	r.clock = r.clock.Add(time.Millisecond)
	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      r.clock,
	}
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	return msg, nil
}

func (r *fakeConversationRepo) ListMessages(_ context.Context, conversationID uuid.UUID) ([]*domain.Message, error) {
	return r.messages[conversationID], nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	connections []*domain.Connection
	messages    []*domain.Message
}

func (p *recordingPublisher) ConnectionChanged(_ context.Context, conn *domain.Connection) {
	p.connections = append(p.connections, conn)
}

func (p *recordingPublisher) MessageCreated(_ context.Context, _ *domain.Conversation, msg *domain.Message) {
	p.messages = append(p.messages, msg)
}

// fakeStream is a channel-backed MessageStream.
type fakeStream struct {
	ch     chan *domain.Message
	closed bool
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan *domain.Message, 16)}
}

func (s *fakeStream) Messages() <-chan *domain.Message { return s.ch }
func (s *fakeStream) Close()                           { s.closed = true }

type fakeStreamSource struct {
	stream *fakeStream
}

func (s *fakeStreamSource) SubscribeMessages(uuid.UUID) domain.MessageStream {
	return s.stream
}

func newProfile(name string, role domain.Role) *domain.Profile {
	now := time.Now()
	return &domain.Profile{
		ID:         uuid.New(),
		Email:      strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Name:       name,
		Role:       role,
		Categories: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
