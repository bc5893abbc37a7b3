package domain_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelink/backend/internal/domain"
)

type messagingFixture struct {
	svc      *domain.MessagingService
	convs    *fakeConversationRepo
	events   *recordingPublisher
	stream   *fakeStream
	userA    *domain.Profile
	userB    *domain.Profile
	stranger *domain.Profile
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	userA := newProfile("Acme Distribution", domain.RoleDistributor)
	userB := newProfile("Corner Store", domain.RoleRetailer)
	stranger := newProfile("Gamma Goods", domain.RoleRetailer)

	profiles := newFakeProfileRepo(userA, userB, stranger)
	conns := newFakeConnectionRepo()
	convs := newFakeConversationRepo()
	events := &recordingPublisher{}
	stream := newFakeStream()

	// userA and userB are connected; the stranger is not.
	conn, err := conns.CreateConnection(context.Background(), userA.ID, userB.ID)
	require.NoError(t, err)
	_, err = conns.ResolveConnection(context.Background(), conn.ID, domain.ConnectionStatusAccepted)
	require.NoError(t, err)

	return &messagingFixture{
		svc:      domain.NewMessagingService(convs, conns, profiles, &fakeStreamSource{stream: stream}, events),
		convs:    convs,
		events:   events,
		stream:   stream,
		userA:    userA,
		userB:    userB,
		stranger: stranger,
	}
}

func TestGetOrCreateConversation_IdempotentAcrossOrder(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	// Second bootstrap with the pair reversed must return the same row.
	second, err := f.svc.GetOrCreateConversation(ctx, f.userB.ID, f.userA.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.convs.convs, 1, "never a second row for the same pair")
}

func TestGetOrCreateConversation_NormalizesParticipants(t *testing.T) {
	f := newMessagingFixture(t)

	conv, err := f.svc.GetOrCreateConversation(context.Background(), f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	p1, p2 := domain.NormalizePair(f.userA.ID, f.userB.ID)
	assert.Equal(t, p1, conv.Participant1)
	assert.Equal(t, p2, conv.Participant2)
	assert.True(t, conv.HasParticipant(f.userA.ID))
	assert.True(t, conv.HasParticipant(f.userB.ID))
}

func TestGetOrCreateConversation_RequiresAcceptedConnection(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.svc.GetOrCreateConversation(context.Background(), f.userA.ID, f.stranger.ID)

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, f.convs.convs)
}

func TestGetOrCreateConversation_SelfFailsValidation(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.svc.GetOrCreateConversation(context.Background(), f.userA.ID, f.userA.ID)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSendMessage_EmptyBodyWritesNothing(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	for _, body := range []string{"", "   ", "\n\t "} {
		_, err := f.svc.SendMessage(ctx, f.userA.ID, conv.ID, body)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
	assert.Empty(t, f.convs.messages[conv.ID], "no message row may exist")
	assert.Empty(t, f.events.messages, "nothing may be pushed")
}

func TestSendMessage_TrimsBodyAndPublishes(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	msg, err := f.svc.SendMessage(ctx, f.userA.ID, conv.ID, "  hello there  ")
	require.NoError(t, err)

	assert.Equal(t, "hello there", msg.Content)
	assert.Equal(t, f.userA.ID, msg.SenderID)
	require.Len(t, f.events.messages, 1)
	assert.Equal(t, msg.ID, f.events.messages[0].ID)
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, f.stranger.ID, conv.ID, "let me in")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, f.convs.messages[conv.ID])
}

func TestSendMessage_UnknownConversation(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.svc.SendMessage(context.Background(), f.userA.ID, uuid.New(), "hello")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetMessages_OrderedAscending(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	for _, body := range []string{"first", "second", "third"} {
		_, err := f.svc.SendMessage(ctx, f.userA.ID, conv.ID, body)
		require.NoError(t, err)
	}

	msgs, err := f.svc.GetMessages(ctx, f.userB.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt),
			"messages must be in non-decreasing timestamp order")
	}
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)
}

func TestGetMessages_NonParticipantForbidden(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	_, err = f.svc.GetMessages(ctx, f.stranger.ID, conv.ID)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStreamMessages_ParticipantsOnly(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	conv, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	stream, err := f.svc.StreamMessages(ctx, f.userB.ID, conv.ID)
	require.NoError(t, err)
	assert.NotNil(t, stream)

	_, err = f.svc.StreamMessages(ctx, f.stranger.ID, conv.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestListConversations_AnnotatesParticipants(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetOrCreateConversation(ctx, f.userA.ID, f.userB.ID)
	require.NoError(t, err)

	views, err := f.svc.ListConversations(ctx, f.userA.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Len(t, views[0].Participants, 2)

	names := []string{views[0].Participants[0].Name, views[0].Participants[1].Name}
	assert.Contains(t, names, f.userA.Name)
	assert.Contains(t, names, f.userB.Name)
}

func TestNormalizePair_OrderInsensitive(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	p1, p2 := domain.NormalizePair(a, b)
	q1, q2 := domain.NormalizePair(b, a)

	assert.Equal(t, p1, q1)
	assert.Equal(t, p2, q2)
	assert.True(t, p1.String() < p2.String())
}
