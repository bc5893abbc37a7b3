package domain_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelink/backend/internal/domain"
)

func newConnectionFixture(t *testing.T) (*domain.ConnectionService, *fakeConnectionRepo, *recordingPublisher, *domain.Profile, *domain.Profile) {
	t.Helper()
	distributor := newProfile("Acme Distribution", domain.RoleDistributor)
	retailer := newProfile("Corner Store", domain.RoleRetailer)
	profiles := newFakeProfileRepo(distributor, retailer)
	conns := newFakeConnectionRepo()
	events := &recordingPublisher{}
	svc := domain.NewConnectionService(conns, profiles, events)
	return svc, conns, events, distributor, retailer
}

func TestRequestConnection_CreatesPending(t *testing.T) {
	svc, _, events, distributor, retailer := newConnectionFixture(t)

	conn, err := svc.RequestConnection(context.Background(), distributor.ID, retailer.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.ConnectionStatusPending, conn.Status)
	assert.Equal(t, distributor.ID, conn.RequesterID)
	assert.Equal(t, retailer.ID, conn.ResponderID)
	assert.Len(t, events.connections, 1, "creation should be pushed to both parties")
}

func TestRequestConnection_SelfConnectFailsValidation(t *testing.T) {
	svc, conns, _, distributor, _ := newConnectionFixture(t)

	_, err := svc.RequestConnection(context.Background(), distributor.ID, distributor.ID)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, conns.conns, "nothing must be written")
}

func TestRequestConnection_UnknownProfileFailsValidation(t *testing.T) {
	svc, conns, _, distributor, _ := newConnectionFixture(t)

	_, err := svc.RequestConnection(context.Background(), distributor.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, conns.conns)
}

func TestRequestConnection_DuplicatePairRejectedBothDirections(t *testing.T) {
	svc, _, _, distributor, retailer := newConnectionFixture(t)

	_, err := svc.RequestConnection(context.Background(), distributor.ID, retailer.ID)
	require.NoError(t, err)

	_, err = svc.RequestConnection(context.Background(), distributor.ID, retailer.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// The reverse direction is the same unordered pair.
	_, err = svc.RequestConnection(context.Background(), retailer.ID, distributor.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRespondToConnection_OnlyResponderMayResolve(t *testing.T) {
	svc, _, _, distributor, retailer := newConnectionFixture(t)

	conn, err := svc.RequestConnection(context.Background(), distributor.ID, retailer.ID)
	require.NoError(t, err)

	_, err = svc.RespondToConnection(context.Background(), distributor.ID, conn.ID, true)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "requester must not resolve their own request")

	_, err = svc.RespondToConnection(context.Background(), uuid.New(), conn.ID, true)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "third parties must not resolve")

	resolved, err := svc.RespondToConnection(context.Background(), retailer.ID, conn.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusAccepted, resolved.Status)
}

func TestRespondToConnection_TransitionIsExactlyOnce(t *testing.T) {
	svc, _, _, distributor, retailer := newConnectionFixture(t)

	conn, err := svc.RequestConnection(context.Background(), distributor.ID, retailer.ID)
	require.NoError(t, err)

	_, err = svc.RespondToConnection(context.Background(), retailer.ID, conn.ID, false)
	require.NoError(t, err)

	// Rejected is terminal: no accepted<->rejected, no re-entering pending.
	_, err = svc.RespondToConnection(context.Background(), retailer.ID, conn.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = svc.RespondToConnection(context.Background(), retailer.ID, conn.ID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRespondToConnection_RejectSetsStatus(t *testing.T) {
	svc, _, events, distributor, retailer := newConnectionFixture(t)

	conn, err := svc.RequestConnection(context.Background(), distributor.ID, retailer.ID)
	require.NoError(t, err)

	resolved, err := svc.RespondToConnection(context.Background(), retailer.ID, conn.ID, false)
	require.NoError(t, err)

	assert.Equal(t, domain.ConnectionStatusRejected, resolved.Status)
	assert.Len(t, events.connections, 2, "create and resolve are both pushed")
}

func TestListConnectionsForUser_Partitions(t *testing.T) {
	distributor := newProfile("Acme Distribution", domain.RoleDistributor)
	retailer := newProfile("Corner Store", domain.RoleRetailer)
	other := newProfile("Beta Wholesale", domain.RoleDistributor)
	profiles := newFakeProfileRepo(distributor, retailer, other)
	conns := newFakeConnectionRepo()
	svc := domain.NewConnectionService(conns, profiles, nil)
	ctx := context.Background()

	accepted, err := svc.RequestConnection(ctx, distributor.ID, retailer.ID)
	require.NoError(t, err)
	_, err = svc.RespondToConnection(ctx, retailer.ID, accepted.ID, true)
	require.NoError(t, err)

	pending, err := svc.RequestConnection(ctx, other.ID, retailer.ID)
	require.NoError(t, err)

	// Retailer's view: one active, one incoming (actionable).
	views, err := svc.ListConnectionsForUser(ctx, retailer.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byID := make(map[uuid.UUID]*domain.ConnectionView)
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.Equal(t, domain.BucketActive, byID[accepted.ID].Bucket)
	assert.Equal(t, distributor.Name, byID[accepted.ID].Counterpart.Name)
	assert.Equal(t, domain.RoleDistributor, byID[accepted.ID].Counterpart.Role)
	assert.Equal(t, domain.BucketIncoming, byID[pending.ID].Bucket)

	// The accepted connection is active for the other party too.
	views, err = svc.ListConnectionsForUser(ctx, distributor.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.BucketActive, views[0].Bucket)
	assert.Equal(t, retailer.Name, views[0].Counterpart.Name)

	// The requester of a pending connection only sees a read-only marker.
	views, err = svc.ListConnectionsForUser(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.BucketAwaiting, views[0].Bucket)
}
