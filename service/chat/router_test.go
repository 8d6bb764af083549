package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverToUserDropsWhenOffline(t *testing.T) {
	presence := NewPresenceTable()
	router := NewRouter(presence)

	// nobody registered: silent drop, no panic
	require.NotPanics(t, func() {
		router.DeliverToUser("ghost", BuildUserConnected("someone"))
	})
}

func TestDeliverToAllExceptSkipsExcluded(t *testing.T) {
	presence := NewPresenceTable()
	router := NewRouter(presence)

	a := newConn("ca", "ua")
	b := newConn("cb", "ub")
	c := newConn("cc", "uc")
	presence.Set("ua", a)
	presence.Set("ub", b)
	presence.Set("uc", c)

	router.DeliverToAllExcept(BuildUserConnected("ua"), a)

	assert.Empty(t, pendingFrames(t, a), "excluded connection receives nothing")
	for name, cl := range map[string]*Client{"b": b, "c": c} {
		frames := pendingFrames(t, cl)
		require.Len(t, frames, 1, "%s", name)
		assert.Equal(t, EventUserConnected, frames[0].Event)
		assert.Equal(t, "ua", frames[0].Data["userId"])
	}
}

func TestDeliverToChatParticipantsSkipsOffline(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	carol := newTestUser("carol")
	chatRec := newTestChat(alice, bob, carol)

	presence := NewPresenceTable()
	router := NewRouter(presence)

	aliceConn := offlineClient(alice)
	bobConn := offlineClient(bob)
	presence.Set(alice.UserID(), aliceConn)
	presence.Set(bob.UserID(), bobConn)
	// carol offline

	router.DeliverToChatParticipants(chatRec, BuildError("x"))

	require.Len(t, pendingFrames(t, aliceConn), 1)
	require.Len(t, pendingFrames(t, bobConn), 1)
}

func TestDeliverToChatParticipantsIgnoresNonParticipants(t *testing.T) {
	alice := newTestUser("alice")
	eve := newTestUser("eve")
	chatRec := newTestChat(alice)

	presence := NewPresenceTable()
	router := NewRouter(presence)

	aliceConn := offlineClient(alice)
	eveConn := offlineClient(eve)
	presence.Set(alice.UserID(), aliceConn)
	presence.Set(eve.UserID(), eveConn)

	router.DeliverToChatParticipants(chatRec, BuildError("x"))

	require.Len(t, pendingFrames(t, aliceConn), 1)
	assert.Empty(t, pendingFrames(t, eveConn), "online but not a participant")
}
