package realtime

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kanaksh-py/startup-backend/internal/infrastructure/pubsub/port"
)

// Router is the connection manager of one api node. It owns the mapping from room name to the
// connections subscribed to it. Two kinds of rooms share the namespace: the private room of a
// profile (named by the profile id, joined on Attach) and conversation rooms (named by room key,
// joined explicitly). Room keys always contain a separator that profile ids never do.
//
// With a relay configured, Emit also publishes to other nodes and RunRelay delivers their
// emissions to local members.
type Router struct {
	NodeID string

	mu              sync.RWMutex
	sessions        map[string]*Connection            // sessionID -> connection
	profileSessions map[string]map[string]struct{}    // profileID -> set of sessionIDs
	rooms           map[string]map[string]*Connection // room -> sessionID -> connection
	sessionRooms    map[string]map[string]struct{}    // sessionID -> set of rooms

	relay port.Relay
	log   zerolog.Logger
}

// NewRouter constructs an initialized Router. relay may be nil for a single-node deployment.
func NewRouter(relay port.Relay, log zerolog.Logger) *Router {
	return &Router{
		NodeID:          uuid.NewString(),
		sessions:        make(map[string]*Connection),
		profileSessions: make(map[string]map[string]struct{}),
		rooms:           make(map[string]map[string]*Connection),
		sessionRooms:    make(map[string]map[string]struct{}),
		relay:           relay,
		log:             log,
	}
}

// Attach registers a connection, joins it to its profile's private room and starts its write loop.
// Other connections of the same profile stay attached.
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	set := r.profileSessions[conn.ProfileID]
	if set == nil {
		set = make(map[string]struct{})
		r.profileSessions[conn.ProfileID] = set
	}
	set[conn.ID] = struct{}{}
	r.joinLocked(conn.ProfileID, conn)
	r.mu.Unlock()

	conn.Start()
}

// Detach removes a connection from every room it belongs to.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join adds the connection to the room. Joining twice is a no-op.
// It reports false when the connection is not attached.
func (r *Router) Join(room string, conn *Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return false
	}
	r.joinLocked(room, conn)
	return true
}

// Leave removes the connection from the room. A connection cannot leave its private room.
func (r *Router) Leave(room string, conn *Connection) {
	if room == conn.ProfileID {
		return
	}
	r.mu.Lock()
	r.leaveLocked(room, conn.ID)
	r.mu.Unlock()
}

// IsMember reports whether the connection currently belongs to room.
func (r *Router) IsMember(room string, conn *Connection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][conn.ID]
	return ok
}

// Members returns the number of local connections in room.
func (r *Router) Members(room string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[room])
}

// Sessions returns the number of local connections held by a profile.
func (r *Router) Sessions(profileID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profileSessions[profileID])
}

// Broadcast writes payload to every local member of room and returns how many accepted it.
func (r *Router) Broadcast(room string, payload []byte) int {
	r.mu.RLock()
	members := make([]*Connection, 0, len(r.rooms[room]))
	for _, conn := range r.rooms[room] {
		members = append(members, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range members {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Emit delivers payload to room members on this node and, through the relay, on every other node.
// A relay failure is logged; local delivery has already happened.
func (r *Router) Emit(ctx context.Context, room string, payload []byte) int {
	delivered := r.Broadcast(room, payload)
	if r.relay != nil {
		if err := r.relay.Publish(ctx, port.Envelope{Origin: r.NodeID, Room: room, Payload: payload}); err != nil {
			r.log.Warn().Err(err).Str("room", room).Msg("relay publish failed")
		}
	}
	return delivered
}

// RunRelay delivers emissions from other nodes until ctx is canceled.
func (r *Router) RunRelay(ctx context.Context) error {
	if r.relay == nil {
		<-ctx.Done()
		return nil
	}
	return r.relay.Subscribe(ctx, func(env port.Envelope) {
		if env.Origin == r.NodeID {
			return
		}
		r.Broadcast(env.Room, env.Payload)
	})
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.profileSessions = make(map[string]map[string]struct{})
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) joinLocked(room string, conn *Connection) {
	members := r.rooms[room]
	if members == nil {
		members = make(map[string]*Connection)
		r.rooms[room] = members
	}
	members[conn.ID] = conn

	memberships := r.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.ID] = memberships
	}
	memberships[room] = struct{}{}
}

func (r *Router) detachLocked(sessionID string) {
	conn, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(r.sessions, sessionID)

	if set, ok := r.profileSessions[conn.ProfileID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(r.profileSessions, conn.ProfileID)
		}
	}

	for room := range r.sessionRooms[sessionID] {
		r.leaveLocked(room, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(room string, sessionID string) {
	if sessionID == "" {
		return
	}
	members := r.rooms[room]
	if members == nil {
		return
	}
	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, room)
		if len(memberships) == 0 {
			delete(r.sessionRooms, sessionID)
		}
	}
}
