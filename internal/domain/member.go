package domain

// ConnState is the lifecycle state of a connection.
type ConnState int

const (
	Unbound ConnState = iota
	Joined
)

func (s ConnState) String() string {
	if s == Joined {
		return "joined"
	}
	return "unbound"
}

// Connection is the registry record of one live client channel.
// No transport or lifecycle logic here.
type Connection struct {
	ID          ConnID
	DisplayName string
	RoomID      RoomID
	State       ConnState
}

// Member is the public view of a connection inside a room.
type Member struct {
	ID          ConnID `json:"connectionId"`
	DisplayName string `json:"displayName"`
}

func (c Connection) Member() Member {
	return Member{ID: c.ID, DisplayName: c.DisplayName}
}
