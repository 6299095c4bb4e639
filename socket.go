package gate

// Socketer defines a socket interface
type Socketer interface {
	// Close the socket
	Close()
	// Send the pkt on the socket
	Send(*Packet) error
	// Name of socket
	String() string
	// Tag returns the socket tag
	Tag() string
	// SetTag set the socket tag.  A socket tag is like a VLAN ID.
	SetTag(string)
	// SetFlag on socket
	SetFlag(uint32)
	// TestFlag returns true if flag is set
	TestFlag(uint32) bool
}

// Socket is the base Socketer.  Embed it and override Send and Close.
type Socket struct {
	name  string
	tag   string
	flags uint32
}

const (
	// Socket is broadcast-ready.  If flag is not set, pkts will not be
	// broadcast on this socket.
	SocketFlagBcast uint32 = 1 << iota
)

// NewSocket returns a Socket with the default tag ""
func NewSocket(name string, flags uint32) Socket {
	return Socket{name: name, flags: flags}
}

func (s *Socket) Close() {
}

func (s *Socket) Send(pkt *Packet) error {
	return nil
}

func (s *Socket) String() string {
	return s.name
}

func (s *Socket) Tag() string {
	return s.tag
}

func (s *Socket) SetTag(tag string) {
	s.tag = tag
}

func (s *Socket) SetFlag(flag uint32) {
	s.flags |= flag
}

func (s *Socket) TestFlag(flag uint32) bool {
	return (s.flags & flag) != 0
}
