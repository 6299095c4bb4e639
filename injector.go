package gate

// Injector is a bus socket for local code to put packets on the bus
type Injector struct {
	Socket
	bus *Bus
}

// NewInjector plugs a new injector into bus
func NewInjector(name string, bus *Bus) *Injector {
	i := &Injector{Socket: NewSocket(name, 0), bus: bus}
	bus.Plugin(i)
	return i
}

// Inject message as if it arrived on the injector socket
func (i *Injector) Inject(message []byte) error {
	return i.bus.Receive(i, message)
}

// Close unplugs the injector from its bus
func (i *Injector) Close() {
	i.bus.Unplug(i)
}
