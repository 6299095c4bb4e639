package gate

import (
	"encoding/json"
)

// Device identifies this device to the far end of the uplink
type Device struct {
	id    string
	model string
	name  string
}

// DeviceMsgAnnounce is the first message the uplink sends on each connection
type DeviceMsgAnnounce struct {
	Path  string
	Id    string
	Model string
	Name  string
}

// DeviceMsgStatus is injected onto the bus when bring-up ends
type DeviceMsgStatus struct {
	Path  string
	Id    string
	State string
}

// NewDevice panics unless id, model and name are all valid IDs
func NewDevice(id, model, name string) Device {
	if !ValidId(id) || !ValidId(model) || !ValidId(name) {
		panic("something invalid: id = \"" + id + "\", model = \"" +
			model + "\", name = \"" + name + "\"")
	}
	return Device{id: id, model: model, name: name}
}

func (d Device) Id() string    { return d.id }
func (d Device) Model() string { return d.model }
func (d Device) Name() string  { return d.name }

func (d Device) String() string {
	return "[Id: " + d.id + ", Model: " + d.model + ", Name: " + d.name + "]"
}

// Announce returns the JSON announcement message
func (d Device) Announce() []byte {
	ann := DeviceMsgAnnounce{"announce", d.id, d.model, d.name}
	// a struct of strings always marshals
	bytes, _ := json.Marshal(&ann)
	return bytes
}

// Status returns the JSON status message for the bring-up state
func (d Device) Status(state State) []byte {
	msg := DeviceMsgStatus{"status", d.id, state.String()}
	bytes, _ := json.Marshal(&msg)
	return bytes
}

// Handle is the bus packet handler.  A {"Path":"get/announce"} request is
// answered with the announcement; every other packet is broadcast.
func (d Device) Handle(pkt *Packet) {
	var msg struct{ Path string }
	if json.Unmarshal(pkt.Bytes(), &msg) == nil && msg.Path == "get/announce" {
		pkt.SetBytes(d.Announce()).Reply()
		return
	}
	pkt.Broadcast()
}

// A valid ID is a non-empty string with only [a-z], [A-Z], [0-9], or
// underscore characters.
func ValidId(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') &&
			(r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') &&
			(r != '_') {
			return false
		}
	}
	return len(s) > 0
}
