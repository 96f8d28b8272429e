package collide

import "github.com/akmonengine/impulse/constraint"

// ContactData is the fixed-capacity output buffer shared by every generator. Contacts
// are written in order and never past the capacity given at creation.
type ContactData struct {
	contacts     []constraint.Contact
	contactsLeft int

	// Friction and Restitution are copied into each generated contact
	Friction    float64
	Restitution float64
	// Tolerance lets vertices within this distance of a plane count as touching
	Tolerance float64
}

func NewContactData(capacity int) *ContactData {
	return &ContactData{
		contacts:     make([]constraint.Contact, capacity),
		contactsLeft: capacity,
	}
}

// Reset empties the buffer, keeping the material settings
func (d *ContactData) Reset() {
	d.contactsLeft = len(d.contacts)
}

func (d *ContactData) HasMoreContacts() bool {
	return d.contactsLeft > 0
}

func (d *ContactData) ContactsLeft() int {
	return d.contactsLeft
}

func (d *ContactData) Capacity() int {
	return len(d.contacts)
}

// Count returns the number of contacts written since the last Reset
func (d *ContactData) Count() int {
	return len(d.contacts) - d.contactsLeft
}

// Slice returns the written contacts. It aliases the buffer until the next Reset.
func (d *ContactData) Slice() []constraint.Contact {
	return d.contacts[:d.Count()]
}

// next returns the first free slot, cleared. The caller must have checked
// HasMoreContacts and must commit the slot with addContacts.
func (d *ContactData) next() *constraint.Contact {
	c := &d.contacts[d.Count()]
	*c = constraint.Contact{
		Friction:    d.Friction,
		Restitution: d.Restitution,
	}
	return c
}

func (d *ContactData) addContacts(count int) {
	d.contactsLeft -= count
}
