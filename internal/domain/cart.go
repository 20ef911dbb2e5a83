package domain

// CartLine pairs a product snapshot with a positive quantity. The JSON shape
// is what gets persisted under the cart key.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

const guestKey = "guest"

// Identity partitions cart persistence. A guest is scoped by its session;
// the zero value is the single-device guest with no session.
type Identity struct {
	UserID       string
	GuestSession string
}

var Guest = Identity{}

func NewIdentity(userID string) Identity {
	return Identity{UserID: userID}
}

// NewGuestIdentity returns the anonymous identity of one client session.
func NewGuestIdentity(session string) Identity {
	return Identity{GuestSession: session}
}

func (i Identity) IsGuest() bool {
	return i.UserID == ""
}

// Key is the identity part of the persistence key.
func (i Identity) Key() string {
	if i.IsGuest() {
		if i.GuestSession != "" {
			return guestKey + "-" + i.GuestSession
		}
		return guestKey
	}
	return i.UserID
}

func (i Identity) String() string {
	return i.Key()
}
