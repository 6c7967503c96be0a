package domain

// GuestSentinel is the owner id used when the caller supplies none.
// The frontend generates a stable per-browser guest id; this sentinel only
// covers clients that never did.
const GuestSentinel = "guest-user"

// Owner identifies who a cart belongs to: either a guest session or an
// authenticated user. The auth layer resolves which one before calling us.
type Owner struct {
	ID    string
	Guest bool
}

func GuestOwner(sessionID string) Owner {
	if sessionID == "" {
		sessionID = GuestSentinel
	}
	return Owner{ID: sessionID, Guest: true}
}

func AuthenticatedOwner(userID string) Owner {
	return Owner{ID: userID, Guest: false}
}

func (o Owner) Valid() bool {
	return o.ID != ""
}
