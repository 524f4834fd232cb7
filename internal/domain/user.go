package domain

const (
	MsgUserNotFound = "User Not Found !"
	MsgCreated      = "Created !"
	MsgDeleted      = "deleted !"
	MsgInvalidJSON  = "Invalid JSON !"
	MsgNameRequired = "Name Required !"
	MsgInternal     = "Internal Error !"
)

// User is the only stored entity. A nil Name means the client never sent one
// and is omitted from JSON output.
type User struct {
	ID   int64   `json:"id"`
	Name *string `json:"name,omitempty"`
}

// Message is the body of every non-record response.
type Message struct {
	Message string `json:"message"`
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Clone returns a copy that shares no memory with u.
func (u User) Clone() User {
	u.Name = clonePtr(u.Name)
	return u
}
