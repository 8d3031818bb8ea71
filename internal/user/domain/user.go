package domain

import (
	"time"

	postdomain "github.com/follownet/backend/internal/post/domain"
)

// User is the stored shape. PasswordHash never crosses the service boundary;
// every outward-facing type below is hash-stripped.
type User struct {
	Username     string
	PasswordHash string
	Created      time.Time
	Following    []string
	Posts        []string
}

// Summary is the minimal public shape of a user.
type Summary struct {
	Username string    `json:"username"`
	Created  time.Time `json:"created"`
}

// View is a user resolved to a bounded follow-graph depth. Entries in
// Following are either fully resolved views or shallow stubs with empty
// Following and Posts, depending on the remaining depth.
type View struct {
	Username  string            `json:"username"`
	Created   time.Time         `json:"created"`
	Following []View            `json:"following"`
	Posts     []postdomain.Post `json:"posts"`
}

// Stub returns the shallow, not-further-expanded view of a user.
func Stub(u User) View {
	return View{
		Username:  u.Username,
		Created:   u.Created,
		Following: []View{},
		Posts:     []postdomain.Post{},
	}
}
