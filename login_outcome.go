package sessionkit

import (
	"time"

	"github.com/meridianlabs/sessionkit/token"
)

// LoginOutcome is the discriminated result of a successful credential
// verification. Exactly two shapes exist: [LoginPending], when credentials
// were accepted but no session has been issued yet, and [LoginComplete],
// when the backend issued a token pair immediately (legacy path). Failed
// verification is reported through the error return of [Client.Login], so
// callers switch exhaustively on the two success shapes:
//
//	switch out := outcome.(type) {
//	case sessionkit.LoginPending:
//		// confirm, then CompleteLogin(ctx, out.UserID)
//	case sessionkit.LoginComplete:
//		// session already stored
//	}
type LoginOutcome interface {
	isLoginOutcome()
}

// LoginPending reports that credentials were verified and a full session
// must now be obtained through [Client.CompleteLogin]. The token store has
// not been touched.
type LoginPending struct {
	UserID   string
	IssuedAt time.Time
}

func (LoginPending) isLoginOutcome() {}

// LoginComplete reports that the backend issued tokens directly. The
// session has already been written to the token store.
type LoginComplete struct {
	User    *User
	Session token.Session
}

func (LoginComplete) isLoginOutcome() {}
