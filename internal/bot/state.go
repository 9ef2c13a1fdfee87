package bot

import (
	"context"
	"errors"
	"sync"

	"gitlab.com/yelinaung/billed/internal/bills"
	"gitlab.com/yelinaung/billed/internal/logger"
	"gitlab.com/yelinaung/billed/internal/models"
	"gitlab.com/yelinaung/billed/internal/newbill"
	"gitlab.com/yelinaung/billed/internal/repository"
	"gitlab.com/yelinaung/billed/internal/routes"
	"gitlab.com/yelinaung/billed/internal/session"
)

var errNotEmployee = errors.New("session does not belong to an employee")

// chatState is the page state of one private chat. Handlers hold mu for
// the whole update so that a chat sees its updates one at a time.
type chatState struct {
	mu sync.Mutex

	sessions *session.MemoryStore
	route    string

	// listGen and formGen are bumped whenever the page of that kind is
	// replaced; replaced pages can no longer navigate.
	listGen int
	formGen int

	list *bills.List
	rows []bills.Row

	form *newbill.Form
	// errorMsgID is the message showing the rejected file error, 0 if none.
	errorMsgID int
}

func (b *Bot) chat(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.chats[chatID]
	if !ok {
		st = &chatState{sessions: session.NewMemoryStore()}
		b.chats[chatID] = st
	}
	return st
}

// currentSession returns the employee session of the chat, restoring it from
// the employee directory when the process has restarted since the login.
func (b *Bot) currentSession(ctx context.Context, st *chatState, userID int64) (session.Session, error) {
	sess, err := session.Current(st.sessions)
	if errors.Is(err, session.ErrNoUser) && b.employees != nil {
		emp, lookupErr := b.employees.GetByTelegramID(ctx, userID)
		switch {
		case lookupErr == nil:
			sess = session.Session{Type: models.UserTypeEmployee, Email: emp.Email}
			if saveErr := session.Save(st.sessions, sess); saveErr != nil {
				return session.Session{}, saveErr
			}
			err = nil
		case !errors.Is(lookupErr, repository.ErrEmployeeNotFound):
			logger.Log.Error().Err(lookupErr).
				Str("user_hash", logger.HashChatID(userID)).
				Msg("Failed to restore employee session")
		}
	}
	if err != nil {
		return session.Session{}, err
	}
	if !sess.IsEmployee() {
		return session.Session{}, errNotEmployee
	}
	return sess, nil
}

// navigator returns a navigation callback that is honored only while the
// counter still holds its current value.
func (st *chatState) navigator(gen *int) routes.Navigate {
	opened := *gen
	return func(path string) {
		if opened != *gen {
			return
		}
		st.route = path
	}
}

// openList replaces the bills page of the chat.
func (st *chatState) openList(b *Bot, sess session.Session) *bills.List {
	st.listGen++
	st.list = bills.New(b.store, sess, st.navigator(&st.listGen))
	st.rows = nil
	st.route = routes.Bills
	return st.list
}

// openForm replaces the new bill form of the chat.
func (st *chatState) openForm(b *Bot, sess session.Session) *newbill.Form {
	st.formGen++
	st.form = newbill.New(b.store, sess, st.navigator(&st.formGen))
	st.errorMsgID = 0
	st.route = routes.NewBill
	return st.form
}

func (st *chatState) closeForm() {
	st.formGen++
	st.form = nil
	st.errorMsgID = 0
}

func (st *chatState) reset() {
	st.sessions.Clear()
	st.closeForm()
	st.listGen++
	st.list = nil
	st.rows = nil
	st.route = routes.Login
}
