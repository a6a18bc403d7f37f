package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"thesis-manager/internal/cache"
	"thesis-manager/internal/mailer"
	"thesis-manager/internal/model"
	"thesis-manager/internal/queue"
	"thesis-manager/internal/security"
)

type fakeAdminStore struct {
	mu     sync.Mutex
	admins map[string]model.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: map[string]model.Admin{}}
}

func (f *fakeAdminStore) FindByUsername(_ context.Context, username string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if strings.EqualFold(a.Username, strings.TrimSpace(username)) {
			return a, nil
		}
	}
	return model.Admin{}, model.ErrPrincipalNotFound
}

func (f *fakeAdminStore) FindByID(_ context.Context, id string) (model.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return model.Admin{}, model.ErrPrincipalNotFound
	}
	return a, nil
}

func (f *fakeAdminStore) Create(_ context.Context, admin model.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if strings.EqualFold(a.Username, admin.Username) {
			return model.ErrPrincipalExists
		}
	}
	f.admins[admin.ID] = admin
	return nil
}

func (f *fakeAdminStore) UpdatePassword(_ context.Context, id string, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return model.ErrPrincipalNotFound
	}
	a.PasswordHash = hash
	f.admins[id] = a
	return nil
}

func (f *fakeAdminStore) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.admins), nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}}
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrPrincipalNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, model.ErrPrincipalNotFound
	}
	return u, nil
}

func (f *fakeUserStore) Create(_ context.Context, user model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return model.ErrPrincipalExists
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id string, hash string) error {
	return f.update(id, func(u *model.User) { u.PasswordHash = hash })
}

func (f *fakeUserStore) SetActive(_ context.Context, id string, active bool) error {
	return f.update(id, func(u *model.User) { u.IsActive = active })
}

func (f *fakeUserStore) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (f *fakeUserStore) update(id string, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.ErrPrincipalNotFound
	}
	fn(&u)
	f.users[id] = u
	return nil
}

type fixture struct {
	now       time.Time
	admins    *fakeAdminStore
	users     *fakeUserStore
	sessions  *cache.MemoryCache[model.SessionRecord]
	otps      *cache.MemoryCache[model.OTPRecord]
	mailQueue *queue.MemoryQueue
	issuer    *security.TokenIssuer
	auth      *AuthService
	passwords *PasswordService
	accounts  *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		admins:    newFakeAdminStore(),
		users:     newFakeUserStore(),
		sessions:  cache.NewMemoryCache[model.SessionRecord](),
		otps:      cache.NewMemoryCache[model.OTPRecord](),
		mailQueue: queue.NewMemoryQueue(16),
	}
	clock := func() time.Time { return f.now }
	f.sessions.SetClock(clock)
	f.otps.SetClock(clock)

	issuer, err := security.NewTokenIssuer(security.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Hour,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	issuer.SetClock(clock)
	f.issuer = issuer

	store := NewSessionStore(f.sessions, 7*24*time.Hour)
	dispatcher := mailer.NewDispatcher(f.mailQueue)
	templates := mailer.Templates{App: "Thesis"}

	f.auth = NewAuthService(f.admins, f.users, store, issuer)
	f.passwords = NewPasswordService(f.admins, f.users, f.otps, 10*time.Minute, dispatcher, templates)
	f.accounts = NewAccountService(f.admins, f.users, store, dispatcher, templates)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) addAdmin(t *testing.T, id string, username string, password string) model.Admin {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	admin := model.Admin{ID: id, Username: username, PasswordHash: hash}
	require.NoError(t, f.admins.Create(context.Background(), admin))
	return admin
}

func (f *fixture) addUser(t *testing.T, user model.User, password string) model.User {
	t.Helper()

	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	user.PasswordHash = hash
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

// nextMail pops the next queued email.
func (f *fixture) nextMail(t *testing.T) mailer.Message {
	t.Helper()

	job, err := f.mailQueue.Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	require.NotNil(t, job, "expected a queued email")
	require.Equal(t, mailer.JobTypeSendEmail, job.Type)

	var msg mailer.Message
	require.NoError(t, job.Decode(&msg))
	return msg
}

func student(id string, email string) model.User {
	return model.User{
		ID:       id,
		Email:    email,
		FullName: "Student " + id,
		IsActive: true,
		Student:  &model.Student{UserID: id, StudentID: "S-" + id},
	}
}

func lecturer(id string, email string, moderator bool) model.User {
	return model.User{
		ID:       id,
		Email:    email,
		FullName: "Lecturer " + id,
		IsActive: true,
		Lecturer: &model.Lecturer{UserID: id, LecturerID: "L-" + id, IsModerator: moderator},
	}
}
