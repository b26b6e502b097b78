package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/linkkeeper/internal/dbx"
	"github.com/dmitrijs2005/linkkeeper/internal/logging"
	"github.com/dmitrijs2005/linkkeeper/internal/server/auth"
	"github.com/dmitrijs2005/linkkeeper/internal/server/config"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/links"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/linkkeeper/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                       "k",
		ActivationTokenValidityDuration: 24 * time.Hour,
		SessionTokenValidityDuration:    time.Hour,
		ResetTokenValidityDuration:      10 * time.Minute,
		FrontendURL:                     "http://front.test",
		BaseURL:                         "http://short.test/",
		CodeLength:                      7,
		CodeMaxAttempts:                 10,
		PasswordHashCost:                bcrypt.MinCost,
	}
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeNotifier records delivered messages.
type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMessage
}

type sentMessage struct {
	To, Subject, HTML string
}

func (f *fakeNotifier) Deliver(_ context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{To: to, Subject: subject, HTML: html})
	return nil
}

func (f *fakeNotifier) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no message delivered")
	}
	return f.sent[len(f.sent)-1]
}

var linkTokenRe = regexp.MustCompile(`/(?:activate|reset-password)/([A-Za-z0-9_\-.]+)"`)

// tokenFrom pulls the token out of the link embedded in a message.
func tokenFrom(t *testing.T, m sentMessage) string {
	t.Helper()
	match := linkTokenRe.FindStringSubmatch(m.HTML)
	if match == nil {
		t.Fatalf("no token link in %q", m.HTML)
	}
	return match[1]
}

type accountEnv struct {
	svc      *AccountService
	repos    *memory.RepositoryManager
	notifier *fakeNotifier
	tokens   *auth.TokenService
	mock     sqlmock.Sqlmock
}

func newAccountEnv(t *testing.T) *accountEnv {
	t.Helper()
	db, mock := newSQLMockDB(t)
	repos := memory.NewRepositoryManager()
	n := &fakeNotifier{}
	tokens := auth.NewTokenService([]byte("k"))
	return &accountEnv{
		svc:      NewAccountService(db, repos, tokens, n, testConfig(), logging.Nop{}),
		repos:    repos,
		notifier: n,
		tokens:   tokens,
		mock:     mock,
	}
}

// register runs Register expecting a committed transaction.
func (e *accountEnv) register(t *testing.T, email, password string) {
	t.Helper()
	e.mock.ExpectBegin()
	e.mock.ExpectCommit()
	if err := e.svc.Register(context.Background(), RegisterInput{Email: email, Password: password, FirstName: "A", LastName: "B"}); err != nil {
		t.Fatalf("Register error: %v", err)
	}
}

// registerActive registers and activates a user and returns its id.
func (e *accountEnv) registerActive(t *testing.T, email, password string) string {
	t.Helper()
	e.register(t, email, password)
	if err := e.svc.Activate(context.Background(), tokenFrom(t, e.notifier.last(t))); err != nil {
		t.Fatalf("Activate error: %v", err)
	}
	u, err := e.repos.UsersRepo.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	return u.ID
}

// stubManager vends fixed repositories for error-path tests.
type stubManager struct {
	users users.Repository
	links links.Repository
}

func (m *stubManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *stubManager) Users(dbx.DBTX) users.Repository           { return m.users }
func (m *stubManager) Links(dbx.DBTX) links.Repository           { return m.links }

var errStore = errors.New("store unavailable")
