package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ttttiu/WAS/internal/common"
	"github.com/ttttiu/WAS/internal/dbx"
	"github.com/ttttiu/WAS/internal/logging"
	"github.com/ttttiu/WAS/internal/server/auth"
	"github.com/ttttiu/WAS/internal/server/config"
	"github.com/ttttiu/WAS/internal/server/models"
	usersrepo "github.com/ttttiu/WAS/internal/server/repositories/users"
	"github.com/ttttiu/WAS/internal/server/sessions"
)

// --- helpers ---

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.MaxLoginAttempts = 3
	return cfg
}

func newService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *UserService {
	t.Helper()
	cfg := testConfig()
	authn, err := sessions.NewAuthenticator(cfg)
	if err != nil {
		t.Fatalf("NewAuthenticator error: %v", err)
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewUserService(db, rm, authn, cfg, logger)
}

type loginStateUpdate struct {
	id        int64
	attempts  int
	lastLogin *time.Time
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	findOut *models.User
	findErr error

	listOut []*models.User
	listErr error

	deleteErr error
	updateErr error

	updates []loginStateUpdate
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	created := *u
	created.ID = 1
	return &created, nil
}

func (f *fakeUsersRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeUsersRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeUsersRepo) UpdateLoginState(ctx context.Context, id int64, attempts int, lastLogin *time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, loginStateUpdate{id: id, attempts: attempts, lastLogin: lastLogin})
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	return f.deleteErr
}

func (f *fakeUsersRepo) ListAll(ctx context.Context) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return m.u }
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func storedUser(password string) *models.User {
	salt, _ := auth.GenerateSalt(16)
	return &models.User{
		ID:           7,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: auth.HashPassword(password, salt),
		Salt:         salt,
		Role:         auth.RoleUser,
		IsActive:     true,
	}
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newService(t, db, rm)

	u, err := s.Register(context.Background(), "alice", "a@x.com", "longpassword1", "")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected assigned id, got %+v", u)
	}
	if u.Role != auth.RoleUser {
		t.Fatalf("empty role must default to user, got %q", u.Role)
	}
	if !u.IsActive {
		t.Fatalf("new users must start active")
	}
	if u.PasswordHash == "" || u.Salt == "" {
		t.Fatalf("hash and salt must be populated: %+v", u)
	}
	if u.PasswordHash != auth.HashPassword("longpassword1", u.Salt) {
		t.Fatalf("stored hash must match the salted digest")
	}
}

func TestRegister_PasswordTooShort(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{}}
	s := newService(t, db, rm)

	_, err := s.Register(context.Background(), "alice", "a@x.com", "short", "")
	if !errors.Is(err, common.ErrPasswordTooShort) {
		t.Fatalf("want common.ErrPasswordTooShort, got %v", err)
	}
}

func TestRegister_DuplicateKey(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: common.ErrDuplicateKey}}
	s := newService(t, db, rm)

	_, err := s.Register(context.Background(), "alice", "a@x.com", "longpassword1", "")
	if !errors.Is(err, common.ErrDuplicateKey) {
		t.Fatalf("want common.ErrDuplicateKey, got %v", err)
	}
}

func TestRegister_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{u: &fakeUsersRepo{createErr: errBoom{}}}
	s := newService(t, db, rm)

	_, err := s.Register(context.Background(), "alice", "a@x.com", "longpassword1", "")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

// --- Login ---

func TestLogin_Success(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeUsersRepo{findOut: storedUser("longpassword1")}
	s := newService(t, db, &fakeRepoManager{u: repo})

	token, err := s.Login(context.Background(), "alice", "longpassword1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	if len(repo.updates) != 1 {
		t.Fatalf("expected one login-state write, got %d", len(repo.updates))
	}
	up := repo.updates[0]
	if up.id != 7 || up.attempts != 0 || up.lastLogin == nil {
		t.Fatalf("success must reset attempts and set last login: %+v", up)
	}

	claims, err := s.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken error: %v", err)
	}
	if claims.Username != "alice" || claims.Role != auth.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_WrongPasswordPersistsIncrement(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	repo := &fakeUsersRepo{findOut: storedUser("correct")}
	s := newService(t, db, &fakeRepoManager{u: repo})

	_, err := s.Login(context.Background(), "alice", "wrong")
	if !errors.Is(err, common.ErrInvalidCredentials) {
		t.Fatalf("want common.ErrInvalidCredentials, got %v", err)
	}

	// The increment must commit even though the login failed.
	if len(repo.updates) != 1 || repo.updates[0].attempts != 1 {
		t.Fatalf("expected persisted attempts=1, got %+v", repo.updates)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLogin_LockedAccountSkipsWrite(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := storedUser("correct")
	user.LoginAttempts = 3
	repo := &fakeUsersRepo{findOut: user}
	s := newService(t, db, &fakeRepoManager{u: repo})

	_, err := s.Login(context.Background(), "alice", "correct")
	if !errors.Is(err, common.ErrAccountLocked) {
		t.Fatalf("want common.ErrAccountLocked, got %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatalf("locked account must not write login state: %+v", repo.updates)
	}
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	user := storedUser("correct")
	user.IsActive = false
	s := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{findOut: user}})

	_, err := s.Login(context.Background(), "alice", "correct")
	if !errors.Is(err, common.ErrAccountDeactivated) {
		t.Fatalf("want common.ErrAccountDeactivated, got %v", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	s := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{findErr: common.ErrNotFound}})

	_, err := s.Login(context.Background(), "ghost", "whatever")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestLogin_UpdateErrorIsInternal(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeUsersRepo{findOut: storedUser("correct"), updateErr: errBoom{}}
	s := newService(t, db, &fakeRepoManager{u: repo})

	_, err := s.Login(context.Background(), "alice", "correct")
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("want common.ErrInternal, got %v", err)
	}
}

// --- Lockout scenario ---

func TestLogin_LockoutScenario(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	user := storedUser("longpassword1")
	repo := &fakeUsersRepo{findOut: user}
	s := newService(t, db, &fakeRepoManager{u: repo})

	// Three wrong passwords with maxLoginAttempts=3.
	for i := 1; i <= 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		_, err := s.Login(context.Background(), "alice", "wrong")
		if !errors.Is(err, common.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: want invalid credentials, got %v", i, err)
		}
		// Feed the persisted counter back into the next read.
		repo.findOut = user.WithLoginState(repo.updates[len(repo.updates)-1].attempts, user.LastLogin)
	}

	// Correct password no longer helps.
	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := s.Login(context.Background(), "alice", "longpassword1")
	if !errors.Is(err, common.ErrAccountLocked) {
		t.Fatalf("want common.ErrAccountLocked after lockout, got %v", err)
	}
}

// --- Logout / CheckPermission ---

func TestLogoutAndCheckPermission(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	s := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{findOut: storedUser("longpassword1")}})

	token, err := s.Login(context.Background(), "alice", "longpassword1")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	if !s.Logout(context.Background(), token) {
		t.Fatalf("logout of a valid token must report true")
	}
	if s.Logout(context.Background(), "garbage") {
		t.Fatalf("logout of garbage must report false")
	}

	if !s.CheckPermission(token, auth.RoleUser) {
		t.Fatalf("user token must satisfy required=user")
	}
	if s.CheckPermission(token, auth.RoleAdmin) {
		t.Fatalf("user token must not satisfy required=admin")
	}
	if !s.CheckPermission(token, "superuser") {
		t.Fatalf("unrecognized required role must pass for any valid token")
	}
}

// --- ListUsers / DeleteUser ---

func TestListUsers(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	want := []*models.User{storedUser("x1234567"), storedUser("y1234567")}
	s := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{listOut: want}})

	got, err := s.ListUsers(context.Background())
	if err != nil || len(got) != 2 {
		t.Fatalf("ListUsers: got (%v, %v)", got, err)
	}

	sErr := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{listErr: errBoom{}}})
	_, err = sErr.ListUsers(context.Background())
	if err == nil || !regexp.MustCompile(`error listing users: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{}})
	if err := s.DeleteUser(context.Background(), 7); err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}

	sMissing := newService(t, db, &fakeRepoManager{u: &fakeUsersRepo{deleteErr: common.ErrNotFound}})
	if err := sMissing.DeleteUser(context.Background(), 7); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
