package services

import (
	"testing"
	"time"

	"github.com/stresssense/stresssense/internal/models"
)

type stubAuthStore struct {
	users map[string]*models.User
	orgs  map[string]*models.Org
}

func newStubAuthStore() *stubAuthStore {
	return &stubAuthStore{users: map[string]*models.User{}, orgs: map[string]*models.Org{}}
}

func (s *stubAuthStore) FindUserByEmail(email string) (*models.User, error) {
	return s.users[email], nil
}

func (s *stubAuthStore) AddUser(u *models.User) error {
	s.users[u.Email] = u
	return nil
}

func (s *stubAuthStore) AddOrg(o *models.Org) error {
	s.orgs[o.ID] = o
	return nil
}

func staticSigner(uid, oid, email, role string, ttl time.Duration) (string, error) {
	return "token:" + uid + ":" + oid + ":" + role, nil
}

func TestRegisterAndLogin(t *testing.T) {
	store := newStubAuthStore()
	svc := NewAuthService(store, staticSigner)

	res, err := svc.Register("lead@acme.io", "hunter22", "Acme")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.Token == "" || res.OrgID == "" || res.UserID == "" {
		t.Fatalf("register result = %+v", res)
	}
	if res.Role != "admin" {
		t.Fatalf("first user role = %q, want admin", res.Role)
	}
	if len(store.orgs) != 1 {
		t.Fatalf("orgs = %d, want 1", len(store.orgs))
	}
	u := store.users["lead@acme.io"]
	if u == nil {
		t.Fatal("user not stored")
	}
	if string(u.PassHash) == "hunter22" {
		t.Fatal("password stored in plaintext")
	}

	login, err := svc.Login("lead@acme.io", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.OrgID != res.OrgID || login.UserID != res.UserID {
		t.Fatalf("login result = %+v, want same identity as register", login)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), staticSigner)
	if _, err := svc.Register("a@b.c", "pw123456", "Org"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register("a@b.c", "pw123456", "Org")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorConflict {
		t.Fatalf("duplicate register: err = %v, want conflict", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc := NewAuthService(newStubAuthStore(), staticSigner)
	if _, err := svc.Register("a@b.c", "goodpass", "Org"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Login("a@b.c", "wrongpass")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("wrong password: err = %v, want unauthorized", err)
	}
	_, err = svc.Login("nobody@b.c", "goodpass")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorUnauthorized {
		t.Fatalf("unknown email: err = %v, want unauthorized", err)
	}
	_, err = svc.Login("", "")
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("empty credentials: err = %v, want invalid", err)
	}
}
