package user

import (
	"testing"
	"time"
)

func TestMakeToken(t *testing.T) {
	usr := User{ID: "c1fcd808-4a22-4a43-a836-64b6d6a08f11", Username: "kratos", Email: "kratos@omega.gr"}
	if err := usr.SetPassword("Sp@rta300"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}

	token, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	if err := verifyToken(usr, token); err != nil {
		t.Errorf("verifyToken() failed: %v", err)
	}

	// token is single-use: changing the password invalidates it
	if err := usr.SetPassword("N3w-Password"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err := verifyToken(usr, token); err != errInvalidToken {
		t.Errorf("verifyToken() = %v; want %v", err, errInvalidToken)
	}
}

func TestVerifyToken_expired(t *testing.T) {
	usr := User{ID: "aa0c060d-5371-4f82-9bb1-0d04dc3ad45b", Username: "atreus"}
	if err := usr.SetPassword("B0y!said-kratos"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}

	origNow := NowFunc
	defer func() { NowFunc = origNow }()
	NowFunc = func() time.Time { return time.Now().AddDate(0, 0, -30) }

	token, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	if err := verifyToken(usr, token); err != errTokenExpired {
		t.Errorf("verifyToken() = %v; want %v", err, errTokenExpired)
	}
}

func TestVerifyToken_garbage(t *testing.T) {
	usr := User{ID: "11e38a5c-4a43-44e3-88a2-8db5d35e3dcb"}
	for _, token := range []string{"", "lol", "a-b", "MFZWG-zzz"} {
		if err := verifyToken(usr, token); err != errInvalidToken {
			t.Errorf("verifyToken(%q) = %v; want %v", token, err, errInvalidToken)
		}
	}
}
