package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundtrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatalf("hash equals the plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatalf("valid password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatalf("wrong password accepted")
	}
}

func TestJWTRoundtrip(t *testing.T) {
	token, err := SignJWT(7, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	uid, err := ParseJWT(token, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != 7 {
		t.Fatalf("uid = %d, want 7", uid)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := SignJWT(7, "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "other secret"); err == nil {
		t.Fatalf("token verified with the wrong secret")
	}
}

func TestJWTExpired(t *testing.T) {
	token, err := SignJWT(7, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := ParseJWT("not.a.token", "secret"); err == nil {
		t.Fatalf("garbage token accepted")
	}
}
