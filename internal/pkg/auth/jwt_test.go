package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/yigit/lms/internal/app/models"
	"github.com/yigit/lms/internal/pkg/apperrors"
)

func newTestService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "lms.test",
	})
}

func TestTokenRoundTripKeepsRoles(t *testing.T) {
	svc := newTestService(time.Hour)
	principal := &models.Principal{
		UserID: 7,
		Email:  "t@school.edu",
		Roles:  []models.Role{models.RoleTeacher, models.RoleAdmin},
	}

	token, _, err := svc.GenerateToken(principal)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := svc.ValidateAndExtractClaims(token)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims: %v", err)
	}

	got := claims.Principal()
	if got.UserID != 7 || got.Email != "t@school.edu" {
		t.Fatalf("unexpected principal: %+v", got)
	}
	if !got.HasRole(models.RoleTeacher) || !got.HasRole(models.RoleAdmin) || got.HasRole(models.RoleStudent) {
		t.Fatalf("unexpected roles: %v", got.Roles)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)
	token, _, err := svc.GenerateToken(&models.Principal{UserID: 1, Roles: []models.Role{models.RoleStudent}})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := svc.ValidateAndExtractClaims(token); !errors.Is(err, apperrors.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, TokenIssuer: "lms.test"})
	token, _, err := other.GenerateToken(&models.Principal{UserID: 1, Roles: []models.Role{models.RoleAdmin}})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := newTestService(time.Hour).ValidateAndExtractClaims(token); !errors.Is(err, apperrors.ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestClaimsPrincipalDropsUnknownRoles(t *testing.T) {
	claims := &Claims{UserID: 3, Roles: []string{"student", "ROOT", ""}}
	p := claims.Principal()
	if len(p.Roles) != 1 || p.Roles[0] != models.RoleStudent {
		t.Fatalf("roles: got=%v", p.Roles)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{header: "bearer abc", want: "abc"},
		{header: "", wantErr: true},
		{header: "Basic xyz", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ExtractBearerToken(tc.header)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.header)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got=%q err=%v", tc.header, got, err)
		}
	}
}
