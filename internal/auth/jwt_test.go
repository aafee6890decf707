package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// newTestTokenService creates a TokenService with a fixed, known secret so
// tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// ISSUE
// =========================================================================

func TestIssue_LooksLikeJWT(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(map[string]any{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if got := strings.Count(token, "."); got != 2 {
		t.Errorf("Issue() token has %d dots, want 2", got)
	}
}

func TestIssue_SamePayloadTwiceGivesDistinctTokens(t *testing.T) {
	ts := newTestTokenService(t)
	payload := map[string]any{"email": "a@x.com"}

	first, err := ts.Issue(payload)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	second, err := ts.Issue(payload)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if first == second {
		t.Fatal("Issue() returned identical tokens for two issuances")
	}

	for _, tok := range []string{first, second} {
		id, err := ts.Verify(tok)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if id.Email != "a@x.com" {
			t.Errorf("Email = %q, want %q", id.Email, "a@x.com")
		}
	}
}

func TestIssue_ExpiresInOneHour(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue(map[string]any{"email": "a@x.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	id, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	exp, _ := id.Claims["exp"].(float64)
	iat, _ := id.Claims["iat"].(float64)
	if got := time.Duration(exp-iat) * time.Second; got != TokenTTL {
		t.Errorf("exp-iat = %v, want %v", got, TokenTTL)
	}
}

func TestIssue_DoesNotMutatePayload(t *testing.T) {
	ts := newTestTokenService(t)
	payload := map[string]any{"email": "a@x.com"}

	if _, err := ts.Issue(payload); err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if len(payload) != 1 {
		t.Errorf("payload was modified: %v", payload)
	}
}

func TestIssue_OverridesClientSuppliedExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	// A client trying to mint a long-lived token by sending its own exp.
	farFuture := time.Now().Add(365 * 24 * time.Hour).Unix()
	token, err := ts.Issue(map[string]any{"email": "a@x.com", "exp": farFuture})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	id, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	exp, _ := id.Claims["exp"].(float64)
	if int64(exp) >= farFuture {
		t.Errorf("exp = %v, client-supplied value was not overwritten", exp)
	}
}

// =========================================================================
// VERIFY
// =========================================================================

func TestVerify_KeepsExtraClaims(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue(map[string]any{"email": "a@x.com", "name": "Asha"})

	id, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.Claims["name"] != "Asha" {
		t.Errorf("Claims[name] = %v, want Asha", id.Claims["name"])
	}
}

func TestVerify_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.IssueWithTTL(map[string]any{"email": "a@x.com"}, -1*time.Second)
	if err != nil {
		t.Fatalf("IssueWithTTL() error = %v", err)
	}

	_, err = ts.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerify_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue(map[string]any{"email": "a@x.com"})
	tampered := token[:len(token)-3] + "xxx"

	_, err := ts.Verify(tampered)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!")
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")

	token, _ := ts1.Issue(map[string]any{"email": "a@x.com"})

	if _, err := ts2.Verify(token); err == nil {
		t.Fatal("Verify() should fail when using a different secret")
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	ts := newTestTokenService(t)

	// Same secret, but HS512 instead of HS256.
	claims := jwt.MapClaims{
		"email": "a@x.com",
		"iss":   issuer,
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(ts.secret)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ts.Verify(token); err == nil {
		t.Fatal("Verify() should reject a token signed with HS512")
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	ts := newTestTokenService(t)

	claims := jwt.MapClaims{"email": "a@x.com", "iss": issuer}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)

	if _, err := ts.Verify(token); err == nil {
		t.Fatal("Verify() should reject a token without exp")
	}
}

func TestVerify_GarbageInput(t *testing.T) {
	ts := newTestTokenService(t)

	for _, input := range []string{"", "not.a.jwt.token", "abc"} {
		if _, err := ts.Verify(input); err == nil {
			t.Errorf("Verify(%q) should return an error", input)
		}
	}
}

func TestVerify_TokenWithoutEmail(t *testing.T) {
	ts := newTestTokenService(t)

	// Issuance does not validate the payload, so an email-less token is valid;
	// it just carries an empty identity that no gate will admit.
	token, _ := ts.Issue(map[string]any{"name": "nobody"})

	id, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if id.Email != "" {
		t.Errorf("Email = %q, want empty", id.Email)
	}
}
