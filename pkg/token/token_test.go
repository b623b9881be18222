package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testSecret はテスト用の署名シークレット。
const testSecret = "test-secret-key-for-unit-tests"

// TestIssue はIssuerのトークン発行を検証する。
func TestIssue(t *testing.T) {
	t.Parallel()

	t.Run("正常にトークンを発行できること", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(testSecret, 24*time.Hour)
		tokenStr, err := issuer.Issue("test@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}
		if tokenStr == "" {
			t.Fatal("Issue()が空文字列を返した")
		}
	})

	t.Run("subjectクレームにメールアドレスが設定されること", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(testSecret, 24*time.Hour)
		tokenStr, err := issuer.Issue("sub@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if claims.Subject != "sub@example.com" {
			t.Errorf("Subject = %q, want %q", claims.Subject, "sub@example.com")
		}
		if claims.Issuer != issuerName {
			t.Errorf("Issuer = %q, want %q", claims.Issuer, issuerName)
		}
	})

	t.Run("TTL指定時に有効期限が設定されること", func(t *testing.T) {
		t.Parallel()

		before := time.Now()
		issuer := NewIssuer(testSecret, 1*time.Hour)
		tokenStr, err := issuer.Issue("exp@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if claims.ExpiresAt == nil {
			t.Fatal("ExpiresAtが設定されていない")
		}
		expected := before.Add(1 * time.Hour)
		if claims.ExpiresAt.Time.Before(expected.Add(-1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最小値: %v", claims.ExpiresAt.Time, expected.Add(-1*time.Minute))
		}
		if claims.ExpiresAt.Time.After(expected.Add(1 * time.Minute)) {
			t.Errorf("ExpiresAt = %v, 期待する最大値: %v", claims.ExpiresAt.Time, expected.Add(1*time.Minute))
		}
	})

	t.Run("TTLが0の場合に有効期限が付かないこと", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(testSecret, 0)
		tokenStr, err := issuer.Issue("noexp@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		}); err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if claims.ExpiresAt != nil {
			t.Errorf("ExpiresAt = %v, want nil", claims.ExpiresAt)
		}
	})

	t.Run("署名アルゴリズムがHS256であること", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(testSecret, 24*time.Hour)
		tokenStr, err := issuer.Issue("alg@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		parsed, _, err := new(jwt.Parser).ParseUnverified(tokenStr, &jwt.RegisteredClaims{})
		if err != nil {
			t.Fatalf("トークンのパースに失敗: %v", err)
		}
		if parsed.Method.Alg() != "HS256" {
			t.Errorf("署名アルゴリズム = %q, want %q", parsed.Method.Alg(), "HS256")
		}
	})
}

// TestVerify はVerifierのトークン検証を検証する。
func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("発行したトークンからsubjectを取り出せること", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(testSecret, 24*time.Hour)
		verifier := NewVerifier(testSecret)

		tokenStr, err := issuer.Issue("roundtrip@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		email, err := verifier.Verify(tokenStr)
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}
		if email != "roundtrip@example.com" {
			t.Errorf("Verify() = %q, want %q", email, "roundtrip@example.com")
		}
	})

	t.Run("無期限トークンも検証に成功すること", func(t *testing.T) {
		t.Parallel()

		issuer := NewIssuer(testSecret, 0)
		verifier := NewVerifier(testSecret)

		tokenStr, err := issuer.Issue("forever@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		email, err := verifier.Verify(tokenStr)
		if err != nil {
			t.Fatalf("Verify()でエラーが発生: %v", err)
		}
		if email != "forever@example.com" {
			t.Errorf("Verify() = %q, want %q", email, "forever@example.com")
		}
	})

	t.Run("解析できない文字列でErrMalformedが返ること", func(t *testing.T) {
		t.Parallel()

		verifier := NewVerifier(testSecret)
		if _, err := verifier.Verify("not-a-token"); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify() error = %v, want ErrMalformed", err)
		}
	})

	t.Run("異なるシークレットで署名されたトークンでErrBadSignatureが返ること", func(t *testing.T) {
		t.Parallel()

		other := NewIssuer("different-secret", 24*time.Hour)
		verifier := NewVerifier(testSecret)

		tokenStr, err := other.Issue("badsig@example.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		if _, err := verifier.Verify(tokenStr); !errors.Is(err, ErrBadSignature) {
			t.Errorf("Verify() error = %v, want ErrBadSignature", err)
		}
	})

	t.Run("期限切れトークンでErrExpiredが返ること", func(t *testing.T) {
		t.Parallel()

		claims := jwt.RegisteredClaims{
			Subject:   "expired@example.com",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			Issuer:    issuerName,
		}
		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		verifier := NewVerifier(testSecret)
		if _, err := verifier.Verify(tokenStr); !errors.Is(err, ErrExpired) {
			t.Errorf("Verify() error = %v, want ErrExpired", err)
		}
	})

	t.Run("subjectが空のトークンでErrMalformedが返ること", func(t *testing.T) {
		t.Parallel()

		claims := jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   issuerName,
		}
		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		verifier := NewVerifier(testSecret)
		if _, err := verifier.Verify(tokenStr); !errors.Is(err, ErrMalformed) {
			t.Errorf("Verify() error = %v, want ErrMalformed", err)
		}
	})

	t.Run("noneアルゴリズムのトークンが拒否されること", func(t *testing.T) {
		t.Parallel()

		claims := jwt.RegisteredClaims{
			Subject:  "none@example.com",
			IssuedAt: jwt.NewNumericDate(time.Now()),
		}
		tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}

		verifier := NewVerifier(testSecret)
		if _, err := verifier.Verify(tokenStr); err == nil {
			t.Fatal("noneアルゴリズムのトークンが検証を通過した")
		}
	})
}
