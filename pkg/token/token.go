package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuerName はトークンのissクレームに設定する発行者名。
const issuerName = "cinehub-gateway"

var (
	// ErrMalformed はトークンを構造的に解析できないことを表す。
	ErrMalformed = errors.New("トークンの形式が不正")
	// ErrBadSignature は署名が現在のシークレットで検証できないことを表す。
	ErrBadSignature = errors.New("トークンの署名が不正")
	// ErrExpired はトークンの有効期限が過ぎていることを表す。
	ErrExpired = errors.New("トークンの有効期限切れ")
)

// Issuer は署名付きBearerトークンを発行する。
type Issuer struct {
	// secret はHMAC署名用のシークレット。
	secret []byte
	// ttl はトークンの有効期間。0の場合はexpクレームを付けない。
	ttl time.Duration
}

// NewIssuer は新しいIssuerを生成する。
// ttlに0を指定するとトークンは無期限に有効となる
// （シークレットのローテーションまで）。
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue は指定されたメールアドレスをsubjectとするトークンを発行する。
// 埋め込むクレームはsubject・発行日時・発行者のみで、
// ロール等の権限情報は含めない。
func (i *Issuer) Issue(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  email,
		IssuedAt: jwt.NewNumericDate(now),
		Issuer:   issuerName,
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

// Verifier はBearerトークンを検証してsubjectを取り出す。
type Verifier struct {
	// secret はHMAC署名検証用のシークレット。Issuerと同一である必要がある。
	secret []byte
}

// NewVerifier は新しいVerifierを生成する。
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify はトークンを検証し、subjectクレーム（メールアドレス）を返す。
// 署名検証と有効期限チェックはいずれも必須で、失敗時は
// ErrMalformed・ErrBadSignature・ErrExpiredのいずれかを返す。
// 副作用はなく、(トークン, シークレット)の純粋な関数である。
func (v *Verifier) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrBadSignature
		default:
			return "", ErrMalformed
		}
	}
	if !t.Valid || claims.Subject == "" {
		return "", ErrMalformed
	}
	return claims.Subject, nil
}
