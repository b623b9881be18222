package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nao1215/cinehub/pkg/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testSecret はテスト用の署名シークレット。
const testSecret = "test-secret-key-for-unit-tests"

// newAuthTestRouter はGatewayAuthを適用したテスト用ルーターを生成する。
// 下流ハンドラが観測したリクエストヘッダーを記録する。
func newAuthTestRouter(t *testing.T, captured *http.Header) *gin.Engine {
	t.Helper()

	router := gin.New()
	router.Use(GatewayAuth(token.NewVerifier(testSecret)))
	router.Any("/test", func(c *gin.Context) {
		*captured = c.Request.Header.Clone()
		c.JSON(http.StatusOK, gin.H{"email": GetEmail(c)})
	})
	return router
}

// TestGatewayAuth はGatewayAuthミドルウェアを検証する。
func TestGatewayAuth(t *testing.T) {
	t.Parallel()

	t.Run("有効なトークンでリクエストが下流に到達すること", func(t *testing.T) {
		t.Parallel()

		issuer := token.NewIssuer(testSecret, 24*time.Hour)
		tokenStr, err := issuer.Issue("a@x.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		var captured http.Header
		router := newAuthTestRouter(t, &captured)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("下流リクエストにX-User-Emailのみが付与されること", func(t *testing.T) {
		t.Parallel()

		issuer := token.NewIssuer(testSecret, 24*time.Hour)
		tokenStr, err := issuer.Issue("a@x.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		var captured http.Header
		router := newAuthTestRouter(t, &captured)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := captured.Get(IdentityHeader); got != "a@x.com" {
			t.Errorf("%s = %q, want %q", IdentityHeader, got, "a@x.com")
		}
		if got := captured.Get("Authorization"); got != "" {
			t.Errorf("Authorizationヘッダーが下流に転送された: %q", got)
		}
	})

	t.Run("外部から持ち込まれたX-User-Emailが上書きされること", func(t *testing.T) {
		t.Parallel()

		issuer := token.NewIssuer(testSecret, 24*time.Hour)
		tokenStr, err := issuer.Issue("real@x.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		var captured http.Header
		router := newAuthTestRouter(t, &captured)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenStr)
		req.Header.Set(IdentityHeader, "spoofed@x.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := captured.Get(IdentityHeader); got != "real@x.com" {
			t.Errorf("%s = %q, want %q", IdentityHeader, got, "real@x.com")
		}
		if got := captured.Values(IdentityHeader); len(got) != 1 {
			t.Errorf("%sヘッダーの数 = %d, want 1", IdentityHeader, len(got))
		}
	})

	t.Run("OPTIONSリクエストは検証なしで素通しされること", func(t *testing.T) {
		t.Parallel()

		var captured http.Header
		router := newAuthTestRouter(t, &captured)

		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})

	// ヘッダー欠落・スキーム不一致・不正トークン・別シークレット署名・期限切れの
	// いずれも同一の401・空ボディになることを検証する。
	t.Run("すべての検証失敗が401・空ボディに収束すること", func(t *testing.T) {
		t.Parallel()

		// 期限切れのクレームを手動で生成する
		expiredClaims := jwt.RegisteredClaims{
			Subject:   "expired@x.com",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte(testSecret))
		if err != nil {
			t.Fatalf("トークンの署名に失敗: %v", err)
		}
		otherIssuer := token.NewIssuer("different-secret", 24*time.Hour)
		badSig, err := otherIssuer.Issue("badsig@x.com")
		if err != nil {
			t.Fatalf("Issue()でエラーが発生: %v", err)
		}

		cases := map[string]string{
			"ヘッダーなし":        "",
			"Bearer接頭辞なし":   "some-token",
			"不正なトークン":       "Bearer not-a-token",
			"別シークレットの署名": "Bearer " + badSig,
			"期限切れ":            "Bearer " + expired,
		}

		for name, authHeader := range cases {
			authHeader := authHeader
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				var captured http.Header
				reached := false
				router := gin.New()
				router.Use(GatewayAuth(token.NewVerifier(testSecret)))
				router.GET("/test", func(c *gin.Context) {
					reached = true
					captured = c.Request.Header.Clone()
					c.JSON(http.StatusOK, gin.H{})
				})

				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				if authHeader != "" {
					req.Header.Set("Authorization", authHeader)
				}
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)

				if w.Code != http.StatusUnauthorized {
					t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
				}
				if w.Body.Len() != 0 {
					t.Errorf("ボディ = %q, want 空", w.Body.String())
				}
				if reached {
					t.Errorf("認証失敗のリクエストが下流に到達した: headers=%v", captured)
				}
			})
		}
	})
}

// TestTrustedIdentity はTrustedIdentityミドルウェアを検証する。
func TestTrustedIdentity(t *testing.T) {
	t.Parallel()

	t.Run("X-User-Emailヘッダーからメールアドレスを取得できること", func(t *testing.T) {
		t.Parallel()

		var gotEmail string
		router := gin.New()
		router.Use(TrustedIdentity())
		router.GET("/test", func(c *gin.Context) {
			gotEmail = GetEmail(c)
			c.JSON(http.StatusOK, gin.H{})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(IdentityHeader, "trusted@x.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("ステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
		if gotEmail != "trusted@x.com" {
			t.Errorf("GetEmail() = %q, want %q", gotEmail, "trusted@x.com")
		}
	})

	t.Run("ヘッダーが無い場合に401が返ること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(TrustedIdentity())
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusUnauthorized)
		}
	})
}

// TestGetEmail はGetEmail関数を検証する。
func TestGetEmail(t *testing.T) {
	t.Parallel()

	t.Run("コンテキストに設定されていない場合に空文字列が返ること", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		if got := GetEmail(c); got != "" {
			t.Errorf("GetEmail() = %q, want empty string", got)
		}
	})

	t.Run("文字列以外の型が設定されている場合に空文字列が返ること", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(contextKeyEmail, 12345)

		if got := GetEmail(c); got != "" {
			t.Errorf("GetEmail() = %q, want empty string", got)
		}
	})
}
