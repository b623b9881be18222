package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/cinehub/pkg/token"
)

// IdentityHeader は認証済みユーザーのメールアドレスを
// 内部サービスへ伝播するためのHTTPヘッダーキー。
const IdentityHeader = "X-User-Email"

// contextKeyEmail はGinコンテキストにメールアドレスを格納するためのキー。
const contextKeyEmail = "email"

// GatewayAuth はBearerトークンを検証するgateway専用のGinミドルウェアを返す。
//
// プリフライトリクエスト（OPTIONS）は検証せずに素通しする。
// それ以外のリクエストはAuthorizationヘッダーの検証に成功した場合のみ
// 通過させ、検証済みのメールアドレスをIdentityHeaderとして下流に付与する。
// 元のAuthorizationヘッダーと外部から持ち込まれた同名の識別ヘッダーは
// 下流に転送しない。
//
// ヘッダー欠落・スキーム不一致・署名不正・期限切れのいずれで失敗しても、
// 認証方式の情報を漏らさないよう応答は401・空ボディで統一する。
func GatewayAuth(verifier *token.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || tokenStr == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		email, err := verifier.Verify(tokenStr)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		c.Request.Header.Del("Authorization")
		c.Request.Header.Set(IdentityHeader, email)
		c.Set(contextKeyEmail, email)
		c.Next()
	}
}

// TrustedIdentity はgatewayが付与したIdentityHeaderを認証済みクレームとして
// 読み取る内部サービス用のGinミドルウェアを返す。
//
// 内部サービスはgatewayを経由しない経路から到達できないという
// デプロイ上の不変条件を前提とする。ヘッダーが無いリクエストは
// gatewayを経由していないとみなして401を返す。
func TrustedIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetHeader(IdentityHeader)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "認証情報が必要です",
			})
			return
		}
		c.Set(contextKeyEmail, email)
		c.Next()
	}
}

// GetEmail はGinコンテキストから認証済みユーザーのメールアドレスを取得する。
// GatewayAuthまたはTrustedIdentityミドルウェアが事前に適用されている必要がある。
func GetEmail(c *gin.Context) string {
	v, _ := c.Get(contextKeyEmail)
	if email, ok := v.(string); ok {
		return email
	}
	return ""
}
