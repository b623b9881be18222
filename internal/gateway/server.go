package gateway

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/cinehub/pkg/middleware"
	"github.com/nao1215/cinehub/pkg/token"
)

// Server はAPI GatewayサービスのHTTPサーバー。
// 内部サービスへのプロキシのみを行い、自身はデータを持たない。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// serviceURLs は内部サービスのURL。
	serviceURLs serviceURLConfig
	// verifier はBearerトークンの検証器。
	verifier *token.Verifier
	// httpClient はプロキシに使用するHTTPクライアント。
	httpClient *http.Client
}

// serviceURLConfig は内部サービスのURL設定。
type serviceURLConfig struct {
	Auth    string
	Movie   string
	Library string
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(port string) (*Server, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	urls := serviceURLConfig{
		Auth:    getEnvOr("AUTH_SERVICE_URL", "http://localhost:8081"),
		Movie:   getEnvOr("MOVIE_SERVICE_URL", "http://localhost:8082"),
		Library: getEnvOr("LIBRARY_SERVICE_URL", "http://localhost:8083"),
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:      router,
		port:        port,
		serviceURLs: urls,
		verifier:    token.NewVerifier(jwtSecret),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// 登録とログイン以外のAPIエンドポイントはすべてトークン検証を通過する
// 必要がある。/movies/saveと/movies/internalはサービス間連携専用のため
// 公開しない。
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	// 認証不要のエンドポイント
	api.POST("/auth/register", s.handleProxy(s.serviceURLs.Auth, "/auth/register"))
	api.POST("/auth/login", s.handleProxy(s.serviceURLs.Auth, "/auth/login"))

	// 認証必須のエンドポイント
	authed := api.Group("", middleware.GatewayAuth(s.verifier))
	{
		authed.GET("/auth/me", s.handleProxy(s.serviceURLs.Auth, "/auth/me"))

		// 映画カタログの参照系
		authed.GET("/movies/search", s.handleProxy(s.serviceURLs.Movie, "/movies/search"))
		authed.GET("/movies/discover", s.handleProxy(s.serviceURLs.Movie, "/movies/discover"))
		authed.GET("/movies/top-rated", s.handleProxy(s.serviceURLs.Movie, "/movies/top-rated"))
		authed.GET("/movies/trending", s.handleProxy(s.serviceURLs.Movie, "/movies/trending"))
		authed.GET("/movies/genre/:slug", s.handleProxyWithParam(s.serviceURLs.Movie, "/movies/genre/", "slug"))
		authed.GET("/movies/:tmdb_id/details", s.handleProxyWithParam(s.serviceURLs.Movie, "/movies/", "tmdb_id", "/details"))

		// ユーザーライブラリ
		authed.GET("/user/movies", s.handleProxy(s.serviceURLs.Library, "/user/movies"))
		authed.POST("/user/movies", s.handleProxy(s.serviceURLs.Library, "/user/movies"))
		authed.PUT("/user/movies/:id", s.handleProxyWithParam(s.serviceURLs.Library, "/user/movies/", "id"))
		authed.DELETE("/user/movies/:id", s.handleProxyWithParam(s.serviceURLs.Library, "/user/movies/", "id"))
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// handleProxy は指定されたサービスにリクエストをプロキシするハンドラを返す。
func (s *Server) handleProxy(baseURL, path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.doProxy(c, baseURL+path)
	}
}

// handleProxyWithParam はURLパラメータを含むプロキシハンドラを返す。
func (s *Server) handleProxyWithParam(baseURL, pathPrefix, paramName string, pathSuffix ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		proxyURL := baseURL + pathPrefix + c.Param(paramName)
		for _, suffix := range pathSuffix {
			proxyURL += suffix
		}
		s.doProxy(c, proxyURL)
	}
}

// doProxy はリクエストを内部サービスにプロキシする共通処理。
// Authorizationヘッダーは転送せず、認証済みの場合のみX-User-Email
// ヘッダーを付与する。内部サービスの応答はステータスとボディを
// そのまま中継する。
func (s *Server) doProxy(c *gin.Context, url string) {
	if c.Request.URL.RawQuery != "" {
		url += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, url, c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "プロキシリクエストの作成に失敗しました"})
		return
	}

	if ct := c.GetHeader("Content-Type"); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	if email := middleware.GetEmail(c); email != "" {
		req.Header.Set(middleware.IdentityHeader, email)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "内部サービスとの通信に失敗しました"})
		log.Printf("プロキシエラー: url=%s, error=%v", url, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "レスポンスの読み取りに失敗しました"})
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
