package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	authdb "github.com/nao1215/cinehub/internal/auth/db"
	"github.com/nao1215/cinehub/pkg/middleware"
	"github.com/nao1215/cinehub/pkg/token"
)

// Server は認証サービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *authdb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// issuer はBearerトークンの発行器。
	issuer *token.Issuer
}

// NewServer は新しい認証サーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/auth.db?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:  router,
		port:    port,
		queries: authdb.New(sqlDB),
		db:      sqlDB,
		issuer:  token.NewIssuer(jwtSecret, tokenTTL()),
	}
	s.setupRoutes()

	return s, nil
}

// tokenTTL は環境変数JWT_TTLからトークンの有効期間を読み取る。
// 未設定または不正な値の場合は24時間を使用する。"0"を指定すると
// トークンは無期限に有効となる（シークレットのローテーションまで）。
func tokenTTL() time.Duration {
	v := os.Getenv("JWT_TTL")
	if v == "" {
		return 24 * time.Hour
	}
	ttl, err := time.ParseDuration(v)
	if err != nil || ttl < 0 {
		log.Printf("JWT_TTLの値が不正なためデフォルト値を使用します: %q", v)
		return 24 * time.Hour
	}
	return ttl
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	auth := s.router.Group("/auth")
	{
		// ユーザー登録（認証不要）
		auth.POST("/register", s.handleRegister())
		// ログイン（認証不要）
		auth.POST("/login", s.handleLogin())
		// 認証済みユーザー情報の取得（gateway経由の信頼ヘッダーが必要）
		auth.GET("/me", middleware.TrustedIdentity(), s.handleGetCurrentUser())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth"})
	})
}

// registerRequest はユーザー登録リクエストのJSON構造。
type registerRequest struct {
	// Name はユーザーの表示名。
	Name string `json:"name" binding:"required"`
	// Email はメールアドレス。トークンのsubjectとして使用される。
	Email string `json:"email" binding:"required,email"`
	// Password は平文パスワード。6文字以上。
	Password string `json:"password" binding:"required,min=6"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	// Email はメールアドレス。
	Email string `json:"email" binding:"required,email"`
	// Password は平文パスワード。
	Password string `json:"password" binding:"required"`
}

// userResponse はユーザー情報のJSONレスポンス構造。
type userResponse struct {
	// ID はユーザーの一意識別子。
	ID int64 `json:"id"`
	// Email はメールアドレス。
	Email string `json:"email"`
	// Name は表示名。
	Name string `json:"name"`
	// AvatarURL はアバター画像のURL。
	AvatarURL string `json:"avatar_url,omitempty"`
}

// authResponse は登録・ログイン成功時のJSONレスポンス構造。
type authResponse struct {
	// Token は発行されたBearerトークン。
	Token string `json:"token"`
	// TokenType はトークンの種別。常に"Bearer"。
	TokenType string `json:"token_type"`
	// User は認証されたユーザーの情報。
	User userResponse `json:"user"`
}

// toUserResponse はDB行をJSONレスポンスに変換する。
func toUserResponse(u authdb.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarUrl,
	}
}

// isUniqueViolation はSQLiteのUNIQUE制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

// handleRegister はユーザー登録を処理するハンドラを返す。
// パスワードをbcryptでハッシュ化して保存し、Bearerトークンを発行する。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー登録に失敗しました"})
			log.Printf("パスワードハッシュ化エラー: %v", err)
			return
		}

		user, err := s.queries.CreateUser(c.Request.Context(), authdb.CreateUserParams{
			Email:        req.Email,
			PasswordHash: string(hash),
			Name:         req.Name,
			AvatarUrl:    "",
			Provider:     "LOCAL",
		})
		if err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "このメールアドレスは使用できません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ユーザー登録に失敗しました"})
			log.Printf("ユーザー作成エラー: %v", err)
			return
		}

		tokenStr, err := s.issuer.Issue(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, authResponse{
			Token:     tokenStr,
			TokenType: "Bearer",
			User:      toUserResponse(user),
		})
	}
}

// handleLogin はログインを処理するハンドラを返す。
// アカウントの不存在とパスワード不一致を区別できないよう、
// どちらの場合も同一のエラー応答を返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		user, err := s.queries.GetUserByEmail(c.Request.Context(), req.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "メールアドレスまたはパスワードが正しくありません"})
			return
		}

		tokenStr, err := s.issuer.Issue(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの発行に失敗しました"})
			log.Printf("トークン発行エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, authResponse{
			Token:     tokenStr,
			TokenType: "Bearer",
			User:      toUserResponse(user),
		})
	}
}

// handleGetCurrentUser は認証済みユーザーの情報を返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)

		user, err := s.queries.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "ユーザーが見つかりません"})
			return
		}

		c.JSON(http.StatusOK, toUserResponse(user))
	}
}
