package library

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	librarydb "github.com/nao1215/cinehub/internal/library/db"
	"github.com/nao1215/cinehub/pkg/httpclient"
	"github.com/nao1215/cinehub/pkg/middleware"
)

// validStatuses はライブラリエントリに指定できる視聴状態の一覧。
var validStatuses = map[string]bool{
	"WATCHED":   true,
	"WATCHLIST": true,
	"FAVORITE":  true,
}

// Server はユーザーライブラリサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *librarydb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// movieClient は映画カタログサービスへのHTTPクライアント。
	// 映画の保存（キャッシュ）要求に使用する。
	movieClient *httpclient.Client
	// enrichClient はエンリッチ用の短いタイムアウトを持つHTTPクライアント。
	enrichClient *httpclient.Client
}

// NewServer は新しいユーザーライブラリサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/library.db?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	movieURL := os.Getenv("MOVIE_SERVICE_URL")
	if movieURL == "" {
		movieURL = "http://localhost:8082"
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:       router,
		port:         port,
		queries:      librarydb.New(sqlDB),
		db:           sqlDB,
		movieClient:  httpclient.New(movieURL),
		enrichClient: httpclient.NewWithTimeout(movieURL, enrichTimeout),
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
// すべてのエンドポイントはgateway経由の信頼ヘッダーを必要とする。
func (s *Server) setupRoutes() {
	movies := s.router.Group("/user/movies", middleware.TrustedIdentity())
	{
		// ライブラリ一覧の取得（statusクエリで絞り込み可能）
		movies.GET("", s.handleList())
		// ライブラリへの追加
		movies.POST("", s.handleAdd())
		// エントリの部分更新
		movies.PUT("/:id", s.handleUpdate())
		// エントリの削除
		movies.DELETE("/:id", s.handleDelete())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "library"})
	})
}

// addRequest はライブラリ追加リクエストのJSON構造。
type addRequest struct {
	// TmdbID は追加する映画のTMDB上のID。
	TmdbID int64 `json:"tmdb_id" binding:"required"`
	// Status は視聴状態（WATCHED/WATCHLIST/FAVORITE）。
	Status string `json:"status" binding:"required"`
	// UserRating はユーザー自身の評価。省略可。
	UserRating int64 `json:"user_rating"`
	// PersonalNote はユーザーのメモ。省略可。
	PersonalNote string `json:"personal_note"`
}

// updateRequest はライブラリ更新リクエストのJSON構造。
// 省略されたフィールドは保存済みの値を維持する。
type updateRequest struct {
	// Status は視聴状態。
	Status *string `json:"status"`
	// UserRating はユーザー自身の評価。
	UserRating *int64 `json:"user_rating"`
	// PersonalNote はユーザーのメモ。
	PersonalNote *string `json:"personal_note"`
}

// savedMovie は映画カタログサービスの保存APIレスポンスのうち、
// エントリ作成に必要な部分。
type savedMovie struct {
	// ID は映画カタログサービス上のローカル映画ID。
	ID int64 `json:"id"`
	// TmdbID はTMDB上の映画ID。
	TmdbID int64 `json:"tmdb_id"`
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

// handleList は呼び出しユーザーのライブラリ一覧を返すハンドラを返す。
// statusクエリパラメータで視聴状態による絞り込みができる。
// 各エントリは独立にエンリッチされ、一部の失敗は他に影響しない。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)

		var entries []librarydb.UserMovie
		var err error
		if status := c.Query("status"); status != "" {
			if !validStatuses[status] {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("不正な視聴状態です: %s", status)})
				return
			}
			entries, err = s.queries.ListUserMoviesByStatus(c.Request.Context(), librarydb.ListUserMoviesByStatusParams{
				UserEmail: email,
				Status:    status,
			})
		} else {
			entries, err = s.queries.ListUserMovies(c.Request.Context(), email)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ライブラリの取得に失敗しました"})
			log.Printf("ライブラリ一覧取得エラー: %v", err)
			return
		}

		ctx := httpclient.WithEmail(c.Request.Context(), email)
		responses := make([]userMovieResponse, 0, len(entries))
		for _, entry := range entries {
			resp, _ := s.enrich(ctx, entry)
			responses = append(responses, resp)
		}

		c.JSON(http.StatusOK, gin.H{"movies": responses})
	}
}

// handleAdd はライブラリへの映画追加を処理するハンドラを返す。
// 先に映画カタログサービスへ映画の保存を依頼し、返されたローカル映画IDで
// エントリを作成する。同一映画の二重追加は409を返す。
func (s *Server) handleAdd() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)

		var req addRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}
		if !validStatuses[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("不正な視聴状態です: %s", req.Status)})
			return
		}

		ctx := httpclient.WithEmail(c.Request.Context(), email)
		var saved savedMovie
		if err := s.movieClient.PostJSON(ctx, fmt.Sprintf("/movies/save/%d", req.TmdbID), nil, &saved); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画情報の取得に失敗しました"})
			log.Printf("映画保存依頼エラー: tmdb_id=%d, err=%v", req.TmdbID, err)
			return
		}

		entry, err := s.queries.CreateUserMovie(c.Request.Context(), librarydb.CreateUserMovieParams{
			UserEmail:    email,
			MovieID:      saved.ID,
			TmdbID:       saved.TmdbID,
			Status:       req.Status,
			UserRating:   req.UserRating,
			PersonalNote: req.PersonalNote,
		})
		if err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "この映画はすでにライブラリに追加されています"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "ライブラリへの追加に失敗しました"})
			log.Printf("ライブラリ追加エラー: %v", err)
			return
		}

		resp, _ := s.enrich(ctx, entry)
		c.JSON(http.StatusCreated, resp)
	}
}

// findOwnedEntry はIDでエントリを取得し、呼び出しユーザーの所有を確認する。
// エントリが存在しない場合は404、所有者が異なる場合は403を応答済みにして
// falseを返す。
func (s *Server) findOwnedEntry(c *gin.Context, email string) (librarydb.UserMovie, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "エントリIDが不正です"})
		return librarydb.UserMovie{}, false
	}

	entry, err := s.queries.GetUserMovieByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "エントリが見つかりません"})
			return librarydb.UserMovie{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "エントリの取得に失敗しました"})
		log.Printf("エントリ取得エラー: %v", err)
		return librarydb.UserMovie{}, false
	}

	if entry.UserEmail != email {
		c.JSON(http.StatusForbidden, gin.H{"error": "このエントリを操作する権限がありません"})
		return librarydb.UserMovie{}, false
	}

	return entry, true
}

// handleUpdate はエントリの部分更新を処理するハンドラを返す。
// リクエストで省略されたフィールドは保存済みの値を維持する。
func (s *Server) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)

		entry, ok := s.findOwnedEntry(c, email)
		if !ok {
			return
		}

		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		status := entry.Status
		if req.Status != nil {
			if !validStatuses[*req.Status] {
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("不正な視聴状態です: %s", *req.Status)})
				return
			}
			status = *req.Status
		}
		rating := entry.UserRating
		if req.UserRating != nil {
			rating = *req.UserRating
		}
		note := entry.PersonalNote
		if req.PersonalNote != nil {
			note = *req.PersonalNote
		}

		updated, err := s.queries.UpdateUserMovie(c.Request.Context(), librarydb.UpdateUserMovieParams{
			Status:       status,
			UserRating:   rating,
			PersonalNote: note,
			ID:           entry.ID,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "エントリの更新に失敗しました"})
			log.Printf("エントリ更新エラー: %v", err)
			return
		}

		resp, _ := s.enrich(httpclient.WithEmail(c.Request.Context(), email), updated)
		c.JSON(http.StatusOK, resp)
	}
}

// handleDelete はエントリの削除を処理するハンドラを返す。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.GetEmail(c)

		entry, ok := s.findOwnedEntry(c, email)
		if !ok {
			return
		}

		if err := s.queries.DeleteUserMovie(c.Request.Context(), entry.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "エントリの削除に失敗しました"})
			log.Printf("エントリ削除エラー: %v", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
