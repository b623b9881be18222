package movie

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	moviedb "github.com/nao1215/cinehub/internal/movie/db"
	"github.com/nao1215/cinehub/pkg/middleware"
)

// genreSlugs はURLのジャンルスラッグとTMDBのジャンルIDとの対応表。
var genreSlugs = map[string]int64{
	"action":          28,
	"adventure":       12,
	"animation":       16,
	"comedy":          35,
	"crime":           80,
	"documentary":     99,
	"drama":           18,
	"family":          10751,
	"fantasy":         14,
	"history":         36,
	"horror":          27,
	"music":           10402,
	"mystery":         9648,
	"romance":         10749,
	"science-fiction": 878,
	"sci-fi":          878,
	"thriller":        53,
	"war":             10752,
	"western":         37,
}

// searchResultLimit は検索結果の最大件数。
const searchResultLimit = 10

// Server は映画カタログサービスのHTTPサーバー。
// TMDB APIのプロキシと、保存済み映画のローカルキャッシュを提供する。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// queries はsqlcが生成したクエリ実行オブジェクト。
	queries *moviedb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// tmdb はTMDB APIクライアント。
	tmdb *TMDBClient
	// imageBaseURL はTMDB画像URLのベース。
	imageBaseURL string
}

// NewServer は新しい映画カタログサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/movie.db?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	tmdbBaseURL := os.Getenv("TMDB_BASE_URL")
	if tmdbBaseURL == "" {
		tmdbBaseURL = "https://api.themoviedb.org/3"
	}
	imageBaseURL := os.Getenv("TMDB_IMAGE_BASE_URL")
	if imageBaseURL == "" {
		imageBaseURL = "https://image.tmdb.org/t/p"
	}
	apiKey := os.Getenv("TMDB_API_KEY")
	if apiKey == "" {
		log.Println("TMDB_API_KEYが未設定のため、TMDB APIの呼び出しは失敗します")
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	s := &Server{
		router:       router,
		port:         port,
		queries:      moviedb.New(sqlDB),
		db:           sqlDB,
		tmdb:         NewTMDBClient(tmdbBaseURL, apiKey, 10),
		imageBaseURL: imageBaseURL,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	movies := s.router.Group("/movies")
	{
		// TMDBカタログの参照系
		movies.GET("/search", s.handleSearch())
		movies.GET("/discover", s.handleDiscover())
		movies.GET("/top-rated", s.handleTopRated())
		movies.GET("/trending", s.handleTrending())
		movies.GET("/genre/:slug", s.handleByGenre())
		movies.GET("/:tmdb_id/details", s.handleDetails())

		// サービス間連携用（libraryサービスのみが呼び出す）
		movies.POST("/save/:tmdb_id", s.handleSave())
		movies.GET("/internal/:id", s.handleGetByID())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "movie"})
	})
}

// movieSummary は一覧系エンドポイントのJSONレスポンス構造。
type movieSummary struct {
	// TmdbID はTMDB上の映画ID。
	TmdbID int64 `json:"tmdb_id"`
	// Title は映画タイトル。
	Title string `json:"title"`
	// Year は公開年。公開日が不明な場合は0。
	Year int64 `json:"year"`
	// Overview はあらすじ。
	Overview string `json:"overview"`
	// PosterURL はポスター画像の完全なURL。
	PosterURL string `json:"poster_url"`
	// BackdropURL は背景画像の完全なURL。
	BackdropURL string `json:"backdrop_url"`
	// Rating はTMDBの平均評価。
	Rating float64 `json:"rating"`
	// Language は原語。
	Language string `json:"language"`
}

// movieResponse は保存済み映画のJSONレスポンス構造。
type movieResponse struct {
	// ID はローカルデータベース上の映画ID。
	ID int64 `json:"id"`
	// TmdbID はTMDB上の映画ID。
	TmdbID int64 `json:"tmdb_id"`
	// Title は映画タイトル。
	Title string `json:"title"`
	// Year は公開年。
	Year int64 `json:"year"`
	// Genres はジャンル名の一覧。
	Genres []string `json:"genres"`
	// Runtime は上映時間（分）。
	Runtime int64 `json:"runtime"`
	// Language は原語。
	Language string `json:"language"`
	// Overview はあらすじ。
	Overview string `json:"overview"`
	// PosterURL はポスター画像の完全なURL。
	PosterURL string `json:"poster_url"`
	// BackdropURL は背景画像の完全なURL。
	BackdropURL string `json:"backdrop_url"`
	// Rating はTMDBの平均評価。
	Rating float64 `json:"rating"`
	// Director は監督名。
	Director string `json:"director"`
	// Actors は主要キャスト（カンマ区切り）。
	Actors string `json:"actors"`
}

// toMovieResponse はDB行をJSONレスポンスに変換する。
// genresカラムはJSON配列のテキストとして保存されている。
func toMovieResponse(m moviedb.Movie) movieResponse {
	var genres []string
	if err := json.Unmarshal([]byte(m.Genres), &genres); err != nil {
		genres = []string{}
	}
	return movieResponse{
		ID:          m.ID,
		TmdbID:      m.TmdbID,
		Title:       m.Title,
		Year:        m.Year,
		Genres:      genres,
		Runtime:     m.Runtime,
		Language:    m.Language,
		Overview:    m.Overview,
		PosterURL:   m.PosterUrl,
		BackdropURL: m.BackdropUrl,
		Rating:      m.Rating,
		Director:    m.Director,
		Actors:      m.Actors,
	}
}

// releaseYear は"2006-01-02"形式の公開日から年を抽出する。
func releaseYear(releaseDate string) int64 {
	if len(releaseDate) < 4 {
		return 0
	}
	year, err := strconv.ParseInt(releaseDate[:4], 10, 64)
	if err != nil {
		return 0
	}
	return year
}

// imageURL は画像パス断片から完全なURLを組み立てる。
// パスが空の場合は空文字列を返す。
func (s *Server) imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return s.imageBaseURL + "/" + size + path
}

// toSummaries はTMDBの一覧結果をJSONレスポンスに変換する。
func (s *Server) toSummaries(results []TMDBMovieSummary) []movieSummary {
	summaries := make([]movieSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, movieSummary{
			TmdbID:      r.ID,
			Title:       r.Title,
			Year:        releaseYear(r.ReleaseDate),
			Overview:    r.Overview,
			PosterURL:   s.imageURL("w500", r.PosterPath),
			BackdropURL: s.imageURL("original", r.BackdropPath),
			Rating:      r.VoteAverage,
			Language:    r.OriginalLanguage,
		})
	}
	return summaries
}

// pageParam はクエリパラメータからページ番号を読み取る。
// 未指定または不正な値の場合は1を返す。
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// handleSearch は映画検索を処理するハンドラを返す。
func (s *Server) handleSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "検索クエリqを指定してください"})
			return
		}

		results, err := s.tmdb.Search(c.Request.Context(), query)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画の検索に失敗しました"})
			log.Printf("TMDB検索エラー: %v", err)
			return
		}

		if len(results) > searchResultLimit {
			results = results[:searchResultLimit]
		}
		c.JSON(http.StatusOK, gin.H{"movies": s.toSummaries(results)})
	}
}

// handleDiscover は人気順の映画一覧を返すハンドラを返す。
func (s *Server) handleDiscover() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := s.tmdb.Discover(c.Request.Context(), pageParam(c))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画一覧の取得に失敗しました"})
			log.Printf("TMDB discoverエラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"movies": s.toSummaries(results)})
	}
}

// handleTopRated は高評価順の映画一覧を返すハンドラを返す。
func (s *Server) handleTopRated() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := s.tmdb.TopRated(c.Request.Context(), pageParam(c))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画一覧の取得に失敗しました"})
			log.Printf("TMDB top-ratedエラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"movies": s.toSummaries(results)})
	}
}

// handleTrending は週間トレンドの映画一覧を返すハンドラを返す。
func (s *Server) handleTrending() gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := s.tmdb.Trending(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画一覧の取得に失敗しました"})
			log.Printf("TMDB trendingエラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"movies": s.toSummaries(results)})
	}
}

// handleByGenre は指定ジャンルの映画一覧を返すハンドラを返す。
// 未知のスラッグは400を返す。
func (s *Server) handleByGenre() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		genreID, ok := genreSlugs[slug]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("未知のジャンルです: %s", slug)})
			return
		}

		results, err := s.tmdb.ByGenre(c.Request.Context(), genreID, pageParam(c))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画一覧の取得に失敗しました"})
			log.Printf("TMDBジャンル検索エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"movies": s.toSummaries(results)})
	}
}

// handleDetails はTMDBの映画詳細をクレジット付きで返すハンドラを返す。
func (s *Server) handleDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		tmdbID, err := strconv.ParseInt(c.Param("tmdb_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "映画IDが不正です"})
			return
		}

		details, err := s.tmdb.Details(c.Request.Context(), tmdbID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画詳細の取得に失敗しました"})
			log.Printf("TMDB詳細取得エラー: %v", err)
			return
		}
		c.JSON(http.StatusOK, details)
	}
}

// directorName はクレジットから監督名を抽出する。
func directorName(credits TMDBCredits) string {
	for _, crew := range credits.Crew {
		if crew.Job == "Director" {
			return crew.Name
		}
	}
	return ""
}

// topActors はクレジットから主要キャスト最大5名をカンマ区切りで返す。
func topActors(credits TMDBCredits) string {
	names := make([]string, 0, 5)
	for _, cast := range credits.Cast {
		if len(names) >= 5 {
			break
		}
		names = append(names, cast.Name)
	}
	return strings.Join(names, ", ")
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

// handleSave は映画のローカルキャッシュへの保存を処理するハンドラを返す。
// 保存済みの場合は既存行をそのまま返す（冪等）。未保存の場合は
// TMDBから詳細を取得してキャッシュする。
func (s *Server) handleSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		tmdbID, err := strconv.ParseInt(c.Param("tmdb_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "映画IDが不正です"})
			return
		}

		existing, err := s.queries.GetMovieByTmdbID(c.Request.Context(), tmdbID)
		if err == nil {
			c.JSON(http.StatusOK, toMovieResponse(existing))
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "映画の保存に失敗しました"})
			log.Printf("映画検索エラー: %v", err)
			return
		}

		details, err := s.tmdb.Details(c.Request.Context(), tmdbID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "映画詳細の取得に失敗しました"})
			log.Printf("TMDB詳細取得エラー: %v", err)
			return
		}

		genreNames := make([]string, 0, len(details.Genres))
		for _, g := range details.Genres {
			genreNames = append(genreNames, g.Name)
		}
		genresJSON, err := json.Marshal(genreNames)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "映画の保存に失敗しました"})
			log.Printf("ジャンルのシリアライズエラー: %v", err)
			return
		}

		saved, err := s.queries.CreateMovie(c.Request.Context(), moviedb.CreateMovieParams{
			TmdbID:      details.ID,
			Title:       details.Title,
			Year:        releaseYear(details.ReleaseDate),
			Genres:      string(genresJSON),
			Runtime:     details.Runtime,
			Language:    details.OriginalLanguage,
			Overview:    details.Overview,
			PosterUrl:   s.imageURL("w500", details.PosterPath),
			BackdropUrl: s.imageURL("original", details.BackdropPath),
			Rating:      details.VoteAverage,
			Director:    directorName(details.Credits),
			Actors:      topActors(details.Credits),
		})
		if err != nil {
			// 並行する保存リクエストに先を越された場合は既存行を返す
			if isUniqueViolation(err) {
				if existing, err := s.queries.GetMovieByTmdbID(c.Request.Context(), tmdbID); err == nil {
					c.JSON(http.StatusOK, toMovieResponse(existing))
					return
				}
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "映画の保存に失敗しました"})
			log.Printf("映画保存エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toMovieResponse(saved))
	}
}

// handleGetByID はローカルIDで保存済み映画を返すハンドラを返す。
func (s *Server) handleGetByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "映画IDが不正です"})
			return
		}

		m, err := s.queries.GetMovieByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "映画が見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "映画の取得に失敗しました"})
			log.Printf("映画取得エラー: %v", err)
			return
		}

		c.JSON(http.StatusOK, toMovieResponse(m))
	}
}
