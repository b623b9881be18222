package movie

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// TMDBClient はTMDB APIへのHTTPクライアント。
// レートリミッタでAPIの呼び出し頻度を制限する。
type TMDBClient struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はTMDB APIのベースURL。
	baseURL string
	// apiKey はTMDB APIのアクセストークン（Bearer認証）。
	apiKey string
	// limiter はAPI呼び出しのレートリミッタ。
	limiter *rate.Limiter
}

// NewTMDBClient は新しいTMDB APIクライアントを生成する。
// rpsには1秒あたりの最大リクエスト数を指定する。
func NewTMDBClient(baseURL, apiKey string, rps int) *TMDBClient {
	return &TMDBClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

// TMDBMovieSummary はTMDBの一覧系APIが返す映画情報。
type TMDBMovieSummary struct {
	// ID はTMDB上の映画ID。
	ID int64 `json:"id"`
	// Title は映画タイトル。
	Title string `json:"title"`
	// OriginalTitle は原題。
	OriginalTitle string `json:"original_title"`
	// Overview はあらすじ。
	Overview string `json:"overview"`
	// PosterPath はポスター画像のパス断片。
	PosterPath string `json:"poster_path"`
	// BackdropPath は背景画像のパス断片。
	BackdropPath string `json:"backdrop_path"`
	// ReleaseDate は公開日（"2006-01-02"形式）。
	ReleaseDate string `json:"release_date"`
	// VoteAverage は平均評価。
	VoteAverage float64 `json:"vote_average"`
	// OriginalLanguage は原語。
	OriginalLanguage string `json:"original_language"`
}

// TMDBGenre はTMDBのジャンル情報。
type TMDBGenre struct {
	// ID はジャンルID。
	ID int64 `json:"id"`
	// Name はジャンル名。
	Name string `json:"name"`
}

// TMDBCastMember は出演者情報。
type TMDBCastMember struct {
	// Name は出演者名。
	Name string `json:"name"`
	// Character は役名。
	Character string `json:"character"`
	// Order はクレジット順。
	Order int `json:"order"`
}

// TMDBCrewMember はスタッフ情報。
type TMDBCrewMember struct {
	// Name はスタッフ名。
	Name string `json:"name"`
	// Job は担当職務（例: "Director"）。
	Job string `json:"job"`
}

// TMDBCredits はクレジット情報。
type TMDBCredits struct {
	// Cast は出演者の一覧。
	Cast []TMDBCastMember `json:"cast"`
	// Crew はスタッフの一覧。
	Crew []TMDBCrewMember `json:"crew"`
}

// TMDBMovieDetails はTMDBの映画詳細APIのレスポンス。
type TMDBMovieDetails struct {
	// ID はTMDB上の映画ID。
	ID int64 `json:"id"`
	// Title は映画タイトル。
	Title string `json:"title"`
	// Overview はあらすじ。
	Overview string `json:"overview"`
	// PosterPath はポスター画像のパス断片。
	PosterPath string `json:"poster_path"`
	// BackdropPath は背景画像のパス断片。
	BackdropPath string `json:"backdrop_path"`
	// ReleaseDate は公開日（"2006-01-02"形式）。
	ReleaseDate string `json:"release_date"`
	// VoteAverage は平均評価。
	VoteAverage float64 `json:"vote_average"`
	// Runtime は上映時間（分）。
	Runtime int64 `json:"runtime"`
	// OriginalLanguage は原語。
	OriginalLanguage string `json:"original_language"`
	// Genres はジャンルの一覧。
	Genres []TMDBGenre `json:"genres"`
	// Credits はクレジット情報。append_to_response=credits指定時のみ含まれる。
	Credits TMDBCredits `json:"credits"`
}

// movieListResponse はTMDBの一覧系APIの共通レスポンス構造。
type movieListResponse struct {
	Results []TMDBMovieSummary `json:"results"`
}

// Search はクエリ文字列で映画を検索する。
func (c *TMDBClient) Search(ctx context.Context, query string) ([]TMDBMovieSummary, error) {
	path := "/search/movie?query=" + url.QueryEscape(query) + "&language=en-US&page=1"
	return c.listMovies(ctx, path)
}

// Discover は人気順の映画一覧を取得する。
func (c *TMDBClient) Discover(ctx context.Context, page int) ([]TMDBMovieSummary, error) {
	return c.listMovies(ctx, "/discover/movie?sort_by=popularity.desc&page="+strconv.Itoa(page))
}

// TopRated は高評価順の映画一覧を取得する。
func (c *TMDBClient) TopRated(ctx context.Context, page int) ([]TMDBMovieSummary, error) {
	return c.listMovies(ctx, "/movie/top_rated?language=en-US&page="+strconv.Itoa(page))
}

// Trending は週間トレンドの映画一覧を取得する。
func (c *TMDBClient) Trending(ctx context.Context) ([]TMDBMovieSummary, error) {
	return c.listMovies(ctx, "/trending/movie/week")
}

// ByGenre は指定ジャンルの映画一覧を取得する。
func (c *TMDBClient) ByGenre(ctx context.Context, genreID int64, page int) ([]TMDBMovieSummary, error) {
	return c.listMovies(ctx, fmt.Sprintf("/discover/movie?with_genres=%d&page=%d", genreID, page))
}

// Details は映画の詳細情報をクレジット付きで取得する。
func (c *TMDBClient) Details(ctx context.Context, tmdbID int64) (*TMDBMovieDetails, error) {
	var details TMDBMovieDetails
	path := fmt.Sprintf("/movie/%d?append_to_response=credits", tmdbID)
	if err := c.doJSON(ctx, path, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// listMovies は一覧系APIを呼び出す共通処理。
func (c *TMDBClient) listMovies(ctx context.Context, path string) ([]TMDBMovieSummary, error) {
	var resp movieListResponse
	if err := c.doJSON(ctx, path, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// doJSON はTMDB APIへのGETリクエストを実行する共通処理。
// レートリミッタの許可を待ってから送信する。
func (c *TMDBClient) doJSON(ctx context.Context, path string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("レートリミッタの待機に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TMDB APIへのリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("TMDB APIエラー: status=%d, body=%s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	return nil
}
