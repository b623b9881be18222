package library

import (
	"context"
	"fmt"
	"log"
	"time"

	librarydb "github.com/nao1215/cinehub/internal/library/db"
)

// enrichTimeout は映画カタログサービスからの情報取得に許す時間。
// これを超えた場合はローカルの情報のみでレスポンスを構成する。
const enrichTimeout = 3 * time.Second

// enrichOutcome はエンリッチ処理の結果種別。
type enrichOutcome int

const (
	// outcomeLocalOnly は映画情報の取得に失敗し、ローカルの情報のみで
	// レスポンスを構成したことを示す。
	outcomeLocalOnly enrichOutcome = iota
	// outcomeEnriched は映画情報の取得に成功したことを示す。
	outcomeEnriched
)

// movieDetail は映画カタログサービスが返す映画情報のうち、
// エンリッチに使用する部分。
type movieDetail struct {
	// Title は映画タイトル。
	Title string `json:"title"`
	// Year は公開年。
	Year int64 `json:"year"`
	// Genres はジャンル名の一覧。
	Genres []string `json:"genres"`
	// PosterURL はポスター画像のURL。
	PosterURL string `json:"poster_url"`
	// BackdropURL は背景画像のURL。
	BackdropURL string `json:"backdrop_url"`
	// Rating はTMDBの平均評価。
	Rating float64 `json:"rating"`
}

// userMovieResponse はライブラリエントリのJSONレスポンス構造。
// エンリッチに成功した場合のみ映画情報のフィールドが埋まる。
type userMovieResponse struct {
	// ID はライブラリエントリの一意識別子。
	ID int64 `json:"id"`
	// MovieID は映画カタログサービス上のローカル映画ID。
	MovieID int64 `json:"movie_id"`
	// TmdbID はTMDB上の映画ID。
	TmdbID int64 `json:"tmdb_id"`
	// Status は視聴状態（WATCHED/WATCHLIST/FAVORITE）。
	Status string `json:"status"`
	// UserRating はユーザー自身の評価。
	UserRating int64 `json:"user_rating"`
	// PersonalNote はユーザーのメモ。
	PersonalNote string `json:"personal_note"`
	// CreatedAt はエントリの作成日時。
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt はエントリの最終更新日時。
	UpdatedAt time.Time `json:"updated_at"`
	// Enriched は映画情報の取得に成功したかどうか。
	Enriched bool `json:"enriched"`
	// Title は映画タイトル。エンリッチ成功時のみ。
	Title string `json:"title,omitempty"`
	// Year は公開年。エンリッチ成功時のみ。
	Year int64 `json:"year,omitempty"`
	// Genres はジャンル名の一覧。エンリッチ成功時のみ。
	Genres []string `json:"genres,omitempty"`
	// PosterURL はポスター画像のURL。エンリッチ成功時のみ。
	PosterURL string `json:"poster_url,omitempty"`
	// BackdropURL は背景画像のURL。エンリッチ成功時のみ。
	BackdropURL string `json:"backdrop_url,omitempty"`
	// Rating はTMDBの平均評価。エンリッチ成功時のみ。
	Rating float64 `json:"rating,omitempty"`
}

// enrich はライブラリエントリに映画カタログサービスの映画情報を合成する。
// 取得は1回のみでリトライしない。失敗した場合はローカルの情報のみで
// レスポンスを構成し、呼び出し元のリクエストは失敗させない。
func (s *Server) enrich(ctx context.Context, entry librarydb.UserMovie) (userMovieResponse, enrichOutcome) {
	resp := userMovieResponse{
		ID:           entry.ID,
		MovieID:      entry.MovieID,
		TmdbID:       entry.TmdbID,
		Status:       entry.Status,
		UserRating:   entry.UserRating,
		PersonalNote: entry.PersonalNote,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}

	var detail movieDetail
	if err := s.enrichClient.GetJSON(ctx, fmt.Sprintf("/movies/internal/%d", entry.MovieID), &detail); err != nil {
		log.Printf("映画情報の取得に失敗したためローカル情報のみで応答します: movie_id=%d, err=%v", entry.MovieID, err)
		return resp, outcomeLocalOnly
	}

	resp.Enriched = true
	resp.Title = detail.Title
	resp.Year = detail.Year
	resp.Genres = detail.Genres
	resp.PosterURL = detail.PosterURL
	resp.BackdropURL = detail.BackdropURL
	resp.Rating = detail.Rating
	return resp, outcomeEnriched
}
