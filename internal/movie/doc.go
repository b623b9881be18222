// Package movie は映画カタログサービスの内部実装を提供する。
//
// TMDB（The Movie Database）APIを使った映画の検索・発見と、
// ユーザーのリストに追加された映画のローカルキャッシュを担当する。
// ローカルキャッシュは明示的な保存操作（POST /movies/save/:tmdb_id）
// でのみ作成され、TMDBのデータを正とする。
//
// /movies/save と /movies/internal はlibraryサービス専用の
// 内部エンドポイントであり、gatewayからは公開されない。
package movie
