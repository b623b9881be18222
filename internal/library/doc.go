// Package library はユーザーの映画ライブラリ（視聴履歴・ウォッチリスト・
// お気に入り）を管理するサービスを提供する。
//
// ライブラリの各エントリはユーザーのメールアドレスに紐づく。認証はgatewayで
// 完結しており、本サービスはX-User-Emailヘッダーの値を検証済みの識別子として
// 信頼する。このため本サービスはgateway以外から到達できないネットワーク
// 構成で運用すること。
//
// レスポンスは映画カタログサービスから取得した映画情報で合成（エンリッチ）
// される。取得は1エントリにつき1回・タイムアウト付きで行い、失敗しても
// リクエスト自体は成功としてローカルの情報のみを返す。
package library
