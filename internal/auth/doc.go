// Package auth は認証サービスの内部実装を提供する。
//
// ユーザー登録・ログインとBearerトークンの発行を担当する。
// パスワードはbcryptでハッシュ化して保存し、ログイン失敗時は
// 「アカウントが存在しない」のか「パスワードが誤っている」のかを
// 区別できない同一のエラー応答を返す。
//
// /auth/me はgatewayが付与したX-User-Emailヘッダーを認証済み
// クレームとして読み取る。このサービスはgatewayを経由しない経路から
// 到達できないネットワーク構成で運用することが前提である。
package auth
