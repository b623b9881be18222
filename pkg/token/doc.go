// Package token は署名付きBearerトークンの発行と検証を提供する。
//
// gatewayサービスがログイン・登録時にトークンを発行し、
// 以降のリクエストで検証する。トークンのsubjectには認証済み
// ユーザーのメールアドレスのみを埋め込み、それ以外のクレームは
// 信頼しない。署名シークレットは起動時に一度だけ注入され、
// パッケージレベルの状態は持たない。
package token
