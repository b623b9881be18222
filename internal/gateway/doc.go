// Package gateway はクライアントからの全リクエストを受け付ける
// API Gatewayサービスを提供する。
//
// 認証の判定はこのサービスで完結する。Bearerトークンを検証し、検証に
// 成功したリクエストのみを内部サービスへ転送する。転送時はAuthorization
// ヘッダーを取り除き、検証済みのメールアドレスをX-User-Emailヘッダー
// として付与する。内部サービスはこのヘッダーを無条件に信頼するため、
// 内部サービスへはgateway経由でのみ到達できるネットワーク構成で
// 運用すること。
package gateway
