// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// gateway側のBearerトークン検証と識別ヘッダーの付与、内部サービス側の
// 信頼ヘッダー読み取り、CORS設定、パニックリカバリなど、
// 全サービスで共通して使用するミドルウェアを含む。
package middleware
