// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// 各サービスが他のサービスのAPIを呼び出す際に使用する。
// libraryサービスからmovieサービスへの映画情報取得など、
// サービス間の通信パターンを統一する。リトライは行わず、
// タイムアウトで呼び出し元リクエストへの波及を抑える。
package httpclient
