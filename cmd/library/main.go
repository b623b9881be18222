// ユーザーライブラリサービスのエントリポイント。
// 視聴履歴・ウォッチリスト・お気に入りの管理を担当する。
package main

import (
	"log"
	"os"

	"github.com/nao1215/cinehub/internal/library"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8083"
	}

	server, err := library.NewServer(port)
	if err != nil {
		log.Fatalf("ライブラリサーバーの初期化に失敗: %v", err)
	}

	log.Printf("ライブラリサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("ライブラリサービスの起動に失敗: %v", err)
	}
}
