// API Gatewayサービスのエントリポイント。
// クライアントからの全リクエストを受け付け、トークン検証を通過した
// リクエストのみを内部サービスへ転送する。
package main

import (
	"log"
	"os"

	"github.com/nao1215/cinehub/internal/gateway"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := gateway.NewServer(port)
	if err != nil {
		log.Fatalf("Gatewayサーバーの初期化に失敗: %v", err)
	}

	log.Printf("API Gatewayを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("API Gatewayの起動に失敗: %v", err)
	}
}
