// 映画カタログサービスのエントリポイント。
// TMDB APIのプロキシと保存済み映画のローカルキャッシュを担当する。
package main

import (
	"log"
	"os"

	"github.com/nao1215/cinehub/internal/movie"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	server, err := movie.NewServer(port)
	if err != nil {
		log.Fatalf("映画カタログサーバーの初期化に失敗: %v", err)
	}

	log.Printf("映画カタログサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("映画カタログサービスの起動に失敗: %v", err)
	}
}
