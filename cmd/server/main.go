package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/voidkat/astrotype-backend/internal/server"
	"github.com/voidkat/astrotype-backend/internal/words"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	paths := []string{"./assets/wordcache_en.json", "./wordcache_en.json"}
	if custom := os.Getenv("WORD_BANK"); custom != "" {
		paths = append([]string{custom}, paths...)
	}
	bank := words.Load(paths...)

	srv := server.NewServer(bank)
	log.Printf("astrotype server listening on %s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}
