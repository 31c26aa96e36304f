// Checks that the optional MySQL and Redis backends are reachable.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/stake-plus/sentinel/src/data"
	"github.com/stake-plus/sentinel/src/logging"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	zl, err := logging.New("info", "console")
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		db, err := data.ConnectMySQL(dsn, zl)
		if err != nil {
			log.Fatalf("mysql: %v", err)
		}
		settings, err := data.LoadSettings(db)
		if err != nil {
			log.Fatalf("settings: %v", err)
		}
		log.Printf("mysql ok: %d active settings", settings.Len())
	} else {
		log.Printf("MYSQL_DSN not set, skipping mysql")
	}

	if url := os.Getenv("REDIS_URL"); url != "" {
		rdb, err := data.ConnectRedis(ctx, url)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		log.Printf("redis ok: %s", rdb.Options().Addr)
	} else {
		log.Printf("REDIS_URL not set, skipping redis")
	}
}
