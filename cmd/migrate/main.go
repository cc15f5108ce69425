// Command migrate prepara el store sin levantar la API: aplica las migraciones
// goose en Postgres o crea los índices únicos en MongoDB.
package main

import (
	"context"
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"vidtube/internal/config"
	"vidtube/internal/db"
)

// storeConfig es el subconjunto de config.Config que necesita este comando;
// no exige los secretos JWT.
type storeConfig struct {
	StoreDriver   string `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"vidtube"`
	DatabaseURL   string `env:"DATABASE_URL"`
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	_ = godotenv.Load()

	var cfg storeConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db pool: %v", err)
		}
		defer pool.Close()

		if err := db.Ping(ctx, pool); err != nil {
			log.Fatalf("db ping: %v", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		log.Printf("postgres migrations applied")
	case config.StoreMongo:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		defer client.Disconnect(context.Background())

		if err := db.EnsureMongoIndexes(ctx, database); err != nil {
			log.Fatalf("mongo indexes: %v", err)
		}
		log.Printf("mongo indexes ensured on %s", cfg.MongoDatabase)
	default:
		log.Fatalf("unknown store driver %q", cfg.StoreDriver)
	}
}
