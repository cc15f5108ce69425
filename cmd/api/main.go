package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidtube/internal/config"
	"vidtube/internal/db"
	apihttp "vidtube/internal/http"
	"vidtube/internal/media"
	"vidtube/internal/repository"
	"vidtube/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// stores agrupa los repositorios del driver elegido y su cierre.
type stores struct {
	users repository.UserRepository
	subs  repository.SubscriptionRepository
	close func(context.Context)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close(context.Background())

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		logger.Fatal("media init", zap.String("driver", cfg.MediaDriver), zap.Error(err))
	}

	statsCache := service.NewMemoryChannelStatsCache(cfg.ChannelCacheTTL)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory channel cache", zap.Error(err))
		} else {
			statsCache = service.NewRedisChannelStatsCache(redisClient, cfg.ChannelCacheTTL)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	hasher := service.NewBcryptHasher(bcrypt.DefaultCost)
	userSvc := service.NewUserService(logger, st.users, hasher, jwtSvc, uploader, cfg.MediaUploadTimeout)
	subSvc := service.NewSubscriptionService(logger, st.users, st.subs, statsCache)

	routerOpts := apihttp.RouterOptions{}
	if cfg.MediaDriver == config.MediaLocal {
		routerOpts.MediaDir = cfg.MediaLocalDir
		routerOpts.MediaURL = cfg.MediaLocalBaseURL
	}
	router := apihttp.NewRouter(logger, jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc, cfg.UploadTmpDir, cfg.CookieSecure),
		apihttp.NewSubscriptionHandler(logger, subSvc),
		routerOpts,
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.StoreDriver),
			zap.String("media", cfg.MediaDriver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (stores, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return stores{}, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		return stores{
			users: repository.NewPgUserRepository(pool),
			subs:  repository.NewPgSubscriptionRepository(pool),
			close: func(context.Context) { pool.Close() },
		}, nil
	default:
		client, database, err := db.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return stores{}, err
		}
		if err := ensureMongoIndexes(ctx, client, database, db.EnsureMongoIndexes); err != nil {
			return stores{}, err
		}
		return stores{
			users: repository.NewMongoUserRepository(database, db.UsersCollection),
			subs:  repository.NewMongoSubscriptionRepository(database, db.SubscriptionsCollection),
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					logger.Warn("mongo disconnect", zap.Error(err))
				}
			},
		}, nil
	}
}

// mongoDisconnector es la parte de *mongo.Client que se usa al abortar el arranque.
type mongoDisconnector interface {
	Disconnect(ctx context.Context) error
}

// ensureMongoIndexes exige los índices únicos de username y email; si fallan
// cierra el cliente y devuelve el error para que la API no arranque.
func ensureMongoIndexes(
	ctx context.Context,
	client mongoDisconnector,
	database *mongo.Database,
	ensure func(context.Context, *mongo.Database) error,
) error {
	if err := ensure(ctx, database); err != nil {
		if derr := client.Disconnect(context.Background()); derr != nil {
			return fmt.Errorf("mongo indexes: %w (disconnect: %v)", err, derr)
		}
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

func newUploader(ctx context.Context, cfg *config.Config) (media.Uploader, error) {
	if cfg.MediaDriver == config.MediaLocal {
		local, err := media.NewLocalUploader(cfg.MediaLocalDir, cfg.MediaLocalBaseURL)
		if err != nil {
			return nil, err
		}
		return local, nil
	}

	opts := media.S3Options{
		Region:        cfg.S3Region,
		BaseEndpoint:  cfg.S3BaseEndpoint,
		Bucket:        cfg.S3Bucket,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBaseURL: cfg.S3PublicBaseURL,
	}
	client, err := media.NewS3Client(ctx, opts)
	if err != nil {
		return nil, err
	}
	return media.NewS3Uploader(client, opts.Bucket, opts.PublicURLBase()), nil
}
