package main

import (
	"log"
	"strings"

	"anoa.com/educonnect/internal/bootstrap"
	"anoa.com/educonnect/internal/config"
	searchService "anoa.com/educonnect/internal/modules/search/service"
	"anoa.com/educonnect/internal/server"
	"anoa.com/educonnect/pkg/database"
	"anoa.com/educonnect/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(database.Options{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		User:       cfg.DBUser,
		Password:   cfg.DBPass,
		Name:       cfg.DBName,
		Port:       cfg.DBPort,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.IsDevelopment() {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
		if err := bootstrap.SeedCourses(db); err != nil {
			log.Fatalf("failed to seed courses: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		log.Println("✅ Redis client configured")
	} else {
		log.Println("⚠️ REDIS_URL not set, realtime notifications and login rate limiting are disabled")
	}

	fileStorage, err := newFileStorage(cfg)
	if err != nil {
		log.Fatalf("failed to initialize %s storage: %v", cfg.StorageDriver, err)
	}

	var search searchService.MeiliSearchService
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		search = searchService.NewMeiliSearchService(meiliClient)
	} else {
		log.Println("⚠️ MEILISEARCH_HOST not set, material search is disabled")
	}

	srv, err := server.NewServer(cfg, db, redisClient, fileStorage, search)
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func newFileStorage(cfg *config.Config) (storage.FileStorage, error) {
	if cfg.StorageDriver == "cloudinary" {
		return storage.NewCloudinaryStorage(storage.CloudinaryOptions{
			CloudName:    cfg.CloudinaryCloudName,
			APIKey:       cfg.CloudinaryAPIKey,
			APISecret:    cfg.CloudinaryAPISecret,
			UploadFolder: cfg.CloudinaryUploadFolder,
		})
	}
	return storage.NewLocalStorage(cfg.UploadDir)
}
