package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ikkim/eduverify-backend/config"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/internal/app/service"
	"github.com/ikkim/eduverify-backend/internal/db"
	"github.com/ikkim/eduverify-backend/internal/storage"
	"github.com/ikkim/eduverify-backend/pkg/redis"
)

func main() {
	// 명령줄 인자 확인
	yes := flag.Bool("yes", false, "import without asking for confirmation")
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-yes] <candidates.xlsx>")
	}
	filePath := flag.Arg(0)

	// 설정 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		if err := db.Initialize(&cfg.Database); err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
		defer db.Close()
		if err := db.Migrate(); err != nil {
			log.Fatal("Failed to run migrations:", err)
		}
	case config.StorageRedis:
		if err := redis.Init(&cfg.Redis); err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		defer redis.Close()
	default:
		fmt.Println("Warning: STORAGE_BACKEND=memory, imported data is lost when this command exits")
	}

	backend, err := storage.NewBackend(cfg.Storage.Backend, db.GetDB(), redis.GetClient())
	if err != nil {
		log.Fatal("Failed to create storage backend:", err)
	}
	store := storage.New(backend, cfg.Storage.Namespace)

	// 후보자 XLSX 읽기
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	inputs, err := readCandidatesFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total candidates to import: %d\n", len(inputs))

	// 사용자 확인
	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	ctx := context.Background()
	latency := service.NoLatency()

	authService := service.NewAuthService(
		repository.NewCompanyRepository(store),
		repository.NewSessionRepository(store),
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		latency,
	)
	if err := authService.SeedDemoCompany(ctx); err != nil {
		log.Fatal("Failed to seed demo company:", err)
	}

	candidateService := service.NewCandidateService(repository.NewCandidateRepository(store), latency)
	imported, failed := 0, 0
	for i, input := range inputs {
		if _, err := candidateService.Create(ctx, input); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "  row %d (%s): %v\n", i+2, input.FullName, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed!")
	fmt.Printf("  Imported: %d\n", imported)
	fmt.Printf("  Rejected: %d\n", failed)
}
