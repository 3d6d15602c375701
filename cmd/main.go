package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Karol-NMD/YOLO-Witness/internal/api"
	"github.com/Karol-NMD/YOLO-Witness/internal/broker"
	"github.com/Karol-NMD/YOLO-Witness/internal/config"
	"github.com/Karol-NMD/YOLO-Witness/internal/counts"
	"github.com/Karol-NMD/YOLO-Witness/internal/database"
	"github.com/Karol-NMD/YOLO-Witness/internal/detect"
	"github.com/Karol-NMD/YOLO-Witness/internal/kafka"
	"github.com/Karol-NMD/YOLO-Witness/internal/manager"
	"github.com/Karol-NMD/YOLO-Witness/internal/models"
	"github.com/Karol-NMD/YOLO-Witness/internal/report"
	"github.com/Karol-NMD/YOLO-Witness/internal/s3"
	"github.com/Karol-NMD/YOLO-Witness/internal/store"
	"github.com/Karol-NMD/YOLO-Witness/internal/watchdog"
	"github.com/Karol-NMD/YOLO-Witness/internal/worker"
)

func main() {
	log.Println("Main: init...")

	// Чтение конфига
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal(err)
	}

	// Инициализация журнала детекций
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.Init(); err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	st := store.New()

	br := broker.New(broker.Options{
		Grace:          cfg.Grace(),
		Poll:           cfg.Poll(),
		QueueSize:      cfg.Events.QueueSize,
		IncludeUpdates: cfg.Pipeline.IncludeUpdates,
	}, db)

	// Опциональный синк событий в Kafka
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("Failed to create Kafka producer: %v", err)
		}
		defer producer.Close()
		br.AddSink(producer)
		log.Printf("Main: Kafka event sink enabled, topic %s", cfg.Kafka.Topic)
	}

	// Опциональный архив превью в MinIO
	if cfg.Minio.Endpoint != "" {
		archive, err := s3.NewMinioClient(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.Bucket)
		if err != nil {
			log.Fatalf("Failed connect to MinIO: %v", err)
		}
		br.AddSink(archive)
		log.Printf("Main: thumbnail archive enabled, bucket %s", cfg.Minio.Bucket)
	}

	detClient := detect.NewClient(cfg.Detection.Endpoint)

	mgr := manager.New(st, br, detClient, worker.Config{
		ConfThreshold: cfg.Pipeline.ConfThreshold,
		MinBoxArea:    cfg.Pipeline.MinBoxArea,
		ThumbnailSide: cfg.Pipeline.ThumbnailSide,
		Buckets:       cfg.Buckets,
	}, cfg.StopWait())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Фоновые задачи: брокер событий, публикатор счётчиков, сторож
	go br.Run(ctx)

	publisher := counts.New(st, cfg.CountsEvery())
	go publisher.Run(ctx)

	watchDog := watchdog.New(mgr, st, cfg.WatchEvery(), cfg.CameraTimeout())
	go watchDog.Start(ctx)

	// Настройка роутера
	handlers := api.NewHandlers(mgr, db, br, publisher, st, report.NewEcharts())
	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: handlers.Router(),
	}

	go func() {
		log.Printf("Starting API server on %s", cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Println("Завершение работы...")

	mgr.StopAll(models.CauseUser)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}
