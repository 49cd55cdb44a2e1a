package main

import (
	"context"
	"log"
	"time"

	"app/internal/config"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/paypal"
	infraRepo "app/internal/infra/repository"
	"app/internal/mailer"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/worker"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	//.envは無くても動く（本番は環境変数で渡す）
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	linkRepo := infraRepo.NewAccessLinkGormRepository(gormDB)
	leadRepo := infraRepo.NewChatLeadGormRepository(gormDB)
	jobRepo := infraRepo.NewEmailJobGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hasher := usecase.NewBcryptPasswordHasher(12)

	smtp := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	ppClient := paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalClientSecret)

	//Usecase生成
	cartUC := usecase.NewCartUsecase(txm, cartRepo, cartRepo, productRepo, idGen)
	settlementUC := usecase.NewSettlementUsecase(cfg, txm, orderRepo, smtp, hasher, clock)
	paypalUC := usecase.NewPayPalUsecase(cartUC, orderRepo, ppClient, settlementUC, "JPY")
	firstLoginUC := usecase.NewFirstLoginUsecase(userRepo, linkRepo, hasher, clock, cfg.JWTSecret)
	chatUC := usecase.NewChatUsecase(leadRepo, jobRepo, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(cfg, orderRepo, userRepo, auditRepo, smtp, clock)

	//お礼メールワーカーを起動
	emailWorker := worker.NewEmailWorker(jobRepo, leadRepo, smtp)
	go emailWorker.Run(context.Background())

	//Handler生成
	e := server.New(cfg, server.Handlers{
		Cart:       handler.NewCartHandler(cartUC),
		Payment:    handler.NewPaymentHandler(settlementUC),
		PayPal:     handler.NewPayPalHandler(paypalUC),
		Auth:       handler.NewAuthHandler(firstLoginUC),
		Chat:       handler.NewChatHandler(chatUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	})

	//Server起動
	if err := server.Start(e, cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
