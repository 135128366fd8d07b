package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"EduPaySettlement/internal/address"
	"EduPaySettlement/internal/cascade"
	"EduPaySettlement/internal/config"
	"EduPaySettlement/internal/funding"
	internalhttp "EduPaySettlement/internal/http"
	"EduPaySettlement/internal/ledger"
	"EduPaySettlement/internal/pricing"
	"EduPaySettlement/internal/services"
	"EduPaySettlement/internal/store"
	"EduPaySettlement/internal/subscription"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		panic("config load failed: " + err.Error())
	}

	logger := newLogger(cfg.Log.Dev)
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("db connect failed", zap.Error(err))
	}
	defer pool.Close()
	st := store.New(pool)

	contract := address.Normalize(cfg.Ledger.ContractAddress)
	receiver := address.Normalize(cfg.Ledger.ReceiverAddress)

	chain, err := ledger.NewMultiClient(cfg.Ledger.FullnodeEndpoints, contract, cfg.Ledger.FailoverThreshold)
	if err != nil {
		logger.Fatal("ledger client init failed", zap.Error(err))
	}

	var faucet funding.Faucet
	if cfg.Ledger.FaucetEndpoint != "" {
		faucet = ledger.NewFaucetClient(cfg.Ledger.FaucetEndpoint)
	} else {
		logger.Info("faucet not configured, funding guard disabled")
	}

	sponsor := loadSigner(logger, "sponsor", cfg.Sponsor.PrivateKey)
	if sponsor == nil {
		logger.Warn("sponsor key not set, sponsored submissions will degrade to simulated")
	}
	userSigner := loadSigner(logger, "user", cfg.Sponsor.UserSignerKey)

	converter, err := buildConverter(cfg)
	if err != nil {
		logger.Fatal("pricing config invalid", zap.Error(err))
	}

	guard := &funding.Guard{
		Ledger:      chain,
		Faucet:      faucet,
		GrantOctas:  cfg.Sponsor.FaucetGrantOctas,
		SettleDelay: time.Duration(cfg.Sponsor.SettleDelaySeconds) * time.Second,
		Logger:      logger,
	}

	submitter := &cascade.Submitter{
		Funding:    guard,
		MinBalance: cfg.Sponsor.MinBalanceOctas,
		Strategies: []cascade.Strategy{
			&cascade.UserSigned{Ledger: chain, Signer: userSigner},
			&cascade.Sponsored{Ledger: chain, Sponsor: sponsor},
			cascade.Simulated{},
		},
		Logger: logger,
	}

	paymentSvc := &services.PaymentService{
		Pricing:   converter,
		Submitter: submitter,
		Verifier:  &subscription.Verifier{Ledger: chain, Logger: logger},
		Store:     st,
		Receiver:  receiver,
		Logger:    logger,
	}

	h := internalhttp.NewHandler(paymentSvc, logger)
	srv := internalhttp.NewServer(h)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router,
	}

	go func() {
		logger.Info("api listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("network", cfg.Ledger.Network),
			zap.String("fullnode", chain.BaseURL()),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
}

func newLogger(dev bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic("logger init failed: " + err.Error())
	}
	return logger
}

// loadSigner returns nil when no key is configured; both cascade stages
// tolerate an absent signer.
func loadSigner(logger *zap.Logger, role, keyHex string) ledger.Signer {
	if keyHex == "" {
		return nil
	}
	s, err := ledger.SignerFromHex(keyHex)
	if err != nil {
		logger.Fatal("signing key invalid", zap.String("role", role), zap.Error(err))
	}
	logger.Info("signer loaded",
		zap.String("role", role),
		zap.String("address", s.Address().String()),
	)
	return s
}

func buildConverter(cfg *config.Config) (pricing.Converter, error) {
	maxToken, err := decimal.NewFromString(cfg.Pricing.MaxTokenAmount)
	if err != nil {
		return pricing.Converter{}, err
	}
	prices := make(map[string]decimal.Decimal, len(cfg.Pricing.MaxReferencePrice))
	for currency, raw := range cfg.Pricing.MaxReferencePrice {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return pricing.Converter{}, err
		}
		prices[currency] = p
	}
	return pricing.Converter{MaxReferencePrice: prices, MaxTokenAmount: maxToken}, nil
}
