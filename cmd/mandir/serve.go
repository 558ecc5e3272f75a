package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mandir/internal/cms"
	"mandir/internal/db"
	"mandir/internal/mailer"
	"mandir/internal/server"
	"mandir/internal/storage"
	"mandir/internal/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	awsConfig, err := loadAWSConfig(ctx)
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	submissionRepo := store.NewSubmissionRepository(pool)
	pujaRepo := store.NewPujaRepository(pool)

	cmsClient := cms.New(config.CMSBaseURL, config.CMSAPIToken, logger)
	if !cmsClient.Enabled() {
		logger.Warn("cms mirror disabled, submissions will be recorded as skipped")
	}

	sesClient := sesv2.NewFromConfig(awsConfig)
	sender := mailer.New(sesClient, config.MailFrom, config.MailReplyTo, logger)

	var attachments server.AttachmentStore
	if config.AttachmentBucket != "" {
		attachments = storage.NewS3Storage(s3.NewFromConfig(awsConfig), config.AttachmentBucket)
	}

	var jwkCache *jwk.Cache
	if config.AdminJWKSURL != "" {
		jwkCache, err = jwk.NewCache(context.Background(), httprc.NewClient())
		if err != nil {
			return fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		if err := jwkCache.Register(context.Background(), config.AdminJWKSURL); err != nil {
			return fmt.Errorf("failed to register admin jwks with cache: %w", err)
		}
	}

	srv, err := server.New(
		config,
		logger,
		submissionRepo,
		pujaRepo,
		cmsClient,
		sender,
		attachments,
		jwkCache,
		config.AdminJWKSURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
