package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"vibesync/internal/ai"
	"vibesync/internal/config"
	"vibesync/internal/handler"
	creditsHandler "vibesync/internal/handler/credits"
	musicHandler "vibesync/internal/handler/music"
	videoHandler "vibesync/internal/handler/video"
	"vibesync/internal/pkg/assetstore"
	"vibesync/internal/pkg/cache"
	"vibesync/internal/pkg/ffmpeg"
	"vibesync/internal/pkg/jwt"
	"vibesync/internal/pkg/mixer"
	"vibesync/internal/pkg/mongodb"
	creditRepo "vibesync/internal/repository/credit"
	musicRepo "vibesync/internal/repository/music"
	"vibesync/internal/server/middleware"
	"vibesync/internal/service"

	_ "vibesync/docs"
)

// Server HTTP 服务器
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	mongo   *mongodb.Client
	redis   *cache.RedisCache
	janitor *service.Janitor
}

// New 创建服务器实例
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
	}

	// 初始化 MongoDB (可选)
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			srv.mongo = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(ctx, client.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			srv.redis = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	store, err := NewAssetStore(ctx, cfg)
	if err != nil {
		srv.close()
		return nil, err
	}

	credits, err := creditRepo.NewStore(&cfg.Credits, srv.redis, srv.mongo)
	if err != nil {
		srv.close()
		return nil, err
	}
	log.Info().Str("backend", cfg.Credits.Backend).Msg("credit store ready")

	if err := srv.setupRoutes(ctx, store, credits); err != nil {
		srv.close()
		return nil, err
	}
	return srv, nil
}

// setupRoutes 组装服务并注册路由
func (s *Server) setupRoutes(ctx context.Context, store *assetstore.Store, credits creditRepo.Store) error {
	cfg := s.cfg
	ff := NewFFmpegClient(&cfg.Media)

	var (
		tracks         *musicRepo.TrackRepo
		mergeJobs      *musicRepo.MergeJobRepo
		trackRecorder  service.TrackRecorder
		mergeRecorder  service.MergeRecorder
		historyService service.HistoryService
	)
	if s.mongo != nil {
		tracks = musicRepo.NewTrackRepo(s.mongo.Database())
		mergeJobs = musicRepo.NewMergeJobRepo(s.mongo.Database())
		trackRecorder, mergeRecorder = tracks, mergeJobs
		historyService = service.NewHistoryService(tracks, mergeJobs)
	}

	creditService := service.NewCreditService(credits, service.CreditConfig{
		FreeOnSignup:  cfg.Credits.FreeOnSignup,
		PerPurchase:   cfg.Credits.PerPurchase,
		WebhookSecret: cfg.Credits.WebhookSecret,
	})
	if cfg.Credits.WebhookSecret == "" {
		log.Warn().Msg("credits.webhook_secret not configured, payment webhook disabled")
	}

	musicService, err := NewMusicService(ctx, cfg, store, ff, trackRecorder)
	if err != nil {
		log.Warn().Err(err).Msg("music generation not configured, generate endpoints disabled")
	}

	var analysisService service.AnalysisService
	if cfg.AI.APIKey != "" {
		aiClient, err := ai.NewClient(ctx, &cfg.AI)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize video analysis, continuing without it")
		} else {
			analysisService = service.NewAnalysisService(aiClient, ff, store, float64(cfg.Limits.MaxVideoDurationSeconds))
			log.Info().Str("provider", cfg.AI.Provider).Str("model", cfg.AI.Model).Msg("initialized video analysis")
		}
	} else {
		log.Warn().Msg("ai.api_key not configured, video analysis disabled")
	}

	if cfg.Janitor.Enabled {
		var pruners []service.HistoryPruner
		if tracks != nil {
			pruners = append(pruners, tracks, mergeJobs)
		}
		s.janitor = service.NewJanitor(store, cfg.Janitor.Interval, cfg.Janitor.Retention, pruners...)
	}

	var jwtUtil *jwt.JWT
	if cfg.Auth.JWTSecret != "" {
		jwtUtil = jwt.NewJWT(cfg.Auth.JWTSecret, 0)
	} else {
		log.Warn().Msg("auth.jwt_secret not configured, identifying users by X-User-Id header")
	}

	maxUpload := int64(cfg.Limits.MaxVideoSizeMB) << 20
	musicHdl := musicHandler.NewHandler(
		musicService,
		NewMergeService(cfg, store, ff, mergeRecorder),
		creditService,
		service.NewAssetService(store, service.AssetConfig{RedirectRemote: cfg.Storage.RedirectDownloads}),
		historyService,
		musicHandler.Config{
			BackendURL:     cfg.Server.BackendURL,
			MaxUploadBytes: maxUpload,
			DefaultMode:    mixer.MixMode(cfg.Mix.DefaultMode).Normalize(),
			DefaultFadeIn:  cfg.Mix.FadeIn,
			DefaultFadeOut: cfg.Mix.FadeOut,
		},
	)
	creditsHdl := creditsHandler.NewHandler(creditService)

	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(cfg.Server.FrontendURL))
	s.engine.MaxMultipartMemory = 32 << 20

	// 健康检查
	healthHandler := handler.NewHealthHandler(s.readinessChecks(ff, store)...)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	optional := v1.Group("", middleware.UserIdentity(jwtUtil, false))
	authed := v1.Group("", middleware.UserIdentity(jwtUtil, true))
	{
		// 视频分析
		if analysisService != nil {
			videoHdl := videoHandler.NewHandler(analysisService, maxUpload)
			optional.POST("/video/analyze", videoHdl.Analyze)
		}

		// 音乐生成（消耗积分）
		if musicService != nil {
			authed.POST("/music/generate", musicHdl.Generate)
			authed.POST("/music/generate-variations", musicHdl.GenerateVariations)
		}

		// 合成与下载
		optional.POST("/music/merge", musicHdl.Merge)
		optional.GET("/music/download/:file_id/:format", musicHdl.DownloadTrack)
		optional.GET("/music/download-merged/:file_id", musicHdl.DownloadMerged)

		// 历史记录
		if musicHdl.HistoryEnabled() {
			authed.GET("/music/tracks", musicHdl.ListTracks)
			authed.GET("/music/tracks/:file_id", musicHdl.GetTrack)
		} else {
			log.Warn().Msg("MongoDB not configured, history endpoints disabled")
		}

		// 积分
		authed.GET("/credits/balance", creditsHdl.Balance)
		authed.POST("/credits/initialize", creditsHdl.Initialize)
		v1.POST("/credits/webhook", creditsHdl.Webhook)
	}
	return nil
}

// readinessChecks 就绪检查项
func (s *Server) readinessChecks(ff *ffmpeg.Client, store *assetstore.Store) []handler.ReadinessCheck {
	checks := []handler.ReadinessCheck{
		{Name: "ffmpeg", Check: func(ctx context.Context) error {
			_, err := ff.Version(ctx, ff.FFmpegPath())
			return err
		}},
		{Name: "storage", Check: func(ctx context.Context) error {
			_, err := store.Exists(ctx, assetstore.MusicPrefix+".probe")
			return err
		}},
	}
	if s.mongo != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "mongo", Check: s.mongo.Ping})
	}
	if s.redis != nil {
		checks = append(checks, handler.ReadinessCheck{Name: "redis", Check: s.redis.Ping})
	}
	return checks
}

// Run 启动服务器，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	if s.janitor != nil {
		go s.janitor.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.close()
		return err
	case err := <-errCh:
		s.close()
		return err
	}
}

// close 关闭外部连接
func (s *Server) close() {
	if s.mongo != nil {
		if err := s.mongo.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
