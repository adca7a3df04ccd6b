package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/ragbooking/api"
	"github.com/Domenick1991/ragbooking/config"
	chatapi "github.com/Domenick1991/ragbooking/internal/api/chat_service_api"
	"github.com/Domenick1991/ragbooking/internal/middleware"
	"github.com/Domenick1991/ragbooking/internal/service/chat"
	"github.com/Domenick1991/ragbooking/internal/service/ingest"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
)

const swaggerSpecURL = "/swagger/chat.swagger.json"

type Dependencies struct {
	Chat         chat.ChatUseCase
	Ingest       ingest.IngestUseCase
	Documents    api.DocumentCatalog
	HealthChecks map[string]api.Check
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP (gin + grpc-gateway + swagger) servers and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, deps Dependencies) error {
	s, err := newServers(ctx, cfg, log, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("servers started", zap.String("http", cfg.HTTP.Address), zap.String("grpc", cfg.GRPC.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(ctx context.Context, cfg *config.Config, log *zap.Logger, deps Dependencies) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(unaryLogger(log)))
	chatapi.RegisterChatServiceServer(grpcSrv, chatapi.NewServer(deps.Chat))

	gwMux := runtime.NewServeMux(runtime.WithMarshalerOption(runtime.MIMEWildcard, &runtime.JSONPb{
		MarshalOptions:   protojson.MarshalOptions{EmitUnpopulated: true},
		UnmarshalOptions: protojson.UnmarshalOptions{DiscardUnknown: true},
	}))
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if err := chatapi.RegisterChatServiceHandlerFromEndpoint(ctx, gwMux, dialTarget(cfg.GRPC.Address), opts); err != nil {
		return nil, fmt.Errorf("register chat gateway: %w", err)
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           newRouter(cfg, log, deps, gwMux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func newRouter(cfg *config.Config, log *zap.Logger, deps Dependencies, gateway http.Handler) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", zap.Strings("trusted_proxies", cfg.HTTP.TrustedProxies), zap.Error(err))
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	router.MaxMultipartMemory = int64(cfg.HTTP.MaxUploadMB) << 20

	api.NewHealthHandler(deps.HealthChecks).Register(router)

	limiter := middleware.NewRateLimiter(cfg.HTTP.MaxRequestsPerMinute, log)
	api.NewChatHandler(deps.Chat).Register(router.Group("/chat", limiter.Middleware()))
	api.NewDocumentHandler(deps.Ingest, deps.Documents, int64(cfg.HTTP.MaxUploadMB)<<20).
		Register(router.Group("/document", limiter.Middleware()))
	if gateway != nil {
		router.Group("/v1", limiter.Middleware()).Any("/*path", gin.WrapH(gateway))
	}

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpecURL))))
	}
	return router
}

// dialTarget turns a listen address such as ":9090" into one the gateway can dial.
func dialTarget(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return listenAddr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func unaryLogger(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Info("grpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}
