package v2

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName имя сервиса в протоколе grpc.health.v1.
const ServiceName = "recommendations"

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer gRPC-сервер со стандартным сервисом проверки здоровья.
// Статус ServiceName следует за результатом Ping хранилища.
type HealthServer struct {
	Server *grpc.Server
	health *health.Server
	pinger Pinger
	logger *zap.Logger
}

func NewHealthServer(pinger Pinger, logger *zap.Logger) *HealthServer {
	s := &HealthServer{
		Server: grpc.NewServer(),
		health: health.NewServer(),
		pinger: pinger,
		logger: logger,
	}
	healthpb.RegisterHealthServer(s.Server, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Refresh проверяет хранилище и обновляет статус.
func (s *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Watch обновляет статус каждые interval, пока ctx не отменён.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Serve принимает соединения на lis до вызова Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	return s.Server.Serve(lis)
}

// Stop переводит сервис в NOT_SERVING и завершает сервер.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.Server.GracefulStop()
}
