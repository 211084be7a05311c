package interceptor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"costume-rental-backend/internal/logger"
)

// RequestIDKey is the metadata key carrying the caller's request id.
const RequestIDKey = "x-request-id"

type LoggingInterceptor struct{}

func NewLoggingInterceptor() *LoggingInterceptor {
	return &LoggingInterceptor{}
}

// Unary returns a server interceptor that tags the context logger with a
// request id, logs each call and converts handler panics into codes.Internal.
func (i *LoggingInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		ctx = logger.WithRequestID(ctx, requestID(ctx))
		log := logger.FromContext(ctx).With("method", info.FullMethod)
		start := time.Now()

		defer func() {
			if p := recover(); p != nil {
				log.Error("gRPC handler panicked", "panic", p)
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
			log.Debug("gRPC call", "code", status.Code(err).String(), "duration", time.Since(start))
		}()

		return handler(ctx, req)
	}
}

// Stream applies the same logging to streaming calls such as Health/Watch.
func (i *LoggingInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		log := logger.FromContext(logger.WithRequestID(ss.Context(), requestID(ss.Context()))).With("method", info.FullMethod)
		start := time.Now()
		err := handler(srv, ss)
		log.Debug("gRPC stream closed", "code", status.Code(err).String(), "duration", time.Since(start))
		return err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDKey); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}
