package stats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Server exposes /metrics, /health and, when a queue connection is given, the
// rmq queue overview at /<queue>/stats.
type Server struct {
	Listen string

	Collector       *Collector
	Redis           redis.UniversalClient
	QueueConnection rmq.Connection
	QueueName       string

	server *http.Server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.Collector.Registry(), promhttp.HandlerOpts{}))
	mux.Handle("/health", NewHealthHandler(s.Redis))

	if s.QueueConnection != nil && s.QueueName != "" {
		mux.Handle(fmt.Sprintf("/%s/stats", s.QueueName), NewQueueStatsHandler(s.QueueConnection))
	}

	return mux
}

// Start serves in the background until Shutdown is called.
func (s *Server) Start() {
	s.server = &http.Server{Addr: s.Listen, Handler: s.Handler()}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("listen", s.Listen).Msg("Stats server failed")
		}
	}()

	log.Info().Msgf("Stats server listening on http://localhost%s/metrics", s.Listen)
}

func (s *Server) Shutdown() {
	if s.server == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down stats server")
	}
}

type QueueStatsHandler struct {
	redisConnection rmq.Connection
}

func NewQueueStatsHandler(connection rmq.Connection) *QueueStatsHandler {
	return &QueueStatsHandler{redisConnection: connection}
}

func (handler *QueueStatsHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	layout := request.FormValue("layout")
	refresh := request.FormValue("refresh")

	queues, err := handler.redisConnection.GetOpenQueues()
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}

	stats, err := handler.redisConnection.CollectStats(queues)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}

	fmt.Fprint(writer, stats.GetHtml(layout, refresh))
}

type HealthHandler struct {
	redis redis.UniversalClient
}

func NewHealthHandler(client redis.UniversalClient) *HealthHandler {
	return &HealthHandler{redis: client}
}

func (handler *HealthHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if handler.redis != nil {
		if err := handler.redis.Ping(request.Context()).Err(); err != nil {
			writer.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(writer, err)

			return
		}
	}

	writer.WriteHeader(http.StatusOK)
	fmt.Fprint(writer, "OK")
}
