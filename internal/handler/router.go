package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/notify-gate/internal/config"
	"github.com/kube-rca/notify-gate/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var notifyPaths = []string{"/notify", "/api/notify"}

// notify 경로에서 405로 응답할 method 목록 (OPTIONS는 CORS 미들웨어가 처리)
var disallowedNotifyMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

type RouterDeps struct {
	Config   config.Config
	Notifier Notifier
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// NewRouter - gin 엔진 구성
//
// 미들웨어 순서: CORS -> request id -> access log -> recovery
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = false

	router.Use(
		CORSMiddleware(deps.Config.CORS.AllowedOrigins),
		RequestIDMiddleware(),
		LoggerMiddleware(deps.Logger),
		RecoveryMiddleware(deps.Logger),
	)

	health := NewHealthHandler(deps.Config.Summary())
	router.GET("/", health.Health)
	router.GET("/health", health.Health)

	notify := NewNotifyHandler(deps.Notifier, deps.Metrics, deps.Logger)
	for _, path := range notifyPaths {
		router.POST(path, notify.Authenticate, notify.Notify)
		for _, method := range disallowedNotifyMethods {
			router.Handle(method, path, MethodNotAllowed)
		}
	}

	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}
	router.GET("/openapi.json", OpenAPIDoc)

	router.NoRoute(NotFound)
	return router
}
