// Пакет carbon предоставляет HTTP API конвертера документов Carbon в HTML.
//
// Основные возможности:
//   - Конвертация документа с HTML-вставками между параграфами и необязательной минификацией.
//   - Проверка запросов (go-playground/validator) и единый формат ошибок.
//   - Метрики Prometheus на отдельном сервере.
//   - Необязательная авторизация по токену API и ограничение частоты конвертаций по IP.
package carbon

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/candybanana/carbon-json-to-html/internal/carbon/apierrors"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/config"
	"github.com/candybanana/carbon-json-to-html/internal/carbon/converter"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// ServerHeader middleware adds a `Server` header to the response.
func ServerHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderServer, "Carbon")
		return next(c)
	}
}

var errInvalidToken = errors.New("invalid api token")

type Server struct {
	cfg       *config.Config
	version   string
	converter *converter.Converter

	e       *echo.Echo
	metrics *echo.Echo
	limiter *ConvertRateLimiter

	conversions *prometheus.CounterVec
}

func NewServer(cfg *config.Config, conv *converter.Converter, version string) *Server {
	s := &Server{
		cfg:       cfg,
		version:   version,
		converter: conv,
	}

	registry := prometheus.NewRegistry()
	s.conversions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "carbon",
		Name:      "conversions_total",
		Help:      "Document conversions by result",
	}, []string{"result"})
	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "carbon",
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))
	registry.MustRegister(s.conversions, bootTimeGauge)

	bodyLimit := cfg.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "5M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		// Ignore 404
		if code == http.StatusNotFound {
			c.NoContent(http.StatusNotFound)
			return
		}
		EErrorMsgStatus(c, err, code)
	}

	// Global middlewares
	e.Use(ServerHeader)
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: bodyLimit,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:     5,
		MinLength: 2048,
	}))
	if !cfg.MetricsDisabled {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "carbon",
			Registerer: registry,
		}))
	}
	e.Pre(middleware.AddTrailingSlash())

	e.Validator = NewRequestValidator()

	apiGroup := e.Group("/api/")
	apiGroup.GET("_health/", s.health)
	apiGroup.GET("version/", s.getVersion)

	convertGroup := apiGroup.Group("convert/")
	if cfg.APIToken != "" {
		convertGroup.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup:  "header:" + echo.HeaderAuthorization,
			AuthScheme: "Bearer",
			Validator: func(key string, c echo.Context) (bool, error) {
				if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIToken)) != 1 {
					return false, errInvalidToken
				}
				return true, nil
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return EErrorDefined(c, apierrors.ErrInvalidAPIToken)
			},
		}))
	}
	if cfg.RateLimit > 0 {
		s.limiter = NewConvertRateLimiter(cfg.RateLimit, time.Minute)
		convertGroup.Use(s.limiter.Middleware())
	}
	convertGroup.POST("", s.convertDocument)

	metrics := echo.New()
	metrics.HideBanner = true
	metrics.HidePort = true
	metrics.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))

	s.e = e
	s.metrics = metrics
	return s
}

// Handler возвращает обработчик API.
func (s *Server) Handler() http.Handler {
	return s.e
}

// MetricsHandler возвращает обработчик сервера метрик.
func (s *Server) MetricsHandler() http.Handler {
	return s.metrics
}

// Start запускает сервер метрик (если он не отключен) и сервер API. Блокирует до остановки сервера API.
func (s *Server) Start() error {
	if !s.cfg.MetricsDisabled {
		go func() {
			if err := s.metrics.Start(s.cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server fail", "err", err)
			}
		}()
	}

	slog.Info("Carbon API start", "addr", s.cfg.ListenAddr, "version", s.version)
	if err := s.e.Start(s.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if err := s.metrics.Shutdown(ctx); err != nil {
		slog.Warn("Metrics server shutdown", "err", err)
	}
	return s.e.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getVersion(c echo.Context) error {
	return c.JSON(http.StatusOK, VersionResponse{Version: s.version})
}

// convertDocument godoc
// @id convertDocument
// @Summary Конвертация документа Carbon в HTML
// @Tags Convert
// @Accept json
// @Produce json
// @Param data body ConvertRequest true "Документ и вставки"
// @Success 200 {object} ConvertResponse "HTML документа"
// @Failure 400 {object} apierrors.DefinedError "Некорректный запрос или JSON"
// @Failure 422 {object} apierrors.DefinedError "Документ не в формате Carbon"
// @Router /api/convert/ [post]
func (s *Server) convertDocument(c echo.Context) error {
	var req ConvertRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrConvertRequestFormat)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrConvertRequestFormat)
	}

	data, err := req.DocumentJSON()
	if err != nil {
		return EError(c, err)
	}

	inserts, err := req.CustomInserts()
	if err != nil {
		return EError(c, err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return EError(c, err)
	}

	out, err := s.converter.Convert(data, inserts)
	if err != nil {
		s.countConversion(err)
		return EConversionError(c, err)
	}

	minify := s.cfg.Minify
	if req.Minify != nil {
		minify = *req.Minify
	}
	if minify {
		out, err = converter.Minify(out)
		if err != nil {
			s.countConversion(err)
			return EConversionError(c, err)
		}
	}

	s.countConversion(nil)
	slog.Debug("Document converted", "id", id, "size", len(out))
	return c.JSON(http.StatusOK, ConvertResponse{ID: id, HTML: out})
}

func (s *Server) countConversion(err error) {
	result := "ok"
	if err != nil {
		result = string(apierrors.KindOf(err))
		if result == "" {
			result = "error"
		}
	}
	s.conversions.WithLabelValues(result).Inc()
}
