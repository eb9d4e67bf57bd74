package http

import (
	"net/http"
	"time"

	"actuator-quiz/internal/app"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// PublicURL is encoded into /qr.png; empty means the request's own host.
	PublicURL string
	// Metrics, when set, is served on /metrics.
	Metrics http.Handler
	// Observer records every API request.
	Observer RequestObserver
	// RatePerSecond and RateBurst throttle non-GET requests per client IP.
	// A zero rate disables throttling.
	RatePerSecond float64
	RateBurst     int
}

// Router is the booth's HTTP surface.
type Router struct {
	router  *httprouter.Router
	handler http.Handler
	limiter *rateLimiter
	log     *zap.Logger
	opts    RouterOptions
}

func NewRouter(service *app.GameService, log *zap.Logger, opts RouterOptions) *Router {
	rt := &Router{router: httprouter.New(), log: log, opts: opts}
	rt.handler = rt.router
	if opts.RatePerSecond > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		rt.limiter = newRateLimiter(opts.RatePerSecond, burst)
		rt.handler = rt.limiter.wrap(rt.router)
	}

	api := NewAPIHandler(service, log)
	rt.handle(http.MethodPost, "/api/participants", api.Register)
	rt.handle(http.MethodGet, "/api/participants/count", api.ParticipantCount)
	rt.handle(http.MethodPost, "/api/games", api.StartGame)
	rt.handle(http.MethodGet, "/api/games/:id", api.GetGame)
	rt.handle(http.MethodPost, "/api/games/:id/selection", api.Select)
	rt.handle(http.MethodPost, "/api/games/:id/answers", api.Answer)
	rt.handle(http.MethodGet, "/api/games/:id/result", api.Result)
	rt.handle(http.MethodGet, "/api/leaderboard", api.Leaderboard)
	rt.handle(http.MethodGet, "/api/grades/:score", api.Grade)
	rt.handle(http.MethodGet, "/api/catalog", api.Catalog)
	rt.handle(http.MethodPost, "/api/compatibility", api.Compatibility)

	ws := NewWSHandler(service, log)
	rt.router.HandlerFunc(http.MethodGet, "/ws", ws.ServeWS)
	rt.router.GET("/qr.png", rt.serveQR)
	rt.router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		rt.router.Handler(http.MethodGet, "/metrics", opts.Metrics)
	}
	rt.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: "route not found"})
	})
	rt.router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.Error("handler panic", zap.String("path", r.URL.Path), zap.Any("panic", v))
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: http.StatusText(http.StatusInternalServerError)})
	}
	return rt
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.handler.ServeHTTP(w, r)
}

// SweepVisitors drops rate limiter state for idle clients.
func (rt *Router) SweepVisitors(idle time.Duration) {
	if rt.limiter != nil {
		rt.limiter.sweep(idle)
	}
}

func (rt *Router) handle(method, path string, h httprouter.Handle) {
	rt.router.Handle(method, path, observed(path, h, rt.log, rt.opts.Observer))
}

// serveQR renders a QR code that sends visitors to the booth page.
func (rt *Router) serveQR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	url := rt.opts.PublicURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		url = scheme + "://" + r.Host + "/"
	}

	const qrSize = 320
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
