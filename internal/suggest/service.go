package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/evanhutnik/movesuggest-service/internal/config"
	"github.com/evanhutnik/movesuggest-service/internal/mapbox"
	"github.com/evanhutnik/movesuggest-service/internal/session"
	t "github.com/evanhutnik/movesuggest-service/internal/types"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Suggester is the UI-facing contract: always a list, possibly empty.
type Suggester interface {
	FetchSuggestions(ctx context.Context, q t.Query) []t.Suggestion
}

type CodeError struct {
	code int
	msg  string
}

func (c CodeError) Error() string {
	return c.msg
}

// disabledSuggester stands in for a client that could not be configured. It never does I/O.
type disabledSuggester struct {
	err    error
	logger *zap.SugaredLogger
}

func (d disabledSuggester) FetchSuggestions(_ context.Context, q t.Query) []t.Suggestion {
	d.logger.Errorw("Mapbox access token is missing. Set mapbox_access_token in the environment.",
		"action", "Suggest", "query", q.Text, "error", d.err.Error())
	return []t.Suggestion{}
}

type Option func(*Service)

func SuggesterOption(suggester Suggester) Option {
	return func(s *Service) {
		s.suggester = suggester
	}
}

func StoreOption(store session.Store) Option {
	return func(s *Service) {
		s.sessions = store
	}
}

func LoggerOption(logger *zap.SugaredLogger) Option {
	return func(s *Service) {
		s.Logger = logger
	}
}

type Service struct {
	cfg       *config.Config
	suggester Suggester
	sessions  session.Store
	limiter   *ipRateLimiter
	rc        *redis.Client

	Logger *zap.SugaredLogger
}

func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.Logger == nil {
		s.Logger = zap.NewNop().Sugar()
	}

	if s.suggester == nil {
		s.suggester = NewSuggester(cfg.Mapbox, s.Logger)
	}

	if s.sessions == nil {
		if cfg.Redis.Disabled {
			s.sessions = session.NewMemoryStore(cfg.Redis.SessionTTL)
		} else {
			s.rc = redis.NewClient(&redis.Options{
				Addr: cfg.Redis.Address,
			})
			s.sessions = session.NewRedisStore(s.rc, cfg.Redis.SessionTTL)
		}
	}

	limit := rate.Limit(cfg.RateLimit.PerSecond)
	if cfg.RateLimit.PerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimit.Burst
	if burst < 1 {
		burst = 1
	}
	s.limiter = newIPRateLimiter(limit, burst)

	return s
}

// NewSuggester builds the Mapbox client, or a disabled suggester when the configuration
// is unusable so that callers still get an empty list instead of a failure.
func NewSuggester(cfg config.MapboxConfig, logger *zap.SugaredLogger) Suggester {
	client, err := mapbox.New(
		mapbox.AccessTokenOption(cfg.AccessToken),
		mapbox.BaseUrlOption(cfg.BaseUrl),
		mapbox.TimeoutOption(cfg.Timeout),
		mapbox.LoggerOption(logger),
	)
	if err != nil {
		logger.Errorw(err.Error(), "action", "NewSuggester")
		return disabledSuggester{err: err, logger: logger}
	}
	return client
}

func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/suggestions", s.SuggestionsHandler).Methods(http.MethodGet)
	r.HandleFunc("/sessions", s.BeginSessionHandler).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{token}", s.EndSessionHandler).Methods(http.MethodDelete)
	r.Use(s.rateLimit)
	return r
}

// Start serves until ctx is cancelled or the listener fails, then shuts down gracefully.
func (s *Service) Start(ctx context.Context) error {
	if s.rc != nil {
		defer s.rc.Close()
	}

	srv := &http.Server{
		Addr:              s.cfg.ListenAddress,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Logger.Infow("listening", "address", s.cfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Logger.Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Service) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "OK")
}

func (s *Service) SuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Suggestions(r.Context(), r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) Suggestions(ctx context.Context, r *http.Request) (*t.SuggestionsResponse, error) {
	q, err := s.parseRequest(r)
	if err != nil {
		return nil, err
	}

	q.SessionToken = s.sessionToken(ctx, q.SessionToken)

	return &t.SuggestionsResponse{
		SessionToken: q.SessionToken,
		Suggestions:  s.suggester.FetchSuggestions(ctx, q),
	}, nil
}

func (s *Service) parseRequest(r *http.Request) (t.Query, error) {
	params := r.URL.Query()
	q := t.Query{
		Text:         params.Get("q"),
		SessionToken: params.Get("session_token"),
	}

	if params.Get("proximity") == "" {
		return q, CodeError{code: 400, msg: "Missing 'proximity' query parameter in request"}
	}
	proximity, err := t.ParseCoordinates(params.Get("proximity"))
	if err != nil {
		return q, CodeError{code: 400, msg: "'proximity' must be 'longitude,latitude': " + err.Error()}
	}
	q.Proximity = proximity

	if params.Get("origin") == "" {
		return q, CodeError{code: 400, msg: "Missing 'origin' query parameter in request"}
	}
	origin, err := t.ParseCoordinates(params.Get("origin"))
	if err != nil {
		return q, CodeError{code: 400, msg: "'origin' must be 'longitude,latitude': " + err.Error()}
	}
	q.Origin = origin

	return q, nil
}

// sessionToken keeps an active caller token and starts a new session otherwise.
// Store failures never block a suggestion request.
func (s *Service) sessionToken(ctx context.Context, token string) string {
	if token != "" {
		active, err := s.sessions.Active(ctx, token)
		if err != nil {
			s.Logger.Warnw("Error checking session token", "action", "Suggest", "error", err.Error())
			return token
		}
		if active {
			return token
		}
	}

	newToken, err := s.sessions.Begin(ctx)
	if err != nil {
		s.Logger.Warnw("Error starting session", "action", "Suggest", "error", err.Error())
		if token != "" {
			return token
		}
		return session.NewToken()
	}
	return newToken
}

func (s *Service) BeginSessionHandler(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessions.Begin(r.Context())
	if err != nil {
		s.Logger.Errorw("Error starting session", "action", "BeginSession", "error", err.Error())
		s.writeError(w, CodeError{code: 500, msg: "Internal error starting search session."})
		return
	}
	s.writeJSON(w, http.StatusCreated, t.SessionResponse{SessionToken: token})
}

func (s *Service) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	err := s.sessions.End(r.Context(), token)
	if errors.Is(err, session.ErrInvalidToken) {
		s.writeError(w, CodeError{code: 400, msg: "Invalid session token."})
		return
	} else if err != nil {
		s.Logger.Errorw("Error ending session", "action", "EndSession", "error", err.Error())
		s.writeError(w, CodeError{code: 500, msg: "Internal error ending search session."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) writeError(w http.ResponseWriter, err error) {
	var codeErr CodeError
	if errors.As(err, &codeErr) {
		s.writeJSON(w, codeErr.code, t.ErrorResponse{Error: codeErr.Error()})
		return
	}
	w.WriteHeader(500)
	io.WriteString(w, "Internal server error")
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, body interface{}) {
	bodyBytes, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(bodyBytes)
}
