// internal/httpserver/server.go
//
// HTTP server wiring for the word-chain backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, request log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: POST /game/new, GET /game/state, POST /game/word,
//     POST /game/timeout, POST /game/resume.
//   - Leaderboards: GET /games/top, GET /rankings.
//
// Notes:
//   - Sessions are addressed with a signed session token (X-Session-Token header
//     or ?session=), never with the raw session ID.
//   - Every request rebuilds the game from storage; the server holds no game state.
//   - Engine errors map to statuses in writeError.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/internal/config"
	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/ranking"
)

// TopGamesLimit is the size of the /games/top list.
const TopGamesLimit = 10

// Leaderboard lists finished games.
type Leaderboard interface {
	Leaderboard(ctx context.Context, q ranking.Query) ([]ranking.Row, error)
}

// Server bundles the router, the game engine and the leaderboard source.
type Server struct {
	r         *chi.Mux
	engine    *game.Engine
	board     Leaderboard
	tokens    *Tokens
	timeLimit time.Duration
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg config.Config, engine *game.Engine, board Leaderboard) *Server {
	s := &Server{
		r:         chi.NewRouter(),
		engine:    engine,
		board:     board,
		tokens:    NewTokens(cfg.TokenSecret, cfg.TokenTTL),
		timeLimit: cfg.TimeLimit,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                   // add X-Request-ID
	s.r.Use(chimw.RealIP)                      // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLog)                        // one log line per request
	s.r.Use(chimw.Recoverer)                   // recover from panics
	s.r.Use(chimw.Timeout(cfg.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                   // default JSON responses
	s.r.Use(cors(cfg.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "wordchain",
			"endpoints": []string{
				"/health", "POST /game/new", "GET /game/state", "POST /game/word",
				"POST /game/timeout", "POST /game/resume", "GET /games/top", "GET /rankings",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	s.r.Route("/game", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Get("/state", s.handleState)
		r.Post("/word", s.handleWord)
		r.Post("/timeout", s.handleTimeout)
		r.Post("/resume", s.handleResume)
	})
	s.r.Get("/games/top", s.handleTopGames)
	s.r.Get("/rankings", s.handleRankings)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+sessionHeader)
			w.Header().Set("Access-Control-Expose-Headers", sessionHeader)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLog writes one zerolog line per request.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	PlayerName string `json:"playerName"`
}
type newGameRes struct {
	SessionToken     string        `json:"sessionToken"`
	ExpiresAt        time.Time     `json:"expiresAt"`
	TimeLimitSeconds int           `json:"timeLimitSeconds"`
	Game             game.Snapshot `json:"game"`
}

// handleNewGame starts a session and returns its token. An empty body plays as Guest.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	snap, err := s.engine.CreateSession(r.Context(), req.PlayerName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tok, exp, err := s.tokens.Sign(snap.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session", snap.SessionID).Msg("sign session token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "sign_failed"})
		return
	}
	w.Header().Set(sessionHeader, tok)
	writeJSON(w, http.StatusCreated, newGameRes{
		SessionToken:     tok,
		ExpiresAt:        exp,
		TimeLimitSeconds: int(s.timeLimit / time.Second),
		Game:             snap,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	snap, err := s.engine.GetState(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type wordReq struct {
	Word string `json:"word"`
}

// handleWord plays the human word; the opponent's reply is in the same response.
func (s *Server) handleWord(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req wordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
		return
	}
	out, err := s.engine.SubmitWord(r.Context(), id, req.Word)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTimeout(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.engine.SignalTimeout(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := s.engine.ResumeOpponent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// ---------------------------- LEADERBOARDS ---------------------------------

func (s *Server) handleTopGames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.board.Leaderboard(r.Context(), ranking.Query{Sort: ranking.SortScore, Limit: TopGamesLimit})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleRankings serves GET /rankings?period=DAYS&player=NAME&sort=score|recent|time.
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, _ := strconv.Atoi(q.Get("period"))
	player := q.Get("player")
	if player == "" {
		player = q.Get("player_name")
	}
	sort := q.Get("sort")
	if sort == "" {
		sort = q.Get("sort_by")
	}
	rows, err := s.board.Leaderboard(r.Context(), ranking.Query{
		PeriodDays: period,
		Player:     player,
		Sort:       ranking.Sort(strings.ToLower(sort)),
		Limit:      ranking.DefaultLimit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ------------------------------- helpers -----------------------------------

// sessionID resolves the session token on r.
func (s *Server) sessionID(r *http.Request) (string, error) {
	tok := strings.TrimSpace(r.Header.Get(sessionHeader))
	if tok == "" {
		tok = r.URL.Query().Get("session")
	}
	return s.tokens.Parse(tok)
}

// decodeJSON decodes r.Body into v; an empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorRes struct {
	Error   string            `json:"error"`
	Kind    game.Kind         `json:"kind,omitempty"`
	Message string            `json:"message"`
	Retry   bool              `json:"retry,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// writeError maps engine errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ge *game.Error
	if !errors.As(err, &ge) {
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("unhandled error")
		writeJSON(w, http.StatusInternalServerError, errorRes{Error: "internal", Message: "internal error"})
		return
	}

	res := errorRes{Kind: ge.Kind, Message: ge.Message, Meta: ge.Meta}
	status := http.StatusInternalServerError
	switch ge.Kind.Class() {
	case game.ClassValidation:
		status, res.Error = http.StatusUnprocessableEntity, "invalid_word"
		if ge.Kind == game.KindInvalidPlayerName {
			res.Error = "invalid_player_name"
		}
	case game.ClassState:
		status, res.Error = http.StatusConflict, "wrong_turn_state"
	case game.ClassLookup:
		status, res.Error = http.StatusNotFound, "not_found"
	case game.ClassInfra:
		switch ge.Kind {
		case game.KindConcurrentModification:
			status, res.Error, res.Retry = http.StatusConflict, "conflict", true
		case game.KindSessionCreationFailed:
			status, res.Error, res.Retry = http.StatusServiceUnavailable, "unavailable", true
		default:
			res.Error = "internal"
		}
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("request_id", chimw.GetReqID(r.Context())).Msg("request failed")
	}
	writeJSON(w, status, res)
}
