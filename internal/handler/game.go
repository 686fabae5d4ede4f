// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"
	"image"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kyiku/planet-jigsaw-back/internal/config"
	"github.com/kyiku/planet-jigsaw-back/internal/jigsaw"
	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/response"
	"github.com/kyiku/planet-jigsaw-back/internal/round"
	"github.com/kyiku/planet-jigsaw-back/internal/session"
	"github.com/kyiku/planet-jigsaw-back/internal/storage"
	"github.com/kyiku/planet-jigsaw-back/internal/websocket"
)

// SessionCookie is the cookie holding the session ID.
const SessionCookie = "session_id"

// SessionStoreInterface defines the interface for session storage.
type SessionStoreInterface interface {
	Create(game *session.Game) string
	Get(sessionID string) (*session.Game, bool)
}

// AssetPublisher uploads the images of a loaded round.
type AssetPublisher interface {
	PublishRound(raster image.Image, specs []model.PieceSpec) (*storage.RoundAssets, error)
}

// GameHandler handles the puzzle game API.
type GameHandler struct {
	store     SessionStoreInterface
	cfg       *config.Config
	publisher AssetPublisher
	synth     round.Synthesizer
	logger    *slog.Logger
	seed      func() int64
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(store SessionStoreInterface, cfg *config.Config) *GameHandler {
	return &GameHandler{
		store:  store,
		cfg:    cfg,
		logger: slog.Default(),
		seed:   func() int64 { return time.Now().UnixNano() },
	}
}

// SetPublisher enables uploading every loaded round.
func (h *GameHandler) SetPublisher(p AssetPublisher) {
	h.publisher = p
}

// SetSynthesizer replaces the raster generator used for new games.
func (h *GameHandler) SetSynthesizer(s round.Synthesizer) {
	h.synth = s
}

// SetLogger sets the logger passed to round controllers.
func (h *GameHandler) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// SetSeed fixes the random source of new games.
func (h *GameHandler) SetSeed(seed int64) {
	h.seed = func() int64 { return seed }
}

// MoveRequest represents a piece move.
type MoveRequest struct {
	ID *int    `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// DropRequest represents a commit attempt.
type DropRequest struct {
	ID *int `json:"id"`
}

// HintRequest optionally sets the hint overlay instead of toggling it.
type HintRequest struct {
	On *bool `json:"on"`
}

// Start creates a game session and loads the first round.
func (h *GameHandler) Start(c echo.Context) error {
	game, err := h.newGame()
	if err != nil {
		return response.FromError(c, err)
	}

	sessionID := h.store.Create(game)
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	game.Lock()
	defer game.Unlock()

	return response.Success(c, map[string]interface{}{
		"game_id": game.ID,
		"state":   gameState(game),
	})
}

// State returns the current game state.
func (h *GameHandler) State(c echo.Context) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	game.Lock()
	defer game.Unlock()

	return response.Success(c, map[string]interface{}{
		"state": gameState(game),
	})
}

// Hint toggles the reference image.
func (h *GameHandler) Hint(c echo.Context) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	var req HintRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c)
	}

	game.Lock()
	defer game.Unlock()

	if req.On != nil {
		game.Round.SetHint(*req.On)
	} else {
		game.Round.ToggleHint()
	}

	return response.Success(c, map[string]interface{}{
		"hint": game.Round.Hint(),
	})
}

// Scramble scatters every piece of the current round again.
func (h *GameHandler) Scramble(c echo.Context) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	game.Lock()
	defer game.Unlock()

	if _, _, err := game.Pointer.Abandon(); err != nil {
		return response.FromError(c, err)
	}
	if err := game.Round.Scramble(); err != nil {
		return response.FromError(c, err)
	}

	return h.pushState(c, game)
}

// Next advances to the following round and loads it.
func (h *GameHandler) Next(c echo.Context) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	game.Lock()
	defer game.Unlock()

	err := game.Round.Advance()
	if err == nil || errors.Is(err, model.ErrAllRoundsComplete) {
		// The previous round's pieces are gone
		game.Pointer.Reset()
	}
	if errors.Is(err, model.ErrAllRoundsComplete) {
		return response.Success(c, map[string]interface{}{
			"all_complete": true,
			"state":        gameState(game),
		})
	}
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.load(game); err != nil {
		return response.FromError(c, err)
	}

	return h.pushState(c, game)
}

// Move moves a piece to a board position.
func (h *GameHandler) Move(c echo.Context) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	var req MoveRequest
	if err := c.Bind(&req); err != nil || req.ID == nil {
		return invalidRequest(c)
	}

	game.Lock()
	defer game.Unlock()

	moved, err := game.Round.MovePiece(*req.ID, req.X, req.Y)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"moved": moved,
	})
}

// Drop tries to commit a piece to its home slot.
func (h *GameHandler) Drop(c echo.Context) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	var req DropRequest
	if err := c.Bind(&req); err != nil || req.ID == nil {
		return invalidRequest(c)
	}

	game.Lock()
	defer game.Unlock()

	result, err := game.Round.Commit(*req.ID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"result": result.String(),
		"state":  gameState(game),
	})
}

// Raster serves the full image of the current round.
func (h *GameHandler) Raster(c echo.Context) error {
	return h.servePNG(c, func(game *session.Game) (image.Image, error) {
		raster := game.Round.Raster()
		if raster == nil {
			return nil, model.ErrNoActiveRound
		}
		return raster, nil
	})
}

// HintImage serves the scaled reference image of the current round.
func (h *GameHandler) HintImage(c echo.Context) error {
	return h.servePNG(c, func(game *session.Game) (image.Image, error) {
		raster := game.Round.Raster()
		if raster == nil {
			return nil, model.ErrNoActiveRound
		}
		return storage.Thumbnail(raster, storage.DefaultHintSize), nil
	})
}

// Solved serves the current round's pieces drawn at their home slots.
func (h *GameHandler) Solved(c echo.Context) error {
	return h.servePNG(c, func(game *session.Game) (image.Image, error) {
		specs := game.Round.Specs()
		if specs == nil {
			return nil, model.ErrNoActiveRound
		}
		return jigsaw.Reassemble(specs), nil
	})
}

// Piece serves the image of one piece. The route parameter may carry a
// ".png" suffix.
func (h *GameHandler) Piece(c echo.Context) error {
	id, err := strconv.Atoi(strings.TrimSuffix(c.Param("id"), ".png"))
	if err != nil {
		return invalidRequest(c)
	}

	return h.servePNG(c, func(game *session.Game) (image.Image, error) {
		specs := game.Round.Specs()
		if specs == nil {
			return nil, model.ErrNoActiveRound
		}
		for i := range specs {
			if specs[i].ID == id {
				return specs[i].Pixels, nil
			}
		}
		return nil, model.ErrUnknownPiece
	})
}

func (h *GameHandler) servePNG(c echo.Context, pick func(*session.Game) (image.Image, error)) error {
	game, ok := h.lookup(c)
	if !ok {
		return invalidSession(c)
	}

	game.Lock()
	img, err := pick(game)
	game.Unlock()
	if err != nil {
		return response.FromError(c, err)
	}

	data, err := storage.EncodePNG(img)
	if err != nil {
		return response.FromError(c, err)
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

// newGame builds a controller from the configuration, wires WebSocket
// notifications and loads the first round.
func (h *GameHandler) newGame() (*session.Game, error) {
	var game *session.Game

	notify := round.ListenerFuncs{
		PieceCommitted: func(pieceID int) {
			_ = game.Send(websocket.PieceCommitted(pieceID))
		},
		RoundComplete: func(index int) {
			_ = game.Send(websocket.RoundComplete(index, game.Round.Current().Fact))
		},
		AllRoundsComplete: func() {
			_ = game.Send(websocket.AllRoundsComplete())
		},
	}

	opts := []round.Option{
		round.WithRasterSize(h.cfg.RasterSize),
		round.WithThresholds(h.cfg.Thresholds()),
		round.WithDropPolicy(h.cfg.DropPolicy),
		round.WithGrainDensity(h.cfg.GrainDensity),
		round.WithRand(rand.New(rand.NewSource(h.seed()))),
		round.WithListener(notify),
		round.WithLogger(h.logger),
		round.WithSynthesizer(h.synth),
	}

	descs := round.Descriptors(h.cfg.Rounds, h.cfg.GridSize)
	if len(descs) == 0 {
		descs = round.DefaultDescriptors(h.cfg.GridSize)
	}

	ctrl, err := round.NewController(descs, opts...)
	if err != nil {
		return nil, err
	}

	game = session.NewGame(ctrl)
	if err := h.load(game); err != nil {
		return nil, err
	}
	return game, nil
}

// load builds the current round and publishes it when S3 is configured.
// A failed upload is logged and the round is still playable.
func (h *GameHandler) load(game *session.Game) error {
	if err := game.Round.LoadCurrent(); err != nil {
		return err
	}

	game.Assets = nil
	if h.publisher == nil {
		return nil
	}

	assets, err := h.publisher.PublishRound(game.Round.Raster(), game.Round.Specs())
	if err != nil {
		h.logger.Warn("publish round failed", "game", game.ID, "round", game.Round.Index(), "error", err)
		return nil
	}
	game.Assets = assets
	return nil
}

// pushState sends the new state over the WebSocket and returns it.
func (h *GameHandler) pushState(c echo.Context, game *session.Game) error {
	state := gameState(game)
	_ = game.Send(websocket.State(state))

	return response.Success(c, map[string]interface{}{
		"state": state,
	})
}

func (h *GameHandler) lookup(c echo.Context) (*session.Game, bool) {
	return lookupGame(c, h.store)
}

// lookupGame resolves the session cookie.
func lookupGame(c echo.Context, store SessionStoreInterface) (*session.Game, bool) {
	cookie, err := c.Cookie(SessionCookie)
	if err != nil || cookie == nil {
		return nil, false
	}
	return store.Get(cookie.Value)
}

func invalidSession(c echo.Context) error {
	return response.ErrorWithCode(c, http.StatusUnauthorized, response.CodeInvalidSession, "無効なセッション")
}

func invalidRequest(c echo.Context) error {
	return response.ErrorWithCode(c, http.StatusBadRequest, response.CodeInvalidRequest, "リクエストの解析に失敗しました")
}
