package handler

import (
	"github.com/kyiku/planet-jigsaw-back/internal/round"
	"github.com/kyiku/planet-jigsaw-back/internal/session"
)

// gameState builds the client view of a game. The caller holds the game lock.
func gameState(game *session.Game) map[string]interface{} {
	ctrl := game.Round
	d := ctrl.Current()

	state := map[string]interface{}{
		"round":  ctrl.Index(),
		"rounds": ctrl.Len(),
		"body":   d.Identity.String(),
		"title":  d.Identity.Title(),
		"grid":   d.Grid,
		"state":  string(ctrl.State()),
		"hint":   ctrl.Hint(),
	}

	if s := ctrl.Session(); s != nil {
		pieces := make([]map[string]interface{}, 0, s.Len())
		for _, p := range s.Pieces() {
			pieces = append(pieces, map[string]interface{}{
				"id":     p.Spec.ID,
				"x":      p.X,
				"y":      p.Y,
				"width":  p.Spec.Width,
				"height": p.Spec.Height,
				"row":    p.Spec.Row(d.Grid),
				"col":    p.Spec.Col(d.Grid),
				"placed": p.Placed,
			})
		}
		state["board_size"] = s.BoardSize()
		state["pieces"] = pieces
		state["placed"] = s.PlacedCount()
		state["progress"] = s.Progress()
	}

	if st := ctrl.State(); st == round.StateComplete || st == round.StateAllComplete {
		state["fact"] = d.Fact
	}

	if game.Assets != nil {
		state["assets"] = map[string]interface{}{
			"raster": game.Assets.RasterURL,
			"hint":   game.Assets.HintURL,
			"pieces": game.Assets.PieceURLs,
		}
	}

	return state
}
