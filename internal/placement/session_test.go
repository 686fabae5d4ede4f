package placement

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/snap"
)

// makeSpecs は n×n、1辺 edge px のピース仕様を作る
func makeSpecs(n, edge int) []model.PieceSpec {
	specs := make([]model.PieceSpec, 0, n*n)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			specs = append(specs, model.PieceSpec{
				ID:     row*n + col,
				Pixels: image.NewRGBA(image.Rect(0, 0, edge, edge)),
				HomeX:  col * edge,
				HomeY:  row * edge,
				Width:  edge,
				Height: edge,
			})
		}
	}
	return specs
}

func newTestSession(opts ...Option) *Session {
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	s := NewSession(opts...)
	s.BeginRound(makeSpecs(3, 140))
	return s
}

func TestSession_BeginRound(t *testing.T) {
	s := newTestSession()

	require.Equal(t, 9, s.Len())
	assert.Equal(t, 420, s.BoardSize())
	assert.False(t, s.IsRoundComplete())
	assert.Equal(t, 0, s.PlacedCount())

	board := snap.Box{W: 420, H: 420}
	for _, p := range s.Pieces() {
		assert.False(t, p.Placed)
		// トレイは盤面の右側にあり、盤面とは重ならない
		assert.GreaterOrEqual(t, p.X, 420.0+40)
		assert.LessOrEqual(t, p.X, 420.0+40+160)
		assert.GreaterOrEqual(t, p.Y, 20.0)
		assert.False(t, PieceBox(&p).Overlaps(board), "piece %d overlaps the board", p.Spec.ID)
	}
}

func TestSession_BeginRound_NoOverlapWhenRoomy(t *testing.T) {
	// 小さいピースならトレイ内で重ならずに配れる
	s := NewSession(
		WithRand(rand.New(rand.NewSource(3))),
		WithScatterArea(ScatterArea{Gap: 40, Span: 2000, Margin: 0}),
	)
	s.BeginRound(makeSpecs(3, 20))

	pieces := s.Pieces()
	for i := range pieces {
		for j := i + 1; j < len(pieces); j++ {
			assert.False(t, PieceBox(&pieces[i]).Overlaps(PieceBox(&pieces[j])),
				"pieces %d and %d overlap", i, j)
		}
	}
}

func TestSession_Deterministic(t *testing.T) {
	a := newTestSession()
	b := newTestSession()

	assert.Equal(t, a.Pieces(), b.Pieces())
}

func TestSession_MovePiece(t *testing.T) {
	t.Run("正常系: 未配置ピースは動く", func(t *testing.T) {
		s := newTestSession()

		moved, err := s.MovePiece(4, 10, 20)

		require.NoError(t, err)
		assert.True(t, moved)
		p, err := s.Piece(4)
		require.NoError(t, err)
		assert.Equal(t, 10.0, p.X)
		assert.Equal(t, 20.0, p.Y)
	})

	t.Run("正常系: 配置済みピースは動かない", func(t *testing.T) {
		s := newTestSession()
		_, _ = s.MovePiece(0, 0, 0)
		result, err := s.AttemptCommit(0)
		require.NoError(t, err)
		require.Equal(t, model.Committed, result)

		moved, err := s.MovePiece(0, 300, 300)

		require.NoError(t, err)
		assert.False(t, moved)
		p, _ := s.Piece(0)
		assert.Equal(t, 0.0, p.X)
		assert.Equal(t, 0.0, p.Y)
	})

	t.Run("異常系: 存在しないピース", func(t *testing.T) {
		s := newTestSession()

		_, err := s.MovePiece(99, 0, 0)

		assert.ErrorIs(t, err, model.ErrUnknownPiece)
	})
}

func TestSession_AttemptCommit(t *testing.T) {
	tests := []struct {
		name   string
		x, y   float64
		want   model.CommitResult
		placed bool
	}{
		{name: "正常系: ホームに重ねる", x: 140, y: 140, want: model.Committed, placed: true},
		{name: "正常系: 磁力圏内", x: 140 + 20, y: 140 + 20, want: model.Committed, placed: true},
		{name: "正常系: 中心がスロット内", x: 140 + 60, y: 140 - 60, want: model.Committed, placed: true},
		{name: "正常系: 遠すぎる", x: 500, y: 500, want: model.NotCommitted, placed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()
			_, err := s.MovePiece(4, tt.x, tt.y)
			require.NoError(t, err)

			result, err := s.AttemptCommit(4)

			require.NoError(t, err)
			assert.Equal(t, tt.want, result)
			p, _ := s.Piece(4)
			assert.Equal(t, tt.placed, p.Placed)
			if tt.placed {
				// ホームにぴったり吸着する
				assert.Equal(t, float64(p.Spec.HomeX), p.X)
				assert.Equal(t, float64(p.Spec.HomeY), p.Y)
			} else {
				// ソフトドロップなので離した位置に残る
				assert.Equal(t, tt.x, p.X)
				assert.Equal(t, tt.y, p.Y)
			}
		})
	}

	t.Run("正常系: 二度目は無視される", func(t *testing.T) {
		s := newTestSession()
		_, _ = s.MovePiece(4, 140, 140)
		first, err := s.AttemptCommit(4)
		require.NoError(t, err)

		second, err := s.AttemptCommit(4)

		require.NoError(t, err)
		assert.Equal(t, model.Committed, first)
		assert.Equal(t, model.Ignored, second)
		assert.Equal(t, 1, s.PlacedCount())
	})

	t.Run("異常系: 存在しないピース", func(t *testing.T) {
		s := newTestSession()

		_, err := s.AttemptCommit(-1)

		assert.ErrorIs(t, err, model.ErrUnknownPiece)
	})
}

func TestSession_RevertToOrigin(t *testing.T) {
	s := newTestSession(WithDropPolicy(RevertToOrigin))
	before, _ := s.Piece(2)

	ok, err := s.Grab(2)
	require.NoError(t, err)
	require.True(t, ok)
	_, _ = s.MovePiece(2, 0, 400)

	id, result, ok := s.Release()

	require.True(t, ok)
	assert.Equal(t, 2, id)
	assert.Equal(t, model.NotCommitted, result)
	after, _ := s.Piece(2)
	assert.Equal(t, before.X, after.X)
	assert.Equal(t, before.Y, after.Y)
	assert.Equal(t, RevertToOrigin, s.Policy())
}

func TestSession_RevertToOrigin_Regrab(t *testing.T) {
	s := newTestSession(WithDropPolicy(RevertToOrigin))
	before, _ := s.Piece(2)

	_, err := s.Grab(2)
	require.NoError(t, err)
	_, _ = s.MovePiece(2, 500, 500)

	// 移動中に同じピースをもう一度掴んでも元の位置は上書きされない
	ok, err := s.Grab(2)
	require.NoError(t, err)
	require.True(t, ok)
	_, _ = s.MovePiece(2, 0, 400)

	_, result, ok := s.Release()

	require.True(t, ok)
	assert.Equal(t, model.NotCommitted, result)
	after, _ := s.Piece(2)
	assert.Equal(t, before.X, after.X)
	assert.Equal(t, before.Y, after.Y)
}

func TestSession_IsRoundComplete(t *testing.T) {
	s := newTestSession()

	for id := 0; id < 9; id++ {
		assert.False(t, s.IsRoundComplete(), "complete before piece %d", id)

		spec := s.specs[id]
		_, err := s.MovePiece(id, float64(spec.HomeX), float64(spec.HomeY))
		require.NoError(t, err)
		result, err := s.AttemptCommit(id)
		require.NoError(t, err)
		require.Equal(t, model.Committed, result)

		// 同じピースを重ねてコミットしても完了にはならない
		result, _ = s.AttemptCommit(id)
		assert.Equal(t, model.Ignored, result)
	}

	assert.True(t, s.IsRoundComplete())
	assert.Equal(t, 1.0, s.Progress())

	t.Run("正常系: ピースなしは完了しない", func(t *testing.T) {
		empty := NewSession()
		empty.BeginRound(nil)

		assert.False(t, empty.IsRoundComplete())
		assert.Equal(t, 0.0, empty.Progress())
	})
}

func TestSession_Scramble(t *testing.T) {
	s := newTestSession()
	for id := 0; id < 3; id++ {
		spec := s.specs[id]
		_, _ = s.MovePiece(id, float64(spec.HomeX), float64(spec.HomeY))
		_, _ = s.AttemptCommit(id)
	}
	require.Equal(t, 3, s.PlacedCount())

	s.Scramble()

	assert.Equal(t, 0, s.PlacedCount())
	for _, p := range s.Pieces() {
		assert.False(t, p.Placed)
		assert.GreaterOrEqual(t, p.X, 460.0)
	}
}

func TestSession_Grab(t *testing.T) {
	t.Run("正常系: 掴んだピースが最前面になる", func(t *testing.T) {
		s := newTestSession()

		ok, err := s.Grab(0)

		require.NoError(t, err)
		assert.True(t, ok)
		pieces := s.Pieces()
		assert.Equal(t, 0, pieces[len(pieces)-1].Spec.ID)
		id, active := s.Active()
		assert.True(t, active)
		assert.Equal(t, 0, id)
	})

	t.Run("正常系: 同じピースを掴み直せる", func(t *testing.T) {
		s := newTestSession()
		_, _ = s.Grab(1)

		ok, err := s.Grab(1)

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("異常系: 別のピースが移動中", func(t *testing.T) {
		s := newTestSession()
		_, _ = s.Grab(1)

		ok, err := s.Grab(2)

		assert.ErrorIs(t, err, model.ErrPieceBusy)
		assert.False(t, ok)
	})

	t.Run("正常系: 配置済みは掴めない", func(t *testing.T) {
		s := newTestSession()
		_, _ = s.MovePiece(0, 0, 0)
		_, _ = s.AttemptCommit(0)

		ok, err := s.Grab(0)

		require.NoError(t, err)
		assert.False(t, ok)
		_, active := s.Active()
		assert.False(t, active)
	})

	t.Run("正常系: 何も掴んでいなければReleaseは何もしない", func(t *testing.T) {
		s := newTestSession()

		_, result, ok := s.Release()

		assert.False(t, ok)
		assert.Equal(t, model.Ignored, result)
	})

	t.Run("正常系: Releaseでコミットされる", func(t *testing.T) {
		s := newTestSession()
		_, _ = s.Grab(8)
		_, _ = s.MovePiece(8, 280, 280)

		id, result, ok := s.Release()

		require.True(t, ok)
		assert.Equal(t, 8, id)
		assert.Equal(t, model.Committed, result)
		_, active := s.Active()
		assert.False(t, active)
	})
}

func TestSession_PieceAt(t *testing.T) {
	s := newTestSession()
	_, _ = s.MovePiece(0, 1000, 1000)
	_, _ = s.MovePiece(1, 1050, 1050)

	t.Run("正常系: 重なりは最前面を返す", func(t *testing.T) {
		id, ok := s.PieceAt(1100, 1100)

		require.True(t, ok)
		assert.Equal(t, 1, id)

		_, _ = s.Grab(0)
		_, _, _ = s.Release()
		id, ok = s.PieceAt(1100, 1100)
		require.True(t, ok)
		assert.Equal(t, 0, id)
	})

	t.Run("正常系: 何もない場所", func(t *testing.T) {
		_, ok := s.PieceAt(-50, -50)

		assert.False(t, ok)
	})

	t.Run("正常系: 配置済みピースは対象外", func(t *testing.T) {
		_, _ = s.MovePiece(2, 280, 0)
		_, _ = s.AttemptCommit(2)

		_, ok := s.PieceAt(300, 10)

		assert.False(t, ok)
	})
}

func TestSession_Evaluate(t *testing.T) {
	s := newTestSession(WithThresholds(snap.ForgivingThresholds()))
	_, _ = s.MovePiece(4, 140, 140)

	v, err := s.Evaluate(4)

	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Overlap)
	assert.True(t, v.Snap)
	assert.Equal(t, snap.ForgivingThresholds(), s.Thresholds())
}

func TestParseDropPolicy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    DropPolicy
		wantErr bool
	}{
		{name: "正常系: soft", input: "soft", want: SoftDrop},
		{name: "正常系: revert", input: "REVERT", want: RevertToOrigin},
		{name: "正常系: 空文字はsoft", input: "", want: SoftDrop},
		{name: "異常系: 未知", input: "bounce", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDropPolicy(tt.input)

			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}
