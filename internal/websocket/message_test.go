package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id := 4

	tests := []struct {
		name    string
		message string
		want    Inbound
		wantErr bool
	}{
		{
			name:    "pingメッセージ",
			message: `{"type": "ping"}`,
			want:    Inbound{Type: TypePing},
		},
		{
			name:    "ピースを指定して押下",
			message: `{"type": "pointer_pressed", "id": 4, "x": 10.5, "y": 20}`,
			want:    Inbound{Type: TypePointerPressed, ID: &id, X: 10.5, Y: 20},
		},
		{
			name:    "座標だけで押下",
			message: `{"type": "pointer_pressed", "x": 1, "y": 2}`,
			want:    Inbound{Type: TypePointerPressed, X: 1, Y: 2},
		},
		{
			name:    "移動",
			message: `{"type": "pointer_moved", "x": 300, "y": 40}`,
			want:    Inbound{Type: TypePointerMoved, X: 300, Y: 40},
		},
		{
			name:    "解放",
			message: `{"type": "pointer_released", "x": 0, "y": 0}`,
			want:    Inbound{Type: TypePointerReleased},
		},
		{
			name:    "未知のタイプ",
			message: `{"type": "message", "data": "hello"}`,
			wantErr: true,
		},
		{
			name:    "typeなし",
			message: `{"x": 1}`,
			wantErr: true,
		},
		{
			name:    "不正なJSON",
			message: `invalid`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.message))

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutboundMessages(t *testing.T) {
	tests := []struct {
		name     string
		msg      map[string]interface{}
		wantType string
	}{
		{name: "ピース確定", msg: PieceCommitted(3), wantType: "piece_committed"},
		{name: "ドロップ結果", msg: PieceDropped(3, "not_committed"), wantType: "piece_dropped"},
		{name: "ラウンド完了", msg: RoundComplete(1, "fact"), wantType: "round_complete"},
		{name: "全ラウンド完了", msg: AllRoundsComplete(), wantType: "all_rounds_complete"},
		{name: "状態", msg: State(map[string]int{"round": 0}), wantType: "state"},
		{name: "エラー", msg: Error("UNKNOWN_PIECE", "unknown piece"), wantType: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.msg)
			require.NoError(t, err)

			var decoded map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.wantType, decoded["type"])
		})
	}
}
