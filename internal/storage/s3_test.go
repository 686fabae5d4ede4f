package storage

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyiku/planet-jigsaw-back/internal/jigsaw"
	"github.com/kyiku/planet-jigsaw-back/internal/testutil"
)

func TestS3Client_PublishRound(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*testutil.MockS3Client)
		wantErr   bool
	}{
		{
			name:      "正常系: ラウンド画像を公開",
			setupMock: func(m *testutil.MockS3Client) {},
		},
		{
			name: "異常系: アップロード失敗",
			setupMock: func(m *testutil.MockS3Client) {
				m.PutErr = errors.New("S3 error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockS3 := testutil.NewMockS3Client()
			tt.setupMock(mockS3)
			client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net/")

			raster := testutil.CreateTestImage(300, 300)
			specs, err := jigsaw.Decompose(raster, 3)
			require.NoError(t, err)

			assets, err := client.PublishRound(raster, specs)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, assets)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(assets.RasterURL, "https://test.cloudfront.net/rounds/"))
			assert.True(t, strings.HasSuffix(assets.RasterURL, "/raster.png"))
			assert.True(t, strings.HasSuffix(assets.HintURL, "/hint.png"))
			assert.Len(t, assets.PieceURLs, 9)
			assert.Equal(t, client.URL(assets.Prefix+"/pieces/4.png"), assets.PieceURLs[4])

			// raster + hint + 9 pieces
			assert.Len(t, mockS3.UploadedData, 11, "全ての画像がアップロードされているべき")

			// アップロードされたピースはPNGとして読める
			data := mockS3.UploadedData[assets.Prefix+"/pieces/0.png"]
			img, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, 100, img.Bounds().Dx())
		})
	}
}

func TestS3Client_PublishRound_UniquePrefix(t *testing.T) {
	mockS3 := testutil.NewMockS3Client()
	client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")
	raster := testutil.CreateTestImage(30, 30)

	a, err := client.PublishRound(raster, nil)
	require.NoError(t, err)
	b, err := client.PublishRound(raster, nil)
	require.NoError(t, err)

	assert.NotEqual(t, a.Prefix, b.Prefix)
}

func TestS3Client_ListRound(t *testing.T) {
	t.Run("正常系: 公開したキーを一覧できる", func(t *testing.T) {
		mockS3 := testutil.NewMockS3Client()
		client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")
		raster := testutil.CreateTestImage(40, 40)
		specs, err := jigsaw.Decompose(raster, 2)
		require.NoError(t, err)

		assets, err := client.PublishRound(raster, specs)
		require.NoError(t, err)

		keys, err := client.ListRound(assets.Prefix)

		require.NoError(t, err)
		assert.Len(t, keys, 6)
		assert.Contains(t, keys, assets.Prefix+"/raster.png")
		assert.Contains(t, keys, assets.Prefix+"/pieces/3.png")
	})

	t.Run("異常系: 一覧取得失敗", func(t *testing.T) {
		mockS3 := testutil.NewMockS3Client()
		mockS3.ListErr = errors.New("S3 error")
		client := NewS3Client(mockS3, "test-bucket", "https://test.cloudfront.net")

		_, err := client.ListRound("rounds/x")

		assert.Error(t, err)
	})
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		size          int
		wantW, wantH  int
	}{
		{name: "正常系: 正方形を縮小", width: 700, height: 700, size: 256, wantW: 256, wantH: 256},
		{name: "正常系: 横長を縮小", width: 400, height: 200, size: 100, wantW: 100, wantH: 50},
		{name: "正常系: 縦長を縮小", width: 200, height: 400, size: 100, wantW: 50, wantH: 100},
		{name: "正常系: 小さい画像はそのまま", width: 50, height: 40, size: 100, wantW: 50, wantH: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := testutil.CreateTestImage(tt.width, tt.height)

			thumb := Thumbnail(img, tt.size)

			assert.Equal(t, image.Rect(0, 0, tt.wantW, tt.wantH), thumb.Bounds())
		})
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(testutil.CreateTestImage(8, 8))

	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}
