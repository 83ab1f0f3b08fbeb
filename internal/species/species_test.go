package species

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/errors"
	"github.com/listenupapp/binderkeep/internal/fetch"
	"github.com/listenupapp/binderkeep/internal/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /species", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[
			{"dexId": 25, "name": "Pikachu"},
			{"dexId": 1, "name": "Bulbasaur"},
			{"dexId": 0, "name": "Missingno"},
			{"dexId": 4, "name": ""}
		]`))
	})
	mux.HandleFunc("GET /species/25", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"names": {"en": "Pikachu", "ja": "ピカチュウ", "pt": "Pikachu-pt", "zh-Hant": "皮卡丘"}}`))
	})
	mux.HandleFunc("GET /species/500", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, fetch.Config{
		RequestsPerSecond: 1000,
		MaxRetries:        1,
		InitialBackoff:    time.Millisecond,
	}, logger.Discard())
}

func TestBaseRoster(t *testing.T) {
	c := newTestClient(t)

	roster, err := c.BaseRoster(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Species{
		{DexID: 1, Name: "Bulbasaur"},
		{DexID: 25, Name: "Pikachu"},
	}, roster)
}

func TestLocalizedName(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		lang string
		want string
	}{
		{"ja", "ピカチュウ"},
		{"EN", "Pikachu"},
		{"pt-BR", "Pikachu-pt"},
		{"zh-Hant", "皮卡丘"},
		{"fr", ""},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			name, err := c.LocalizedName(ctx, 25, tt.lang)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestLocalizedName_UnknownSpecies(t *testing.T) {
	c := newTestClient(t)

	name, err := c.LocalizedName(context.Background(), 9999, "en")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestLocalizedName_ServerError(t *testing.T) {
	c := newTestClient(t)

	_, err := c.LocalizedName(context.Background(), 500, "en")
	assert.ErrorIs(t, err, errors.ErrUnavailable)
}
