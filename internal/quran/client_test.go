package quran

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/surat", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 200,
			"message": "OK",
			"data": [
				{"nomor": 1, "nama": "الفاتحة", "namaLatin": "Al-Fatihah", "jumlahAyat": 7, "tempatTurun": "Meccan", "urutanWahyu": 5, "arti": "Pembukaan"},
				{"nomor": 2, "nama": "البقرة", "namaLatin": "Al-Baqarah", "jumlahAyat": 286, "tempatTurun": "Medinan", "urutanWahyu": 87, "arti": "Sapi"}
			]
		}`))
	})
	mux.HandleFunc("/surat/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 200,
			"message": "OK",
			"data": {
				"nomor": 1, "nama": "الفاتحة", "namaLatin": "Al-Fatihah", "jumlahAyat": 7, "tempatTurun": "Meccan",
				"ayat": [
					{"nomorAyat": 1, "teksArab": "بِسْمِ اللَّهِ", "teksLatin": "bismillah", "teksIndonesia": "Dengan nama Allah", "juz": 1},
					{"nomorAyat": 2, "teksArab": "الْحَمْدُ لِلَّهِ", "teksLatin": "alhamdulillah", "teksIndonesia": "Segala puji bagi Allah", "juz": 1}
				]
			}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientListSurah(t *testing.T) {
	srv := newFakeAPI(t)
	c := NewClient(srv.URL)

	surahs, err := c.ListSurah(context.Background())
	require.NoError(t, err)
	require.Len(t, surahs, 2)
	assert.Equal(t, 1, surahs[0].Number)
	assert.Equal(t, "Al-Fatihah", surahs[0].NameLatin)
	assert.Equal(t, "Meccan", surahs[0].RevelationRaw)
	assert.Equal(t, "Medinan", surahs[1].RevelationRaw)
}

func TestClientGetSurah(t *testing.T) {
	srv := newFakeAPI(t)
	c := NewClient(srv.URL)

	detail, err := c.GetSurah(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, detail.Ayat, 2)
	assert.Equal(t, 1, detail.Ayat[0].Number)
	assert.Equal(t, "Dengan nama Allah", detail.Ayat[0].TextIndonesian)
	assert.Equal(t, 1, detail.Ayat[0].Juz)
}

func TestClientErrorStatus(t *testing.T) {
	srv := newFakeAPI(t)
	c := NewClient(srv.URL)

	_, err := c.GetSurah(context.Background(), 99)
	assert.Error(t, err)
}

func TestRevelationPlaceMapping(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Meccan", "Mekah"},
		{"Medinan", "Madinah"},
		{"Mekah", "Mekah"},
		{"Madinah", "Madinah"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, revelationPlaces[tt.raw])
		})
	}
	assert.Empty(t, revelationPlaces["Unknown"], "unknown labels fall back at the call site")
}
