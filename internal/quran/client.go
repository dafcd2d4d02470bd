package quran

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fetches surah data from the equran.id v2 API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Surah is one entry of the surah listing.
type Surah struct {
	Number        int    `json:"nomor"`
	NameArabic    string `json:"nama"`
	NameLatin     string `json:"namaLatin"`
	AyahCount     int    `json:"jumlahAyat"`
	RevelationRaw string `json:"tempatTurun"`
	RevelationSeq int    `json:"urutanWahyu"`
	Meaning       string `json:"arti"`
}

// Ayah is one verse within a surah detail response.
type Ayah struct {
	Number         int    `json:"nomorAyat"`
	TextArabic     string `json:"teksArab"`
	TextLatin      string `json:"teksLatin"`
	TextIndonesian string `json:"teksIndonesia"`
	Juz            int    `json:"juz"`
}

// SurahDetail is the per-surah response including its verses.
type SurahDetail struct {
	Surah
	Ayat []Ayah `json:"ayat"`
}

type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *Client) ListSurah(ctx context.Context) ([]Surah, error) {
	var env envelope[[]Surah]
	if err := c.get(ctx, c.BaseURL+"/surat", &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func (c *Client) GetSurah(ctx context.Context, number int) (*SurahDetail, error) {
	var env envelope[SurahDetail]
	if err := c.get(ctx, fmt.Sprintf("%s/surat/%d", c.BaseURL, number), &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
