package quran

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// revelationPlaces maps the API's revelation labels onto the values the
// schema stores. Unknown labels fall back to Mekah, like the source data's
// own convention.
var revelationPlaces = map[string]string{
	"Meccan":  "Mekah",
	"Medinan": "Madinah",
	"Mekah":   "Mekah",
	"Madinah": "Madinah",
}

// Importer loads the full surah/ayah/juz dataset into Postgres and, when an
// Elasticsearch client is configured, bulk-indexes ayah text for search.
// Inserts are idempotent so the import can be re-run after a partial failure.
type Importer struct {
	DB        *pgxpool.Pool
	Client    *Client
	ES        *elasticsearch.Client
	AyahIndex string
	Logger    *logrus.Logger
}

func (im *Importer) Run(ctx context.Context) error {
	surahs, err := im.Client.ListSurah(ctx)
	if err != nil {
		return fmt.Errorf("list surah: %w", err)
	}
	im.Logger.WithField("count", len(surahs)).Info("fetched surah list")

	for _, s := range surahs {
		if err := im.importSurah(ctx, s); err != nil {
			return fmt.Errorf("surah %d (%s): %w", s.Number, s.NameLatin, err)
		}
	}
	im.Logger.Info("quran import complete")
	return nil
}

func (im *Importer) importSurah(ctx context.Context, s Surah) error {
	place := revelationPlaces[s.RevelationRaw]
	if place == "" {
		place = "Mekah"
	}

	_, err := im.DB.Exec(ctx, `
		INSERT INTO surah (id, name_arabic, name_english, number_of_ayah, revelation_place, revelation_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		s.Number, s.NameArabic, s.NameLatin, s.AyahCount, place, s.RevelationSeq,
	)
	if err != nil {
		return fmt.Errorf("insert surah: %w", err)
	}

	detail, err := im.Client.GetSurah(ctx, s.Number)
	if err != nil {
		return err
	}

	for _, a := range detail.Ayat {
		if a.Juz > 0 {
			if err := im.upsertJuz(ctx, a.Juz, s.Number, a.Number); err != nil {
				return err
			}
		}
		var juz any
		if a.Juz > 0 {
			juz = a.Juz
		}
		_, err := im.DB.Exec(ctx, `
			INSERT INTO ayah (surah_id, ayah_number, text_arabic, text_translation, juz_number)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (surah_id, ayah_number) DO NOTHING`,
			s.Number, a.Number, a.TextArabic, a.TextIndonesian, juz,
		)
		if err != nil {
			return fmt.Errorf("insert ayah %d: %w", a.Number, err)
		}
	}

	if im.ES != nil {
		if err := im.indexAyahs(ctx, s.Number, detail.Ayat); err != nil {
			im.Logger.WithError(err).WithField("surah", s.Number).Warn("elasticsearch indexing failed")
		}
	}

	im.Logger.WithFields(logrus.Fields{"surah": s.Number, "ayahs": len(detail.Ayat)}).Info("imported surah")
	return nil
}

// upsertJuz records the juz row on first sight; the opening verse of a surah
// marks the juz start when the juz begins there.
func (im *Importer) upsertJuz(ctx context.Context, number, surahID, ayahNumber int) error {
	var startSurah, startAyah any
	if ayahNumber == 1 {
		startSurah, startAyah = surahID, ayahNumber
	}
	_, err := im.DB.Exec(ctx, `
		INSERT INTO juz (number, start_surah, start_ayah)
		VALUES ($1, $2, $3)
		ON CONFLICT (number) DO NOTHING`,
		number, startSurah, startAyah,
	)
	if err != nil {
		return fmt.Errorf("insert juz %d: %w", number, err)
	}
	return nil
}

type ayahDoc struct {
	SurahID     int    `json:"surah_id"`
	AyahNumber  int    `json:"ayah_number"`
	TextArabic  string `json:"text_arabic"`
	Translation string `json:"text_translation"`
	Juz         int    `json:"juz_number,omitempty"`
}

func (im *Importer) indexAyahs(ctx context.Context, surahID int, ayat []Ayah) error {
	if len(ayat) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, a := range ayat {
		meta := fmt.Sprintf(`{"index":{"_id":"%d-%d"}}`, surahID, a.Number)
		buf.WriteString(meta)
		buf.WriteByte('\n')
		doc, err := json.Marshal(ayahDoc{
			SurahID:     surahID,
			AyahNumber:  a.Number,
			TextArabic:  a.TextArabic,
			Translation: a.TextIndonesian,
			Juz:         a.Juz,
		})
		if err != nil {
			return err
		}
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := im.ES.Bulk(bytes.NewReader(buf.Bytes()),
		im.ES.Bulk.WithIndex(im.AyahIndex),
		im.ES.Bulk.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.String())
	}
	return nil
}
