// Package prompt monta o texto enviado ao modelo a partir das estatísticas do primeiro tempo.
// Build é puro e determinístico: mesmo Record => mesmo texto, byte a byte.
package prompt

import (
	"strings"

	"github.com/radieske/halftime-predictor/internal/prediction-service/match"
)

const instructions = `Bu maçın ilk yarısı tamamlanmıştır ve ilk yarı skoru aşağıdaki "İlk Yarı Skoru" satırında verilmiştir. Verilen istatistikler ilk yarıya aittir. İkinci yarı için aşağıdaki bahis türlerini analiz et ve en mantıklı tahminleri yap:

1. Maç Sonucu (1-0-2)
2. İkinci Yarı Gol Sayısı Alt/Üst bahisleri (0.5, 1.5, 2.5)
3. Toplam Gol Sayısı (Mevcut ilk yarı skoru üzerine)
4. İkinci Yarıda Karşılıklı Gol (Var/Yok)
5. İkinci Yarı Korner Alt/Üst
6. İkinci Yarı Kart Alt/Üst
7. Handikaplı Maç Sonucu

ÖNEMLİ NOTLAR:
- İlk yarı skoru, ikinci yarı ve maç sonu tahminlerinin başlangıç noktasıdır. Bu skor üzerine tahmin yapılmalıdır.
- Toplam gol bahisleri için ilk yarıdaki golleri hesaba katmayı unutma.
- Sadece mantıklı ve mümkün olan bahis seçeneklerini öner.
- Her tahmin için güven derecesi belirt (düşük/orta/yüksek) ve seçiminin gerekçelerini açıkla.
`

// BetCategories são os sete tipos de aposta pedidos nas instruções
var BetCategories = []string{
	"Maç Sonucu (1-0-2)",
	"İkinci Yarı Gol Sayısı Alt/Üst",
	"Toplam Gol Sayısı",
	"İkinci Yarıda Karşılıklı Gol (Var/Yok)",
	"İkinci Yarı Korner Alt/Üst",
	"İkinci Yarı Kart Alt/Üst",
	"Handikaplı Maç Sonucu",
}

// line é uma linha do bloco de dados: rótulo + um campo, ou par casa/fora
type line struct {
	label string
	home  string
	away  string // vazio => linha de campo único
}

type section struct {
	kind    match.Section
	heading string
	lines   []line
}

// layout precisa referenciar cada campo de match.Record exatamente uma vez
var layout = []section{
	{match.SectionIdentity, "Maç Bilgileri", []line{
		{label: "Lig", home: "league"},
		{label: "Tarih", home: "date"},
		{label: "Ev Sahibi", home: "homeTeam"},
		{label: "Deplasman", home: "awayTeam"},
	}},
	{match.SectionScore, "Skor ve Temel İstatistikler (İlk Yarı)", []line{
		{label: "İlk Yarı Skoru", home: "firstHalfScore"},
		{"xG (Ev/Dep)", "homeXG", "awayXG"},
		{"Büyük Şans (Ev/Dep)", "homeBigChances", "awayBigChances"},
	}},
	{match.SectionShooting, "Şut İstatistikleri", []line{
		{"Şutlar (Ev/Dep)", "homeShots", "awayShots"},
		{"Ceza Sahası İçi Şut (Ev/Dep)", "homeShotsInsideBox", "awayShotsInsideBox"},
		{"İsabetli Şutlar (Ev/Dep)", "homeOnTarget", "awayOnTarget"},
		{"Bloke Edilen Şutlar (Ev/Dep)", "homeBlockedShots", "awayBlockedShots"},
	}},
	{match.SectionControl, "Oyun Kontrolü", []line{
		{"Top Hakimiyeti % (Ev/Dep)", "homePossession", "awayPossession"},
		{"Paslar (Ev/Dep)", "homePasses", "awayPasses"},
		{"Müdahaleler (Ev/Dep)", "homeTackles", "awayTackles"},
	}},
	{match.SectionDiscipline, "Standart Pozisyonlar ve Disiplin", []line{
		{"Kornerler (Ev/Dep)", "homeCorners", "awayCorners"},
		{"Sarı Kartlar (Ev/Dep)", "homeYellow", "awayYellow"},
		{"Kırmızı Kartlar (Ev/Dep)", "homeRed", "awayRed"},
		{"Fauller (Ev/Dep)", "homeFouls", "awayFouls"},
	}},
	{match.SectionCommentary, "Maç Anlatımı", []line{
		{home: "liveCommentary"},
	}},
}

// Build devolve instruções + dados da partida em um único texto.
// Não falha: um Record vazio gera o mesmo esqueleto com valores vazios.
func Build(rec match.Record) string {
	values := make(map[string]match.Value, 32)
	for _, f := range rec.Fields() {
		values[f.Name] = f.Value
	}

	var sb strings.Builder
	sb.Grow(2048 + len(rec.Commentary))
	sb.WriteString(instructions)
	sb.WriteString("\nMaç Verileri:\n")

	for _, sec := range layout {
		sb.WriteString("\n[")
		sb.WriteString(sec.heading)
		sb.WriteString("]\n")
		for _, l := range sec.lines {
			if l.label != "" {
				sb.WriteString(l.label)
				sb.WriteString(": ")
			}
			sb.WriteString(string(values[l.home]))
			if l.away != "" {
				sb.WriteString("-")
				sb.WriteString(string(values[l.away]))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
