package match

import (
	"bytes"
	"encoding/json"
)

// Value é um campo do formulário. Aceita string ou número no JSON e guarda
// exatamente o texto digitado; ausente => "".
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = Value(n.String())
	return nil
}

// Record são as estatísticas de primeiro tempo de uma partida, como vieram do formulário.
// Nenhum campo é obrigatório nessa camada.
type Record struct {
	League    Value `json:"league"`
	Date      Value `json:"date"`
	HomeTeam  Value `json:"homeTeam"`
	AwayTeam  Value `json:"awayTeam"`
	HalfScore Value `json:"firstHalfScore"`

	HomeXG          Value `json:"homeXG"`
	AwayXG          Value `json:"awayXG"`
	HomeBigChances  Value `json:"homeBigChances"`
	AwayBigChances  Value `json:"awayBigChances"`
	HomeShots       Value `json:"homeShots"`
	AwayShots       Value `json:"awayShots"`
	HomeShotsInBox  Value `json:"homeShotsInsideBox"`
	AwayShotsInBox  Value `json:"awayShotsInsideBox"`
	HomeOnTarget    Value `json:"homeOnTarget"`
	AwayOnTarget    Value `json:"awayOnTarget"`
	HomeBlocked     Value `json:"homeBlockedShots"`
	AwayBlocked     Value `json:"awayBlockedShots"`
	HomePasses      Value `json:"homePasses"`
	AwayPasses      Value `json:"awayPasses"`
	HomeTackles     Value `json:"homeTackles"`
	AwayTackles     Value `json:"awayTackles"`
	HomePossession  Value `json:"homePossession"`
	AwayPossession  Value `json:"awayPossession"`
	HomeCorners     Value `json:"homeCorners"`
	AwayCorners     Value `json:"awayCorners"`
	HomeYellowCards Value `json:"homeYellow"`
	AwayYellowCards Value `json:"awayYellow"`
	HomeRedCards    Value `json:"homeRed"`
	AwayRedCards    Value `json:"awayRed"`
	HomeFouls       Value `json:"homeFouls"`
	AwayFouls       Value `json:"awayFouls"`

	Commentary Value `json:"liveCommentary"`
}

// Section agrupa os campos na ordem em que entram no prompt
type Section int

const (
	SectionIdentity Section = iota
	SectionScore
	SectionShooting
	SectionControl
	SectionDiscipline
	SectionCommentary
)

// Field é um par nome/valor de um Record
type Field struct {
	Name    string // nome JSON do campo
	Section Section
	Value   Value
}

// Fields devolve todos os campos do Record, cada um uma única vez, em ordem fixa
// identidade → placar/xG → finalizações → posse/passes → bolas paradas/disciplina → narração.
func (r Record) Fields() []Field {
	return []Field{
		{"league", SectionIdentity, r.League},
		{"date", SectionIdentity, r.Date},
		{"homeTeam", SectionIdentity, r.HomeTeam},
		{"awayTeam", SectionIdentity, r.AwayTeam},

		{"firstHalfScore", SectionScore, r.HalfScore},
		{"homeXG", SectionScore, r.HomeXG},
		{"awayXG", SectionScore, r.AwayXG},
		{"homeBigChances", SectionScore, r.HomeBigChances},
		{"awayBigChances", SectionScore, r.AwayBigChances},

		{"homeShots", SectionShooting, r.HomeShots},
		{"awayShots", SectionShooting, r.AwayShots},
		{"homeShotsInsideBox", SectionShooting, r.HomeShotsInBox},
		{"awayShotsInsideBox", SectionShooting, r.AwayShotsInBox},
		{"homeOnTarget", SectionShooting, r.HomeOnTarget},
		{"awayOnTarget", SectionShooting, r.AwayOnTarget},
		{"homeBlockedShots", SectionShooting, r.HomeBlocked},
		{"awayBlockedShots", SectionShooting, r.AwayBlocked},

		{"homePossession", SectionControl, r.HomePossession},
		{"awayPossession", SectionControl, r.AwayPossession},
		{"homePasses", SectionControl, r.HomePasses},
		{"awayPasses", SectionControl, r.AwayPasses},
		{"homeTackles", SectionControl, r.HomeTackles},
		{"awayTackles", SectionControl, r.AwayTackles},

		{"homeCorners", SectionDiscipline, r.HomeCorners},
		{"awayCorners", SectionDiscipline, r.AwayCorners},
		{"homeYellow", SectionDiscipline, r.HomeYellowCards},
		{"awayYellow", SectionDiscipline, r.AwayYellowCards},
		{"homeRed", SectionDiscipline, r.HomeRedCards},
		{"awayRed", SectionDiscipline, r.AwayRedCards},
		{"homeFouls", SectionDiscipline, r.HomeFouls},
		{"awayFouls", SectionDiscipline, r.AwayFouls},

		{"liveCommentary", SectionCommentary, r.Commentary},
	}
}

// TeamsLabel é o rótulo usado no histórico: "Casa vs Fora"
func (r Record) TeamsLabel() string {
	return string(r.HomeTeam) + " vs " + string(r.AwayTeam)
}
