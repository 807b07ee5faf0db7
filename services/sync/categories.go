package sync

import "argosync/lib/scrapers/argo"

// Databases carries the id of the Notion database backing each
// category.
type Databases struct {
	Promemoria string `json:"promemoria"`
	Compiti    string `json:"compiti"`
	Voti       string `json:"voti"`
	Assenze    string `json:"assenze"`
	Registro   string `json:"registro"`
	Bacheca    string `json:"bacheca"`
}

// flattenCompiti digs the assignments out of the journal entries. An
// assignment inherits its entry's subject and teacher through the
// merge, its own fields win.
func flattenCompiti(dash *argo.Dashboard) []argo.Record {
	var out []argo.Record
	for _, entry := range dash.Registro {
		for _, compito := range entry.Records("compiti") {
			out = append(out, entry.Merge(compito))
		}
	}
	return out
}

// Categories builds the six category configs. The candidate chains
// track the field names the portal has used across its builds, newest
// first.
func Categories(db Databases) []Category {
	return []Category{
		{
			Name:     "promemoria",
			Database: db.Promemoria,
			KeyChain: []string{"pk", "pkPromemoria", "id"},
			DateGate: []string{"datEvento", "datGiorno", "data"},
			// the portal re-posts reminders under fresh pks, dedup on
			// the text too
			TitleDedup: "Titolo",
			Extract:    func(d *argo.Dashboard) []argo.Record { return d.Promemoria },
			Fields: []Field{
				{Property: "Titolo", Kind: KindTitle, Truncate: 100,
					Candidates: []string{"desAnnotazioni", "desNota", "titolo"}},
				{Property: "Materia", Kind: KindSelect, Normalize: true,
					Candidates: []string{"desMateria", "materia", "desBreveMateria"}},
				{Property: "Docente", Kind: KindText,
					Candidates: []string{"desMittente", "docente", "desDocente"}},
				{Property: "Data", Kind: KindDate,
					Candidates: []string{"datEvento", "datGiorno", "data"}},
				{Property: "Ora", Kind: KindText,
					Candidates: []string{"oraInizio", "ora"}},
			},
		},
		{
			Name:       "compiti",
			Database:   db.Compiti,
			KeyChain:   []string{"pkCompito", "pk", "id"},
			DateGate:   []string{"dataConsegna", "datCompiti", "datGiorno"},
			TitleDedup: "Compito",
			Extract:    flattenCompiti,
			Fields: []Field{
				{Property: "Compito", Kind: KindTitle, Truncate: 100,
					Candidates: []string{"compito", "desCompiti", "desCompito"}},
				{Property: "Materia", Kind: KindSelect, Normalize: true,
					Candidates: []string{"desMateria", "materia", "desBreveMateria"}},
				{Property: "Docente", Kind: KindText,
					Candidates: []string{"docente", "desDocente"}},
				{Property: "Consegna", Kind: KindDate,
					Candidates: []string{"dataConsegna", "datCompiti"}},
				{Property: "Assegnato", Kind: KindDate,
					Candidates: []string{"datGiorno", "data"}},
			},
		},
		{
			Name:     "voti",
			Database: db.Voti,
			KeyChain: []string{"pk", "pkVoto", "id"},
			Extract:  func(d *argo.Dashboard) []argo.Record { return d.Voti },
			Fields: []Field{
				{Property: "Materia", Kind: KindTitle,
					Candidates: []string{"desMateria", "materia", "desBreveMateria"}},
				{Property: "Voto", Kind: KindNumber,
					Candidates: []string{"decVoto", "votoValore", "voto", "codVoto", "valVoto", "votoDecimale"}},
				{Property: "Tipo", Kind: KindSelect,
					Candidates: []string{"codVotoPratico", "desProva", "tipoValutazione"}},
				{Property: "Data", Kind: KindDate,
					Candidates: []string{"datGiorno", "datVoto", "data"}},
				{Property: "Commento", Kind: KindText,
					Candidates: []string{"desCommento", "desProva", "commento"}},
				{Property: "Docente", Kind: KindText,
					Candidates: []string{"docente", "desDocente"}},
			},
		},
		{
			Name:     "assenze",
			Database: db.Assenze,
			KeyChain: []string{"pk", "pkAppello", "id"},
			Extract:  func(d *argo.Dashboard) []argo.Record { return d.Appello },
			Fields: []Field{
				{Property: "Evento", Kind: KindTitle, Default: "Assenza",
					Candidates: []string{"commentoGiustificazione", "desAssenza", "nota"}},
				{Property: "Tipo", Kind: KindSelect,
					Candidates: []string{"codEvento", "tipoEvento"}},
				{Property: "Data", Kind: KindDate,
					Candidates: []string{"datAssenza", "datGiorno", "data"}},
				{Property: "Giustificata", Kind: KindCheckbox,
					Candidates: []string{"flagGiustificata", "giustificata"}},
				{Property: "Docente", Kind: KindText,
					Candidates: []string{"docente", "desDocente"}},
			},
		},
		{
			Name:     "registro",
			Database: db.Registro,
			KeyChain: []string{"pk", "pkRegistro", "id"},
			Extract:  func(d *argo.Dashboard) []argo.Record { return d.Registro },
			Fields: []Field{
				{Property: "Attività", Kind: KindTitle, Truncate: 100, Default: "Lezione",
					Candidates: []string{"attivita", "desAttivita", "argomento"}},
				{Property: "Materia", Kind: KindSelect, Normalize: true,
					Candidates: []string{"desMateria", "materia", "desBreveMateria"}},
				{Property: "Docente", Kind: KindText,
					Candidates: []string{"docente", "desDocente"}},
				{Property: "Data", Kind: KindDate,
					Candidates: []string{"datGiorno", "data"}},
				{Property: "Ora", Kind: KindText,
					Candidates: []string{"ora", "oraInizio"}},
			},
		},
		{
			Name:     "bacheca",
			Database: db.Bacheca,
			KeyChain: []string{"pk", "pkComunicazione", "id"},
			Extract:  func(d *argo.Dashboard) []argo.Record { return d.Bacheca },
			Fields: []Field{
				{Property: "Oggetto", Kind: KindTitle, Truncate: 100,
					Candidates: []string{"oggetto", "desOggetto", "titolo"}},
				{Property: "Messaggio", Kind: KindText, StripHTML: true,
					Candidates: []string{"messaggio", "desMessaggio", "testo"}},
				{Property: "Autore", Kind: KindText,
					Candidates: []string{"autore", "desMittente"}},
				{Property: "Data", Kind: KindDate,
					Candidates: []string{"datPubblicazione", "data"}},
				{Property: "Richiede adesione", Kind: KindCheckbox,
					Candidates: []string{"pvRichiesta", "adRichiesta"}},
			},
		},
	}
}
