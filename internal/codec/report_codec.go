package codec

import (
	"encoding/json"
	"strings"

	"rubrica/internal/models"
)

// The six report sub-documents are stored as encoded text columns. Four are
// object-shaped (info general, configuracion, feedback, resultados) and two
// are sequence-shaped (niveles de desempeno, criterios).
//
// The contract is deliberately asymmetric: decoding tolerates absent or empty
// stored text by substituting the field's empty shape, and encoding defaults
// omitted fields the same way. Partially-populated historical rows therefore
// stay readable, and a freshly created report always round-trips.
const (
	emptyObject   = "{}"
	emptySequence = "[]"
)

// Subdocs carries the stored form of a report's six sub-documents in column
// order: info_general, configuracion, niveles_desempeno, criterios, feedback,
// resultados.
type Subdocs [6]string

// Encode serializes a report's sub-documents for storage
func Encode(r *models.Report) Subdocs {
	return Subdocs{
		encodeField(r.InfoGeneral, emptyObject),
		encodeField(r.Configuracion, emptyObject),
		encodeField(r.NivelesDesempeno, emptySequence),
		encodeField(r.Criterios, emptySequence),
		encodeField(r.Feedback, emptyObject),
		encodeField(r.Resultados, emptyObject),
	}
}

// Decode normalizes stored column text back onto the report
func Decode(r *models.Report, stored Subdocs) {
	r.InfoGeneral = decodeField(stored[0], emptyObject)
	r.Configuracion = decodeField(stored[1], emptyObject)
	r.NivelesDesempeno = decodeField(stored[2], emptySequence)
	r.Criterios = decodeField(stored[3], emptySequence)
	r.Feedback = decodeField(stored[4], emptyObject)
	r.Resultados = decodeField(stored[5], emptyObject)
}

// encodeField returns the storable text for a sub-document, substituting the
// empty shape when the caller omitted the field or sent an explicit null
func encodeField(raw json.RawMessage, empty string) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return empty
	}
	return s
}

// decodeField returns the structured form of a stored column value,
// substituting the empty shape for blank or null text
func decodeField(stored, empty string) json.RawMessage {
	s := strings.TrimSpace(stored)
	if s == "" || s == "null" {
		return json.RawMessage(empty)
	}
	return json.RawMessage(s)
}
