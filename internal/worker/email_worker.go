package worker

// email_worker.go
// Processes corte email jobs from QueueEmail: sends the day's CSV export to
// the configured report address via SMTP.

import (
	"context"
	"encoding/json"

	"colectas/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	Para          string `json:"para"`
	Asunto        string `json:"asunto"`
	Cuerpo        string `json:"cuerpo"`
	NombreArchivo string `json:"nombre_archivo"`
	CSV           []byte `json:"csv"`
}

// EmailWorker sends corte CSVs through the SMTP mailer.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.Para == "" {
		log.Warn().Msg("email_worker: empty recipient — skipping")
		return
	}

	if err := w.mailer.EnviarCorte(payload.Para, payload.Asunto, payload.Cuerpo, payload.NombreArchivo, payload.CSV); err != nil {
		log.Error().Err(err).Str("para", payload.Para).Msg("email_worker: failed to send corte")
		return
	}
	log.Info().Str("para", payload.Para).Str("archivo", payload.NombreArchivo).Msg("email_worker: corte sent")
}
