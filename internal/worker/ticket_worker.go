package worker

// ticket_worker.go
// Processes ticket jobs from QueueTickets: renders the two-copy receipt PDF
// for a freshly persisted deposit. Generation failures are logged and never
// fail the deposit that triggered them.

import (
	"context"
	"encoding/json"

	"colectas/internal/infra"
	"colectas/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TicketJobPayload is the job envelope sent to QueueTickets.
type TicketJobPayload struct {
	DepositoID string `json:"deposito_id"`
}

// TicketWorker renders receipt PDFs into the configured storage directory.
type TicketWorker struct {
	depositos   repository.DepositoRepository
	storagePath string
}

func NewTicketWorker(depositos repository.DepositoRepository, storagePath string) *TicketWorker {
	return &TicketWorker{depositos: depositos, storagePath: storagePath}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("ticket_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.DepositoID)
	if err != nil {
		log.Error().Str("deposito_id", payload.DepositoID).Msg("ticket_worker: invalid deposito id")
		return
	}

	dep, err := w.depositos.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("deposito_id", payload.DepositoID).Msg("ticket_worker: deposito not found")
		return
	}

	path, err := infra.GenerarTicketArchivo(dep, w.storagePath)
	if err != nil {
		log.Error().Err(err).Str("folio", dep.Folio).Msg("ticket_worker: failed to render ticket")
		return
	}
	log.Info().Str("folio", dep.Folio).Str("path", path).Msg("ticket_worker: ticket rendered")
}
