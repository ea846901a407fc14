package api

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/petscheit/sn-mpt/batch"
	"github.com/petscheit/sn-mpt/storage"
)

// Handlers wires the wire API of spec.md §6 onto a batch.Coordinator and the
// storage.Store it shares with it, following vechain-thor's
// <Resource>Interface-plus-handler split (api/block.go, api/blockhandler.go).
type Handlers struct {
	coordinator *batch.Coordinator
	store       storage.Store
}

// NewHandlers returns Handlers backed by coordinator and store. store is
// used directly for the read-only list/get endpoints; coordinator owns every
// write.
func NewHandlers(coordinator *batch.Coordinator, store storage.Store) *Handlers {
	return &Handlers{coordinator: coordinator, store: store}
}

func (h *Handlers) handleListBatches(w http.ResponseWriter, _ *http.Request) error {
	batches, err := h.store.ListBatches()
	if err != nil {
		return classify(err)
	}
	return writeJSON(w, batches)
}

func (h *Handlers) handleGetBatch(w http.ResponseWriter, r *http.Request) error {
	id, err := parseBatchID(r)
	if err != nil {
		return err
	}
	b, ok, err := h.store.GetBatch(id)
	if err != nil {
		return classify(err)
	}
	if !ok {
		return classify(fmt.Errorf("%w: id %d", batch.ErrBatchNotFound, id))
	}
	return writeJSON(w, b)
}

func (h *Handlers) handleCreateBatch(w http.ResponseWriter, r *http.Request) error {
	var hexValues []string
	if err := json.NewDecoder(r.Body).Decode(&hexValues); err != nil {
		return badRequest(fmt.Errorf("%w: %v", ErrInvalidHexString, err), codeBadRequestInputs)
	}

	values := make([][]byte, len(hexValues))
	for i, hv := range hexValues {
		v, err := hex.DecodeString(trimHexPrefix(hv))
		if err != nil {
			return badRequest(fmt.Errorf("%w: item %d: %v", ErrInvalidHexString, i, err), codeBadRequestInputs)
		}
		values[i] = v
	}

	proof, err := h.coordinator.CreateBatch(values)
	if err != nil {
		return classify(err)
	}
	return writeJSON(w, proof)
}

func (h *Handlers) handleSetBatchStatus(w http.ResponseWriter, r *http.Request) error {
	id, err := parseBatchID(r)
	if err != nil {
		return err
	}
	status := mux.Vars(r)["status"]
	if status != storage.StatusFinalized.String() {
		return badRequest(fmt.Errorf("%w: only %q is accepted here", batch.ErrInvalidBatchStatus, storage.StatusFinalized), codeBadRequestInputs)
	}
	if err := h.coordinator.Finalize(id); err != nil {
		return classify(err)
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func parseBatchID(r *http.Request) (uint64, error) {
	raw := mux.Vars(r)["id"]
	var id uint64
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, badRequest(fmt.Errorf("api: invalid batch id %q", raw), codeBadRequestInputs)
	}
	return id, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
