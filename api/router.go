// Package api is the wire API of spec.md §6: a gorilla/mux router mounting
// the batch coordinator's operations as REST endpoints, grounded on
// vechain-thor's api/router.go and api/node/node.go Mount pattern.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/petscheit/sn-mpt/batch"
	"github.com/petscheit/sn-mpt/storage"
)

// NewRouter builds the *mux.Router exposing GET/POST /batches, GET
// /batches/{id}, and PUT /batches/{id}/status/{status}.
func NewRouter(coordinator *batch.Coordinator, store storage.Store) *mux.Router {
	h := NewHandlers(coordinator, store)
	router := mux.NewRouter()

	sub := router.PathPrefix("/batches").Subrouter()
	sub.Path("").Methods(http.MethodGet).Name("GET /batches").HandlerFunc(wrap(h.handleListBatches))
	sub.Path("").Methods(http.MethodPost).Name("POST /batches").HandlerFunc(wrap(h.handleCreateBatch))
	sub.Path("/{id}").Methods(http.MethodGet).Name("GET /batches/{id}").HandlerFunc(wrap(h.handleGetBatch))
	sub.Path("/{id}/status/{status}").Methods(http.MethodPut).Name("PUT /batches/{id}/status/{status}").HandlerFunc(wrap(h.handleSetBatchStatus))

	return router
}
