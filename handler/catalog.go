package handler

import (
	"net/http"

	"github.com/francoispqt/gojay"
)

const CatalogURI = "/v1/api/catalog/"

type catalogHandler struct {
	snapshot func() gojay.MarshalerJSONObject
}

// ServeHTTP writes registered selectors and singleton states
func (h *catalogHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		http.Error(writer, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := gojay.MarshalJSONObject(h.snapshot())
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json")
	_, _ = writer.Write(data)
}

// NewCatalogHandler creates catalog snapshot handler
func NewCatalogHandler(snapshot func() gojay.MarshalerJSONObject) http.Handler {
	return &catalogHandler{snapshot: snapshot}
}
