package handler

import (
	"log"
	"net/http"

	"github.com/viant/lifecycle/shared"
)

const StatusURI = "/status/"

// StatusOK returns up status
func StatusOK(writer http.ResponseWriter, request *http.Request) {
	if request.Body != nil {
		if err := request.Body.Close(); err != nil {
			log.Printf("%v failed to close request body: %v", shared.LogPrefix, err)
		}
	}
	writer.WriteHeader(http.StatusOK)
}
