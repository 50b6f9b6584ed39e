package interfaces

import "trading-server/src/models"

// -----------------------------------------------------------------------------
// IServerFacade is the single entry point turning requests into responses.
// -----------------------------------------------------------------------------

type IServerFacade interface {

	// -----------------------------------------------------------------------------

	// HandleRequest routes the request to the correct service and returns
	// its response. Every failure mode is funnelled into a Success=false
	// response; this method never panics and has no error return.
	HandleRequest(request models.MRequest) models.MResponse
}
