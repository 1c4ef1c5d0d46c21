package extract

import "errors"

// ServiceUnavailableMessage is shown verbatim to users; surfaces match on it.
const ServiceUnavailableMessage = "due to high request the services is shut down for bit of time , try later"

var (
	// ErrRateLimited marks a candidate that reported quota exhaustion.
	ErrRateLimited = errors.New("rate limited")
	// ErrTransport marks any other candidate failure.
	ErrTransport = errors.New("transport failure")
	// ErrServiceUnavailable is returned once every candidate has failed.
	ErrServiceUnavailable = errors.New(ServiceUnavailableMessage)
)
