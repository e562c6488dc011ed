package protocol

// Endpoint names an authenticated operation.
type Endpoint string

const (
	EndpointFetch       Endpoint = "fetch"
	EndpointRead        Endpoint = "read"
	EndpointSendMessage Endpoint = "send_message"
	EndpointSendFile    Endpoint = "send_file"
)

// Path is the HTTP route serving the endpoint.
func (e Endpoint) Path() string {
	return "/" + string(e)
}

// Endpoints lists every authenticated endpoint.
func Endpoints() []Endpoint {
	return []Endpoint{EndpointFetch, EndpointRead, EndpointSendMessage, EndpointSendFile}
}
