package http

type RequeueResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
