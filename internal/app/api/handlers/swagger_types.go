package handlers

import "github.com/fatflowers/loyalty/pkg/response"

// RespOK is the swagger doc shape of a successful envelope.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    any                      `json:"data"`
}
