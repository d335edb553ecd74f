package http

import "github.com/labstack/echo/v4"

// Handler is implemented by anything that mounts routes on the server's
// Echo instance. The server stays agnostic of the API surface it hosts.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
