// Package api holds the OpenAPI document served by the Swagger UI.
package api

import _ "embed"

// SwaggerJSON is the OpenAPI 2.0 description of the REST API.
//
//go:embed swagger/user.swagger.json
var SwaggerJSON []byte
