// Package docs registers the OpenAPI description served at /swagger/*.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Login",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a new user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Conflict"}}
            }
        },
        "/emergency": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["emergency"],
                "summary": "Report an emergency",
                "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/emergency/{id}/resolve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["emergency"],
                "summary": "Resolve or cancel an emergency",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}, "404": {"description": "Not Found"}}
            }
        },
        "/map/active": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["map"],
                "summary": "List active emergencies",
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Emergency"}}}}
            }
        },
        "/map/{id}/location": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["map"],
                "summary": "Latest victim and responder location",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["map"],
                "summary": "Report the caller's current location",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"202": {"description": "Accepted"}, "422": {"description": "Unprocessable Entity"}}
            }
        },
        "/responder/accept/{id}": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["responder"],
                "summary": "Accept an emergency",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        }
    },
    "definitions": {
        "domain.Coordinate": {
            "type": "object",
            "properties": {"lat": {"type": "number"}, "lng": {"type": "number"}}
        },
        "domain.Emergency": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "example": "148048437705703425"},
                "type": {"type": "string"},
                "victim_name": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string", "format": "date-time"},
                "location": {"$ref": "#/definitions/domain.Coordinate"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "LiveTracker API",
	Description:      "Emergency reporting and live victim/responder location tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
