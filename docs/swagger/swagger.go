// Package swagger QuoteFlow API documentation
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "termsOfService": "http://swagger.io/terms/",
        "contact": {
            "name": "API Support",
            "email": "support@quoteflow.com"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "User login",
                "responses": {
                    "200": {"description": "Successful login"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/companies/{id}/ownership": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["companies"],
                "summary": "Change company ownership",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Ownership changed"},
                    "403": {"description": "Entity is system-protected"},
                    "404": {"description": "Entity or owner not found"},
                    "409": {"description": "Concurrent ownership change"}
                }
            }
        },
        "/opportunities/{id}/ownership": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["opportunities"],
                "summary": "Change opportunity ownership",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Ownership changed"},
                    "404": {"description": "Entity or owner not found"}
                }
            }
        },
        "/assets/{id}/ownership": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["assets"],
                "summary": "Change asset ownership",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Ownership changed"},
                    "404": {"description": "Entity or owner not found"}
                }
            }
        },
        "/quotes/{id}/ownership": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["quotes"],
                "summary": "Change quote ownership",
                "parameters": [
                    {"type": "string", "format": "uuid", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "Ownership changed"},
                    "404": {"description": "Entity or owner not found"},
                    "409": {"description": "Concurrent ownership change"}
                }
            }
        },
        "/activity/ownership-changes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["activity"],
                "summary": "List ownership changes",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "QuoteFlow API",
	Description:      "Central API documentation - For all QuoteFlow services",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
