// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with: swag init -g main.go --parseDependency
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/videos": {"get": {"tags": ["content"], "summary": "List videos", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/videos/{id}": {"get": {"tags": ["content"], "summary": "Get a video", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/videos/{id}/view": {"post": {"tags": ["content"], "summary": "Record a video view", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}, "429": {"description": "Too Many Requests"}}}},
        "/videos/{id}/recommendations": {
            "get": {"tags": ["recommendations"], "summary": "Videos similar to a video", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["recommendations"], "summary": "Videos close to a query embedding", "responses": {"200": {"description": "OK"}}}
        },
        "/blogs": {"get": {"tags": ["content"], "summary": "List blog posts", "responses": {"200": {"description": "OK"}}}},
        "/blogs/{id}": {"get": {"tags": ["content"], "summary": "Get a blog post", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/blogs/{id}/view": {"post": {"tags": ["content"], "summary": "Record a blog view", "responses": {"200": {"description": "OK"}, "429": {"description": "Too Many Requests"}}}},
        "/keywords": {"get": {"tags": ["content"], "summary": "Video keyword index grouped by first letter", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/callback": {"get": {"tags": ["auth"], "summary": "OAuth callback", "responses": {"302": {"description": "Found"}}}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Refresh a session", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/me/recommendations": {"get": {"tags": ["recommendations"], "summary": "Personalized recommendations", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}},
        "/me/subscription": {"get": {"tags": ["membership"], "summary": "Current subscription", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/me/subscription/cancel": {"post": {"tags": ["membership"], "summary": "Cancel the active subscription", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}},
        "/payments/checkout": {"post": {"tags": ["payments"], "summary": "Start a checkout", "security": [{"BearerAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/payments/confirm": {"post": {"tags": ["payments"], "summary": "Confirm a payment", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "402": {"description": "Payment Required"}, "502": {"description": "Bad Gateway"}}}},
        "/payments/fail": {"post": {"tags": ["payments"], "summary": "Record a failed payment", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/admin/login": {"post": {"tags": ["admin"], "summary": "Admin login", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "429": {"description": "Too Many Requests"}}}},
        "/admin/analytics": {"get": {"tags": ["admin"], "summary": "Dashboard analytics", "security": [{"AdminAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/users": {"get": {"tags": ["admin"], "summary": "Users with subscription state", "security": [{"AdminAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/payments": {"get": {"tags": ["admin"], "summary": "List payments", "security": [{"AdminAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/payments/stats": {"get": {"tags": ["admin"], "summary": "Payment statistics", "security": [{"AdminAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/admin/videos": {"post": {"tags": ["admin"], "summary": "Publish a video", "security": [{"AdminAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/admin/videos/{id}": {
            "put": {"tags": ["admin"], "summary": "Update a video", "security": [{"AdminAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["admin"], "summary": "Delete a video", "security": [{"AdminAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/admin/blogs": {"post": {"tags": ["admin"], "summary": "Publish a blog post", "security": [{"AdminAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/admin/blogs/{id}": {
            "put": {"tags": ["admin"], "summary": "Update a blog post", "security": [{"AdminAuth": []}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["admin"], "summary": "Delete a blog post", "security": [{"AdminAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/admin/uploads/images": {"post": {"tags": ["admin"], "summary": "Upload a blog image", "security": [{"AdminAuth": []}], "responses": {"201": {"description": "Created"}}}},
        "/admin/activity/ws": {"get": {"tags": ["admin"], "summary": "Live activity stream", "security": [{"AdminAuth": []}], "responses": {"101": {"description": "Switching Protocols"}}}}
    },
    "securityDefinitions": {
        "AdminAuth": {"type": "apiKey", "name": "Authorization", "in": "header"},
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Jungian Journals API",
	Description:      "Content, recommendations, membership and admin dashboard API for Jungian Journals.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
