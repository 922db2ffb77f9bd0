package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>recordbook - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "recordbook", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Contact": {"type":"object","properties":{"id":{"type":"integer"},"name":{"type":"string","minLength":3,"maxLength":50},"lastname":{"type":"string","minLength":3,"maxLength":50},"email":{"type":"string","format":"email"},"phone":{"type":"string","minLength":12,"maxLength":20},"born_date":{"type":"string","format":"date"},"description":{"type":"string","maxLength":250,"nullable":true}}},
      "Note": {"type":"object","properties":{"id":{"type":"integer"},"name":{"type":"string","maxLength":50},"description":{"type":"string","maxLength":250},"done":{"type":"boolean"}}},
      "Message": {"type":"object","properties":{"message":{"type":"string"}}},
      "ValidationError": {"type":"object","properties":{"message":{"type":"string"},"errors":{"type":"array","items":{"type":"object","properties":{"field":{"type":"string"},"reason":{"type":"string"}}}}}}
    }
  },
  "paths": {
    "/contacts": {
      "post": { "summary": "Create a contact", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Contact"}}}}, "responses": { "201": { "description": "created contact" }, "400": { "description": "invalid input" } } },
      "get": { "summary": "List all contacts", "responses": { "200": { "description": "contacts" } } }
    },
    "/contacts/{id}": {
      "get": { "summary": "Get a contact", "responses": { "200": { "description": "contact" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Merge-update a contact from query parameters name, lastname, email, phone, born_date, description", "responses": { "200": { "description": "updated" }, "400": { "description": "invalid input" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete a contact", "responses": { "200": { "description": "deleted" }, "404": { "description": "not found" } } }
    },
    "/search": {
      "get": { "summary": "Find the first contact by name, lastname or email (in that priority)", "responses": { "200": { "description": "contact or Not Found message" } } }
    },
    "/birthday": {
      "get": { "summary": "Contacts with a birthday in the next seven days", "responses": { "200": { "description": "contacts" } } }
    },
    "/notes": {
      "post": { "summary": "Create a note", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Note"}}}}, "responses": { "201": { "description": "created note" } } },
      "get": { "summary": "List notes with skip and limit (limit clamped to 10..100)", "responses": { "200": { "description": "notes" } } }
    },
    "/notes/{id}": {
      "get": { "summary": "Get a note (id 1..10)", "responses": { "200": { "description": "note" }, "400": { "description": "id out of range" }, "404": { "description": "not found" } } }
    },
    "/uploadfile": {
      "post": { "summary": "Upload a file to object storage", "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "stored object" }, "503": { "description": "object storage not configured" } } }
    },
    "/api/healthchecker": { "get": { "summary": "Database connectivity check", "responses": { "200": { "description": "welcome message" }, "500": { "description": "database unreachable" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
