// Package docs registers the hand-maintained OpenAPI description served under /swagger.
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
        "/health": {
            "get": {"produces": ["text/plain"], "tags": ["health"], "summary": "Health Check", "responses": {"200": {"description": "OK"}}}
        },
        "/health/ready": {
            "get": {"produces": ["application/json"], "tags": ["health"], "summary": "Readiness Check", "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/api/report-types": {
            "get": {"produces": ["application/json"], "tags": ["catalog"], "summary": "List report types", "responses": {"200": {"description": "OK"}}}
        },
        "/api/report-types/{id}": {
            "get": {"produces": ["application/json"], "tags": ["catalog"], "summary": "Get a report type with its columns and filters",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/reports/validate": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["reports"], "summary": "Validate a report definition", "responses": {"200": {"description": "OK"}}}
        },
        "/api/reports/compile": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["reports"], "summary": "Compile a report definition", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/reports/execute": {
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["reports"], "summary": "Execute an ad-hoc report definition", "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity"}, "504": {"description": "Gateway Timeout"}}}
        },
        "/api/reports": {
            "get": {"produces": ["application/json"], "tags": ["reports"], "summary": "List saved reports", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["reports"], "summary": "Save a report", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/reports/{id}": {
            "get": {"produces": ["application/json"], "tags": ["reports"], "summary": "Get a saved report", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["reports"], "summary": "Replace a saved report", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["reports"], "summary": "Delete a saved report and disable its schedules", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/reports/{id}/duplicate": {
            "post": {"produces": ["application/json"], "tags": ["reports"], "summary": "Duplicate a saved report", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/api/reports/{id}/run": {
            "post": {"produces": ["application/json"], "tags": ["reports"], "summary": "Run a saved report", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/reports/{id}/export": {
            "get": {"produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"], "tags": ["reports"], "summary": "Export a saved report",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "format", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/api/report-schedules": {
            "get": {"produces": ["application/json"], "tags": ["schedules"], "summary": "List schedules", "responses": {"200": {"description": "OK"}}},
            "post": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["schedules"], "summary": "Create a schedule", "responses": {"201": {"description": "Created"}, "422": {"description": "Unprocessable Entity"}}}
        },
        "/api/report-schedules/{id}": {
            "get": {"produces": ["application/json"], "tags": ["schedules"], "summary": "Get a schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "put": {"consumes": ["application/json"], "produces": ["application/json"], "tags": ["schedules"], "summary": "Update a schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["schedules"], "summary": "Delete a schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/api/report-schedules/{id}/toggle": {
            "post": {"produces": ["application/json"], "tags": ["schedules"], "summary": "Pause or resume a schedule", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/report-schedules/{id}/disable": {
            "post": {"produces": ["application/json"], "tags": ["schedules"], "summary": "Disable a schedule permanently", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/report-schedules/{id}/run-now": {
            "post": {"produces": ["application/json"], "tags": ["schedules"], "summary": "Run a schedule out of band", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"202": {"description": "Accepted"}, "409": {"description": "Conflict"}}}
        },
        "/api/report-schedules/{id}/runs": {
            "get": {"produces": ["application/json"], "tags": ["schedules"], "summary": "List recent runs", "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "integer", "name": "limit", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/recurrence/next-due": {
            "get": {"produces": ["application/json"], "tags": ["recurrence"], "summary": "Preview the next due time",
                "parameters": [{"type": "string", "name": "frequency", "in": "query", "required": true}, {"type": "string", "name": "expression", "in": "query"}, {"type": "string", "name": "from", "in": "query"}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/audit-logs": {
            "get": {"produces": ["application/json"], "tags": ["audit"], "summary": "List audit logs", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/debug/me": {
            "get": {"produces": ["application/json"], "tags": ["debug"], "summary": "Get current user info", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Broker Reporting API",
	Description:      "Report definitions, execution and scheduled delivery for the brokerage back office.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
