package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Cultiva API",
        "description": "Cultivation, processing and distribution tracking for a cannabis association",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Environments", "description": "Grow environments and counter previews"},
        {"name": "Strains", "description": "Genetics catalog"},
        {"name": "Plants", "description": "Plant inventory and clone batches"},
        {"name": "Harvests", "description": "Harvest records and weight ledgers"},
        {"name": "Extracts", "description": "Processing from harvest material"},
        {"name": "Distributions", "description": "Dispensing to patients"},
        {"name": "Patients", "description": "Patient registry"},
        {"name": "Orders", "description": "Patient orders"},
        {"name": "Actions", "description": "Cultivation actions and bulk fan-out"},
        {"name": "Audit", "description": "Audit trail and diff viewer"},
        {"name": "Reports", "description": "Aggregate reports and exports"}
    ],
    "paths": {
        "/plants": {
            "get": {
                "tags": ["Plants"],
                "summary": "List plants",
                "parameters": [
                    {"name": "environmentId", "in": "query", "type": "string"},
                    {"name": "strainId", "in": "query", "type": "string"},
                    {"name": "stage", "in": "query", "type": "string"},
                    {"name": "batchId", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Plants"],
                "summary": "Create plant",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plants/clone-batch": {
            "post": {
                "tags": ["Plants"],
                "summary": "Create a batch of sibling clones",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/plants/{id}": {
            "get": {
                "tags": ["Plants"],
                "summary": "Get plant by id or control number",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/plants/{id}/action-logs": {
            "get": {
                "tags": ["Actions"],
                "summary": "Action history for one plant",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/environments/{id}/next-numbers": {
            "get": {
                "tags": ["Environments"],
                "summary": "Preview next control numbers without reserving them",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/action-logs/bulk": {
            "post": {
                "tags": ["Actions"],
                "summary": "Apply one action to many plants",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No targets selected"}
                }
            },
            "get": {
                "tags": ["Actions"],
                "summary": "List bulk action summaries",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit-logs/{id}/diff": {
            "get": {
                "tags": ["Audit"],
                "summary": "Field-level diff between an audit record's snapshots",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{type}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Generate an aggregate report",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string", "enum": ["harvests", "distributions", "extracts", "plants"]},
                    {"name": "dateFrom", "in": "query", "type": "string"},
                    {"name": "dateTo", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{type}/export": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a CSV or PDF export",
                "parameters": [
                    {"name": "type", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/jobs/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished export through its signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
