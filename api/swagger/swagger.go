package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Asignaciones API",
        "description": "Teacher-to-course schedule assignments and their reference lists",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Asignaciones", "description": "Assignments and their weekly slots"},
        {"name": "Catalog", "description": "Teachers, courses, categories, weekdays and time blocks"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {"summary": "Readiness check", "responses": {"200": {"description": "Ready"}, "503": {"description": "A dependency is down"}}}
        },
        "/asignaciones": {
            "get": {
                "tags": ["Asignaciones"],
                "summary": "List assignments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "q", "in": "query", "type": "string"},
                    {"name": "profesor_id", "in": "query", "type": "integer"},
                    {"name": "curso_id", "in": "query", "type": "integer"},
                    {"name": "categoria_id", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Asignaciones"],
                "summary": "Create assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignmentWrite"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/asignaciones/{id}": {
            "get": {
                "tags": ["Asignaciones"],
                "summary": "Get assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            },
            "put": {
                "tags": ["Asignaciones"],
                "summary": "Replace assignment and its whole slot list",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignmentWrite"}}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "422": {"description": "Invalid payload"}}
            },
            "delete": {
                "tags": ["Asignaciones"],
                "summary": "Delete assignment",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "integer"}],
                "responses": {"204": {"description": "Deleted"}, "404": {"description": "Not found"}}
            }
        },
        "/asignaciones/profesores-disponibles": {
            "get": {"tags": ["Catalog"], "summary": "Teachers available for assignment", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/asignaciones/dias-semana": {
            "get": {"tags": ["Catalog"], "summary": "Weekday enumeration", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/asignaciones/bloques-horarios": {
            "get": {"tags": ["Catalog"], "summary": "Selectable time blocks", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/cursos": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List courses",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "categoria_id", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/categorias": {
            "get": {"tags": ["Catalog"], "summary": "List course categories", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "Slot": {
            "type": "object",
            "properties": {
                "dia_semana_id": {"type": "integer"},
                "dia_semana": {"type": "string", "description": "Legacy weekday name, used when dia_semana_id is absent"},
                "hora_inicio": {"type": "string", "example": "08:00:00"},
                "hora_fin": {"type": "string", "example": "10:00:00"}
            }
        },
        "AssignmentWrite": {
            "type": "object",
            "properties": {
                "profesor_id": {"type": "integer"},
                "curso_id": {"type": "integer"},
                "horarios": {"type": "array", "items": {"$ref": "#/definitions/Slot"}},
                "observaciones": {"type": "string"}
            }
        },
        "FieldError": {
            "type": "object",
            "properties": {
                "loc": {"type": "array", "items": {"type": "string"}},
                "msg": {"type": "string"}
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
                "success": {"type": "boolean"},
                "data": {"type": "object"},
                "message": {"type": "string"},
                "detail": {"type": "array", "items": {"$ref": "#/definitions/FieldError"}},
                "error": {"$ref": "#/definitions/APIError"},
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
