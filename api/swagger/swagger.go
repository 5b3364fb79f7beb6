package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course GPA API",
        "description": "Course records with credit-banded total GPA",
        "version": "1.0.0"
    },
    "basePath": "/workintech",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Courses", "description": "Course catalogue and GPA calculation"},
        {"name": "Reports", "description": "Course exports"}
    ],
    "paths": {
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Course"}}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course",
                "consumes": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CourseResult"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/courses/{name}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get course by name (case-insensitive)",
                "parameters": [
                    {"name": "name", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Course"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/courses/{id}": {
            "put": {
                "tags": ["Courses"],
                "summary": "Update course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseResult"}},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Courses"],
                "summary": "Delete course",
                "produces": ["text/plain"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Course deleted successfully", "schema": {"type": "string"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/reports/courses": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export courses with total GPA",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "delimiter", "in": "query", "type": "string", "enum": ["comma", "semicolon", "tab", "pipe"]},
                    {"name": "line_ending", "in": "query", "type": "string", "enum": ["lf", "crlf"]}
                ],
                "responses": {
                    "200": {"description": "Report file", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Grade": {
            "type": "object",
            "properties": {
                "coefficient": {"type": "integer"},
                "note": {"type": "string"}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "credit": {"type": "integer", "minimum": 1, "maximum": 4},
                "grade": {"$ref": "#/definitions/Grade"}
            }
        },
        "CourseRequest": {
            "type": "object",
            "required": ["name", "credit", "grade"],
            "properties": {
                "name": {"type": "string"},
                "credit": {"type": "integer", "minimum": 1, "maximum": 4},
                "grade": {"$ref": "#/definitions/Grade"}
            }
        },
        "CourseResult": {
            "type": "object",
            "properties": {
                "course": {"$ref": "#/definitions/Course"},
                "totalGpa": {"type": "integer"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "timestamp": {"type": "integer", "format": "int64"}
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
