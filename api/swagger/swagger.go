package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "AcadSync Scheduler API",
        "description": "Resource-interval scheduling and conflict resolution engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Schedule", "description": "Timetable generation, validation and optimization"},
        {"name": "Bookings", "description": "Ad hoc room reservations"},
        {"name": "Availability", "description": "Resource availability windows and blocks"}
    ],
    "paths": {
        "/schedule/generate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Generate a timetable synchronously",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Generation result", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No schedulable resources", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/generate/async": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Queue a timetable generation job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateScheduleRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/jobs/{id}": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Get the status of a generation job",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Schedule"],
                "summary": "Cancel a generation job",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancellation outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/validate": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Validate a schedule against all constraints",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Conflict report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/optimize": {
            "post": {
                "tags": ["Schedule"],
                "summary": "Reduce conflicts in a schedule by local search",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Optimized schedule", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Book a room for a time window",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookingRequest"}}
                ],
                "responses": {
                    "201": {"description": "Booking created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Window already occupied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Bookings"],
                "summary": "List bookings",
                "parameters": [
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "bookedBy", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Booking page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/{id}": {
            "delete": {
                "tags": ["Bookings"],
                "summary": "Cancel an approved booking",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancelled booking", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Booking not approved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/bookings/check": {
            "post": {
                "tags": ["Bookings"],
                "summary": "Check whether resources share a free window",
                "responses": {
                    "200": {"description": "Feasibility with busy resources", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability": {
            "put": {
                "tags": ["Availability"],
                "summary": "Declare or replace a weekly availability window",
                "responses": {
                    "200": {"description": "Stored window", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/blocks": {
            "post": {
                "tags": ["Availability"],
                "summary": "Block a window on a specific date",
                "responses": {
                    "201": {"description": "Stored block", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/availability/{resourceId}": {
            "get": {
                "tags": ["Availability"],
                "summary": "Resolve free intervals for a resource on a date",
                "parameters": [
                    {"name": "resourceId", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Free, occupied and blocked ranges", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Fetch a timetable with its sessions",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/status": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Activate or archive a timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Status unchanged", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}/sessions": {
            "put": {
                "tags": ["Timetables"],
                "summary": "Replace a timetable's sessions with an optimized set",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated timetable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "GenerateScheduleRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "strategy": {"type": "string", "enum": ["greedy", "constraint_satisfaction", "genetic"]},
                "courseIds": {"type": "array", "items": {"type": "string"}},
                "workingDays": {"type": "array", "items": {"type": "string"}},
                "workStart": {"type": "string"},
                "workEnd": {"type": "string"},
                "slotDurationMinutes": {"type": "integer"},
                "maxIterations": {"type": "integer"},
                "backtrackDepth": {"type": "integer"},
                "populationSize": {"type": "integer"},
                "generations": {"type": "integer"},
                "mutationRate": {"type": "number"},
                "seed": {"type": "integer"},
                "teacherAvailabilityHard": {"type": "boolean"}
            }
        },
        "ValidateScheduleRequest": {
            "type": "object",
            "properties": {
                "sessions": {"type": "array", "items": {"type": "object"}}
            }
        },
        "CreateBookingRequest": {
            "type": "object",
            "properties": {
                "roomId": {"type": "string"},
                "bookedBy": {"type": "string"},
                "date": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
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
