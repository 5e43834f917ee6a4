package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Uni Timetable API",
        "description": "Constraint-based academic event scheduling engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Constraints", "description": "Candidate placement validation"},
        {"name": "Scheduler", "description": "Single-event and batch scheduling"},
        {"name": "Events", "description": "Placed timetable events"},
        {"name": "Exports", "description": "Timetable export and download"}
    ],
    "paths": {
        "/constraints/check": {
            "post": {
                "tags": ["Constraints"],
                "summary": "Validate a candidate event placement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckConstraintsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Validation report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/events": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Schedule a single event",
                "description": "Direct placement or backtracking search. A request that cannot be placed returns success=false with a reason, not an error status.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "No feasible assignment", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Event scheduled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/batch": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Schedule a batch of events synchronously",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchScheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-event outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/batch/jobs": {
            "post": {
                "tags": ["Scheduler"],
                "summary": "Enqueue a batch scheduling job",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchScheduleRequest"}}
                ],
                "responses": {
                    "202": {"description": "Job accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/scheduler/batch/jobs/{id}": {
            "get": {
                "tags": ["Scheduler"],
                "summary": "Get the state of a batch scheduling job",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or expired job"}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List timetable events",
                "parameters": [
                    {"name": "moduleId", "in": "query", "type": "string"},
                    {"name": "roomId", "in": "query", "type": "string"},
                    {"name": "staffId", "in": "query", "type": "string"},
                    {"name": "timeslotId", "in": "query", "type": "string"},
                    {"name": "tag", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get one event with its roster",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Events"],
                "summary": "Update or reschedule an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "New placement violates a hard constraint"}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/timeslots": {
            "get": {
                "tags": ["Events"],
                "summary": "List the timeslot catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/timetable": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the timetable to CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Signed download location", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a previously exported file",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "produces": ["text/csv", "application/pdf"],
                "responses": {
                    "200": {"description": "File payload"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "CheckConstraintsRequest": {
            "type": "object",
            "required": ["roomId", "staffId", "date", "timeslotId"],
            "properties": {
                "roomId": {"type": "string"},
                "staffId": {"type": "string"},
                "moduleId": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-07"},
                "timeslotId": {"type": "string"},
                "studentCount": {"type": "integer"},
                "excludeEventId": {"type": "string"}
            }
        },
        "EventRequest": {
            "type": "object",
            "required": ["title", "moduleId"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "moduleId": {"type": "string"},
                "studentCount": {"type": "integer"},
                "studentIds": {"type": "array", "items": {"type": "string"}},
                "tag": {"type": "string", "enum": ["CLASS", "EXAM", "MEETING"]},
                "durationMinutes": {"type": "integer", "default": 60},
                "preferredRoomIds": {"type": "array", "items": {"type": "string"}},
                "preferredStaffIds": {"type": "array", "items": {"type": "string"}},
                "preferredDate": {"type": "string", "example": "2026-09-07"},
                "preferredTimeslotId": {"type": "string"},
                "preferredStart": {"type": "string", "example": "10:00"},
                "allowedWeekdays": {"type": "array", "items": {"type": "integer"}},
                "strategy": {"type": "string", "enum": ["direct", "search"]},
                "maxAttempts": {"type": "integer"}
            }
        },
        "BatchScheduleRequest": {
            "type": "object",
            "required": ["events"],
            "properties": {
                "events": {"type": "array", "items": {"$ref": "#/definitions/EventRequest"}},
                "preferences": {"type": "object"}
            }
        },
        "UpdateEventRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "date": {"type": "string", "example": "2026-09-07"},
                "timeslotId": {"type": "string"},
                "roomId": {"type": "string"},
                "staffId": {"type": "string"},
                "tag": {"type": "string"},
                "studentIds": {"type": "array", "items": {"type": "string"}}
            }
        },
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
